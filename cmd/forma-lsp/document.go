package main

import (
	"sync"

	"github.com/formalang/forma/internal/borrow"
	"github.com/formalang/forma/internal/diagnostics"
	"github.com/formalang/forma/internal/infer"
	"github.com/formalang/forma/internal/parser"
)

// DocumentState tracks one open buffer's content (diagnostics are
// recomputed on each change and published, not stored here), the same
// per-document record the teacher keeps (minus the
// PipelineContext this port doesn't need since hover/definition aren't
// implemented here).
type DocumentState struct {
	mu      sync.RWMutex
	Content string
}

func (s *LanguageServer) handleDidOpen(params DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc := &DocumentState{Content: params.TextDocument.Text}
	s.mu.Lock()
	s.documents[uri] = doc
	s.mu.Unlock()
	return s.publishDiagnostics(uri, doc.Content)
}

func (s *LanguageServer) handleDidChange(params DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	uri := params.TextDocument.URI
	s.mu.RLock()
	doc, ok := s.documents[uri]
	s.mu.RUnlock()
	if !ok {
		doc = &DocumentState{}
		s.mu.Lock()
		s.documents[uri] = doc
		s.mu.Unlock()
	}
	doc.mu.Lock()
	doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
	content := doc.Content
	doc.mu.Unlock()
	return s.publishDiagnostics(uri, content)
}

func (s *LanguageServer) handleDidClose(params DidCloseTextDocumentParams) error {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	s.mu.Unlock()
	return nil
}

// analyzeBuffer type-checks and borrow-checks a single in-memory buffer
// without resolving its imports against disk -- a document being typed
// into an editor has no guarantee its imports even exist yet, so this
// analysis only ever reports on the buffer's own declarations, a narrower
// but crash-free scope cut from the project-wide internal/driver.Pipeline.
func analyzeBuffer(path, content string) *diagnostics.Bag {
	prog, diags := parser.Parse(path, content)
	bag := &diagnostics.Bag{}
	bag.Extend(diags)
	if bag.HasErrors() {
		return bag
	}
	g := infer.NewGlobals()
	infer.BuildGlobals(prog.Items, g)
	c := infer.NewChecker(path, g)
	c.CheckProgram(prog.Items)
	bag.Extend(c.Diags.All())
	bag.Extend(borrow.Check(path, prog.Items).All())
	return bag
}

func (s *LanguageServer) publishDiagnostics(uri, content string) error {
	bag := analyzeBuffer(s.uriToPath(uri), content)
	lspDiags := make([]Diagnostic, 0, len(bag.All()))
	for _, d := range bag.All() {
		sev := SeverityError
		if d.Warning {
			sev = SeverityWarning
		}
		lspDiags = append(lspDiags, Diagnostic{
			Range: Range{
				Start: Position{Line: d.Primary.Start.Line - 1, Character: d.Primary.Start.Column - 1},
				End:   Position{Line: d.Primary.End.Line - 1, Character: d.Primary.End.Column - 1},
			},
			Severity: sev,
			Code:     d.Code,
			Message:  d.Message,
			Source:   "forma",
		})
	}
	return s.sendNotification(NotificationMessage{
		Jsonrpc: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params:  PublishDiagnosticsParams{URI: uri, Diagnostics: lspDiags},
	})
}
