package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

// LanguageServer holds one open-documents table and the stream diagnostics
// and responses are written back over, the same shape as the teacher's own
// cmd/lsp.LanguageServer minus the fields (rootPath aside) its hover/
// definition handlers needed.
type LanguageServer struct {
	documents map[string]*DocumentState
	mu        sync.RWMutex
	writer    io.Writer
	rootPath  string
}

func NewLanguageServer(writer io.Writer) *LanguageServer {
	if writer == nil {
		writer = os.Stdout
	}
	return &LanguageServer{documents: make(map[string]*DocumentState), writer: writer}
}

// Start reads Content-Length-framed JSON-RPC messages from stdin, the
// teacher's own framing loop in cmd/lsp/server.go verbatim in shape.
func (s *LanguageServer) Start() {
	reader := bufio.NewReader(os.Stdin)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				log.Printf("error reading header: %v", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "Content-Length: ") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(line, "Content-Length: "))
		if err != nil {
			log.Printf("bad Content-Length: %v", err)
			continue
		}
		for {
			sep, err := reader.ReadString('\n')
			if err != nil {
				return
			}
			if strings.TrimRight(sep, "\r\n") == "" {
				break
			}
		}
		content := make([]byte, n)
		if _, err := io.ReadFull(reader, content); err != nil {
			log.Printf("error reading content: %v", err)
			return
		}
		if err := s.handleMessage(content); err != nil {
			log.Printf("error handling message: %v", err)
		}
	}
}

type baseMessage struct {
	Jsonrpc string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func (s *LanguageServer) handleMessage(content []byte) error {
	var base baseMessage
	if err := json.Unmarshal(content, &base); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	if base.ID != nil {
		return s.handleRequest(base)
	}
	return s.handleNotification(base)
}

func (s *LanguageServer) handleRequest(base baseMessage) error {
	switch base.Method {
	case "initialize":
		var params InitializeParams
		json.Unmarshal(base.Params, &params)
		return s.handleInitialize(base.ID, params)
	case "shutdown":
		return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: base.ID, Result: nil})
	case "textDocument/completion":
		var params CompletionParams
		json.Unmarshal(base.Params, &params)
		return s.handleCompletion(base.ID, params)
	default:
		return s.sendResponse(ResponseMessage{
			Jsonrpc: "2.0", ID: base.ID,
			Error: &Error{Code: -32601, Message: fmt.Sprintf("method not found: %s", base.Method)},
		})
	}
}

func (s *LanguageServer) handleNotification(base baseMessage) error {
	switch base.Method {
	case "initialized":
		return nil
	case "textDocument/didOpen":
		var params DidOpenTextDocumentParams
		json.Unmarshal(base.Params, &params)
		return s.handleDidOpen(params)
	case "textDocument/didChange":
		var params DidChangeTextDocumentParams
		json.Unmarshal(base.Params, &params)
		return s.handleDidChange(params)
	case "textDocument/didClose":
		var params DidCloseTextDocumentParams
		json.Unmarshal(base.Params, &params)
		return s.handleDidClose(params)
	case "exit":
		os.Exit(0)
		return nil
	default:
		return nil
	}
}

func (s *LanguageServer) sendResponse(r ResponseMessage) error     { return s.sendMessage(r) }
func (s *LanguageServer) sendNotification(n NotificationMessage) error { return s.sendMessage(n) }

func (s *LanguageServer) sendMessage(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n%s", len(data), data)
	return err
}

func (s *LanguageServer) uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *LanguageServer) handleInitialize(id interface{}, params InitializeParams) error {
	if params.RootURI != nil && *params.RootURI != "" {
		s.rootPath = s.uriToPath(*params.RootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
	}
	result := InitializeResult{Capabilities: ServerCapabilities{
		TextDocumentSync:   1,
		CompletionProvider: &CompletionOptions{},
	}}
	return s.sendResponse(ResponseMessage{Jsonrpc: "2.0", ID: id, Result: result})
}
