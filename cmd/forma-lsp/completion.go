package main

import (
	"sort"

	"github.com/formalang/forma/internal/interp"
	"github.com/formalang/forma/internal/token"
)

// handleCompletion offers every keyword and builtin name regardless of
// cursor context -- no prefix filtering or scope analysis, the cheapest
// useful completion list and a deliberate scope cut from the teacher's own
// handler_completion.go, which additionally ranks by AST scope and receiver
// type.
func (s *LanguageServer) handleCompletion(id interface{}, params CompletionParams) error {
	var items []CompletionItem
	for kw := range token.Keywords {
		items = append(items, CompletionItem{Label: kw, Kind: CompletionItemKeyword})
	}
	for _, name := range interp.BuiltinNames() {
		items = append(items, CompletionItem{Label: name, Kind: CompletionItemFunction})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return s.sendResponse(ResponseMessage{
		Jsonrpc: "2.0", ID: id,
		Result: CompletionList{IsIncomplete: false, Items: items},
	})
}
