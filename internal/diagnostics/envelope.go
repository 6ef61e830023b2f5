package diagnostics

import (
	"encoding/json"
)

// JSONError is one entry of the error JSON envelope (spec §6).
type JSONError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	File    string      `json:"file,omitempty"`
	Line    int         `json:"line,omitempty"`
	Column  int         `json:"column,omitempty"`
	Span    *JSONSpan   `json:"span,omitempty"`
	Help    string      `json:"help,omitempty"`
}

type JSONSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Envelope is the top-level JSON document `forma check --json` prints. No
// other verb emits it, and load or I/O failures are reported as plain text
// even under `check --json`. Never emitted with an empty body on a nonzero
// exit (spec §6).
type Envelope struct {
	Success  bool        `json:"success"`
	Errors   []JSONError `json:"errors"`
	Warnings []JSONError `json:"warnings"`
}

func toJSONError(d Diagnostic) JSONError {
	je := JSONError{
		Code:    d.Code,
		Message: d.Message,
		File:    d.File,
		Line:    d.Primary.Start.Line,
		Column:  d.Primary.Start.Column,
		Help:    d.Help,
	}
	if d.Primary.Start.Offset != 0 || d.Primary.End.Offset != 0 {
		je.Span = &JSONSpan{Start: d.Primary.Start.Offset, End: d.Primary.End.Offset}
	}
	return je
}

// NewEnvelope builds an Envelope from a diagnostic bag.
func NewEnvelope(b *Bag) Envelope {
	env := Envelope{Success: !b.HasErrors()}
	for _, d := range b.Errors() {
		env.Errors = append(env.Errors, toJSONError(d))
	}
	for _, d := range b.Warnings() {
		env.Warnings = append(env.Warnings, toJSONError(d))
	}
	if env.Errors == nil {
		env.Errors = []JSONError{}
	}
	if env.Warnings == nil {
		env.Warnings = []JSONError{}
	}
	return env
}

// Marshal renders the envelope as indented JSON.
func (e Envelope) Marshal() ([]byte, error) {
	return json.MarshalIndent(e, "", "  ")
}
