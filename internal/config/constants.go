// Package config holds process-wide constants and mode flags shared across
// the compiler pipeline: source file conventions, capability names, and the
// handful of mutable flags that test harnesses and the LSP server toggle at
// startup.
package config

// Version is the current FORMA compiler version.
var Version = "0.1.0"

const SourceFileExt = ".forma"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".forma", ".frm"}

// TrimSourceExt removes any recognized source extension from a filename.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates the process is running under `go test`. Nothing in
// this module sets or reads it.
var IsTestMode = false

// IsLSPMode indicates the process is running as the forma-lsp server (set
// by cmd/forma-lsp's main).
var IsLSPMode = false

// Capability names gate privileged builtins. The mapping from builtin name to
// required capability is centralized in internal/interp/capability.go; this
// list is the canonical vocabulary of capability names.
const (
	CapRead    = "read"
	CapWrite   = "write"
	CapNetwork = "network"
	CapExec    = "exec"
	CapEnv     = "env"
	CapUnsafe  = "unsafe"
	CapDB      = "db"
)

// AllCapabilities lists every capability name in a stable order, used by
// the driver to validate the capability grants in forma.toml.
var AllCapabilities = []string{CapRead, CapWrite, CapNetwork, CapExec, CapEnv, CapUnsafe, CapDB}

// Contextual keyword lexemes. The lexer emits these as plain identifiers
// carrying MayBeKeyword=true; the parser commits to the keyword reading only
// when its follow-set matches a declaration start.
const (
	KeywordF = "f" // function
	KeywordS = "s" // struct
	KeywordE = "e" // enum
	KeywordT = "t" // trait
	KeywordI = "i" // impl
	KeywordM = "m" // module (`mod`)
)

// Default limits for the contract-evaluation corpus runner (`verify`).
const (
	DefaultVerifyExamples = 20
	DefaultVerifyMaxSteps = 100000
	DefaultVerifyTimeoutMS = 5000
)
