package interp

// Capability names one side effect a running program may be granted, the
// runtime enforcement counterpart to spec §8's capability manifest.
type Capability string

const (
	CapRead    Capability = "read"
	CapWrite   Capability = "write"
	CapNetwork Capability = "network"
	CapExec    Capability = "exec"
	CapEnv     Capability = "env"
	CapUnsafe  Capability = "unsafe"
	CapDb      Capability = "db"
)

// CapabilitySet tracks which capabilities a run has been granted.
type CapabilitySet map[Capability]bool

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	s := CapabilitySet{}
	for _, c := range caps {
		s[c] = true
	}
	return s
}

func (s CapabilitySet) Has(c Capability) bool { return s[c] }

// builtinCapability maps a builtin name to the capability it requires, the
// single source of truth the registry consults before running one of the
// registered builtins; builtins absent from this table are pure.
var builtinCapability = map[string]Capability{
	"read_file":         CapRead,
	"read_line":         CapRead,
	"write_file":        CapWrite,
	"append_file":       CapWrite,
	"print":             CapWrite,
	"println":           CapWrite,
	"eprint":            CapWrite,
	"eprintln":          CapWrite,
	"tcp_connect":       CapNetwork,
	"tcp_listen":        CapNetwork,
	"tcp_accept":        CapNetwork,
	"tcp_send":          CapNetwork,
	"tcp_recv_line":     CapNetwork,
	"tcp_close":         CapNetwork,
	"http_get":          CapNetwork,
	"http_post":         CapNetwork,
	"rpc_connect":       CapNetwork,
	"rpc_call":          CapNetwork,
	"exec_command":      CapExec,
	"env_get":           CapEnv,
	"env_set":           CapEnv,
	"env_args":          CapEnv,
	"unsafe_cast":       CapUnsafe,
	"db_open":           CapDb,
	"db_query":          CapDb,
	"db_exec":           CapDb,
	"db_close":          CapDb,
	"file_exists":       CapRead,
	"remove_file":       CapWrite,
	"rpc_load_proto":    CapRead,
}

// RequiredCapability reports the capability a builtin needs, if any.
func RequiredCapability(name string) (Capability, bool) {
	c, ok := builtinCapability[name]
	return c, ok
}
