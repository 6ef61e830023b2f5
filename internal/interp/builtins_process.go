package interp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// processBuiltins covers host process control: spawning a subprocess and
// reading/writing the environment the running program sees. Grounded on the
// teacher's builtins_io.go, which wraps os/exec the same bare way rather
// than through a shell.
func processBuiltins() map[string]func(i *Interp, args []Value) (Value, error) {
	return map[string]func(i *Interp, args []Value) (Value, error){
		"exec_command": func(i *Interp, args []Value) (Value, error) {
			if len(args) < 1 {
				return nil, fmt.Errorf("exec_command() takes (Str command, Str... args)")
			}
			name, ok := args[0].(Str)
			if !ok {
				return nil, fmt.Errorf("exec_command() first argument must be a Str")
			}
			argv := make([]string, 0, len(args)-1)
			for _, a := range args[1:] {
				s, ok := a.(Str)
				if !ok {
					return nil, fmt.Errorf("exec_command() arguments must be Str")
				}
				argv = append(argv, s.V)
			}
			cmd := exec.Command(name.V, argv...)
			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr
			runErr := cmd.Run()
			exitCode := 0
			if runErr != nil {
				if exitErr, ok := runErr.(*exec.ExitError); ok {
					exitCode = exitErr.ExitCode()
				} else {
					return nil, newErr(ErrHostFailure, token0(), "exec_command(%q): %v", name.V, runErr)
				}
			}
			return Struct{TypeName: "ProcessResult", Fields: map[string]Value{
				"exit_code": Int{V: int64(exitCode)},
				"stdout":    Str{V: stdout.String()},
				"stderr":    Str{V: stderr.String()},
			}}, nil
		},
		"env_get": func(i *Interp, args []Value) (Value, error) {
			name, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("env_get() takes one Str argument")
			}
			v, found := os.LookupEnv(name)
			if !found {
				return None{}, nil
			}
			return Str{V: v}, nil
		},
		"env_set": func(i *Interp, args []Value) (Value, error) {
			name, value, ok := twoStrArgs(args)
			if !ok {
				return nil, fmt.Errorf("env_set() takes (Str, Str)")
			}
			if err := os.Setenv(name, value); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "env_set(%q): %v", name, err)
			}
			return Unit{}, nil
		},
		"env_args": func(i *Interp, args []Value) (Value, error) {
			elems := make([]Value, len(os.Args))
			for idx, a := range os.Args {
				elems[idx] = Str{V: a}
			}
			return List{Elements: elems}, nil
		},
	}
}
