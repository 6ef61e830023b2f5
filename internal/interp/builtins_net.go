package interp

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// socket is the payload behind SocketVal: an open net.Conn (the client side
// of tcp_connect) or a net.Listener handed off to tcp_listen's accept loop.
type socket struct {
	id   string
	conn net.Conn
	ln   net.Listener
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// netBuiltins covers FORMA's `std.net`/`std.http` surface: raw TCP dialing
// and listening plus the two HTTP verbs the capability manifest names.
// Grounded on the teacher's builtins_http.go, which keeps a single shared
// *http.Client at package scope rather than dialing fresh per call.
func netBuiltins() map[string]func(i *Interp, args []Value) (Value, error) {
	return map[string]func(i *Interp, args []Value) (Value, error){
		"tcp_connect": func(i *Interp, args []Value) (Value, error) {
			addr, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("tcp_connect() takes one Str address")
			}
			conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "tcp_connect(%q): %v", addr, err)
			}
			return Opaque{Tag: SocketVal, Data: &socket{id: uuid.NewString(), conn: conn}}, nil
		},
		"tcp_listen": func(i *Interp, args []Value) (Value, error) {
			addr, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("tcp_listen() takes one Str address")
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "tcp_listen(%q): %v", addr, err)
			}
			return Opaque{Tag: SocketVal, Data: &socket{id: uuid.NewString(), ln: ln}}, nil
		},
		"tcp_accept": func(i *Interp, args []Value) (Value, error) {
			s, ok := socketArg(args, 0)
			if !ok || s.ln == nil {
				return nil, fmt.Errorf("tcp_accept() takes a listening Socket")
			}
			conn, err := s.ln.Accept()
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "tcp_accept: %v", err)
			}
			return Opaque{Tag: SocketVal, Data: &socket{id: uuid.NewString(), conn: conn}}, nil
		},
		"tcp_send": func(i *Interp, args []Value) (Value, error) {
			s, ok := socketArg(args, 0)
			if !ok || s.conn == nil || len(args) != 2 {
				return nil, fmt.Errorf("tcp_send() takes (Socket, Str)")
			}
			data, ok := args[1].(Str)
			if !ok {
				return nil, fmt.Errorf("tcp_send() second argument must be a Str")
			}
			if _, err := s.conn.Write([]byte(data.V)); err != nil {
				return nil, newErr(ErrHostFailure, token0(), "tcp_send: %v", err)
			}
			return Unit{}, nil
		},
		"tcp_recv_line": func(i *Interp, args []Value) (Value, error) {
			s, ok := socketArg(args, 0)
			if !ok || s.conn == nil {
				return nil, fmt.Errorf("tcp_recv_line() takes a connected Socket")
			}
			line, err := bufio.NewReader(s.conn).ReadString('\n')
			if err != nil && line == "" {
				return None{}, nil
			}
			return Str{V: strings.TrimRight(line, "\r\n")}, nil
		},
		"tcp_close": func(i *Interp, args []Value) (Value, error) {
			s, ok := socketArg(args, 0)
			if !ok {
				return nil, fmt.Errorf("tcp_close() takes a Socket")
			}
			if s.conn != nil {
				s.conn.Close()
			}
			if s.ln != nil {
				s.ln.Close()
			}
			return Unit{}, nil
		},
		"http_get": func(i *Interp, args []Value) (Value, error) {
			url, ok := oneStrArg(args)
			if !ok {
				return nil, fmt.Errorf("http_get() takes one Str URL")
			}
			resp, err := httpClient.Get(url)
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "http_get(%q): %v", url, err)
			}
			return httpResponseValue(resp)
		},
		"http_post": func(i *Interp, args []Value) (Value, error) {
			if len(args) != 3 {
				return nil, fmt.Errorf("http_post() takes (Str url, Str contentType, Str body)")
			}
			url, ok1 := args[0].(Str)
			contentType, ok2 := args[1].(Str)
			body, ok3 := args[2].(Str)
			if !ok1 || !ok2 || !ok3 {
				return nil, fmt.Errorf("http_post() requires (Str, Str, Str)")
			}
			resp, err := httpClient.Post(url.V, contentType.V, strings.NewReader(body.V))
			if err != nil {
				return nil, newErr(ErrHostFailure, token0(), "http_post(%q): %v", url.V, err)
			}
			return httpResponseValue(resp)
		},
	}
}

func httpResponseValue(resp *http.Response) (Value, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newErr(ErrHostFailure, token0(), "reading response body: %v", err)
	}
	return Struct{TypeName: "HttpResponse", Fields: map[string]Value{
		"status": Int{V: int64(resp.StatusCode)},
		"body":   Str{V: string(data)},
	}}, nil
}

func socketArg(args []Value, idx int) (*socket, bool) {
	if idx >= len(args) {
		return nil, false
	}
	op, ok := args[idx].(Opaque)
	if !ok || op.Tag != SocketVal {
		return nil, false
	}
	s, ok := op.Data.(*socket)
	return s, ok
}
