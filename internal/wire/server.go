package wire

import (
	"net"

	"quotefeed/internal/exception"
)

// Server listens for TCP subscriber connections, following the same
// Listen/Accept/Close lifecycle the fleet's Unix-domain-socket server uses.
type Server struct {
	addr string
	ln   net.Listener
}

// NewServer creates a server for the given TCP address (e.g. ":7777").
func NewServer(addr string) (*Server, error) {
	if addr == "" {
		return nil, exception.ErrEmptyName
	}
	return &Server{addr: addr}, nil
}

// Addr returns the listener's actual bound address once Listen has
// succeeded, or the configured address otherwise (useful for ":0" ports
// resolved at listen time).
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Listen starts listening on the configured address.
func (s *Server) Listen() error {
	if s.ln != nil {
		return nil
	}
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	return nil
}

// Accept waits for the next incoming subscriber connection.
func (s *Server) Accept() (net.Conn, error) {
	if s.ln == nil {
		return nil, exception.ErrNotListening
	}
	return s.ln.Accept()
}

// Close stops the listener.
func (s *Server) Close() error {
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	s.ln = nil
	return err
}
