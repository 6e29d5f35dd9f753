package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"timeline.znkr.io/demo/source"
	"timeline.znkr.io/demo/store"
)

// Request carries a command from the page to the goroutine that owns the source. The owner must
// send exactly one value on Reply.
type Request struct {
	Cmd   source.Command
	Reply chan<- error
}

// Server serves the snapshots of a single source via HTTP.
type Server struct {
	http    *http.Server
	handler *handler
	errc    chan error
}

// Run creates a new server and runs it in a new goroutine. The page always shows the latest
// snapshot in st, commands triggered on the page are sent to cmds.
func Run(addr string, st *store.Store[source.Snapshot], cmds chan<- Request) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting HTTP server: %v", err)
	}

	h := newHandler(st, cmds)
	s := &Server{
		http: &http.Server{
			Handler: h,
		},
		handler: h,
		errc:    make(chan error, 1),
	}
	s.http.RegisterOnShutdown(h.shutdown)

	go func() {
		if err := s.http.Serve(l); err != nil && err != http.ErrServerClosed {
			s.errc <- err
		}
	}()

	return s, nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %v", err)
	}
	return nil
}

// Error returns a channel to listen to errors while serving.
func (s *Server) Error() <-chan error {
	return s.errc
}
