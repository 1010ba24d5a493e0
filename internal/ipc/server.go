// Package ipc implements the Command IPC Server (§4.6): a connection-
// oriented local socket where each connection carries one or more
// newline-framed JSON request/response pairs, serialized in effect on
// shared state through the runtime core's own lock.
package ipc

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

// Dispatcher is the runtime core's verb router, kept behind an interface
// so this package never imports internal/runtime (the same cycle-
// avoidance shape as reload.Reconciler and scratchpad.Siblings).
type Dispatcher interface {
	RouteCommand(ctx context.Context, req wire.Request) wire.Response
}

// Server listens on a unix socket and routes every decoded request to a
// Dispatcher. Failure to bind is the daemon's one fatal startup error
// (§6.6).
type Server struct {
	socketPath string
	dispatcher Dispatcher
	logger     hclog.Logger
}

func NewServer(socketPath string, dispatcher Dispatcher, logger hclog.Logger) *Server {
	return &Server{socketPath: socketPath, dispatcher: dispatcher, logger: logger.Named("ipc")}
}

// Listen binds the listening socket, returning an error immediately on
// failure rather than after Serve starts looping — this is what lets the
// caller treat "can't bind" as the one synchronous, fatal startup error
// (§6.6) instead of racing a background goroutine. A stale socket file
// left behind by an unclean previous shutdown is removed first.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return nil, fmt.Errorf("ipc: create socket directory: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove stale socket", "path", s.socketPath, "error", err)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "unix", s.socketPath)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", s.socketPath, err)
	}
	// Other users on the same host share $XDG_RUNTIME_DIR's parent on some
	// setups; restrict the socket to its owner.
	if err := unix.Chmod(s.socketPath, 0o600); err != nil {
		s.logger.Warn("failed to restrict socket permissions", "path", s.socketPath, "error", err)
	}
	s.logger.Info("listening", "path", s.socketPath)
	return ln, nil
}

// Serve accepts and handles connections on ln until ctx is cancelled, at
// which point it closes ln and returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("ipc: accept: %w", err)
		}
		go s.serveConn(ctx, conn)
	}
}

// Accept binds and serves in one call, for callers (tests, simple
// embedders) that don't need the bind/serve split.
func (s *Server) Accept(ctx context.Context) error {
	ln, err := s.Listen(ctx)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// serveConn handles every request a single client connection sends until
// it disconnects, per §6.1/§6.2's "each connection carries one request and
// one response" baseline, generalized to allow a client to reuse a
// connection for several commands in sequence.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	dec := wire.NewDecoder(conn)
	enc := wire.NewEncoder(conn)

	for {
		req, err := dec.Decode()
		if err != nil {
			return
		}
		resp := s.dispatcher.RouteCommand(ctx, req)
		if err := enc.Encode(resp); err != nil {
			s.logger.Debug("encode response failed, dropping connection", "error", err)
			return
		}
	}
}
