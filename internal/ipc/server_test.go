package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

type echoDispatcher struct{}

func (echoDispatcher) RouteCommand(_ context.Context, req wire.Request) wire.Response {
	return wire.OK(req.ID, req.Verb+" ok", nil)
}

// dialRetrying dials sockPath, retrying briefly while the server goroutine
// finishes binding the listener.
func dialRetrying(t *testing.T, sockPath string) net.Conn {
	t.Helper()
	var conn net.Conn
	var err error
	for i := 0; i < 200; i++ {
		conn, err = net.Dial("unix", sockPath)
		if err == nil {
			return conn
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("dial %s: %v", sockPath, err)
	return nil
}

// readResponse reads one newline-framed JSON response, the client side's
// counterpart to wire.Decoder (which only decodes Requests, the daemon's
// own inbound shape).
func readResponse(r *bufio.Reader) (wire.Response, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return wire.Response{}, err
	}
	var resp wire.Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return wire.Response{}, err
	}
	return resp, nil
}

func TestServerRoundTripsOneRequest(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "sub", "hyprplug.sock")
	srv := NewServer(sockPath, echoDispatcher{}, hclog.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Accept(ctx)

	conn := dialRetrying(t, sockPath)
	defer conn.Close()
	r := bufio.NewReader(conn)

	if _, err := conn.Write([]byte(`{"id":"1","verb":"toggle","args":["term"]}` + "\n")); err != nil {
		t.Fatalf("write request: %v", err)
	}

	resp, err := readResponse(r)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.ID != "1" {
		t.Errorf("id = %q, want %q", resp.ID, "1")
	}
	if !resp.OK {
		t.Fatalf("resp.OK = false, want true")
	}
	if resp.Text != "toggle ok" {
		t.Errorf("text = %q, want %q", resp.Text, "toggle ok")
	}
}

func TestServerMultipleRequestsOnOneConnection(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "hyprplug.sock")
	srv := NewServer(sockPath, echoDispatcher{}, hclog.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Accept(ctx)

	conn := dialRetrying(t, sockPath)
	defer conn.Close()
	r := bufio.NewReader(conn)

	for _, verb := range []string{"list", "status"} {
		if _, err := conn.Write([]byte(`{"id":"x","verb":"` + verb + `","args":[]}` + "\n")); err != nil {
			t.Fatalf("write: %v", err)
		}
		resp, err := readResponse(r)
		if err != nil {
			t.Fatalf("read response: %v", err)
		}
		if resp.Text != verb+" ok" {
			t.Errorf("text = %q, want %q", resp.Text, verb+" ok")
		}
	}
}

func TestServerClosesListenerOnContextCancel(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "hyprplug.sock")
	srv := NewServer(sockPath, echoDispatcher{}, hclog.NewNullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Accept(ctx) }()

	// Make sure the listener is up before cancelling.
	conn := dialRetrying(t, sockPath)
	conn.Close()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Accept returned error on graceful cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Accept did not return after context cancellation")
	}
}
