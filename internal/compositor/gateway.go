package compositor

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sort"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/errs"
)

// SignatureEnvVar names the environment variable carrying the daemon's
// session identifier (§6.4), modeled after Hyprland's own
// HYPRLAND_INSTANCE_SIGNATURE.
const SignatureEnvVar = "HYPR_SCRATCH_INSTANCE_SIGNATURE"

// DefaultSocketPaths derives the compositor's request/response and
// event-stream socket paths from $XDG_RUNTIME_DIR and the session
// signature, the ".socket.sock"/".socket2.sock" convention documented on
// New.
func DefaultSocketPaths() (reqPath, eventPath string, err error) {
	sig := os.Getenv(SignatureEnvVar)
	if sig == "" {
		return "", "", fmt.Errorf("%s is not set", SignatureEnvVar)
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = "/tmp"
	}
	base := fmt.Sprintf("%s/hypr/%s", runtimeDir, sig)
	return base + "/.socket.sock", base + "/.socket2.sock", nil
}

// Gateway is the typed wrapper over the compositor's request/response
// socket and event-stream socket (§4.1).
type Gateway struct {
	reqSocketPath   string
	eventSocketPath string
	logger          hclog.Logger

	mu             sync.RWMutex
	monitors       []Monitor
	workspaces     []Workspace
	cacheGen       uint64
	cacheValid     bool
	lastErr        error
	dialRequest    func(ctx context.Context) (net.Conn, error)
	dialEventsSock func(ctx context.Context) (net.Conn, error)
}

// New builds a Gateway for the given Hyprland instance. reqSocketPath and
// eventSocketPath are the two unix sockets Hyprland exposes per instance
// (conventionally `.socket.sock` and `.socket2.sock` under the runtime
// directory derived from the session signature, §6.4).
func New(reqSocketPath, eventSocketPath string, logger hclog.Logger) *Gateway {
	g := &Gateway{
		reqSocketPath:   reqSocketPath,
		eventSocketPath: eventSocketPath,
		logger:          logger.Named("gateway"),
	}
	g.dialRequest = func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", g.reqSocketPath)
	}
	g.dialEventsSock = func(ctx context.Context) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", g.eventSocketPath)
	}
	return g
}

// NewWithDialers builds a Gateway from explicit dial functions instead of
// socket paths, letting other packages' tests exercise it over an
// in-memory connection (e.g. net.Pipe) instead of a real compositor.
func NewWithDialers(dialRequest, dialEventsSock func(ctx context.Context) (net.Conn, error), logger hclog.Logger) *Gateway {
	return &Gateway{
		dialRequest:    dialRequest,
		dialEventsSock: dialEventsSock,
		logger:         logger.Named("gateway"),
	}
}

// request sends raw to the request socket and returns its full response.
// Each request is its own short-lived connection, matching Hyprland's own
// request-socket protocol.
func (g *Gateway) request(ctx context.Context, raw string) ([]byte, error) {
	conn, err := g.dialRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.GatewayUnavailable, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if _, err := conn.Write([]byte(raw)); err != nil {
		return nil, fmt.Errorf("%w: write: %v", errs.GatewayUnavailable, err)
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	return buf, nil
}

// ListWindows enumerates all windows, ordered by compositor-assigned
// address (§4.1 contract). Never cached: too volatile.
func (g *Gateway) ListWindows(ctx context.Context) ([]Window, error) {
	raw, err := g.request(ctx, "j/clients")
	if err != nil {
		return nil, err
	}
	var parsed []hyprClient
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("compositor: parse clients: %w", err)
	}
	windows := make([]Window, 0, len(parsed))
	for _, c := range parsed {
		windows = append(windows, c.toWindow())
	}
	// Addresses are hex without leading zeros, so a shorter address is a
	// smaller one; equal lengths compare lexically.
	sort.Slice(windows, func(i, j int) bool {
		a, b := windows[i].Handle, windows[j].Handle
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	return windows, nil
}

// Monitors returns the cached monitor list, refreshing it on first use.
func (g *Gateway) Monitors(ctx context.Context) ([]Monitor, error) {
	g.mu.RLock()
	if g.cacheValid {
		defer g.mu.RUnlock()
		return g.monitors, nil
	}
	g.mu.RUnlock()
	return g.refreshCache(ctx)
}

// Workspaces returns the cached workspace list, refreshing it on first use.
func (g *Gateway) Workspaces(ctx context.Context) ([]Workspace, error) {
	g.mu.RLock()
	if g.cacheValid {
		defer g.mu.RUnlock()
		return g.workspaces, nil
	}
	g.mu.RUnlock()
	return func() ([]Workspace, error) {
		if _, err := g.refreshCache(ctx); err != nil {
			return nil, err
		}
		g.mu.RLock()
		defer g.mu.RUnlock()
		return g.workspaces, nil
	}()
}

// CacheGeneration returns the monotonic counter incremented whenever a
// monitor/workspace mutating event invalidates the cache (§3 Monitor
// Record, §4.2's fingerprint input).
func (g *Gateway) CacheGeneration() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cacheGen
}

func (g *Gateway) refreshCache(ctx context.Context) ([]Monitor, error) {
	rawMon, err := g.request(ctx, "j/monitors")
	if err != nil {
		return nil, err
	}
	var parsedMon []hyprMonitor
	if err := json.Unmarshal(rawMon, &parsedMon); err != nil {
		return nil, fmt.Errorf("compositor: parse monitors: %w", err)
	}

	rawWs, err := g.request(ctx, "j/workspaces")
	if err != nil {
		return nil, err
	}
	var parsedWs []hyprWorkspace
	if err := json.Unmarshal(rawWs, &parsedWs); err != nil {
		return nil, fmt.Errorf("compositor: parse workspaces: %w", err)
	}

	monitors := make([]Monitor, 0, len(parsedMon))
	for _, m := range parsedMon {
		monitors = append(monitors, m.toMonitor())
	}
	workspaces := make([]Workspace, 0, len(parsedWs))
	for _, w := range parsedWs {
		workspaces = append(workspaces, w.toWorkspace())
	}

	g.mu.Lock()
	g.monitors = monitors
	g.workspaces = workspaces
	g.cacheValid = true
	g.cacheGen++
	g.mu.Unlock()
	return monitors, nil
}

// invalidateCache marks the monitor/workspace cache dirty. Called by the
// event consumer whenever a monitor/workspace mutating event arrives.
func (g *Gateway) invalidateCache() {
	g.mu.Lock()
	g.cacheValid = false
	g.cacheGen++
	g.mu.Unlock()
}

// Dispatch sends a tagged op to the compositor. Best-effort: returns once
// the compositor acknowledges, not once visually effective.
func (g *Gateway) Dispatch(ctx context.Context, op Op) error {
	line, err := op.render()
	if err != nil {
		return err
	}
	resp, err := g.request(ctx, line)
	if err != nil {
		return err
	}
	g.logger.Trace("dispatch", "op", line, "response", string(resp))
	return nil
}

// eventBufferSize bounds the event channel (§5 Backpressure: e.g. 256).
const eventBufferSize = 256

// SubscribeEvents returns a channel delivering events in compositor
// order. The gateway manages reconnection internally; on an
// unrecoverable disconnect the channel is closed after one final
// EventReconnected-less error is logged and GatewayUnavailable is
// recorded, retrievable from Err().
func (g *Gateway) SubscribeEvents(ctx context.Context) (<-chan Event, error) {
	out := make(chan Event, eventBufferSize)
	go g.pumpEvents(ctx, out)
	return out, nil
}

// Err returns the error that made the background event pump give up and
// close its channel, or nil if the pump is still running (or was never
// started, or stopped because ctx was cancelled).
func (g *Gateway) Err() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastErr
}

func (g *Gateway) setErr(err error) {
	g.mu.Lock()
	g.lastErr = err
	g.mu.Unlock()
}

func (g *Gateway) pumpEvents(ctx context.Context, out chan<- Event) {
	defer close(out)
	bo := newBackoff()
	generation := uint64(0)

	for {
		if ctx.Err() != nil {
			return
		}
		conn, err := g.dialEventsSock(ctx)
		if err != nil {
			delay, ok := bo.next()
			if !ok {
				g.logger.Error("event socket unavailable, giving up", "error", err)
				g.setErr(fmt.Errorf("%w: %v", errs.GatewayUnavailable, err))
				return
			}
			g.logger.Warn("event socket dial failed, retrying", "delay", delay, "error", err)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return
			}
		}

		bo.reset()
		generation++
		g.invalidateCache()
		select {
		case out <- Reconnected(generation):
		case <-ctx.Done():
			conn.Close()
			return
		}

		g.readEvents(ctx, conn, out)
		conn.Close()
		if ctx.Err() != nil {
			return
		}
	}
}

// readEvents drains one connection's lines until it closes or errors,
// forwarding parsed events and invalidating the monitor/workspace cache
// whenever a mutating event kind arrives. If the consumer falls behind
// longer than the bounded buffer allows, the send is dropped and a resync
// (synthetic EventReconnected) is queued once room frees up, per §5
// Backpressure.
func (g *Gateway) readEvents(ctx context.Context, conn net.Conn, out chan<- Event) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	droppedSinceResync := false
	generation := uint64(0)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		ev := ParseEvent(scanner.Text())
		switch ev.Kind {
		case EventMonitorAdded, EventMonitorRemoved, EventWorkspace:
			g.invalidateCache()
		}

		select {
		case out <- ev:
		default:
			droppedSinceResync = true
			g.logger.Warn("event buffer full, dropping event", "kind", ev.Kind)
		}

		if droppedSinceResync {
			generation++
			g.invalidateCache()
			select {
			case out <- Reconnected(generation):
				droppedSinceResync = false
			default:
				// still full; try again on the next iteration
			}
		}
	}
}

// --- hyprctl JSON wire shapes ---

type hyprClient struct {
	Address   string `json:"address"`
	Class     string `json:"class"`
	Title     string `json:"title"`
	Pid       int    `json:"pid"`
	Floating  bool   `json:"floating"`
	Monitor   int    `json:"monitor"`
	Workspace struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"workspace"`
	At   [2]int `json:"at"`
	Size [2]int `json:"size"`
}

func (c hyprClient) toWindow() Window {
	return Window{
		Handle:    Handle(c.Address),
		Class:     c.Class,
		Title:     c.Title,
		Workspace: c.Workspace.Name,
		PID:       c.Pid,
		Floating:  c.Floating,
		X:         c.At[0],
		Y:         c.At[1],
		W:         c.Size[0],
		H:         c.Size[1],
	}
}

type hyprMonitor struct {
	Name          string  `json:"name"`
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	Scale         float64 `json:"scale"`
	ActiveWS      struct {
		Name string `json:"name"`
	} `json:"activeWorkspace"`
	Focused      bool `json:"focused"`
	ReservedArea [4]int `json:"reserved"`
}

func (m hyprMonitor) toMonitor() Monitor {
	return Monitor{
		Name:            m.Name,
		X:               m.X,
		Y:               m.Y,
		W:               m.Width,
		H:               m.Height,
		Scale:           m.Scale,
		ActiveWorkspace: m.ActiveWS.Name,
		Focused:         m.Focused,
		ReservedTop:     m.ReservedArea[0],
		ReservedBottom:  m.ReservedArea[1],
		ReservedLeft:    m.ReservedArea[2],
		ReservedRight:   m.ReservedArea[3],
	}
}

type hyprWorkspace struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Monitor string `json:"monitor"`
}

func (w hyprWorkspace) toWorkspace() Workspace {
	return Workspace{
		ID:      fmt.Sprintf("%d", w.ID),
		Name:    w.Name,
		Monitor: w.Monitor,
		Special: w.ID < 0,
	}
}
