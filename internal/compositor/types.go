// Package compositor is the typed wrapper over Hyprland's request/response
// and event-stream sockets (§4.1). It owns Monitor/Workspace caching and
// the reconnect-with-backoff state machine; window enumeration is never
// cached (§4.1 "too volatile").
package compositor

// Handle is the compositor's opaque identifier for a live window (its
// hex "address" in Hyprland's own vocabulary).
type Handle string

// Window is one compositor-tracked window, as returned by ListWindows.
type Window struct {
	Handle    Handle
	Class     string
	Title     string
	Workspace string
	Monitor   string
	PID       int
	Floating  bool
	X, Y      int
	W, H      int
}

// Monitor is a cached compositor monitor record (§3 Monitor Record).
type Monitor struct {
	Name            string
	X, Y            int
	W, H            int
	ReservedTop     int
	ReservedBottom  int
	ReservedLeft    int
	ReservedRight   int
	Scale           float64
	ActiveWorkspace string
	Focused         bool
}

// Usable returns the monitor's geometry minus reserved bars/docks (the
// Geometry Resolver's input rectangle, per the glossary's "usable area").
func (m Monitor) Usable() (x, y, w, h int) {
	x = m.X + m.ReservedLeft
	y = m.Y + m.ReservedTop
	w = m.W - m.ReservedLeft - m.ReservedRight
	h = m.H - m.ReservedTop - m.ReservedBottom
	return
}

// Workspace is a cached compositor workspace record.
type Workspace struct {
	ID      string
	Name    string
	Monitor string
	Special bool
}
