package compositor

import "strings"

// EventKind identifies one of the compositor's event-stream event names.
// Unknown kinds are forwarded as EventUnknown and skipped by downstream
// consumers per §4.1 ("unknown event kinds are forwarded as opaque").
type EventKind string

const (
	EventWindowOpened    EventKind = "openwindow"
	EventWindowClosed    EventKind = "closewindow"
	EventWindowMoved     EventKind = "movewindow"
	EventWindowTitle     EventKind = "windowtitle"
	EventWorkspace       EventKind = "workspace"
	EventMonitorAdded    EventKind = "monitoradded"
	EventMonitorRemoved  EventKind = "monitorremoved"
	EventActiveWindow    EventKind = "activewindowv2"
	EventFocusedMonitor  EventKind = "focusedmon"
	EventUrgent          EventKind = "urgent"
	EventMouseMove       EventKind = "mousemove"
	EventReconnected     EventKind = "__reconnected" // synthetic, never on the wire
	EventUnknown         EventKind = "__unknown"
)

// fieldCounts gives the known field count N for each event kind we split
// eagerly, per §4.1: "Parser treats the first N-1 commas as field
// separators where N is the known field count for that event kind". Kinds
// with a trailing free-text field (titles) always list it last so the
// parser takes "the remainder" for it instead of splitting further.
var fieldCounts = map[EventKind]int{
	EventWindowOpened:   4, // addr,ws,class,title
	EventWindowClosed:   1, // addr
	EventWindowMoved:    2, // addr,ws
	EventWindowTitle:    2, // addr,title
	EventWorkspace:      1, // name
	EventMonitorAdded:   1, // name
	EventMonitorRemoved: 1, // name
	EventActiveWindow:   2, // addr,title
	EventFocusedMonitor: 2, // monitor,ws
	EventUrgent:         1, // addr
	EventMouseMove:      1, // x,y combined as one free field
}

// Event is one parsed line from the event-stream socket.
type Event struct {
	Kind       EventKind
	Fields     []string
	Raw        string
	Generation uint64 // only meaningful for EventReconnected
}

// ParseEvent parses one "NAME>>PAYLOAD" line. Payload fields are comma
// separated, but a field carrying free text (a window title) may itself
// contain commas; ParseEvent takes the first N-1 commas as separators and
// the remainder verbatim as the last field, where N is the known field
// count for kind. Unknown kinds keep the payload as a single opaque field.
func ParseEvent(line string) Event {
	name, payload, ok := strings.Cut(line, ">>")
	if !ok {
		return Event{Kind: EventUnknown, Raw: line, Fields: []string{line}}
	}
	kind := EventKind(name)
	n, known := fieldCounts[kind]
	if !known {
		return Event{Kind: EventUnknown, Raw: line, Fields: []string{payload}}
	}
	return Event{Kind: kind, Raw: line, Fields: splitFields(payload, n)}
}

// splitFields splits payload into exactly n fields, taking the first n-1
// commas as separators and leaving the remainder (which may itself contain
// commas) as the last field.
func splitFields(payload string, n int) []string {
	if n <= 1 {
		return []string{payload}
	}
	fields := make([]string, 0, n)
	rest := payload
	for i := 0; i < n-1; i++ {
		idx := strings.IndexByte(rest, ',')
		if idx < 0 {
			fields = append(fields, rest)
			rest = ""
			// Pad any remaining fields the line didn't actually carry.
			for len(fields) < n {
				fields = append(fields, "")
			}
			return fields
		}
		fields = append(fields, rest[:idx])
		rest = rest[idx+1:]
	}
	fields = append(fields, rest)
	return fields
}

// Reconnected builds the synthetic ReconnectedWithGeneration(n) event
// emitted after a successful reconnect or a backpressure-triggered resync
// (§4.1, §5 "Backpressure").
func Reconnected(generation uint64) Event {
	return Event{Kind: EventReconnected, Generation: generation}
}
