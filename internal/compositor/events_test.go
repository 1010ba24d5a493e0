package compositor

import "testing"

func TestParseEventTitleWithCommas(t *testing.T) {
	line := "activewindowv2>>0x55d3a1,vim: main.go, line 12, col 3"
	ev := ParseEvent(line)
	if ev.Kind != EventActiveWindow {
		t.Fatalf("kind = %q, want %q", ev.Kind, EventActiveWindow)
	}
	if len(ev.Fields) != 2 {
		t.Fatalf("fields = %v, want 2 fields", ev.Fields)
	}
	if ev.Fields[0] != "0x55d3a1" {
		t.Errorf("fields[0] = %q, want address", ev.Fields[0])
	}
	if ev.Fields[1] != "vim: main.go, line 12, col 3" {
		t.Errorf("fields[1] = %q, want the whole remaining title untouched", ev.Fields[1])
	}
}

func TestParseEventUnknownKindForwarded(t *testing.T) {
	ev := ParseEvent("somebrandnewevent>>a,b,c")
	if ev.Kind != EventUnknown {
		t.Fatalf("kind = %q, want %q", ev.Kind, EventUnknown)
	}
	if ev.Fields[0] != "a,b,c" {
		t.Errorf("unknown kind should keep payload verbatim, got %q", ev.Fields[0])
	}
}

func TestParseEventNoDelimiter(t *testing.T) {
	ev := ParseEvent("garbage-line-without-delimiter")
	if ev.Kind != EventUnknown {
		t.Fatalf("kind = %q, want %q", ev.Kind, EventUnknown)
	}
}

func TestSplitFieldsShortPayload(t *testing.T) {
	fields := splitFields("onlyone", 3)
	if len(fields) != 3 {
		t.Fatalf("fields = %v, want padded to 3", fields)
	}
	if fields[0] != "onlyone" || fields[1] != "" || fields[2] != "" {
		t.Errorf("fields = %v, want [\"onlyone\", \"\", \"\"]", fields)
	}
}
