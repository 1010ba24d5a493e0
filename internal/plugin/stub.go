package plugin

import (
	"context"
	"fmt"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

// Stub stands in for an auxiliary plugin whose behavior is specified only
// by its verb-router interface (§1's "deliberately out of scope" list):
// expose, wallpapers, magnify, lost-windows, shift-monitors,
// toggle-special, workspaces-follow-focus. It claims its verbs so `list`
// and routing behave correctly end-to-end, and reports plainly that the
// behavior lives outside this build.
type Stub struct {
	name  string
	verbs map[string]struct{}
}

// NewStub builds a collaborator stand-in named name that claims verbs.
func NewStub(name string, verbs ...string) *Stub {
	set := make(map[string]struct{}, len(verbs))
	for _, v := range verbs {
		set[v] = struct{}{}
	}
	return &Stub{name: name, verbs: set}
}

func (s *Stub) Name() string { return s.name }

func (s *Stub) Handles(verb string) bool {
	_, ok := s.verbs[verb]
	return ok
}

func (s *Stub) Handle(_ context.Context, verb string, _ []string) (wire.Response, error) {
	return wire.Response{
		OK:   false,
		Text: fmt.Sprintf("%s: not implemented in this build", verb),
	}, nil
}

// DefaultStubs returns the eight out-of-scope auxiliary plugins, verb
// lists taken directly from §6.1 / the teacher client's help text.
func DefaultStubs() []Plugin {
	return []Plugin{
		NewStub("expose", "expose"),
		NewStub("wallpapers", "wall"),
		NewStub("magnify", "zoom"),
		NewStub("lost_windows", "attract_lost"),
		NewStub("shift_monitors", "shift_monitors"),
		NewStub("toggle_special", "toggle_special"),
		NewStub("workspaces_follow_focus", "change_workspace"),
		NewStub("monitors", "relayout", "monitors"),
	}
}
