// Package scratchpad implements the per-scratchpad state machine: spawn,
// match, show, hide, toggle, unfocus-with-hysteresis, multi-instance,
// excludes/restore (§4.3, the hard core of the daemon).
package scratchpad

import (
	"sync"
	"time"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
)

// Phase is one state in the per-scratchpad machine (§4.3).
type Phase int

const (
	Dormant Phase = iota
	Spawning
	Showing
	Shown
	Hiding
	Hidden
	Destroyed
)

func (p Phase) String() string {
	switch p {
	case Dormant:
		return "dormant"
	case Spawning:
		return "spawning"
	case Showing:
		return "showing"
	case Shown:
		return "shown"
	case Hiding:
		return "hiding"
	case Hidden:
		return "hidden"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Instance is one live Window Instance owned by a scratchpad (§3).
type Instance struct {
	Handle  compositor.Handle
	Visible bool
	X, Y, W, H int
	Monitor string
}

// spawnAttempt correlates a spawn request to the window(s) it produces:
// preferentially by process id, falling back to temporal proximity within
// the spawn timeout window (§4.3 "Class auto-detection", §9 Open
// Questions — the known race is recorded, not resolved differently).
type spawnAttempt struct {
	pid       int
	startedAt time.Time
	deadline  time.Time
	token     string
	result    chan error // closed/sent exactly once, by match or timeout
}

// State is one mutable Scratchpad State (§3). All fields are guarded by
// mu; callers must hold mu for the duration of any transition, and must
// release it before calling into the compositor gateway (§5 lock-ordering
// rule) — Engine methods do this internally.
type State struct {
	mu sync.Mutex

	Def   config.Definition
	Phase Phase

	Instances         []*Instance
	LastFocusedBefore compositor.Handle // for restore_focus
	autoDetectedClass string
	excludedHidden    []string // names hidden by our own excludes, for restoration

	hideTimer  *cancelableTimer
	spawnTimer *cancelableTimer
	pendingSpawn *spawnAttempt

	inflight bool
	token    string
}

// NewState builds a fresh Dormant state for def.
func NewState(def config.Definition) *State {
	return &State{Def: def, Phase: Dormant}
}

// Snapshot is an immutable, lock-free copy of a State for IPC reporting
// (`list`). Hot-reload does not take or keep snapshots.
type Snapshot struct {
	Name      string
	Phase     Phase
	Instances []Instance
}

// Snapshot copies st's externally-visible fields under its lock.
func (st *State) Snapshot() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	instances := make([]Instance, len(st.Instances))
	for i, inst := range st.Instances {
		instances[i] = *inst
	}
	return Snapshot{Name: st.Def.Name, Phase: st.Phase, Instances: instances}
}

// beginOp atomically checks-and-sets the in-flight flag (§8 invariant 2:
// at most one in-flight transition per scratchpad), recording token for
// the matching endOp. It returns false if an operation is already in
// flight (callers surface errs.Duplicate for the DuplicateOperation
// semantics).
func (st *State) beginOp(token string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.inflight {
		return false
	}
	st.inflight = true
	st.token = token
	return true
}

func (st *State) endOp(token string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.token == token {
		st.inflight = false
		st.token = ""
	}
}

// LiveHandles returns every instance handle st currently tracks, for
// resync reconciliation after a buffer-overflow resubscribe (§5
// Backpressure).
func (st *State) LiveHandles() []compositor.Handle {
	st.mu.Lock()
	defer st.mu.Unlock()
	handles := make([]compositor.Handle, len(st.Instances))
	for i, inst := range st.Instances {
		handles[i] = inst.Handle
	}
	return handles
}

// HandleOf returns the sole instance's handle for a single-instance
// scratchpad, or "" if none. Convenience for the common (multi_window =
// false) case.
func (st *State) HandleOf() compositor.Handle {
	st.mu.Lock()
	defer st.mu.Unlock()
	if len(st.Instances) == 0 {
		return ""
	}
	return st.Instances[0].Handle
}

// UpdateDefinitionCosmetic swaps in def without disturbing Instances,
// Phase, or timers (§4.5 step 3: "keep live windows and mark geometry
// cache dirty for the next show"). Callers are responsible for
// invalidating any cached geometry keyed on the old definition.
func (st *State) UpdateDefinitionCosmetic(def config.Definition) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Def = def
}

// Teardown detaches every instance from st (for Removed/ModifiedRespawn
// reconciliation, §4.5 step 3) and cancels any pending timers, returning
// the handles the caller must ask the compositor to close.
func (st *State) Teardown() []compositor.Handle {
	st.mu.Lock()
	defer st.mu.Unlock()
	handles := make([]compositor.Handle, len(st.Instances))
	for i, inst := range st.Instances {
		handles[i] = inst.Handle
	}
	st.Instances = nil
	st.Phase = Destroyed
	if st.hideTimer != nil {
		st.hideTimer.cancel()
		st.hideTimer = nil
	}
	if st.spawnTimer != nil {
		st.spawnTimer.cancel()
		st.spawnTimer = nil
	}
	return handles
}
