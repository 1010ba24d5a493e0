package scratchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	uuid "github.com/hashicorp/go-uuid"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
	"github.com/hyprplug/hyprplugd/internal/errs"
	"github.com/hyprplug/hyprplugd/internal/geometry"
)

// spawnTimeout bounds how long a spawn waits for a matching window before
// SpawnFailed is reported (§4.3 "Spawning —spawn timeout elapses→ Dormant").
const spawnTimeout = 5 * time.Second

// Engine drives the per-scratchpad transitions for one Gateway (§4.3). It
// holds no per-scratchpad data itself; every method takes the *State it
// operates on, so one Engine serves every scratchpad the runtime knows
// about.
type Engine struct {
	Gateway *compositor.Gateway
	Geo     *geometry.Cache
	Clock   Clock
	Logger  hclog.Logger
}

// NewEngine builds an Engine. clock defaults to RealClock() if nil.
func NewEngine(gw *compositor.Gateway, geo *geometry.Cache, clock Clock, logger hclog.Logger) *Engine {
	if clock == nil {
		clock = RealClock()
	}
	return &Engine{Gateway: gw, Geo: geo, Clock: clock, Logger: logger.Named("engine")}
}

func newToken() string {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return fmt.Sprintf("t-%d", time.Now().UnixNano())
	}
	return id
}

// Toggle implements the `toggle` verb: hide if any instance is visible,
// otherwise show (§4.3).
func (e *Engine) Toggle(ctx context.Context, st *State, sib Siblings) (string, error) {
	st.mu.Lock()
	phase := st.Phase
	st.mu.Unlock()

	switch phase {
	case Shown, Showing:
		return e.Hide(ctx, st, sib)
	default:
		return e.Show(ctx, st, sib)
	}
}

// Show implements the `show` verb (§4.3). For a Dormant scratchpad this
// spawns and blocks (bounded by spawnTimeout) until a matching window
// appears or the attempt times out. For one with a hidden instance it
// raises the instance directly. For a multi-window scratchpad already
// below max_instances with none hidden, it spawns an additional instance.
func (e *Engine) Show(ctx context.Context, st *State, sib Siblings) (string, error) {
	token := newToken()
	if !st.beginOp(token) {
		return "", errs.WithName(st.Def.Name, errs.Duplicate, nil)
	}

	st.mu.Lock()
	var toRaise *Instance
	for _, inst := range st.Instances {
		if !inst.Visible {
			toRaise = inst
			break
		}
	}
	needsSpawn := toRaise == nil && (len(st.Instances) == 0 || (st.Def.MultiWindow && len(st.Instances) < st.Def.MaxInstances))
	st.mu.Unlock()

	if toRaise != nil {
		defer st.endOp(token)
		if err := e.completeShowing(ctx, st, sib, toRaise); err != nil {
			return "", errs.WithName(st.Def.Name, errs.SpawnFailed, err)
		}
		return fmt.Sprintf("%s shown", st.Def.Name), nil
	}

	if !needsSpawn {
		defer st.endOp(token)
		return fmt.Sprintf("%s already shown", st.Def.Name), nil
	}

	return e.spawnAndAwait(ctx, st, sib, token)
}

// spawnAndAwait dispatches the spawn command, arms the spawn timeout, and
// blocks until HandleWindowOpened resolves the attempt or the timeout
// fires. endOp is called by whichever of those two completes the attempt.
func (e *Engine) spawnAndAwait(ctx context.Context, st *State, sib Siblings, token string) (string, error) {
	st.mu.Lock()
	st.Phase = Spawning
	now := e.Clock.Now()
	result := make(chan error, 1)
	st.pendingSpawn = &spawnAttempt{
		startedAt: now,
		deadline:  now.Add(spawnTimeout),
		token:     token,
		result:    result,
	}
	st.spawnTimer = newCancelableTimer(e.Clock, spawnTimeout, func() {
		e.spawnTimedOut(st, token)
	})
	st.mu.Unlock()

	if err := e.Gateway.Dispatch(ctx, compositor.Spawn(st.Def.Command)); err != nil {
		st.mu.Lock()
		st.Phase = Dormant
		st.pendingSpawn = nil
		if st.spawnTimer != nil {
			st.spawnTimer.cancel()
			st.spawnTimer = nil
		}
		st.mu.Unlock()
		st.endOp(token)
		return "", errs.WithName(st.Def.Name, errs.SpawnFailed, err)
	}

	select {
	case err := <-result:
		if err != nil {
			return "", errs.WithName(st.Def.Name, errs.SpawnFailed, err)
		}
		return fmt.Sprintf("%s shown", st.Def.Name), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (e *Engine) spawnTimedOut(st *State, token string) {
	st.mu.Lock()
	pending := st.pendingSpawn
	if pending == nil || pending.token != token {
		st.mu.Unlock()
		return
	}
	st.pendingSpawn = nil
	st.Phase = Dormant
	result := pending.result
	st.mu.Unlock()

	st.endOp(token)
	select {
	case result <- errSpawnTimedOut:
	default:
	}
}

// errSpawnTimedOut is the cause reported when a spawn's deadline elapses
// with no matching window (§4.3 "Spawning —spawn timeout elapses→
// Dormant", S6: exact text "editor: spawn timed out").
var errSpawnTimedOut = errors.New("spawn timed out")

// completeShowing applies geometry, floating, monitor, excludes and focus
// policy for inst becoming visible, and marks the transition into Shown
// (§4.3 "On transition into Showing").
func (e *Engine) completeShowing(ctx context.Context, st *State, sib Siblings, inst *Instance) error {
	if err := e.applyGeometry(ctx, st, inst); err != nil {
		return err
	}

	if err := e.Gateway.Dispatch(ctx, compositor.MoveToWorkspace(inst.Handle, activeWorkspaceToken)); err != nil {
		return err
	}

	st.mu.Lock()
	inst.Visible = true
	st.Phase = Shown
	excludes := append([]string(nil), st.Def.Excludes...)
	smartFocus := st.Def.SmartFocus
	name := st.Def.Name
	st.mu.Unlock()

	e.applyExcludes(ctx, name, excludes, sib)

	if smartFocus {
		_ = e.Gateway.Dispatch(ctx, compositor.FocusWindow(inst.Handle))
	}
	return nil
}

// activeWorkspaceToken is the workspace argument every show passes to
// "movetoworkspacesilent": Hyprland's relative token for the currently
// active workspace. No per-monitor workspace id is looked up, so
// force_monitor affects only the geometry, not the target workspace.
const activeWorkspaceToken = "e+0"

// applyGeometry resolves and applies the scratchpad's size/position,
// honoring force_monitor when set, else the currently focused monitor
// (§4.2, §4.3 force_monitor).
func (e *Engine) applyGeometry(ctx context.Context, st *State, inst *Instance) error {
	st.mu.Lock()
	def := st.Def
	st.mu.Unlock()

	mon, err := e.resolveMonitor(ctx, def.ForceMonitor)
	if err != nil {
		return err
	}

	size, err := geometry.ParseSize(def.Size)
	if err != nil {
		return err
	}
	var maxSize *geometry.Size
	if def.MaxSize != "" {
		ms, err := geometry.ParseSize(def.MaxSize)
		if err != nil {
			return err
		}
		maxSize = &ms
	}
	pos, err := geometry.ParsePosition(def.Position)
	if err != nil {
		return err
	}

	spec := geometry.Spec{
		Size:           size,
		MaxSize:        maxSize,
		Position:       pos,
		MarginPx:       def.Margin,
		OffsetDX:       def.OffsetDX,
		OffsetDY:       def.OffsetDY,
		PreserveAspect: def.PreserveAspect,
	}
	x, y, w, h := mon.Usable()
	area := geometry.UsableArea{X: x, Y: y, W: w, H: h}

	rect, err := e.Geo.Resolve(geometry.SpecFingerprint(spec), geometry.MonitorFingerprint(area), spec, area)
	if err != nil {
		return err
	}

	if err := e.Gateway.Dispatch(ctx, compositor.SetFloating(inst.Handle, true)); err != nil {
		return err
	}
	if err := e.Gateway.Dispatch(ctx, compositor.MoveWindowPixel(inst.Handle, rect.X, rect.Y)); err != nil {
		return err
	}
	if err := e.Gateway.Dispatch(ctx, compositor.ResizeWindowPixel(inst.Handle, rect.W, rect.H)); err != nil {
		return err
	}

	st.mu.Lock()
	inst.X, inst.Y, inst.W, inst.H = rect.X, rect.Y, rect.W, rect.H
	inst.Monitor = mon.Name
	st.mu.Unlock()
	return nil
}

func (e *Engine) resolveMonitor(ctx context.Context, forced string) (compositor.Monitor, error) {
	mons, err := e.Gateway.Monitors(ctx)
	if err != nil {
		return compositor.Monitor{}, err
	}
	if forced != "" {
		for _, m := range mons {
			if m.Name == forced {
				return m, nil
			}
		}
		return compositor.Monitor{}, fmt.Errorf("%w: force_monitor %q not found", errs.Spec, forced)
	}
	for _, m := range mons {
		if m.Focused {
			return m, nil
		}
	}
	if len(mons) > 0 {
		return mons[0], nil
	}
	return compositor.Monitor{}, fmt.Errorf("%w: no monitors reported", errs.GatewayUnavailable)
}

// Hide implements the `hide` verb (§4.3): moves every visible instance to
// its special workspace (or closes it, if close_on_hide), restores any
// sibling excludes hid on our behalf, and cancels any pending hysteresis
// timer.
func (e *Engine) Hide(ctx context.Context, st *State, sib Siblings) (string, error) {
	token := newToken()
	if !st.beginOp(token) {
		return "", errs.WithName(st.Def.Name, errs.Duplicate, nil)
	}
	defer st.endOp(token)

	st.mu.Lock()
	st.Phase = Hiding
	if st.hideTimer != nil {
		st.hideTimer.cancel()
		st.hideTimer = nil
	}
	closeOnHide := st.Def.CloseOnHide
	restoreFocus := st.Def.RestoreFocus
	restoreTarget := st.LastFocusedBefore
	name := st.Def.Name
	special := hideDestination(st.Def)
	visible := make([]*Instance, 0, len(st.Instances))
	for _, inst := range st.Instances {
		if inst.Visible {
			visible = append(visible, inst)
		}
	}
	st.mu.Unlock()

	for _, inst := range visible {
		var err error
		if closeOnHide {
			err = e.Gateway.Dispatch(ctx, compositor.CloseWindow(inst.Handle))
		} else {
			err = e.Gateway.Dispatch(ctx, compositor.MoveToWorkspace(inst.Handle, special))
		}
		if err != nil && !errors.Is(err, errs.WindowGone) {
			return "", errs.WithName(name, errs.GatewayUnavailable, err)
		}
		st.mu.Lock()
		inst.Visible = false
		st.mu.Unlock()
	}

	if closeOnHide {
		st.mu.Lock()
		st.Instances = removeInstances(st.Instances, visible)
		empty := len(st.Instances) == 0
		st.mu.Unlock()
		if empty {
			st.mu.Lock()
			st.Phase = Dormant
			st.mu.Unlock()
		}
	}

	st.mu.Lock()
	if st.Phase == Hiding {
		if len(st.Instances) == 0 {
			st.Phase = Dormant
		} else {
			st.Phase = Hidden
		}
	}
	st.mu.Unlock()

	e.restoreExcludes(ctx, name, sib)

	if restoreFocus && restoreTarget != "" {
		e.restoreFocusTo(ctx, restoreTarget)
	}

	return fmt.Sprintf("%s hidden", name), nil
}

// restoreFocusTo dispatches a focus back to target if it still resolves to
// a live window (§4.3 Shown→Hiding, "if restore_focus, focus the previously
// remembered window"); a window that closed while we were shown is left
// alone rather than focusing nothing.
func (e *Engine) restoreFocusTo(ctx context.Context, target compositor.Handle) {
	windows, err := e.Gateway.ListWindows(ctx)
	if err != nil {
		return
	}
	for _, w := range windows {
		if w.Handle == target {
			_ = e.Gateway.Dispatch(ctx, compositor.FocusWindow(target))
			return
		}
	}
}

// hideDestination names the special workspace a hidden instance is moved
// to (§4.3 Shown→Hiding: "special:rustr_<name> (or the configured pinned
// destination)"). Pinned scratchpads share one stable destination instead
// of a per-name one, so renaming a pinned definition doesn't change which
// special workspace its windows land in.
func hideDestination(def config.Definition) string {
	if def.Pinned {
		return "special:rustr_pinned"
	}
	return "special:rustr_" + def.Name
}

func removeInstances(all, remove []*Instance) []*Instance {
	out := make([]*Instance, 0, len(all))
	for _, inst := range all {
		skip := false
		for _, r := range remove {
			if inst == r {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, inst)
		}
	}
	return out
}

