package scratchpad

import (
	"context"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
)

// HandleWindowOpened offers a newly opened window to st. It reports true
// iff the window matched and completed a pending spawn (§4.3 "Spawning
// —WindowOpened(matches)→ Showing"). A window that doesn't match, or
// arrives while st isn't waiting on a spawn, is left for other scratchpads
// to consider.
func (e *Engine) HandleWindowOpened(ctx context.Context, st *State, sib Siblings, w compositor.Window) bool {
	st.mu.Lock()
	if st.Phase != Spawning || st.pendingSpawn == nil {
		st.mu.Unlock()
		return false
	}
	def := st.Def
	autoDetected := st.autoDetectedClass
	pending := st.pendingSpawn
	st.mu.Unlock()

	if !classMatches(def, autoDetected, w) {
		return false
	}
	if !correlatesBySpawn(pending, w, e.Clock.Now()) {
		return false
	}

	st.mu.Lock()
	if st.Phase != Spawning || st.pendingSpawn != pending {
		st.mu.Unlock()
		return false
	}
	if def.MatchClass == config.AutoDetectClass && st.autoDetectedClass == "" {
		st.autoDetectedClass = w.Class
	}
	inst := &Instance{Handle: w.Handle}
	st.Instances = append(st.Instances, inst)
	st.pendingSpawn = nil
	if st.spawnTimer != nil {
		st.spawnTimer.cancel()
		st.spawnTimer = nil
	}
	token := pending.token
	result := pending.result
	st.mu.Unlock()

	err := e.completeShowing(ctx, st, sib, inst)

	st.endOp(token)
	select {
	case result <- err:
	default:
	}
	return true
}

// HandleWindowClosed removes handle from st if it belongs to it, tearing
// the scratchpad down to Dormant if that was the last instance, and
// restoring any excludes it had hidden (§4.3 "closed out from under us").
func (e *Engine) HandleWindowClosed(ctx context.Context, st *State, sib Siblings, handle compositor.Handle) {
	st.mu.Lock()
	idx := -1
	for i, inst := range st.Instances {
		if inst.Handle == handle {
			idx = i
			break
		}
	}
	if idx < 0 {
		st.mu.Unlock()
		return
	}
	wasVisible := st.Instances[idx].Visible
	st.Instances = append(st.Instances[:idx], st.Instances[idx+1:]...)
	empty := len(st.Instances) == 0
	name := st.Def.Name
	if empty {
		st.Phase = Dormant
		if st.hideTimer != nil {
			st.hideTimer.cancel()
			st.hideTimer = nil
		}
	}
	st.mu.Unlock()

	if empty && wasVisible {
		e.restoreExcludes(ctx, name, sib)
	}
}

// HandleActiveWindowChanged drives the unfocus-hide hysteresis timer
// (§4.3, §9's same-exclude-group fix): focusing one of st's own instances
// cancels any pending hide; focusing a sibling that excludes (or is
// excluded by) st also cancels it, since that's still "within the same
// workflow"; anything else arms/leaves armed a hysteresis timer that hides
// st if focus hasn't returned by the time it fires.
func (e *Engine) HandleActiveWindowChanged(ctx context.Context, st *State, sib Siblings, active compositor.Handle, activeOwner string) {
	st.mu.Lock()
	def := st.Def
	phase := st.Phase
	owns := false
	for _, inst := range st.Instances {
		if inst.Handle == active {
			owns = true
			break
		}
	}
	st.mu.Unlock()

	if owns {
		st.mu.Lock()
		if st.hideTimer != nil {
			st.hideTimer.cancel()
			st.hideTimer = nil
		}
		st.mu.Unlock()
		return
	}

	// active belongs to someone else (or nothing): remember it as the
	// window to restore focus to on our next hide (§3 "last-focused-window-
	// before-show"). Recorded unconditionally, not just while Shown, so a
	// Dormant/Hidden scratchpad also knows what was focused right before
	// its next show.
	st.mu.Lock()
	st.LastFocusedBefore = active
	st.mu.Unlock()

	if phase != Shown || def.Unfocus != config.UnfocusHide {
		return
	}

	if activeOwner != "" && activeOwner != def.Name {
		if other, ok := sib.Lookup(activeOwner); ok && sameExcludeGroup(st, other) {
			st.mu.Lock()
			if st.hideTimer != nil {
				st.hideTimer.cancel()
				st.hideTimer = nil
			}
			st.mu.Unlock()
			return
		}
	}

	st.mu.Lock()
	if st.hideTimer == nil {
		st.hideTimer = newCancelableTimer(e.Clock, def.Hysteresis, func() {
			e.hysteresisFired(st, sib)
		})
	}
	st.mu.Unlock()
}

func (e *Engine) hysteresisFired(st *State, sib Siblings) {
	st.mu.Lock()
	stillShown := st.Phase == Shown
	st.hideTimer = nil
	st.mu.Unlock()
	if !stillShown {
		return
	}
	_, _ = e.Hide(context.Background(), st, sib)
}
