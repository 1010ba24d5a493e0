package scratchpad

import (
	"context"

	"github.com/hyprplug/hyprplugd/internal/compositor"
)

// applyExcludes hides every sibling named in excludes that is currently
// shown, recording which ones we hid so restoreExcludes can bring back only
// those (§4.3 excludes/restore — not recursive: a hidden sibling's own
// excludes are not applied).
func (e *Engine) applyExcludes(ctx context.Context, name string, excludes []string, sib Siblings) {
	if len(excludes) == 0 || sib == nil {
		return
	}
	targets := excludeTargets(name, excludes, sib)
	var hid []string
	for _, target := range targets {
		other, ok := sib.Lookup(target)
		if !ok {
			continue
		}
		other.mu.Lock()
		shown := other.Phase == Shown
		other.mu.Unlock()
		if !shown {
			continue
		}
		if _, err := e.hideNoRestore(ctx, other); err == nil {
			hid = append(hid, target)
		}
	}
	if len(hid) == 0 {
		return
	}
	if self, ok := sib.Lookup(name); ok {
		self.mu.Lock()
		self.excludedHidden = hid
		self.mu.Unlock()
	}
}

// restoreExcludes re-shows whatever this scratchpad's last show hid via
// excludes, provided restore_excluded is set (§4.3). Non-recursive: the
// restored siblings' own excludes are not re-applied.
func (e *Engine) restoreExcludes(ctx context.Context, name string, sib Siblings) {
	if sib == nil {
		return
	}
	self, ok := sib.Lookup(name)
	if !ok {
		return
	}
	self.mu.Lock()
	hid := self.excludedHidden
	self.excludedHidden = nil
	restore := self.Def.RestoreExcluded
	self.mu.Unlock()

	if !restore {
		return
	}
	for _, target := range hid {
		other, ok := sib.Lookup(target)
		if !ok {
			continue
		}
		other.mu.Lock()
		phase := other.Phase
		var toRaise *Instance
		for _, inst := range other.Instances {
			if !inst.Visible {
				toRaise = inst
				break
			}
		}
		other.mu.Unlock()
		if phase != Hidden || toRaise == nil {
			continue
		}
		_ = e.completeShowing(ctx, other, sib, toRaise)
	}
}

// hideNoRestore hides st's visible instances without applying st's own
// excludes/restore policy, used internally so exclude chains never recurse.
func (e *Engine) hideNoRestore(ctx context.Context, st *State) (string, error) {
	st.mu.Lock()
	st.Phase = Hiding
	if st.hideTimer != nil {
		st.hideTimer.cancel()
		st.hideTimer = nil
	}
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
		if err := e.Gateway.Dispatch(ctx, compositor.MoveToWorkspace(inst.Handle, special)); err != nil {
			return "", err
		}
		st.mu.Lock()
		inst.Visible = false
		st.mu.Unlock()
	}

	st.mu.Lock()
	if len(st.Instances) == 0 {
		st.Phase = Dormant
	} else {
		st.Phase = Hidden
	}
	st.mu.Unlock()
	return name, nil
}
