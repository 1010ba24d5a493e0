package runtime

import (
	"context"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
	"github.com/hyprplug/hyprplugd/internal/reload"
	"github.com/hyprplug/hyprplugd/internal/scratchpad"
)

// Reconcile applies a diffed configuration generation (§4.5 steps 3-4).
// It implements reload.Reconciler. Per §4.4's "Ordering" note, hot-reload
// is the one place allowed to hold the shared write lock across
// compositor calls: the walk must be one atomic batch so no event
// handler observes a mixed state.
func (c *Core) Reconcile(ctx context.Context, newGen *config.Generation, changes []reload.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cosmeticTouched := false

	for _, ch := range changes {
		switch ch.Kind {
		case reload.Added:
			c.states[ch.Name] = scratchpad.NewState(ch.Def)

		case reload.Removed:
			if st, ok := c.states[ch.Name]; ok {
				c.closeAndForget(ctx, st)
				delete(c.states, ch.Name)
			}

		case reload.ModifiedRespawn:
			if st, ok := c.states[ch.Name]; ok {
				c.closeAndForget(ctx, st)
			}
			c.states[ch.Name] = scratchpad.NewState(ch.Def)

		case reload.ModifiedCosmetic:
			if st, ok := c.states[ch.Name]; ok {
				st.UpdateDefinitionCosmetic(ch.Def)
			} else {
				c.states[ch.Name] = scratchpad.NewState(ch.Def)
			}
			cosmeticTouched = true

		case reload.Unchanged:
			// nothing to do; the running state already matches.
		}
	}

	if cosmeticTouched {
		// Simplest correct invalidation: a cosmetic change can alter any
		// fingerprint-keyed geometry entry for that definition, and entries
		// are cheap to recompute, so drop the whole cache rather than track
		// which keys are now stale.
		c.geo.Reset()
	}

	c.gen = *newGen
	return nil
}

// closeAndForget detaches st's instances and asks the compositor to close
// them, ignoring errors: a handle the compositor no longer knows about is
// WindowGone, already the outcome we want.
func (c *Core) closeAndForget(ctx context.Context, st *scratchpad.State) {
	for _, h := range st.Teardown() {
		_ = c.gw.Dispatch(ctx, compositor.CloseWindow(h))
		delete(c.reverseIndex, h)
	}
}
