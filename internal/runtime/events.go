package runtime

import (
	"context"

	"github.com/hyprplug/hyprplugd/internal/compositor"
)

// handleEvent dispatches one compositor event to the scratchpad engine,
// fanning out across every state snapshot where necessary (§4.4 "pumps
// the compositor's event stream into the scratchpad engine").
func (c *Core) handleEvent(ctx context.Context, ev compositor.Event) {
	switch ev.Kind {
	case compositor.EventWindowOpened:
		c.handleWindowOpened(ctx, ev)
	case compositor.EventWindowClosed:
		c.handleWindowClosed(ctx, ev)
	case compositor.EventActiveWindow:
		c.handleActiveWindowChanged(ctx, ev)
	case compositor.EventReconnected:
		c.resync(ctx)
	default:
		// Workspace/monitor/title events need no scratchpad reaction; the
		// gateway already keeps its own monitor/workspace cache fresh.
	}
}

// handleWindowOpened offers a freshly opened window to every scratchpad
// in turn until one claims it (at most one can, per §8 invariant 2: a
// window belongs to a single scratchpad for its lifetime).
func (c *Core) handleWindowOpened(ctx context.Context, ev compositor.Event) {
	if len(ev.Fields) < 4 {
		return
	}
	w := compositor.Window{
		Handle: compositor.Handle(ev.Fields[0]),
		Class:  ev.Fields[2],
		Title:  ev.Fields[3],
	}
	for name, st := range c.snapshotStates() {
		if c.engine.HandleWindowOpened(ctx, st, c, w) {
			c.setOwner(w.Handle, name)
			return
		}
	}
}

func (c *Core) handleWindowClosed(ctx context.Context, ev compositor.Event) {
	if len(ev.Fields) < 1 {
		return
	}
	h := compositor.Handle(ev.Fields[0])
	name := c.ownerOf(h)
	if name == "" {
		return
	}
	st, ok := c.Lookup(name)
	if !ok {
		return
	}
	c.engine.HandleWindowClosed(ctx, st, c, h)
	c.clearOwner(h)
}

// handleActiveWindowChanged offers the focus change to every scratchpad:
// each decides independently whether it owns the newly active window,
// whether to cancel its own hysteresis timer, or whether the change is
// irrelevant to it.
func (c *Core) handleActiveWindowChanged(ctx context.Context, ev compositor.Event) {
	if len(ev.Fields) < 1 {
		return
	}
	h := compositor.Handle(ev.Fields[0])
	owner := c.ownerOf(h)
	for _, st := range c.snapshotStates() {
		c.engine.HandleActiveWindowChanged(ctx, st, c, h, owner)
	}
}

// resync reconciles every scratchpad's tracked instances against the
// compositor's actual window list after a reconnect or backpressure-
// triggered resubscribe (§5 Backpressure, §8 invariant 1: "at most one
// outstanding request-socket round trip waits on the reply before the
// next is issued" is preserved here since this runs on the single event-
// consumer goroutine).
func (c *Core) resync(ctx context.Context) {
	windows, err := c.gw.ListWindows(ctx)
	if err != nil {
		c.logger.Warn("resync: list windows failed", "error", err)
		return
	}
	live := make(map[compositor.Handle]bool, len(windows))
	for _, w := range windows {
		live[w.Handle] = true
	}

	for _, st := range c.snapshotStates() {
		for _, h := range st.LiveHandles() {
			if !live[h] {
				c.engine.HandleWindowClosed(ctx, st, c, h)
				c.clearOwner(h)
			}
		}
	}
}
