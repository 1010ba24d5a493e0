package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

// RouteCommand is the daemon's single verb router (§4.6, §9 "dynamic
// dispatch to plugins → uniform verb router"): toggle/show/hide address
// the scratchpad engine, list/status/reload are answered directly by the
// Core, and anything else falls through to a registered plugin.
func (c *Core) RouteCommand(ctx context.Context, req wire.Request) wire.Response {
	switch req.Verb {
	case "toggle", "show", "hide":
		return c.routeScratchpadVerb(ctx, req)
	case "list":
		return c.routeList(req)
	case "status":
		return c.routeStatus(req)
	case "reload":
		return c.routeReload(ctx, req)
	default:
		if p, ok := c.plugins.Lookup(req.Verb); ok {
			resp, err := p.Handle(ctx, req.Verb, req.Args)
			if err != nil {
				return wire.Errorf(req.ID, "%s: %v", req.Verb, err)
			}
			resp.ID = req.ID
			return resp
		}
		return wire.Errorf(req.ID, "unknown verb %q", req.Verb)
	}
}

func (c *Core) routeScratchpadVerb(ctx context.Context, req wire.Request) wire.Response {
	if len(req.Args) < 1 {
		return wire.Errorf(req.ID, "%s: missing scratchpad name", req.Verb)
	}
	name := req.Args[0]
	st, ok := c.Lookup(name)
	if !ok {
		return wire.Errorf(req.ID, "unknown scratchpad %q", name)
	}

	var (
		text string
		err  error
	)
	switch req.Verb {
	case "toggle":
		text, err = c.engine.Toggle(ctx, st, c)
	case "show":
		text, err = c.engine.Show(ctx, st, c)
	case "hide":
		text, err = c.engine.Hide(ctx, st, c)
	}
	if err != nil {
		return wire.Errorf(req.ID, "%v", err)
	}
	return wire.OK(req.ID, text, nil)
}

type scratchpadListEntry struct {
	Name      string `json:"name"`
	Phase     string `json:"phase"`
	Instances int    `json:"instances"`
}

func (c *Core) routeList(req wire.Request) wire.Response {
	states := c.snapshotStates()
	out := make([]scratchpadListEntry, 0, len(states))
	for name, st := range states {
		snap := st.Snapshot()
		out = append(out, scratchpadListEntry{Name: name, Phase: snap.Phase.String(), Instances: len(snap.Instances)})
	}
	return wire.OK(req.ID, fmt.Sprintf("%d scratchpads", len(out)), out)
}

type statusReport struct {
	UptimeSeconds   float64  `json:"uptime_seconds"`
	Plugins         []string `json:"plugins"`
	ScratchpadCount int      `json:"scratchpad_count"`
	ConfigSeq       uint64   `json:"config_seq"`
	LastReloadError string   `json:"last_reload_error,omitempty"`
}

func (c *Core) routeStatus(req wire.Request) wire.Response {
	uptime := c.Uptime()
	s := statusReport{
		UptimeSeconds:   uptime.Seconds(),
		Plugins:         c.plugins.Names(),
		ScratchpadCount: len(c.snapshotStates()),
		ConfigSeq:       c.CurrentGeneration().Seq,
	}
	c.mu.RLock()
	mgr := c.reloadMgr
	c.mu.RUnlock()
	if mgr != nil {
		if err := mgr.LastError(); err != nil {
			s.LastReloadError = err.Error()
		}
	}
	return wire.OK(req.ID, fmt.Sprintf("up %s", uptime.Round(time.Second)), s)
}

func (c *Core) routeReload(ctx context.Context, req wire.Request) wire.Response {
	c.mu.RLock()
	mgr := c.reloadMgr
	c.mu.RUnlock()
	if mgr == nil {
		return wire.Errorf(req.ID, "reload: not configured")
	}
	if err := mgr.Reload(ctx); err != nil {
		return wire.Errorf(req.ID, "%v", err)
	}
	return wire.OK(req.ID, "reloaded", nil)
}
