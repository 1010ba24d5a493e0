// Package runtime implements the Runtime Core (§4.4): it owns the shared
// mutable state (configuration generation, scratchpad state map, reverse
// window index, monitor cache generation), pumps the compositor's event
// stream into the scratchpad engine, and routes IPC commands to the
// engine or to an auxiliary plugin.
package runtime

import (
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
	"github.com/hyprplug/hyprplugd/internal/geometry"
	"github.com/hyprplug/hyprplugd/internal/plugin"
	"github.com/hyprplug/hyprplugd/internal/reload"
	"github.com/hyprplug/hyprplugd/internal/scratchpad"
)

// Core is the single guarded aggregate from §5/§9: one RWMutex over
// everything actually shared across the event loop, IPC handlers, and
// hot-reload.
type Core struct {
	gw      *compositor.Gateway
	geo     *geometry.Cache
	engine  *scratchpad.Engine
	plugins *plugin.Registry
	logger  hclog.Logger

	mu              sync.RWMutex
	gen             config.Generation
	states          map[string]*scratchpad.State
	reverseIndex    map[compositor.Handle]string
	monitorCacheGen uint64

	startedAt time.Time
	reloadMgr *reload.Manager
}

// SetReloadManager wires the hot-reload manager in after construction: the
// manager itself needs a Reconciler (this Core) to be built, so the two
// can't be created in a single step.
func (c *Core) SetReloadManager(m *reload.Manager) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reloadMgr = m
}

// NewCore builds a Core from its owned components. Call Bootstrap before
// Run to load the initial configuration.
func NewCore(gw *compositor.Gateway, geo *geometry.Cache, engine *scratchpad.Engine, plugins *plugin.Registry, logger hclog.Logger) *Core {
	return &Core{
		gw:           gw,
		geo:          geo,
		engine:       engine,
		plugins:      plugins,
		logger:       logger.Named("runtime"),
		states:       make(map[string]*scratchpad.State),
		reverseIndex: make(map[compositor.Handle]string),
		startedAt:    time.Now(),
	}
}

// Bootstrap loads path's configuration as the initial generation and
// creates one Dormant state per scratchpad definition. A bad or missing
// configuration file is not fatal (§7's propagation policy only names the
// IPC socket bind as fatal): the caller is expected to log the error and
// carry on with zero scratchpads, recoverable by a later reload/SIGHUP.
func (c *Core) Bootstrap(path string) error {
	gen, err := config.Load(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen = *gen
	for name, def := range gen.Scratchpads {
		c.states[name] = scratchpad.NewState(def)
	}
	return nil
}

// Lookup implements scratchpad.Siblings.
func (c *Core) Lookup(name string) (*scratchpad.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.states[name]
	return st, ok
}

// Names implements scratchpad.Siblings.
func (c *Core) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.states))
	for name := range c.states {
		names = append(names, name)
	}
	return names
}

// CurrentGeneration implements reload.Reconciler.
func (c *Core) CurrentGeneration() config.Generation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// ownerOf returns the scratchpad name owning handle, if any (a brief read
// under the shared lock, §5).
func (c *Core) ownerOf(h compositor.Handle) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reverseIndex[h]
}

func (c *Core) setOwner(h compositor.Handle, name string) {
	c.mu.Lock()
	c.reverseIndex[h] = name
	c.mu.Unlock()
}

func (c *Core) clearOwner(h compositor.Handle) {
	c.mu.Lock()
	delete(c.reverseIndex, h)
	c.mu.Unlock()
}

// snapshotStates returns the current (name, state) pairs without holding
// the lock for the duration of the caller's work (§5 "readers are
// brief").
func (c *Core) snapshotStates() map[string]*scratchpad.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*scratchpad.State, len(c.states))
	for name, st := range c.states {
		out[name] = st
	}
	return out
}

// Uptime reports how long ago NewCore built c, for the `status` verb.
func (c *Core) Uptime() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.startedAt.IsZero() {
		return 0
	}
	return time.Since(c.startedAt)
}
