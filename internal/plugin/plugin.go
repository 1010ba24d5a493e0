// Package plugin defines the uniform verb-router boundary between the
// runtime core and everything that is not the scratchpad engine (§9:
// "dynamic dispatch to plugins → uniform verb router"). Individual
// auxiliary plugins (expose, wallpapers, magnify, ...) are out of core
// scope; this package only carries their interface plus thin collaborator
// stand-ins so the router has somewhere real to dispatch verbs it does not
// itself own.
package plugin

import (
	"context"

	"github.com/hyprplug/hyprplugd/internal/wire"
)

// Plugin is anything the runtime can route a client verb to.
type Plugin interface {
	// Name identifies the plugin for status reporting.
	Name() string
	// Handles reports whether this plugin owns verb (its first token).
	Handles(verb string) bool
	// Handle executes verb with args and returns the response to send to
	// the client. Implementations must not block longer than necessary;
	// long operations should be cancellable via ctx.
	Handle(ctx context.Context, verb string, args []string) (wire.Response, error)
}

// Registry routes a verb to the Plugin that claims it.
type Registry struct {
	plugins []Plugin
}

func NewRegistry(plugins ...Plugin) *Registry {
	return &Registry{plugins: plugins}
}

// Lookup returns the plugin owning verb, if any.
func (r *Registry) Lookup(verb string) (Plugin, bool) {
	for _, p := range r.plugins {
		if p.Handles(verb) {
			return p, true
		}
	}
	return nil, false
}

// Names lists every registered plugin's name, in registration order, for
// the `status` verb.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.plugins))
	for _, p := range r.plugins {
		names = append(names, p.Name())
	}
	return names
}
