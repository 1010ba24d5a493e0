package reload

import (
	"context"
	"fmt"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/hyprplug/hyprplugd/internal/config"
	"github.com/hyprplug/hyprplugd/internal/errs"
)

// Reconciler is implemented by the runtime core: it owns the live
// scratchpad state the Manager reconciles against a new configuration
// generation, kept behind an interface so this package never imports
// internal/runtime (§9 "cyclic references avoidance", rendered at the
// package level).
type Reconciler interface {
	CurrentGeneration() config.Generation
	Reconcile(ctx context.Context, newGen *config.Generation, changes []Change) error
}

// Manager drives one configuration file's hot-reload lifecycle: watch,
// debounce, validate, diff, backup, reconcile (§4.5).
type Manager struct {
	path   string
	store  Reconciler
	ring   *BackupRing
	watch  *Watcher
	logger hclog.Logger

	mu      sync.Mutex
	lastErr error
}

// NewManager builds a Manager for path against store, backing up previous
// generations into ring.
func NewManager(path string, store Reconciler, ring *BackupRing, debounce time.Duration, logger hclog.Logger) *Manager {
	m := &Manager{path: path, store: store, ring: ring, logger: logger.Named("reload")}
	m.watch = NewWatcher(path, debounce, logger)
	return m
}

// Watch blocks, reloading on every debounced file change, until ctx is
// cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	return m.watch.Watch(ctx, func(ctx context.Context) {
		if err := m.Reload(ctx); err != nil {
			m.logger.Warn("reload failed, keeping running configuration", "error", err)
			m.mu.Lock()
			m.lastErr = err
			m.mu.Unlock()
		} else {
			m.mu.Lock()
			m.lastErr = nil
			m.mu.Unlock()
		}
	})
}

// LastError reports the most recent reload failure, if any (§4.5 step 2:
// "report error over IPC on next poll").
func (m *Manager) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Reload loads and validates the configuration at m.path, diffs it
// against the store's current generation, snapshots a backup of the
// outgoing generation, and reconciles (§4.5 steps 2-5). Validation
// failures never reach Reconcile, so running state is untouched on
// error, satisfying step 2's "do not touch running state" without
// needing a separate rollback path.
func (m *Manager) Reload(ctx context.Context) error {
	newGen, err := config.Load(m.path)
	if err != nil {
		return fmt.Errorf("%w: %v", errs.HotReloadRejected, err)
	}

	old := m.store.CurrentGeneration()
	changes := Diff(old.Scratchpads, newGen.Scratchpads)

	if m.ring != nil {
		if raw := old.RawBytes(); len(raw) > 0 {
			if err := m.ring.Save(raw, backupTimestamp()); err != nil {
				m.logger.Warn("failed to write configuration backup", "error", err)
			}
		}
	}

	if err := m.store.Reconcile(ctx, newGen, changes); err != nil {
		return fmt.Errorf("%w: %v", errs.HotReloadRejected, err)
	}
	return nil
}

// backupTimestamp is its own function so tests can't accidentally depend
// on wall-clock ordering across a single process's lifetime; production
// always wants "now".
func backupTimestamp() time.Time { return time.Now() }
