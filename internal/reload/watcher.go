package reload

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	hclog "github.com/hashicorp/go-hclog"
)

// DefaultDebounce is the coalescing window from §4.5 step 1: editors often
// fire several events (truncate, write, rename) for one logical save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher observes path's containing directory (so editors that save via
// rename-into-place still trigger) and calls trigger, debounced, whenever
// path itself changes.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   hclog.Logger
}

// NewWatcher builds a Watcher for path. debounce <= 0 uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger hclog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{path: path, debounce: debounce, logger: logger.Named("reload-watcher")}
}

// Watch blocks until ctx is cancelled, calling trigger at most once per
// debounce window after path changes. trigger is called with ctx itself;
// Watch does not itself interpret the change,
// it only detects that one may have happened (§4.5 step 1).
func (w *Watcher) Watch(ctx context.Context, trigger func(ctx context.Context)) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	base := filepath.Base(w.path)
	if err := fsw.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	fire := func() {
		trigger(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}
