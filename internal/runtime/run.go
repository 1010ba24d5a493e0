package runtime

import (
	"context"
	"sync"
)

// Run starts the daemon's long-running work: the compositor event
// consumer, the hot-reload watcher, and (via ipcAccept, injected by the
// caller to avoid this package importing internal/ipc) the IPC listener
// (§4.4's three scheduled loops). It blocks until ctx is cancelled, then
// waits for all three to return and reports the first non-nil error, if
// any.
func (c *Core) Run(ctx context.Context, ipcAccept func(ctx context.Context) error) error {
	events, err := c.gw.SubscribeEvents(ctx)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			c.handleEvent(ctx, ev)
		}
		// The channel only closes on ctx cancellation (a clean shutdown) or
		// because the gateway gave up reconnecting; distinguish the two so
		// the latter is reported rather than silently swallowed (§7).
		if err := c.gw.Err(); err != nil {
			c.logger.Error("compositor event stream ended", "error", err)
			errCh <- err
		}
	}()

	c.mu.RLock()
	mgr := c.reloadMgr
	c.mu.RUnlock()
	if mgr != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := mgr.Watch(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	if ipcAccept != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ipcAccept(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	return nil
}
