package geometry

import (
	"fmt"
	"sync"
)

// Cache memoizes Resolve results keyed by (definition fingerprint, monitor
// fingerprint), per §4.2. Fingerprints hash only the inputs that affect
// the output, so unrelated config/monitor changes don't cause a miss.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Rect
	hits    uint64
	misses  uint64
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]Rect)}
}

// SpecFingerprint hashes the Spec fields that affect Resolve's output.
func SpecFingerprint(spec Spec) string {
	pos := "center"
	if spec.Position != nil {
		pos = fmt.Sprintf("%v,%v", spec.Position.X, spec.Position.Y)
	}
	max := "none"
	if spec.MaxSize != nil {
		max = fmt.Sprintf("%v,%v", spec.MaxSize.W, spec.MaxSize.H)
	}
	return fmt.Sprintf("size=%v,%v|max=%s|pos=%s|margin=%d|offset=%d,%d|aspect=%t",
		spec.Size.W, spec.Size.H, max, pos, spec.MarginPx, spec.OffsetDX, spec.OffsetDY, spec.PreserveAspect)
}

// MonitorFingerprint hashes the UsableArea fields that affect Resolve's
// output.
func MonitorFingerprint(area UsableArea) string {
	return fmt.Sprintf("%d,%d,%d,%d", area.X, area.Y, area.W, area.H)
}

// Resolve returns the cached rectangle for (defFP, monFP), computing and
// storing it via Resolve(spec, area) on a miss.
func (c *Cache) Resolve(defFP, monFP string, spec Spec, area UsableArea) (Rect, error) {
	key := defFP + "#" + monFP
	c.mu.RLock()
	if rect, ok := c.entries[key]; ok {
		c.mu.RUnlock()
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return rect, nil
	}
	c.mu.RUnlock()

	rect, err := Resolve(spec, area)
	if err != nil {
		return Rect{}, err
	}

	c.mu.Lock()
	c.entries[key] = rect
	c.misses++
	c.mu.Unlock()
	return rect, nil
}

// InvalidateMonitor drops every cache entry for monFP. Nothing in the
// daemon calls it; a monitor whose usable area changes gets a new
// fingerprint and so misses the old entries anyway.
func (c *Cache) InvalidateMonitor(monFP string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	suffix := "#" + monFP
	for k := range c.entries {
		if len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
			delete(c.entries, k)
		}
	}
}

// Reset drops every cached entry, e.g. after a configuration reload
// changes cosmetic fields for one or more definitions (§4.5 step 3).
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Rect)
}

// HitRate reports the cache's lifetime hit rate, for observability.
func (c *Cache) HitRate() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}
