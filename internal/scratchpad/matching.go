package scratchpad

import (
	"time"

	"github.com/hyprplug/hyprplugd/internal/compositor"
	"github.com/hyprplug/hyprplugd/internal/config"
)

// classMatches reports whether w's class satisfies def's match criterion,
// accounting for AUTO_DETECT having already fixed autoDetected (§4.3
// "Class auto-detection").
func classMatches(def config.Definition, autoDetected string, w compositor.Window) bool {
	if def.MatchClass == config.AutoDetectClass {
		if autoDetected == "" {
			return true // first window of the spawn fixes the class
		}
		return w.Class == autoDetected
	}
	return w.Class == def.MatchClass
}

// correlatesBySpawn reports whether w is attributable to pending: by
// process id when available (preferred), else by falling within the
// pending spawn's temporal window (§4.3 Matching — the documented known
// race from §9 Open Questions: a manually launched window of the same
// class during this window can be misattributed, and this is accepted,
// not guessed around).
func correlatesBySpawn(pending *spawnAttempt, w compositor.Window, now time.Time) bool {
	if pending == nil {
		return false
	}
	if pending.pid > 0 && w.PID > 0 {
		return w.PID == pending.pid
	}
	return !now.After(pending.deadline)
}
