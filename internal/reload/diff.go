// Package reload implements the Hot-Reload Manager: a debounced filesystem
// watcher, configuration diffing, and a bounded backup ring, so a running
// daemon can pick up configuration edits without losing live scratchpad
// windows where possible (§4.5).
package reload

import "github.com/hyprplug/hyprplugd/internal/config"

// ChangeKind classifies how one scratchpad definition differs between two
// configuration generations (§4.5 step 3).
type ChangeKind int

const (
	Unchanged ChangeKind = iota
	Added
	Removed
	ModifiedCosmetic
	ModifiedRespawn
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case ModifiedCosmetic:
		return "modified-cosmetic"
	case ModifiedRespawn:
		return "modified-respawn"
	default:
		return "unchanged"
	}
}

// Change is one scratchpad's classified delta between generations.
type Change struct {
	Name string
	Kind ChangeKind
	Def  config.Definition // the new definition; zero value for Removed
}

// Diff classifies every name present in either old or new (§4.5 step 3).
// A name whose SpawnMatchFingerprint changed is ModifiedRespawn even if
// only the command changed and everything else is identical, since the
// running instance is no longer "the same application" — the spec treats
// that as Removed+Added, collapsed here into one tagged change so callers
// don't have to special-case it.
func Diff(old, new map[string]config.Definition) []Change {
	changes := make([]Change, 0, len(old)+len(new))

	for name, newDef := range new {
		oldDef, existed := old[name]
		if !existed {
			changes = append(changes, Change{Name: name, Kind: Added, Def: newDef})
			continue
		}
		if oldDef.Fingerprint() == newDef.Fingerprint() {
			changes = append(changes, Change{Name: name, Kind: Unchanged, Def: newDef})
			continue
		}
		if oldDef.SpawnMatchFingerprint() != newDef.SpawnMatchFingerprint() {
			changes = append(changes, Change{Name: name, Kind: ModifiedRespawn, Def: newDef})
			continue
		}
		changes = append(changes, Change{Name: name, Kind: ModifiedCosmetic, Def: newDef})
	}

	for name := range old {
		if _, stillPresent := new[name]; !stillPresent {
			changes = append(changes, Change{Name: name, Kind: Removed})
		}
	}

	return changes
}
