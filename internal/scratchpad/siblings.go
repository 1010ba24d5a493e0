package scratchpad

// Siblings gives the engine read access to every other scratchpad's state,
// needed for excludes (§4.3) and the same-exclude-group hysteresis fix
// (§9 Open Questions). It is implemented by the runtime core's shared
// state aggregate; the engine never constructs one itself.
type Siblings interface {
	Lookup(name string) (*State, bool)
	Names() []string
}

// excludeTargets resolves def's excludes list (which may contain "*")
// against sib, excluding def's own name.
func excludeTargets(def string, excludes []string, sib Siblings) []string {
	for _, e := range excludes {
		if e == "*" {
			var all []string
			for _, name := range sib.Names() {
				if name != def {
					all = append(all, name)
				}
			}
			return all
		}
	}
	out := make([]string, 0, len(excludes))
	for _, e := range excludes {
		if e != def {
			out = append(out, e)
		}
	}
	return out
}

// sameExcludeGroup reports whether a and b exclude each other (directly,
// or via "*"), the relation the hysteresis fix in §9 needs: switching
// focus between two scratchpads that exclude each other must not trigger
// a hide.
func sameExcludeGroup(a, b *State) bool {
	if a == nil || b == nil {
		return false
	}
	return hasExclude(a.Def.Excludes, b.Def.Name) || hasExclude(b.Def.Excludes, a.Def.Name)
}

func hasExclude(excludes []string, name string) bool {
	for _, e := range excludes {
		if e == "*" || e == name {
			return true
		}
	}
	return false
}
