package reload

import (
	"testing"

	"github.com/hyprplug/hyprplugd/internal/config"
)

func def(cmd, class, size string) config.Definition {
	return config.Definition{Command: cmd, MatchClass: class, Size: size, MaxInstances: 1}
}

func TestDiffClassifiesEachKind(t *testing.T) {
	old := map[string]config.Definition{
		"term":   def("foo-term", "t", "75% 60%"),
		"editor": def("foo-editor", "e", "50% 50%"),
	}
	next := map[string]config.Definition{
		"term":    def("foo-term", "t", "80% 70%"), // cosmetic: size changed
		"editor":  def("bar-editor", "e", "50% 50%"), // respawn: command changed
		"browser": def("foo-browser", "b", "60% 60%"), // added
	}

	changes := Diff(old, next)

	byName := map[string]Change{}
	for _, c := range changes {
		byName[c.Name] = c
	}

	if byName["term"].Kind != ModifiedCosmetic {
		t.Errorf("term kind = %v, want ModifiedCosmetic", byName["term"].Kind)
	}
	if byName["editor"].Kind != ModifiedRespawn {
		t.Errorf("editor kind = %v, want ModifiedRespawn", byName["editor"].Kind)
	}
	if byName["browser"].Kind != Added {
		t.Errorf("browser kind = %v, want Added", byName["browser"].Kind)
	}
}

func TestDiffMarksRemoved(t *testing.T) {
	old := map[string]config.Definition{"term": def("foo-term", "t", "75% 60%")}
	next := map[string]config.Definition{}

	changes := Diff(old, next)
	if len(changes) != 1 || changes[0].Name != "term" || changes[0].Kind != Removed {
		t.Fatalf("changes = %+v, want single Removed(term)", changes)
	}
}

func TestDiffUnchangedWhenFingerprintsEqual(t *testing.T) {
	d := def("foo-term", "t", "75% 60%")
	old := map[string]config.Definition{"term": d}
	next := map[string]config.Definition{"term": d}

	changes := Diff(old, next)
	if len(changes) != 1 || changes[0].Kind != Unchanged {
		t.Fatalf("changes = %+v, want single Unchanged(term)", changes)
	}
}
