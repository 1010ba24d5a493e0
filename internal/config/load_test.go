package config

import (
	"strings"
	"testing"
	"time"
)

const sampleTOML = `
[hyprplug]
plugins = ["scratchpads", "expose"]

[hyprplug.variables]
term_cmd = "foo-term"

[hyprplug.scratchpads.term]
command = "[term_cmd] --class t"
class = "t"
size = "75% 60%"
unfocus = "hide"
hysteresis = 0.5

[rustr]
plugins = ["scratchpads", "wallpapers"]

[rustr.variables]
term_cmd = "bar-term"
`

func TestParseMergesSectionsVariableRightWins(t *testing.T) {
	gen, err := Parse([]byte(sampleTOML), "test.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def, ok := gen.Scratchpads["term"]
	if !ok {
		t.Fatal("expected scratchpad \"term\"")
	}
	if def.Command != "bar-term --class t" {
		t.Errorf("command = %q, want variable from the second (right-wins) section", def.Command)
	}
}

func TestParseUnionsPluginsDeduplicated(t *testing.T) {
	gen, err := Parse([]byte(sampleTOML), "test.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]bool{"scratchpads": true, "expose": true, "wallpapers": true}
	if len(gen.Plugins) != len(want) {
		t.Fatalf("plugins = %v, want union of %v", gen.Plugins, want)
	}
	for _, p := range gen.Plugins {
		if !want[p] {
			t.Errorf("unexpected plugin %q", p)
		}
	}
}

func TestParseDefaultsApplied(t *testing.T) {
	gen, err := Parse([]byte(sampleTOML), "test.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := gen.Scratchpads["term"]
	if def.MaxInstances != 1 {
		t.Errorf("max_instances = %d, want default 1", def.MaxInstances)
	}
	if !def.SmartFocus {
		t.Error("smart_focus should default true")
	}
	if def.Hysteresis != 500*time.Millisecond {
		t.Errorf("hysteresis = %v, want 500ms from config", def.Hysteresis)
	}
}

func TestParseUnresolvedVariableIsLoadError(t *testing.T) {
	doc := `
[hyprplug]
[hyprplug.scratchpads.term]
command = "[missing_var] --class t"
`
	if _, err := Parse([]byte(doc), "test.toml"); err == nil {
		t.Fatal("expected load error for unresolved variable")
	}
}

func TestParseEmptyCommandIsLoadError(t *testing.T) {
	doc := `
[hyprplug]
[hyprplug.scratchpads.term]
command = ""
`
	if _, err := Parse([]byte(doc), "test.toml"); err == nil {
		t.Fatal("expected load error for empty command")
	}
}

func TestParseMalformedTOML(t *testing.T) {
	if _, err := Parse([]byte("not = [valid"), "test.toml"); err == nil {
		t.Fatal("expected parse error for malformed TOML")
	}
}

func TestFingerprintStableAndSensitive(t *testing.T) {
	gen, err := Parse([]byte(sampleTOML), "test.toml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	def := gen.Scratchpads["term"]
	fp1 := def.Fingerprint()
	fp2 := def.Fingerprint()
	if fp1 != fp2 {
		t.Error("fingerprint should be stable across calls")
	}

	def.Size = "80% 70%"
	if def.Fingerprint() == fp1 {
		t.Error("fingerprint should change when size changes")
	}
	if !strings.Contains(def.CosmeticFingerprint(), "80% 70%") {
		t.Error("cosmetic fingerprint should reflect size changes")
	}
}
