package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"github.com/hyprplug/hyprplugd/internal/errs"
)

var generationSeq uint64

// nextSeq returns the next monotonic generation sequence number.
func nextSeq() uint64 { return atomic.AddUint64(&generationSeq, 1) }

// Load reads, merges, expands, and validates the configuration at path,
// producing a new Generation. On any failure, running state is untouched
// (§4.5 step 2) — the caller simply discards the returned error.
func Load(path string) (*Generation, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", errs.ConfigParse, path, err)
	}
	return Parse(raw, path)
}

// Parse is Load's pure counterpart, taking the file content directly so
// tests don't need a filesystem.
func Parse(raw []byte, sourcePath string) (*Generation, error) {
	var root rawRoot
	if _, err := toml.Decode(string(raw), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ConfigParse, err)
	}

	merged, err := mergeSections(root.Hyprplug, root.Rustr)
	if err != nil {
		return nil, err
	}

	gen := &Generation{
		Seq:         nextSeq(),
		Scratchpads: make(map[string]Definition, len(merged.Scratchpads)),
		Plugins:     merged.Plugins,
		SourcePath:  sourcePath,
		raw:         raw,
	}

	var verr *multierror.Error
	for name, rs := range merged.Scratchpads {
		expanded, err := expandScratchpad(rs, merged.Variables)
		if err != nil {
			verr = multierror.Append(verr, fmt.Errorf("scratchpad %q: %w", name, err))
			continue
		}
		def, err := toDefinition(name, expanded)
		if err != nil {
			verr = multierror.Append(verr, fmt.Errorf("scratchpad %q: %w", name, err))
			continue
		}
		gen.Scratchpads[name] = def
	}
	if verr.ErrorOrNil() != nil {
		return nil, verr
	}

	return gen, nil
}

// mergeSections merges the two equivalent top-level sections: plugin
// lists are unioned with de-duplication, variable maps right-wins
// (second section overrides the first), scratchpads follow the same
// right-wins rule by name (§4.7).
func mergeSections(a, b *rawSection) (rawSection, error) {
	merged := rawSection{
		Variables:   map[string]string{},
		Scratchpads: map[string]rawScratchpad{},
	}
	seenPlugin := map[string]bool{}
	apply := func(s *rawSection) {
		if s == nil {
			return
		}
		for _, p := range s.Plugins {
			if !seenPlugin[p] {
				seenPlugin[p] = true
				merged.Plugins = append(merged.Plugins, p)
			}
		}
		for k, v := range s.Variables {
			merged.Variables[k] = v
		}
		for name, rs := range s.Scratchpads {
			merged.Scratchpads[name] = rs
		}
	}
	apply(a)
	apply(b)
	return merged, nil
}

// toDefinition converts a variable-expanded raw scratchpad into the
// runtime Definition, applying defaults (§3): max_instances >= 1,
// unfocus defaults to none, hysteresis defaults to 0.4s, smart_focus and
// restore_focus default true.
func toDefinition(name string, raw rawScratchpad) (Definition, error) {
	if strings.TrimSpace(raw.Command) == "" {
		return Definition{}, fmt.Errorf("%w: empty spawn command", errs.ConfigParse)
	}

	class := raw.Class
	if class == "" {
		class = AutoDetectClass
	}

	maxInstances := raw.MaxInstances
	if maxInstances < 1 {
		maxInstances = 1
	}

	unfocus := UnfocusNone
	switch strings.ToLower(raw.Unfocus) {
	case "", "none":
		unfocus = UnfocusNone
	case "hide":
		unfocus = UnfocusHide
	default:
		return Definition{}, fmt.Errorf("%w: unfocus must be \"none\" or \"hide\", got %q", errs.ConfigParse, raw.Unfocus)
	}

	hysteresis := time.Duration(raw.Hysteresis * float64(time.Second))
	if hysteresis <= 0 {
		hysteresis = 400 * time.Millisecond
	}

	smartFocus := true
	if raw.SmartFocus != nil {
		smartFocus = *raw.SmartFocus
	}
	restoreFocus := true
	if raw.RestoreFocus != nil {
		restoreFocus = *raw.RestoreFocus
	}

	dx, dy, err := parseOffset(raw.Offset)
	if err != nil {
		return Definition{}, err
	}

	return Definition{
		Name:            name,
		Command:         raw.Command,
		MatchClass:      class,
		Size:            raw.Size,
		Position:        raw.Position,
		Margin:          raw.Margin,
		OffsetDX:        dx,
		OffsetDY:        dy,
		MaxSize:         raw.MaxSize,
		Animation:       raw.Animation,
		Lazy:            raw.Lazy,
		Pinned:          raw.Pinned,
		SmartFocus:      smartFocus,
		CloseOnHide:     raw.CloseOnHide,
		PreserveAspect:  raw.PreserveAspect,
		MultiWindow:     raw.MultiWindow,
		MaxInstances:    maxInstances,
		Unfocus:         unfocus,
		Hysteresis:      hysteresis,
		Excludes:        raw.Excludes,
		RestoreExcluded: raw.RestoreExcluded,
		ForceMonitor:    raw.ForceMonitor,
		RestoreFocus:    restoreFocus,
	}, nil
}

func parseOffset(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	toks := strings.Fields(s)
	if len(toks) != 2 {
		return 0, 0, fmt.Errorf("%w: offset %q needs exactly two tokens", errs.ConfigParse, s)
	}
	dx, err := strconv.Atoi(toks[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offset %q: %v", errs.ConfigParse, s, err)
	}
	dy, err := strconv.Atoi(toks[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: offset %q: %v", errs.ConfigParse, s, err)
	}
	return dx, dy, nil
}

// RawBytes returns the source bytes that produced gen, for the hot-reload
// backup ring (§6.7).
func (g *Generation) RawBytes() []byte { return g.raw }
