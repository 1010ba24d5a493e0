package config

import (
	"fmt"
	"regexp"

	"github.com/hyprplug/hyprplugd/internal/errs"
)

// variableRef matches a [name] token: letters, digits, underscore, dash.
var variableRef = regexp.MustCompile(`\[([A-Za-z0-9_-]+)\]`)

// expandVariables replaces every [name] token in s with vars[name].
// Unresolved names are a load error (§4.7).
func expandVariables(s string, vars map[string]string) (string, error) {
	var firstErr error
	out := variableRef.ReplaceAllStringFunc(s, func(match string) string {
		name := variableRef.FindStringSubmatch(match)[1]
		v, ok := vars[name]
		if !ok {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: unresolved variable [%s]", errs.ConfigParse, name)
			}
			return match
		}
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// expandScratchpad expands every string field of raw that may carry
// [name] references.
func expandScratchpad(raw rawScratchpad, vars map[string]string) (rawScratchpad, error) {
	fields := []*string{
		&raw.Command, &raw.Class, &raw.Size, &raw.Position,
		&raw.Offset, &raw.MaxSize, &raw.Animation, &raw.ForceMonitor,
	}
	for _, f := range fields {
		expanded, err := expandVariables(*f, vars)
		if err != nil {
			return rawScratchpad{}, err
		}
		*f = expanded
	}
	for i, ex := range raw.Excludes {
		expanded, err := expandVariables(ex, vars)
		if err != nil {
			return rawScratchpad{}, err
		}
		raw.Excludes[i] = expanded
	}
	return raw, nil
}
