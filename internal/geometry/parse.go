package geometry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyprplug/hyprplugd/internal/errs"
)

// ParseDim parses one "N%" or "Npx" token.
func ParseDim(token string) (Dim, error) {
	token = strings.TrimSpace(token)
	switch {
	case strings.HasSuffix(token, "%"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(token, "%"), 64)
		if err != nil {
			return Dim{}, fmt.Errorf("%w: %q: %v", errs.Spec, token, err)
		}
		return Dim{Kind: DimPercent, Value: v}, nil
	case strings.HasSuffix(token, "px"):
		v, err := strconv.ParseFloat(strings.TrimSuffix(token, "px"), 64)
		if err != nil {
			return Dim{}, fmt.Errorf("%w: %q: %v", errs.Spec, token, err)
		}
		return Dim{Kind: DimPixels, Value: v}, nil
	default:
		// Bare numbers are treated as pixels, matching how most of
		// Hyprland's own ecosystem tools accept geometry tokens.
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return Dim{}, fmt.Errorf("%w: unparseable token %q", errs.Spec, token)
		}
		return Dim{Kind: DimPixels, Value: v}, nil
	}
}

// ParseSize parses a two-token "W H" size string, e.g. "75% 60%".
func ParseSize(s string) (Size, error) {
	toks := strings.Fields(s)
	if len(toks) != 2 {
		return Size{}, fmt.Errorf("%w: size spec %q needs exactly two tokens", errs.Spec, s)
	}
	w, err := ParseDim(toks[0])
	if err != nil {
		return Size{}, err
	}
	h, err := ParseDim(toks[1])
	if err != nil {
		return Size{}, err
	}
	return Size{W: w, H: h}, nil
}

// ParsePosition parses a position spec: "center" (nil result), two tokens
// ("N% M%" or pixel pairs), matching §4.2's grammar.
func ParsePosition(s string) (*Position, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "center") {
		return nil, nil
	}
	toks := strings.Fields(s)
	if len(toks) != 2 {
		return nil, fmt.Errorf("%w: position spec %q needs \"center\" or exactly two tokens", errs.Spec, s)
	}
	x, err := ParseDim(toks[0])
	if err != nil {
		return nil, err
	}
	y, err := ParseDim(toks[1])
	if err != nil {
		return nil, err
	}
	return &Position{X: x, Y: y}, nil
}
