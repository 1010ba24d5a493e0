// Package geometry computes absolute (x, y, w, h) rectangles from a
// scratchpad's size/position/margin/offset specification against a target
// monitor's usable area (§4.2), with a fingerprint-keyed cache.
package geometry

import "fmt"

// DimKind tags whether a Dim is a percentage of the usable axis or a
// literal pixel count (§4.2's "N% or Npx" grammar, §9 tagged variants).
type DimKind int

const (
	DimPercent DimKind = iota
	DimPixels
)

// Dim is one resolved size/position token.
type Dim struct {
	Kind  DimKind
	Value float64
}

func (d Dim) resolve(usable int) int {
	if d.Kind == DimPercent {
		return int(d.Value / 100 * float64(usable))
	}
	return int(d.Value)
}

func (d Dim) String() string {
	if d.Kind == DimPercent {
		return fmt.Sprintf("%g%%", d.Value)
	}
	return fmt.Sprintf("%gpx", d.Value)
}

// Size is a width/height pair of Dims.
type Size struct {
	W, H Dim
}

// Position is an explicit x/y pair of Dims. A nil *Position in a Spec
// means "center" (§4.2 "if center, place so the rectangle is centered").
type Position struct {
	X, Y Dim
}

// Spec is everything the Geometry Resolver needs from a scratchpad
// definition to compute a rectangle, independent of how it was expressed
// in configuration.
type Spec struct {
	Size           Size
	MaxSize        *Size
	Position       *Position // nil => center
	MarginPx       int
	OffsetDX       int
	OffsetDY       int
	PreserveAspect bool
}

// Rect is an absolute, resolved rectangle in compositor pixel space.
type Rect struct {
	X, Y, W, H int
}
