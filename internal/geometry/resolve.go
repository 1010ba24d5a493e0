package geometry

import "github.com/hyprplug/hyprplugd/internal/errs"

// UsableArea is the target monitor's usable rectangle (origin + size,
// minus reserved bars), the only monitor state the resolver needs.
type UsableArea struct {
	X, Y, W, H int
}

// Resolve computes an absolute rectangle from spec against area, per the
// three-step algorithm in §4.2.
func Resolve(spec Spec, area UsableArea) (Rect, error) {
	w := spec.Size.W.resolve(area.W)
	h := spec.Size.H.resolve(area.H)

	if spec.MaxSize != nil {
		maxW := spec.MaxSize.W.resolve(area.W)
		maxH := spec.MaxSize.H.resolve(area.H)
		if w > maxW {
			w = maxW
		}
		if h > maxH {
			h = maxH
		}
	}

	if w <= 0 && h <= 0 {
		return Rect{}, errs.Spec
	}

	var x, y int
	if spec.Position != nil {
		x = area.X + spec.Position.X.resolve(area.W)
		y = area.Y + spec.Position.Y.resolve(area.H)
	} else {
		marginArea := UsableArea{
			X: area.X + spec.MarginPx,
			Y: area.Y + spec.MarginPx,
			W: area.W - 2*spec.MarginPx,
			H: area.H - 2*spec.MarginPx,
		}
		x = marginArea.X + (marginArea.W-w)/2
		y = marginArea.Y + (marginArea.H-h)/2
	}

	x += spec.OffsetDX
	y += spec.OffsetDY

	rect := clamp(Rect{X: x, Y: y, W: w, H: h}, area, spec.PreserveAspect)
	return rect, nil
}

// clamp keeps rect within area: first by shrinking if it's larger than
// area on either axis — preserving aspect ratio iff preserveAspect is set
// — then by shifting toward the origin without resizing (§4.2 step 3).
func clamp(rect Rect, area UsableArea, preserveAspect bool) Rect {
	if rect.W > area.W || rect.H > area.H {
		if preserveAspect && rect.W > 0 && rect.H > 0 {
			scaleW := float64(area.W) / float64(rect.W)
			scaleH := float64(area.H) / float64(rect.H)
			scale := scaleW
			if scaleH < scale {
				scale = scaleH
			}
			rect.W = int(float64(rect.W) * scale)
			rect.H = int(float64(rect.H) * scale)
		} else {
			if rect.W > area.W {
				rect.W = area.W
			}
			if rect.H > area.H {
				rect.H = area.H
			}
		}
	}

	if rect.X < area.X {
		rect.X = area.X
	}
	if rect.Y < area.Y {
		rect.Y = area.Y
	}
	if rect.X+rect.W > area.X+area.W {
		rect.X = area.X + area.W - rect.W
	}
	if rect.Y+rect.H > area.Y+area.H {
		rect.Y = area.Y + area.H - rect.H
	}
	return rect
}
