package interaction

// Scale bounds for the view transform. Zoom requests outside the range are
// clamped, never rejected.
const (
	MinScale = 0.1
	MaxScale = 4.0
)

// Transform is the affine pan/zoom transform applied uniformly to a rendered
// view. It is independent of hover and selection state.
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// IdentityTransform returns the neutral transform used after a view change
// or a data reload.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Pan translates the transform by the given screen-space delta.
func (t Transform) Pan(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// Zoom multiplies the scale by factor, keeping the point (cx, cy) in screen
// space fixed. The resulting scale is clamped to [MinScale, MaxScale].
func (t Transform) Zoom(factor, cx, cy float64) Transform {
	next := clampScale(t.Scale * factor)
	if next == t.Scale {
		return t
	}
	// Keep the anchor point stationary: the world point under (cx, cy)
	// must map to the same screen position after rescaling.
	ratio := next / t.Scale
	t.X = cx - (cx-t.X)*ratio
	t.Y = cy - (cy-t.Y)*ratio
	t.Scale = next
	return t
}

// Apply maps a world coordinate to screen space.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return x*t.Scale + t.X, y*t.Scale + t.Y
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
