package atlas

import (
	"fmt"
	"image"
)

// Rect is a placement rectangle normalized to the atlas (0..1 on both axes).
type Rect struct {
	X, Y          float32
	Width, Height float32
}

// Full covers the entire atlas.
var Full = Rect{X: 0, Y: 0, Width: 1, Height: 1}

// MaxX returns the right edge.
func (r Rect) MaxX() float32 { return r.X + r.Width }

// MaxY returns the far edge along V.
func (r Rect) MaxY() float32 { return r.Y + r.Height }

// Overlaps reports whether r and o share any area. Touching edges do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.MaxX() && o.X < r.MaxX() && r.Y < o.MaxY() && o.Y < r.MaxY()
}

// String returns the rectangle as "(x,y wxh)".
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}

// Origin selects which atlas row V=0 refers to.
type Origin int

const (
	// OriginBottomLeft puts V=0 on the last image row (OpenGL convention).
	OriginBottomLeft Origin = iota
	// OriginTopLeft puts V=0 on the first image row.
	OriginTopLeft
)

// String returns the config spelling of the origin.
func (o Origin) String() string {
	switch o {
	case OriginBottomLeft:
		return "bottom-left"
	case OriginTopLeft:
		return "top-left"
	default:
		return fmt.Sprintf("Origin(%d)", int(o))
	}
}

// ParseOrigin parses "bottom-left" or "top-left". Empty selects bottom-left.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "", "bottom-left":
		return OriginBottomLeft, nil
	case "top-left":
		return OriginTopLeft, nil
	default:
		return 0, fmt.Errorf("unknown uv origin %q", s)
	}
}

// normalize converts a pixel region of a side×side atlas to a Rect.
func normalize(region image.Rectangle, side int, origin Origin) Rect {
	s := float32(side)
	r := Rect{
		X:      float32(region.Min.X) / s,
		Width:  float32(region.Dx()) / s,
		Height: float32(region.Dy()) / s,
	}
	if origin == OriginTopLeft {
		r.Y = float32(region.Min.Y) / s
	} else {
		r.Y = float32(side-region.Max.Y) / s
	}
	return r
}
