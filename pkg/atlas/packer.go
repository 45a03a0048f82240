package atlas

import (
	"cmp"
	"image"
	"slices"
)

// guillotine tracks the free space of a square canvas as disjoint rectangles.
// Every insert consumes one free rectangle and splits the remainder in two,
// so placed items can never overlap.
type guillotine struct {
	free    []image.Rectangle
	padding int
}

// newGuillotine creates a packer for a side×side canvas. The canvas is grown
// by the padding so the trailing gap of edge items may hang off the atlas.
func newGuillotine(side, padding int) *guillotine {
	return &guillotine{
		free:    []image.Rectangle{image.Rect(0, 0, side+padding, side+padding)},
		padding: padding,
	}
}

// insert places a w×h item in the smallest free rectangle that holds it.
func (g *guillotine) insert(w, h int) (image.Rectangle, bool) {
	pw, ph := w+g.padding, h+g.padding

	best := -1
	for i, space := range g.free {
		if pw > space.Dx() || ph > space.Dy() {
			continue
		}
		if best < 0 || area(space) < area(g.free[best]) {
			best = i
		}
	}
	if best < 0 {
		return image.Rectangle{}, false
	}

	space := g.free[best]
	g.free = slices.Delete(g.free, best, best+1)
	g.free = append(g.free, split(space, pw, ph)...)

	return image.Rect(space.Min.X, space.Min.Y, space.Min.X+w, space.Min.Y+h), true
}

// split returns the leftover of space after a w×h item is put in its corner.
// The longer leftover axis keeps the full extent of the space.
func split(space image.Rectangle, w, h int) []image.Rectangle {
	dw := space.Dx() - w
	dh := space.Dy() - h
	min := space.Min

	switch {
	case dw == 0 && dh == 0:
		return nil
	case dh == 0:
		return []image.Rectangle{image.Rect(min.X+w, min.Y, space.Max.X, space.Max.Y)}
	case dw == 0:
		return []image.Rectangle{image.Rect(min.X, min.Y+h, space.Max.X, space.Max.Y)}
	}

	if dw > dh {
		return []image.Rectangle{
			image.Rect(min.X, min.Y+h, min.X+w, space.Max.Y),
			image.Rect(min.X+w, min.Y, space.Max.X, space.Max.Y),
		}
	}
	return []image.Rectangle{
		image.Rect(min.X+w, min.Y, space.Max.X, min.Y+h),
		image.Rect(min.X, min.Y+h, space.Max.X, space.Max.Y),
	}
}

// place packs all sizes into a side×side canvas. Regions are returned in
// input order. Larger items go first: longest side, then area, then index.
func place(sizes []image.Point, side, padding int) ([]image.Rectangle, bool) {
	order := make([]int, len(sizes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		sa, sb := sizes[a], sizes[b]
		if c := cmp.Compare(max(sb.X, sb.Y), max(sa.X, sa.Y)); c != 0 {
			return c
		}
		return cmp.Compare(sb.X*sb.Y, sa.X*sa.Y)
	})

	g := newGuillotine(side, padding)
	regions := make([]image.Rectangle, len(sizes))
	for _, i := range order {
		r, ok := g.insert(sizes[i].X, sizes[i].Y)
		if !ok {
			return nil, false
		}
		regions[i] = r
	}
	return regions, true
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
