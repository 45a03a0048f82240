// Package uvmap moves submesh UV coordinates into their atlas rectangles.
package uvmap

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/uvwizard/pkg/atlas"
)

// Remap errors.
var (
	ErrIndex           = errors.New("triangle index out of range")
	ErrSubmeshMismatch = errors.New("submesh count does not match rect count")
)

// IndexError reports a triangle index that does not address a UV.
type IndexError struct {
	Submesh  int    // Submesh holding the bad index
	Position int    // Position of the index in the submesh triangle list
	Index    uint32 // The offending vertex index
	Len      int    // Length of the UV array
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("submesh %d: index %d at position %d out of range for %d uvs",
		e.Submesh, e.Index, e.Position, e.Len)
}

// Is makes errors.Is(err, ErrIndex) match.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// Remap returns a copy of uvs where every vertex referenced by submesh i is
// mapped into rects[i]:
//
//	u' = r.X + u*r.Width
//	v' = r.Y + v*r.Height
//
// Each vertex is mapped from its original value, so repeated references
// within a submesh apply the transform once. Submeshes are applied in
// ascending order: a vertex shared by several submeshes ends up with the
// transform of the last one. Unreferenced vertices are copied unchanged and
// results are not clamped.
//
// All indices are checked before any work is done; on error uvs is untouched
// and no partial result is returned.
func Remap(uvs []mgl32.Vec2, submeshes [][]uint32, rects []atlas.Rect) ([]mgl32.Vec2, error) {
	if len(submeshes) != len(rects) {
		return nil, fmt.Errorf("%w: %d submeshes, %d rects", ErrSubmeshMismatch, len(submeshes), len(rects))
	}
	if err := Validate(len(uvs), submeshes); err != nil {
		return nil, err
	}

	out := make([]mgl32.Vec2, len(uvs))
	copy(out, uvs)

	for i, indices := range submeshes {
		r := rects[i]
		for _, idx := range indices {
			out[idx] = Transform(uvs[idx], r)
		}
	}

	return out, nil
}

// Transform maps a single UV into r.
func Transform(uv mgl32.Vec2, r atlas.Rect) mgl32.Vec2 {
	return mgl32.Vec2{
		r.X + uv.X()*r.Width,
		r.Y + uv.Y()*r.Height,
	}
}

// Validate checks that every index addresses one of n vertices.
func Validate(n int, submeshes [][]uint32) error {
	for s, indices := range submeshes {
		for p, idx := range indices {
			if int(idx) >= n {
				return &IndexError{Submesh: s, Position: p, Index: idx, Len: n}
			}
		}
	}
	return nil
}

// Owners returns, for each of n vertices, the submesh whose transform Remap
// applies to it, or -1 when no submesh references the vertex.
func Owners(n int, submeshes [][]uint32) ([]int, error) {
	if err := Validate(n, submeshes); err != nil {
		return nil, err
	}

	owners := make([]int, n)
	for i := range owners {
		owners[i] = -1
	}
	for s, indices := range submeshes {
		for _, idx := range indices {
			owners[idx] = s
		}
	}
	return owners, nil
}

// Shared returns the vertices referenced by more than one submesh, in
// ascending order. These take the transform of the highest submesh.
func Shared(n int, submeshes [][]uint32) ([]uint32, error) {
	if err := Validate(n, submeshes); err != nil {
		return nil, err
	}

	first := make([]int, n)
	for i := range first {
		first[i] = -1
	}
	shared := make([]bool, n)
	for s, indices := range submeshes {
		for _, idx := range indices {
			switch {
			case first[idx] < 0:
				first[idx] = s
			case first[idx] != s:
				shared[idx] = true
			}
		}
	}

	var out []uint32
	for i, ok := range shared {
		if ok {
			out = append(out, uint32(i))
		}
	}
	return out, nil
}
