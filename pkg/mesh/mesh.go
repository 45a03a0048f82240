// Package mesh holds the multi-material mesh data the atlas tools operate on.
package mesh

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"
)

// Mesh validation errors.
var (
	ErrNoSubmeshes       = errors.New("mesh has no submeshes")
	ErrMaterialMismatch  = errors.New("submesh count does not match material count")
	ErrAttributeMismatch = errors.New("vertex attribute length mismatch")
)

// Texture is an image bound to a material.
// Image stays nil until the pixel data has been imported.
type Texture struct {
	Name  string
	Path  string
	Image image.Image
}

// Readable reports whether the pixel data is available.
func (t *Texture) Readable() bool {
	return t != nil && t.Image != nil
}

// Material describes how a submesh is shaded.
type Material struct {
	Name    string
	Diffuse mgl32.Vec4 // RGBA tint
	Texture *Texture   // nil when the material has no texture
}

// Submesh is a triangle list into the shared vertex buffer.
type Submesh struct {
	Indices []uint32
}

// TriangleCount returns the number of triangles.
func (s Submesh) TriangleCount() int {
	return len(s.Indices) / 3
}

// Geometry is the vertex data of a mesh.
type Geometry struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3 // Empty or one per position
	UVs       []mgl32.Vec2 // One per position
	Submeshes []Submesh
}

// Mesh is a shared vertex buffer split into submeshes, one material each.
// Submeshes[i] is drawn with Materials[i].
type Mesh struct {
	Name string
	Geometry
	Materials []Material
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles over all submeshes.
func (m *Mesh) TriangleCount() int {
	n := 0
	for _, s := range m.Submeshes {
		n += s.TriangleCount()
	}
	return n
}

// SubmeshIndices returns the triangle lists of all submeshes in order.
// The slices alias the mesh data.
func (m *Mesh) SubmeshIndices() [][]uint32 {
	out := make([][]uint32, len(m.Submeshes))
	for i, s := range m.Submeshes {
		out[i] = s.Indices
	}
	return out
}

// Textures returns the texture of every material in order, nil where a
// material has none.
func (m *Mesh) Textures() []*Texture {
	out := make([]*Texture, len(m.Materials))
	for i := range m.Materials {
		out[i] = m.Materials[i].Texture
	}
	return out
}

// Validate checks the structural invariants of the mesh. Index ranges are
// checked by the remapper.
func (m *Mesh) Validate() error {
	if len(m.Submeshes) == 0 {
		return ErrNoSubmeshes
	}
	if len(m.Submeshes) != len(m.Materials) {
		return fmt.Errorf("%w: %d submeshes, %d materials", ErrMaterialMismatch, len(m.Submeshes), len(m.Materials))
	}
	if len(m.UVs) != len(m.Positions) {
		return fmt.Errorf("%w: %d positions, %d uvs", ErrAttributeMismatch, len(m.Positions), len(m.UVs))
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d positions, %d normals", ErrAttributeMismatch, len(m.Positions), len(m.Normals))
	}
	return nil
}

// Clone returns a copy whose geometry can be changed without touching m.
// Materials are copied by value; textures are shared since images are
// treated as immutable.
func (m *Mesh) Clone() (*Mesh, error) {
	out := &Mesh{Name: m.Name}
	if err := copier.CopyWithOption(&out.Geometry, &m.Geometry, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("copying geometry: %w", err)
	}
	if m.Materials != nil {
		out.Materials = make([]Material, len(m.Materials))
		copy(out.Materials, m.Materials)
	}
	return out, nil
}
