// Package combine runs the material combination of a mesh: it makes every
// material texture readable, packs the textures into one atlas, remaps the
// submesh UVs into the atlas and hands the result to a consumer.
//
// The provided mesh is never modified. Any failure aborts before the
// consumer is called.
package combine

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/uvwizard/internal/logger"
	"github.com/Faultbox/uvwizard/pkg/atlas"
	"github.com/Faultbox/uvwizard/pkg/mesh"
	"github.com/Faultbox/uvwizard/pkg/uvmap"
)

// ErrMissingInput is returned when the provider has no usable mesh or
// material data.
var ErrMissingInput = errors.New("missing mesh or material data")

// MeshProvider supplies the mesh to combine. Submesh i must be drawn with
// material i.
type MeshProvider interface {
	Mesh() (*mesh.Mesh, error)
}

// Importer makes texture pixel data accessible. It fails when the texture
// cannot be made readable.
type Importer interface {
	MakeReadable(tex *mesh.Texture) error
}

// Consumer applies a combination result, typically to a copy of src.
type Consumer interface {
	Apply(src *mesh.Mesh, res *Result) error
}

// Result is the outcome of a combination.
type Result struct {
	Atlas    *atlas.Atlas
	UVs      []mgl32.Vec2  // Remapped UVs, one per vertex of the source mesh
	Material mesh.Material // Single material sampling the atlas
}

// Combiner runs combinations with fixed settings.
type Combiner struct {
	size     int
	opts     atlas.Options
	importer Importer
	log      *zap.Logger
}

// New creates a combiner packing into size×size atlases.
func New(size int, opts atlas.Options, importer Importer) *Combiner {
	return &Combiner{
		size:     size,
		opts:     opts,
		importer: importer,
		log:      logger.Named("combine"),
	}
}

// Combine loads the mesh from provider, builds the atlas and remapped UVs,
// and passes them to consumer. consumer may be nil to only compute the
// result.
func (c *Combiner) Combine(provider MeshProvider, consumer Consumer) (*Result, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: no mesh provider", ErrMissingInput)
	}
	src, err := provider.Mesh()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingInput, err)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: provider returned no mesh", ErrMissingInput)
	}

	res, err := c.Build(src)
	if err != nil {
		return nil, err
	}

	if consumer != nil {
		if err := consumer.Apply(src, res); err != nil {
			return nil, fmt.Errorf("applying result: %w", err)
		}
	}

	c.log.Info("materials combined",
		zap.String("mesh", src.Name),
		zap.Int("materials", len(src.Materials)),
		zap.Int("atlas", res.Atlas.Size),
		zap.Float64("utilization", res.Atlas.Utilization()))
	return res, nil
}

// Build computes the atlas and remapped UVs for m without calling a
// consumer. Neither the geometry nor the materials of m are modified;
// imported pixel data lives only in the result atlas.
func (c *Combiner) Build(m *mesh.Mesh) (*Result, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: no mesh", ErrMissingInput)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: mesh %q: %w", ErrMissingInput, m.Name, err)
	}
	// Index ranges are checked up front so nothing is imported or packed
	// for a mesh that cannot be remapped.
	indices := m.SubmeshIndices()
	if err := uvmap.Validate(len(m.UVs), indices); err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}

	images, err := c.collect(m)
	if err != nil {
		return nil, err
	}

	packed, err := atlas.Pack(images, c.size, c.opts)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	if packed.Scale != 1 {
		c.log.Warn("textures downscaled to fit atlas",
			zap.String("mesh", m.Name),
			zap.Float64("scale", packed.Scale))
	}

	uvs, err := uvmap.Remap(m.UVs, indices, packed.Rects)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", m.Name, err)
	}

	return &Result{
		Atlas: packed,
		UVs:   uvs,
		Material: mesh.Material{
			Name:    m.Name + "_atlas",
			Diffuse: mgl32.Vec4{1, 1, 1, 1},
			Texture: &mesh.Texture{Name: m.Name + "_atlas", Image: packed.Image},
		},
	}, nil
}

// collect returns one image per material, nil for untextured materials.
// Unreadable textures are imported into copies, so the materials of m keep
// their state whatever the outcome. Every texture that cannot be made
// readable is reported.
func (c *Combiner) collect(m *mesh.Mesh) ([]image.Image, error) {
	images := make([]image.Image, len(m.Materials))
	var errs error

	for i, tex := range m.Textures() {
		name := m.Materials[i].Name
		if tex == nil {
			c.log.Debug("material has no texture, using white",
				zap.Int("submesh", i),
				zap.String("material", name))
			continue
		}
		if tex.Readable() {
			images[i] = tex.Image
			continue
		}

		c.log.Warn("texture is not readable, importing",
			zap.String("material", name),
			zap.String("texture", tex.Name))
		if c.importer == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: material %d %q: texture %q is not readable and no importer is set",
				atlas.ErrPrecondition, i, name, tex.Name))
			continue
		}
		imported := *tex
		if err := c.importer.MakeReadable(&imported); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: material %d %q: %w",
				atlas.ErrPrecondition, i, name, err))
			continue
		}
		images[i] = imported.Image
	}

	if errs != nil {
		return nil, errs
	}
	return images, nil
}
