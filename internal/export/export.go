// Package export writes combination results to disk: the combined mesh as
// OBJ with its MTL, the atlas as PNG, and an optional YAML manifest of the
// placement rectangles.
package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/uvwizard/internal/combine"
	"github.com/Faultbox/uvwizard/internal/logger"
	"github.com/Faultbox/uvwizard/pkg/atlas"
	"github.com/Faultbox/uvwizard/pkg/mesh"
	"github.com/Faultbox/uvwizard/pkg/objfile"
)

// Options configures a Writer.
type Options struct {
	Dir      string       // Output directory, created on demand
	Manifest bool         // Write <name>_atlas.yaml
	Origin   atlas.Origin // Recorded in the manifest
}

// Writer writes results into a directory. It implements combine.Consumer.
type Writer struct {
	opts  Options
	files []string
	log   *zap.Logger
}

// NewWriter creates a writer.
func NewWriter(opts Options) *Writer {
	return &Writer{
		opts: opts,
		log:  logger.Named("export"),
	}
}

// Files returns the paths written so far.
func (w *Writer) Files() []string {
	return w.files
}

// Apply writes the combined copy of src: <name>.obj, <name>.mtl and the
// atlas files. src itself is not modified.
func (w *Writer) Apply(src *mesh.Mesh, res *combine.Result) error {
	name := baseName(src.Name)
	pngName := name + "_atlas.png"

	out, err := Collapse(src, res)
	if err != nil {
		return err
	}
	out.Materials[0].Texture = &mesh.Texture{
		Name:  name + "_atlas",
		Path:  pngName,
		Image: res.Atlas.Image,
	}

	if err := w.mkdir(); err != nil {
		return err
	}

	mtlName := name + ".mtl"
	if err := w.create(mtlName, func(f *os.File) error {
		return objfile.WriteMTL(f, out.Materials)
	}); err != nil {
		return err
	}
	if err := w.create(name+".obj", func(f *os.File) error {
		return objfile.Write(f, out, mtlName)
	}); err != nil {
		return err
	}

	names := lo.Map(src.Materials, func(m mesh.Material, _ int) string { return m.Name })
	sources := lo.Map(src.Materials, func(m mesh.Material, _ int) string {
		if m.Texture == nil {
			return ""
		}
		return m.Texture.Path
	})
	_, err = w.WriteAtlas(name, res.Atlas, names, sources)
	return err
}

// Collapse returns a copy of src with the remapped UVs and all submeshes
// merged into one drawn with the atlas material.
func Collapse(src *mesh.Mesh, res *combine.Result) (*mesh.Mesh, error) {
	if len(res.UVs) != len(src.UVs) {
		return nil, fmt.Errorf("result has %d uvs, mesh has %d", len(res.UVs), len(src.UVs))
	}

	out, err := src.Clone()
	if err != nil {
		return nil, err
	}
	out.UVs = append(out.UVs[:0], res.UVs...)

	total := 0
	for _, s := range out.Submeshes {
		total += len(s.Indices)
	}
	merged := make([]uint32, 0, total)
	for _, s := range out.Submeshes {
		merged = append(merged, s.Indices...)
	}
	out.Submeshes = []mesh.Submesh{{Indices: merged}}
	out.Materials = []mesh.Material{res.Material}
	return out, nil
}

// WriteAtlas writes <name>_atlas.png and, when enabled, the manifest.
// names and sources label the rectangles and may be shorter than the
// rectangle list. It returns the PNG path.
func (w *Writer) WriteAtlas(name string, a *atlas.Atlas, names, sources []string) (string, error) {
	name = baseName(name)
	if err := w.mkdir(); err != nil {
		return "", err
	}

	pngName := name + "_atlas.png"
	if err := w.create(pngName, func(f *os.File) error {
		return WritePNG(f, a.Image)
	}); err != nil {
		return "", err
	}

	if w.opts.Manifest {
		m := NewManifest(pngName, a, w.opts.Origin, names, sources)
		if err := w.create(name+"_atlas.yaml", func(f *os.File) error {
			enc := yaml.NewEncoder(f)
			enc.SetIndent(2)
			if err := enc.Encode(m); err != nil {
				return err
			}
			return enc.Close()
		}); err != nil {
			return "", err
		}
	}

	return filepath.Join(w.opts.Dir, pngName), nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

func (w *Writer) mkdir() error {
	if w.opts.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(w.opts.Dir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	return nil
}

// create writes one output file through fn and records its path.
func (w *Writer) create(name string, fn func(*os.File) error) error {
	path := filepath.Join(w.opts.Dir, name)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := fn(file); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	w.files = append(w.files, path)
	w.log.Debug("wrote file", zap.String("path", path))
	return nil
}

func baseName(name string) string {
	if name == "" {
		return "combined"
	}
	return filepath.Base(name)
}
