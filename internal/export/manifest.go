package export

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/uvwizard/pkg/atlas"
)

// Manifest records where every source texture landed in an atlas.
type Manifest struct {
	Image   string          `yaml:"image"`
	Size    int             `yaml:"size"`
	Scale   float64         `yaml:"scale"`
	Origin  string          `yaml:"origin"`
	Entries []ManifestEntry `yaml:"entries"`
}

// ManifestEntry is one placed texture. Rect is normalized
// [x, y, width, height]; Region is the pixel rectangle
// [minX, minY, maxX, maxY] with a top-left origin.
type ManifestEntry struct {
	Index  int        `yaml:"index"`
	Name   string     `yaml:"name,omitempty"`
	Source string     `yaml:"source,omitempty"`
	Rect   [4]float32 `yaml:"rect,flow"`
	Region [4]int     `yaml:"region,flow"`
}

// NewManifest describes a.
func NewManifest(imageName string, a *atlas.Atlas, origin atlas.Origin, names, sources []string) *Manifest {
	m := &Manifest{
		Image:   imageName,
		Size:    a.Size,
		Scale:   a.Scale,
		Origin:  origin.String(),
		Entries: make([]ManifestEntry, len(a.Rects)),
	}
	for i, r := range a.Rects {
		e := ManifestEntry{
			Index: i,
			Rect:  [4]float32{r.X, r.Y, r.Width, r.Height},
		}
		if i < len(a.Regions) {
			g := a.Regions[i]
			e.Region = [4]int{g.Min.X, g.Min.Y, g.Max.X, g.Max.Y}
		}
		if i < len(names) {
			e.Name = names[i]
		}
		if i < len(sources) {
			e.Source = sources[i]
		}
		m.Entries[i] = e
	}
	return m
}

// Rects returns the entry rectangles in index order.
func (m *Manifest) Rects() []atlas.Rect {
	out := make([]atlas.Rect, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = atlas.Rect{X: e.Rect[0], Y: e.Rect[1], Width: e.Rect[2], Height: e.Rect[3]}
	}
	return out
}

// ReadManifest loads a manifest written by a Writer.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return &m, nil
}
