package texture

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/uvwizard/internal/logger"
	"github.com/Faultbox/uvwizard/pkg/mesh"
)

// Import errors.
var (
	ErrImportDisabled = errors.New("texture import disabled")
	ErrNoSource       = errors.New("texture has no source file")
)

// ImportOptions configures an Importer.
type ImportOptions struct {
	// AllowImport permits decoding texture files. When false the importer
	// behaves like a runtime build that cannot change asset readability.
	AllowImport bool
	// ColorKey makes magenta pixels transparent.
	ColorKey bool
}

// Importer decodes texture files on demand.
type Importer struct {
	opts  ImportOptions
	cache *Cache
	log   *zap.Logger
}

// NewImporter creates an importer with its own cache.
func NewImporter(opts ImportOptions) *Importer {
	return &Importer{
		opts:  opts,
		cache: NewCache(),
		log:   logger.Named("texture"),
	}
}

// Cache returns the decoded texture cache.
func (imp *Importer) Cache() *Cache {
	return imp.cache
}

// MakeReadable decodes the pixel data of tex from tex.Path. Textures that
// are nil or already readable are left alone.
func (imp *Importer) MakeReadable(tex *mesh.Texture) error {
	if tex == nil || tex.Readable() {
		return nil
	}
	if !imp.opts.AllowImport {
		return fmt.Errorf("%w: %q is not readable", ErrImportDisabled, tex.Name)
	}
	if tex.Path == "" {
		return fmt.Errorf("%w: %q", ErrNoSource, tex.Name)
	}

	if img, ok := imp.cache.Get(tex.Path); ok {
		tex.Image = img
		return nil
	}

	imp.log.Debug("importing texture",
		zap.String("name", tex.Name),
		zap.String("path", tex.Path))

	data, err := os.ReadFile(tex.Path)
	if err != nil {
		return fmt.Errorf("reading texture %q: %w", tex.Name, err)
	}
	img, err := Decode(data, tex.Path)
	if err != nil {
		return err
	}

	rgba := ToRGBA(img, imp.opts.ColorKey)
	imp.cache.Set(tex.Path, rgba)
	tex.Image = rgba

	imp.log.Debug("texture imported",
		zap.String("name", tex.Name),
		zap.Int("width", rgba.Rect.Dx()),
		zap.Int("height", rgba.Rect.Dy()))
	return nil
}
