// Package atlas packs source images into a single square texture atlas.
//
// Pack places every image without overlap into a side×side canvas and returns
// one normalized placement rectangle per input, in input order. The
// rectangles are what pkg/uvmap uses to move submesh UVs into the atlas.
package atlas

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/transform"
	"github.com/samber/lo"
	"golang.org/x/image/draw"
)

// DefaultSize is the default atlas side in pixels.
const DefaultSize = 2048

// Options controls how images are packed. The zero value packs without
// padding, downscales when the images do not fit, and uses a bottom-left
// UV origin.
type Options struct {
	// Padding is the gap in pixels kept between placed images.
	Padding int
	// NoDownscale reports a capacity error instead of halving image sizes
	// when the total area fits but the images cannot be arranged.
	NoDownscale bool
	// ShrinkToFit trims the atlas to the smallest power-of-two square that
	// still holds every placement.
	ShrinkToFit bool
	// Origin selects the V axis convention of the returned rectangles.
	Origin Origin
}

// Atlas is a packed texture atlas.
type Atlas struct {
	Image   *image.RGBA
	Size    int               // Side of Image in pixels
	Rects   []Rect            // Normalized placements, aligned with the input images
	Regions []image.Rectangle // Pixel placements, aligned with the input images
	Scale   float64           // Factor applied to every source (1 unless downscaled)
}

// UsedArea returns the number of atlas pixels covered by placements.
func (a *Atlas) UsedArea() int {
	return lo.SumBy(a.Regions, area)
}

// Utilization returns the covered fraction of the atlas (0.0 to 1.0).
func (a *Atlas) Utilization() float64 {
	if a.Size == 0 {
		return 0
	}
	return float64(a.UsedArea()) / float64(a.Size*a.Size)
}

// WhiteTexture returns a 1×1 opaque white image. It stands in for
// materials without a texture so their tint still renders.
func WhiteTexture() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	return img
}

// readabler is implemented by images whose pixel data may be unavailable.
type readabler interface {
	Readable() bool
}

// Pack places images into a size×size atlas.
//
// A nil image is replaced by WhiteTexture. An image with no pixels, or one
// reporting Readable() == false, fails with ErrPrecondition. When the total
// image area exceeds size² Pack fails with ErrCapacity before placing
// anything. Source images are never modified.
func Pack(images []image.Image, size int, opts Options) (*Atlas, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: atlas size %d must be positive", ErrPrecondition, size)
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w: no images to pack", ErrPrecondition)
	}
	if opts.Padding < 0 {
		return nil, fmt.Errorf("%w: negative padding %d", ErrPrecondition, opts.Padding)
	}

	sources := make([]image.Image, len(images))
	for i, img := range images {
		if img == nil {
			sources[i] = WhiteTexture()
			continue
		}
		if r, ok := img.(readabler); ok && !r.Readable() {
			return nil, fmt.Errorf("%w: image %d is not readable", ErrPrecondition, i)
		}
		if img.Bounds().Empty() {
			return nil, fmt.Errorf("%w: image %d has no pixels", ErrPrecondition, i)
		}
		sources[i] = img
	}

	sizes := lo.Map(sources, func(img image.Image, _ int) image.Point {
		return img.Bounds().Size()
	})
	needed := lo.SumBy(sizes, func(p image.Point) int { return p.X * p.Y })
	if needed > size*size {
		return nil, fmt.Errorf("%w: images cover %d px², a %dx%d atlas holds %d",
			ErrCapacity, needed, size, size, size*size)
	}

	scale := 1.0
	for {
		scaled := scaleSizes(sizes, scale)
		if regions, ok := place(scaled, size, opts.Padding); ok {
			return compose(sources, scaled, regions, size, scale, opts), nil
		}
		if opts.NoDownscale {
			return nil, fmt.Errorf("%w: %d images do not fit a %dx%d atlas without downscaling",
				ErrCapacity, len(sources), size, size)
		}
		if lo.EveryBy(scaled, func(p image.Point) bool { return p.X == 1 && p.Y == 1 }) {
			return nil, fmt.Errorf("%w: %d images do not fit a %dx%d atlas with padding %d",
				ErrCapacity, len(sources), size, size, opts.Padding)
		}
		scale /= 2
	}
}

// scaleSizes multiplies every size by scale, keeping at least one pixel.
func scaleSizes(sizes []image.Point, scale float64) []image.Point {
	if scale == 1 {
		return sizes
	}
	return lo.Map(sizes, func(p image.Point, _ int) image.Point {
		return image.Pt(max(1, int(float64(p.X)*scale)), max(1, int(float64(p.Y)*scale)))
	})
}

// compose allocates the atlas and copies every source into its region.
func compose(sources []image.Image, sizes []image.Point, regions []image.Rectangle, size int, scale float64, opts Options) *Atlas {
	side := size
	if opts.ShrinkToFit {
		side = shrinkSide(regions, size)
	}

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	rects := make([]Rect, len(sources))
	for i, src := range sources {
		if src.Bounds().Size() != sizes[i] {
			src = transform.Resize(src, sizes[i].X, sizes[i].Y, transform.Linear)
		}
		draw.Draw(dst, regions[i], src, src.Bounds().Min, draw.Src)
		rects[i] = normalize(regions[i], side, opts.Origin)
	}

	return &Atlas{
		Image:   dst,
		Size:    side,
		Rects:   rects,
		Regions: regions,
		Scale:   scale,
	}
}

// shrinkSide returns the smallest power of two covering every region,
// capped at size.
func shrinkSide(regions []image.Rectangle, size int) int {
	extent := 0
	for _, r := range regions {
		extent = max(extent, r.Max.X, r.Max.Y)
	}
	side := 1
	for side < extent {
		side *= 2
	}
	return min(side, size)
}
