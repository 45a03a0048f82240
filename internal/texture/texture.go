// Package texture makes material textures readable: it decodes image files
// from disk into RGBA pixel data the atlas packer can sample.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp" // BMP decoder registration
)

// Decode decodes image data. The name's extension selects the TGA decoder,
// which has no magic number; other formats are sniffed.
func Decode(data []byte, name string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err := DecodeTGA(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		return img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// IsColorKey reports whether an RGB color is the magenta transparency key.
// The tolerance absorbs BMP encoder rounding.
func IsColorKey(r, g, b uint8) bool {
	return r >= 250 && g <= 10 && b >= 250
}

// ToRGBA converts img to a new *image.RGBA with origin (0,0). When colorKey
// is set, magenta pixels become transparent black so filtering does not
// bleed the key color into neighbors.
func ToRGBA(img image.Image, colorKey bool) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if colorKey && IsColorKey(c.R, c.G, c.B) {
				c = color.RGBA{}
			}
			out.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, c)
		}
	}
	return out
}
