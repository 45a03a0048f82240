package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

// TGA decoding errors.
var (
	ErrTGATruncated   = errors.New("TGA data truncated")
	ErrTGAUnsupported = errors.New("unsupported TGA")
)

const tgaHeaderSize = 18

// tgaMaxRun is the pixel count of the largest RLE packet.
const tgaMaxRun = 128

// tgaReader walks the pixel stream of a TGA file and writes into an RGBA
// image, honoring the vertical order bit of the descriptor.
type tgaReader struct {
	img         *image.RGBA
	data        []byte
	pos         int
	bpp         int // bytes per pixel
	topToBottom bool
}

// next reads one BGR(A) pixel.
func (r *tgaReader) next() (color.RGBA, bool) {
	if r.pos+r.bpp > len(r.data) {
		return color.RGBA{}, false
	}
	p := r.data[r.pos : r.pos+r.bpp]
	r.pos += r.bpp
	c := color.RGBA{R: p[2], G: p[1], B: p[0], A: 255}
	if r.bpp == 4 {
		c.A = p[3]
	}
	return c, true
}

// set stores the pixel with stream index i.
func (r *tgaReader) set(i int, c color.RGBA) {
	w, h := r.img.Rect.Dx(), r.img.Rect.Dy()
	x, y := i%w, i/w
	if !r.topToBottom {
		y = h - 1 - y
	}
	r.img.SetRGBA(x, y, c)
}

// DecodeTGA decodes an uncompressed (type 2) or RLE (type 10) true-color
// TGA file with 24 or 32 bits per pixel.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	if len(data) < tgaHeaderSize {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bits := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("%w: color-mapped", ErrTGAUnsupported)
	}
	if imageType != TGATypeUncompressed && imageType != TGATypeRLE {
		return nil, fmt.Errorf("%w: image type %d", ErrTGAUnsupported, imageType)
	}
	if bits != 24 && bits != 32 {
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrTGAUnsupported, bits)
	}

	offset := tgaHeaderSize + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	r := &tgaReader{
		data:        data[offset:],
		bpp:         bits / 8,
		topToBottom: descriptor&0x20 != 0,
	}
	count := width * height

	// The pixel buffer is only allocated once the payload can cover it.
	// An RLE packet holds at most 128 pixels in 1+bpp bytes.
	need := count * r.bpp
	if imageType == TGATypeRLE {
		need = (count + tgaMaxRun - 1) / tgaMaxRun * (1 + r.bpp)
	}
	if len(r.data) < need {
		return nil, ErrTGATruncated
	}
	r.img = image.NewRGBA(image.Rect(0, 0, width, height))

	if imageType == TGATypeUncompressed {
		for i := 0; i < count; i++ {
			c, _ := r.next()
			r.set(i, c)
		}
		return r.img, nil
	}

	// RLE packets: high bit set repeats one pixel, clear copies raw pixels.
	for i := 0; i < count; {
		if r.pos >= len(r.data) {
			return nil, ErrTGATruncated
		}
		header := r.data[r.pos]
		r.pos++
		n := int(header&0x7F) + 1

		if header&0x80 != 0 {
			c, ok := r.next()
			if !ok {
				return nil, ErrTGATruncated
			}
			for j := 0; j < n && i < count; j++ {
				r.set(i, c)
				i++
			}
			continue
		}
		for j := 0; j < n && i < count; j++ {
			c, ok := r.next()
			if !ok {
				return nil, ErrTGATruncated
			}
			r.set(i, c)
			i++
		}
	}
	return r.img, nil
}
