package atlas

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// checkPlacements verifies regions are inside the atlas and pairwise disjoint.
func checkPlacements(t *testing.T, a *Atlas) {
	t.Helper()
	bounds := image.Rect(0, 0, a.Size, a.Size)
	for i, r := range a.Regions {
		if !r.In(bounds) {
			t.Errorf("region %d %v outside atlas %v", i, r, bounds)
		}
		for j := i + 1; j < len(a.Regions); j++ {
			if r.Overlaps(a.Regions[j]) {
				t.Errorf("regions %d %v and %d %v overlap", i, r, j, a.Regions[j])
			}
		}
	}
	if a.UsedArea() > a.Size*a.Size {
		t.Errorf("used area %d exceeds atlas area %d", a.UsedArea(), a.Size*a.Size)
	}
}

type unreadable struct {
	*image.RGBA
}

func (unreadable) Readable() bool { return false }

func TestPack_ThreeMaterials(t *testing.T) {
	images := []image.Image{
		solid(64, 64, color.RGBA{R: 255, A: 255}),
		solid(64, 64, color.RGBA{G: 255, A: 255}),
		solid(128, 128, color.RGBA{B: 255, A: 255}),
	}

	a, err := Pack(images, 256, Options{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if len(a.Rects) != 3 || len(a.Regions) != 3 {
		t.Fatalf("expected 3 rects and regions, got %d and %d", len(a.Rects), len(a.Regions))
	}
	checkPlacements(t, a)

	if a.UsedArea() != 64*64*2+128*128 {
		t.Errorf("expected used area %d, got %d", 64*64*2+128*128, a.UsedArea())
	}
	if a.Scale != 1 {
		t.Errorf("expected scale 1, got %f", a.Scale)
	}

	// Largest image goes first, into the top-left corner.
	if a.Regions[2] != image.Rect(0, 0, 128, 128) {
		t.Errorf("expected 128x128 at origin, got %v", a.Regions[2])
	}
	want := Rect{X: 0, Y: 0.5, Width: 0.5, Height: 0.5}
	if a.Rects[2] != want {
		t.Errorf("expected rect %v, got %v", want, a.Rects[2])
	}

	for i, r := range a.Rects {
		for j := i + 1; j < len(a.Rects); j++ {
			if r.Overlaps(a.Rects[j]) {
				t.Errorf("rects %d %v and %d %v overlap", i, r, j, a.Rects[j])
			}
		}
	}

	// Every region carries its source color.
	for i, img := range images {
		src := img.(*image.RGBA).RGBAAt(0, 0)
		min := a.Regions[i].Min
		if got := a.Image.RGBAAt(min.X, min.Y); got != src {
			t.Errorf("region %d: expected pixel %v, got %v", i, src, got)
		}
	}
}

func TestPack_MissingTexture(t *testing.T) {
	a, err := Pack([]image.Image{nil}, 16, Options{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	if a.Regions[0].Dx() != 1 || a.Regions[0].Dy() != 1 {
		t.Errorf("expected 1x1 region, got %v", a.Regions[0])
	}
	min := a.Regions[0].Min
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	if got := a.Image.RGBAAt(min.X, min.Y); got != white {
		t.Errorf("expected white pixel, got %v", got)
	}
}

func TestPack_CapacityError(t *testing.T) {
	images := []image.Image{
		solid(200, 200, color.RGBA{A: 255}),
		solid(200, 200, color.RGBA{A: 255}),
	}

	_, err := Pack(images, 256, Options{})
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestPack_AreaJustOverCapacity(t *testing.T) {
	images := []image.Image{
		solid(16, 16, color.RGBA{A: 255}),
		solid(1, 1, color.RGBA{A: 255}),
	}

	_, err := Pack(images, 16, Options{})
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity, got %v", err)
	}
}

func TestPack_ExactFit(t *testing.T) {
	var images []image.Image
	for i := 0; i < 4; i++ {
		images = append(images, solid(32, 32, color.RGBA{A: 255}))
	}

	a, err := Pack(images, 64, Options{NoDownscale: true})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	checkPlacements(t, a)
	if a.Utilization() != 1 {
		t.Errorf("expected full utilization, got %f", a.Utilization())
	}
}

func TestPack_RandomSizesWithinCapacity(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const size = 512

	for round := 0; round < 50; round++ {
		var images []image.Image
		total := 0
		for {
			w, h := 1+rng.IntN(96), 1+rng.IntN(96)
			if total+w*h > size*size/2 {
				break
			}
			total += w * h
			images = append(images, image.NewRGBA(image.Rect(0, 0, w, h)))
		}

		a, err := Pack(images, size, Options{})
		if err != nil {
			t.Fatalf("round %d: Pack failed for %d images: %v", round, len(images), err)
		}
		checkPlacements(t, a)
		for i, img := range images {
			want := img.Bounds().Size()
			if a.Scale == 1 && a.Regions[i].Size() != want {
				t.Errorf("round %d: region %d has size %v, want %v", round, i, a.Regions[i].Size(), want)
			}
		}
	}
}

func TestPack_Downscale(t *testing.T) {
	// Area fits (2*129² < 256²) but two 129px squares cannot share a 256 side.
	images := []image.Image{
		solid(129, 129, color.RGBA{R: 255, A: 255}),
		solid(129, 129, color.RGBA{G: 255, A: 255}),
	}

	a, err := Pack(images, 256, Options{})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if a.Scale != 0.5 {
		t.Errorf("expected scale 0.5, got %f", a.Scale)
	}
	for i, r := range a.Regions {
		if r.Dx() != 64 || r.Dy() != 64 {
			t.Errorf("region %d: expected 64x64, got %v", i, r.Size())
		}
	}
	checkPlacements(t, a)

	_, err = Pack(images, 256, Options{NoDownscale: true})
	if !errors.Is(err, ErrCapacity) {
		t.Errorf("expected ErrCapacity without downscale, got %v", err)
	}
}

func TestPack_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		images []image.Image
		size   int
		opts   Options
	}{
		{"zero size", []image.Image{solid(1, 1, color.RGBA{})}, 0, Options{}},
		{"negative size", []image.Image{solid(1, 1, color.RGBA{})}, -4, Options{}},
		{"no images", nil, 64, Options{}},
		{"negative padding", []image.Image{solid(1, 1, color.RGBA{})}, 64, Options{Padding: -1}},
		{"unreadable", []image.Image{unreadable{solid(4, 4, color.RGBA{})}}, 64, Options{}},
		{"empty image", []image.Image{image.NewRGBA(image.Rectangle{})}, 64, Options{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Pack(tt.images, tt.size, tt.opts)
			if !errors.Is(err, ErrPrecondition) {
				t.Errorf("expected ErrPrecondition, got %v", err)
			}
		})
	}
}

func TestPack_SourcesUntouched(t *testing.T) {
	src := solid(8, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	before := append([]byte(nil), src.Pix...)

	if _, err := Pack([]image.Image{src}, 64, Options{}); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}

	for i := range before {
		if src.Pix[i] != before[i] {
			t.Fatalf("source pixel byte %d changed", i)
		}
	}
}

func TestPack_Padding(t *testing.T) {
	images := []image.Image{
		solid(10, 10, color.RGBA{A: 255}),
		solid(10, 10, color.RGBA{A: 255}),
		solid(10, 10, color.RGBA{A: 255}),
	}
	const padding = 2

	a, err := Pack(images, 32, Options{Padding: padding})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	checkPlacements(t, a)

	for i, r := range a.Regions {
		grown := image.Rectangle{Min: r.Min, Max: r.Max.Add(image.Pt(padding, padding))}
		for j, o := range a.Regions {
			if i != j && grown.Overlaps(o) {
				t.Errorf("region %d %v closer than %dpx to region %d %v", i, r, padding, j, o)
			}
		}
	}
}

func TestPack_ShrinkToFit(t *testing.T) {
	a, err := Pack([]image.Image{solid(100, 60, color.RGBA{A: 255})}, DefaultSize, Options{ShrinkToFit: true})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	if a.Size != 128 {
		t.Errorf("expected shrunk side 128, got %d", a.Size)
	}
	if a.Image.Bounds().Dx() != 128 || a.Image.Bounds().Dy() != 128 {
		t.Errorf("expected 128x128 image, got %v", a.Image.Bounds())
	}
	want := Rect{X: 0, Y: float32(128-60) / 128, Width: float32(100) / 128, Height: float32(60) / 128}
	if a.Rects[0] != want {
		t.Errorf("expected rect %v, got %v", want, a.Rects[0])
	}
}

func TestPack_OriginTopLeft(t *testing.T) {
	images := []image.Image{solid(32, 16, color.RGBA{A: 255})}

	a, err := Pack(images, 64, Options{Origin: OriginTopLeft})
	if err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	want := Rect{X: 0, Y: 0, Width: 0.5, Height: 0.25}
	if a.Rects[0] != want {
		t.Errorf("expected rect %v, got %v", want, a.Rects[0])
	}
}

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    Origin
		wantErr bool
	}{
		{"", OriginBottomLeft, false},
		{"bottom-left", OriginBottomLeft, false},
		{"top-left", OriginTopLeft, false},
		{"center", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseOrigin(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOrigin(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseOrigin(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWhiteTexture(t *testing.T) {
	img := WhiteTexture()
	if img.Bounds() != image.Rect(0, 0, 1, 1) {
		t.Fatalf("expected 1x1 image, got %v", img.Bounds())
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("expected opaque white, got %v", got)
	}
}
