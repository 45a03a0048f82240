package export

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/uvwizard/internal/combine"
	"github.com/Faultbox/uvwizard/pkg/atlas"
	"github.com/Faultbox/uvwizard/pkg/mesh"
	"github.com/Faultbox/uvwizard/pkg/objfile"
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

func testMesh() *mesh.Mesh {
	return &mesh.Mesh{
		Name: "barrel",
		Geometry: mesh.Geometry{
			Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			UVs:       []mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
			Submeshes: []mesh.Submesh{
				{Indices: []uint32{0, 1, 2}},
				{Indices: []uint32{0, 2, 3}},
			},
		},
		Materials: []mesh.Material{
			{Name: "wood", Diffuse: mgl32.Vec4{1, 1, 1, 1}, Texture: &mesh.Texture{Name: "wood", Path: "wood.png", Image: solid(32, 32, color.RGBA{120, 80, 40, 255})}},
			{Name: "iron", Diffuse: mgl32.Vec4{1, 1, 1, 1}, Texture: &mesh.Texture{Name: "iron", Path: "iron.png", Image: solid(32, 32, color.RGBA{90, 90, 90, 255})}},
		},
	}
}

func combineMesh(t *testing.T, m *mesh.Mesh) *combine.Result {
	t.Helper()
	res, err := combine.New(64, atlas.Options{}, nil).Build(m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res
}

func TestCollapse(t *testing.T) {
	src := testMesh()
	res := combineMesh(t, src)

	out, err := Collapse(src, res)
	if err != nil {
		t.Fatalf("Collapse: %v", err)
	}

	if len(out.Submeshes) != 1 || len(out.Materials) != 1 {
		t.Fatalf("expected one submesh and material, got %d/%d", len(out.Submeshes), len(out.Materials))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	got := out.Submeshes[0].Indices
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	for i, uv := range out.UVs {
		if uv != res.UVs[i] {
			t.Errorf("uv %d: expected %v, got %v", i, res.UVs[i], uv)
		}
	}

	// Source untouched
	if len(src.Submeshes) != 2 || src.UVs[1] != (mgl32.Vec2{1, 0}) {
		t.Error("source mesh was modified")
	}
}

func TestCollapse_UVCountMismatch(t *testing.T) {
	src := testMesh()
	res := combineMesh(t, src)
	res.UVs = res.UVs[:2]

	if _, err := Collapse(src, res); err == nil {
		t.Error("expected error for mismatched uv count")
	}
}

func TestWriter_Apply(t *testing.T) {
	dir := t.TempDir()
	src := testMesh()
	res := combineMesh(t, src)

	w := NewWriter(Options{Dir: dir, Manifest: true})
	if err := w.Apply(src, res); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	for _, name := range []string{"barrel.obj", "barrel.mtl", "barrel_atlas.png", "barrel_atlas.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if len(w.Files()) != 4 {
		t.Errorf("expected 4 files recorded, got %v", w.Files())
	}

	// The written model loads back with one material sampling the atlas.
	loaded, err := objfile.Load(filepath.Join(dir, "barrel.obj"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Materials) != 1 {
		t.Fatalf("expected 1 material, got %d", len(loaded.Materials))
	}
	tex := loaded.Materials[0].Texture
	if tex == nil || filepath.Base(tex.Path) != "barrel_atlas.png" {
		t.Errorf("expected atlas texture, got %+v", tex)
	}

	f, err := os.Open(filepath.Join(dir, "barrel_atlas.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding atlas: %v", err)
	}
	if img.Bounds().Dx() != res.Atlas.Size {
		t.Errorf("atlas png width %d, want %d", img.Bounds().Dx(), res.Atlas.Size)
	}
}

func TestWriter_Manifest(t *testing.T) {
	dir := t.TempDir()
	src := testMesh()
	res := combineMesh(t, src)

	w := NewWriter(Options{Dir: dir, Manifest: true, Origin: atlas.OriginBottomLeft})
	if err := w.Apply(src, res); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	m, err := ReadManifest(filepath.Join(dir, "barrel_atlas.yaml"))
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if m.Image != "barrel_atlas.png" || m.Size != 64 || m.Origin != "bottom-left" {
		t.Errorf("unexpected header %+v", m)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m.Entries))
	}
	if m.Entries[0].Name != "wood" || m.Entries[1].Source != "iron.png" {
		t.Errorf("unexpected entries %+v", m.Entries)
	}
	for i, r := range m.Rects() {
		if r != res.Atlas.Rects[i] {
			t.Errorf("rect %d: expected %v, got %v", i, res.Atlas.Rects[i], r)
		}
	}
}

func TestWriter_NoManifest(t *testing.T) {
	dir := t.TempDir()
	a, err := atlas.Pack([]image.Image{solid(8, 8, color.RGBA{255, 0, 0, 255})}, 16, atlas.Options{})
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	w := NewWriter(Options{Dir: dir})
	path, err := w.WriteAtlas("sheet", a, nil, nil)
	if err != nil {
		t.Fatalf("WriteAtlas: %v", err)
	}
	if path != filepath.Join(dir, "sheet_atlas.png") {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "sheet_atlas.yaml")); !os.IsNotExist(err) {
		t.Error("manifest written although disabled")
	}
}
