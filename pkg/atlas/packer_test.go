package atlas

import (
	"image"
	"testing"
)

func TestSplit(t *testing.T) {
	space := image.Rect(0, 0, 100, 50)

	tests := []struct {
		name string
		w, h int
		want []image.Rectangle
	}{
		{"perfect fit", 100, 50, nil},
		{"same height", 40, 50, []image.Rectangle{image.Rect(40, 0, 100, 50)}},
		{"same width", 100, 20, []image.Rectangle{image.Rect(0, 20, 100, 50)}},
		{"wide leftover", 20, 40, []image.Rectangle{
			image.Rect(0, 40, 20, 50),
			image.Rect(20, 0, 100, 50),
		}},
		{"tall leftover", 95, 10, []image.Rectangle{
			image.Rect(95, 0, 100, 10),
			image.Rect(0, 10, 100, 50),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := split(space, tt.w, tt.h)
			if len(got) != len(tt.want) {
				t.Fatalf("split() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("split()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestGuillotine_FillsCanvas(t *testing.T) {
	g := newGuillotine(16, 0)

	var placed []image.Rectangle
	for i := 0; i < 4; i++ {
		r, ok := g.insert(8, 8)
		if !ok {
			t.Fatalf("insert %d failed", i)
		}
		placed = append(placed, r)
	}

	if _, ok := g.insert(1, 1); ok {
		t.Error("expected insert into full canvas to fail")
	}
	if len(g.free) != 0 {
		t.Errorf("expected no free space, got %v", g.free)
	}

	for i := range placed {
		for j := i + 1; j < len(placed); j++ {
			if placed[i].Overlaps(placed[j]) {
				t.Errorf("placements %v and %v overlap", placed[i], placed[j])
			}
		}
	}
}

func TestGuillotine_BestFit(t *testing.T) {
	g := newGuillotine(64, 0)
	if _, ok := g.insert(48, 48); !ok {
		t.Fatal("first insert failed")
	}

	// Leftovers are a 16x48 strip and a 64x16 strip; the small item goes
	// into the smaller of the two.
	r, ok := g.insert(16, 16)
	if !ok {
		t.Fatal("second insert failed")
	}
	if r.Min != image.Pt(48, 0) {
		t.Errorf("expected placement at (48,0), got %v", r.Min)
	}
}

func TestPlace_OrderIndependentOfInput(t *testing.T) {
	sizes := []image.Point{{8, 8}, {32, 32}, {16, 16}}

	regions, ok := place(sizes, 64, 0)
	if !ok {
		t.Fatal("place failed")
	}
	if regions[1].Min != image.Pt(0, 0) {
		t.Errorf("expected largest item at origin, got %v", regions[1])
	}
	for i, r := range regions {
		if r.Size() != sizes[i] {
			t.Errorf("region %d has size %v, want %v", i, r.Size(), sizes[i])
		}
	}
}
