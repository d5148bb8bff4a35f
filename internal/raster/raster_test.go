package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

// fillPage creates a solid-color page for stitching tests.
func fillPage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestStitch(t *testing.T) {
	t.Run("composite geometry", func(t *testing.T) {
		red := color.RGBA{R: 255, A: 255}
		green := color.RGBA{G: 255, A: 255}
		blue := color.RGBA{B: 255, A: 255}

		pages := []image.Image{
			fillPage(100, 50, red),
			fillPage(80, 70, green),
			fillPage(120, 30, blue),
		}

		composite, err := Stitch(pages)
		if err != nil {
			t.Fatalf("Stitch() error = %v", err)
		}

		bounds := composite.Bounds()
		if bounds.Dx() != 120 {
			t.Errorf("width = %d, want max page width 120", bounds.Dx())
		}
		if bounds.Dy() != 150 {
			t.Errorf("height = %d, want sum of page heights 150", bounds.Dy())
		}

		// Page order preserved top to bottom at cumulative offsets.
		if got := composite.RGBAAt(0, 0); got != red {
			t.Errorf("pixel at page 1 offset = %v, want %v", got, red)
		}
		if got := composite.RGBAAt(0, 50); got != green {
			t.Errorf("pixel at page 2 offset = %v, want %v", got, green)
		}
		if got := composite.RGBAAt(0, 120); got != blue {
			t.Errorf("pixel at page 3 offset = %v, want %v", got, blue)
		}
	})

	t.Run("single page is pixel identical", func(t *testing.T) {
		page := fillPage(64, 48, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		// Vary a few pixels so identity is meaningful.
		page.SetRGBA(3, 7, color.RGBA{R: 200, A: 255})
		page.SetRGBA(63, 47, color.RGBA{G: 150, A: 255})

		composite, err := Stitch([]image.Image{page})
		if err != nil {
			t.Fatalf("Stitch() error = %v", err)
		}

		if composite.Bounds() != page.Bounds() {
			t.Fatalf("bounds = %v, want %v", composite.Bounds(), page.Bounds())
		}
		for y := 0; y < 48; y++ {
			for x := 0; x < 64; x++ {
				if composite.RGBAAt(x, y) != page.RGBAAt(x, y) {
					t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, composite.RGBAAt(x, y), page.RGBAAt(x, y))
				}
			}
		}
	})

	t.Run("zero pages returns ErrNoPages", func(t *testing.T) {
		_, err := Stitch(nil)
		if !errors.Is(err, ErrNoPages) {
			t.Errorf("expected ErrNoPages, got %v", err)
		}
	})

	t.Run("narrow page leaves canvas margin untouched", func(t *testing.T) {
		wide := fillPage(100, 10, color.RGBA{R: 255, A: 255})
		narrow := fillPage(60, 10, color.RGBA{G: 255, A: 255})

		composite, err := Stitch([]image.Image{wide, narrow})
		if err != nil {
			t.Fatalf("Stitch() error = %v", err)
		}

		// Right of the narrow page stays at the zero value.
		if got := composite.RGBAAt(90, 15); got != (color.RGBA{}) {
			t.Errorf("margin pixel = %v, want zero", got)
		}
	})
}

func TestRasterize(t *testing.T) {
	t.Run("corrupt input fails validation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.pdf")
		if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := Rasterize(context.Background(), path, nil); err == nil {
			t.Error("expected error for corrupt input")
		}
		if _, err := os.Stat(CompositePath(path)); err == nil {
			t.Error("no composite should be written for corrupt input")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.pdf")
		if _, err := Rasterize(context.Background(), path, nil); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestCompositePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"pdf extension", "/scans/form.pdf", "/scans/form_composite.jpg"},
		{"uppercase extension", "/scans/FORM.PDF", "/scans/FORM_composite.jpg"},
		{"no extension", "/scans/form", "/scans/form_composite.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompositePath(tt.in); got != tt.want {
				t.Errorf("CompositePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
