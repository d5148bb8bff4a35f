// Package raster renders a multi-page PDF into a single vertically
// stitched composite image suitable for a single vision model request.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	// CompositeSuffix is appended to the input file stem to derive the
	// composite image filename.
	CompositeSuffix = "_composite.jpg"

	// jpegQuality is the encode quality for the composite image.
	jpegQuality = 100

	// maxCompositeBytes is the documented input limit of the consuming
	// vision endpoint. It is a guidance threshold, not enforced.
	maxCompositeBytes = 20 << 20
)

// ErrNoPages is returned when the document contains no renderable pages.
var ErrNoPages = errors.New("document has no pages")

// Result describes a written composite image.
type Result struct {
	OutputPath string `json:"output_path"`
	PageCount  int    `json:"page_count"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	SizeBytes  int64  `json:"size_bytes"`
}

// CompositePath derives the composite image path from the input PDF path.
// The composite is written next to the input file.
func CompositePath(pdfPath string) string {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))
	return stem + CompositeSuffix
}

// Rasterize renders every page of the PDF at the library's default
// resolution, stitches the pages vertically in document order, and writes
// the result as a quality-100 JPEG next to the input file.
func Rasterize(ctx context.Context, pdfPath string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pageCount, err := countPages(pdfPath)
	if err != nil {
		return nil, err
	}
	if pageCount == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, pdfPath)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	defer doc.Close()

	pages := make([]image.Image, 0, pageCount)
	for pageNum := 0; pageNum < doc.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			return nil, fmt.Errorf("failed to render page %d: %w", pageNum+1, err)
		}
		pages = append(pages, img)
	}

	composite, err := Stitch(pages)
	if err != nil {
		return nil, err
	}

	outputPath := CompositePath(pdfPath)
	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create composite file: %w", err)
	}

	if err := jpeg.Encode(out, composite, &jpeg.Options{Quality: jpegQuality}); err != nil {
		out.Close()
		return nil, fmt.Errorf("failed to encode composite JPEG: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to write composite file: %w", err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat composite file: %w", err)
	}

	bounds := composite.Bounds()
	result := &Result{
		OutputPath: outputPath,
		PageCount:  len(pages),
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		SizeBytes:  info.Size(),
	}

	logger.Info("rasterized document",
		"pdf", filepath.Base(pdfPath),
		"pages", result.PageCount,
		"width", result.Width,
		"height", result.Height,
		"bytes", result.SizeBytes,
	)

	if result.SizeBytes > maxCompositeBytes {
		logger.Warn("composite exceeds the 20 MB vision input guidance; the endpoint may reject it",
			"bytes", result.SizeBytes,
		)
	}

	return result, nil
}

// Stitch concatenates page images vertically in order. The canvas width is
// the maximum page width and the height is the sum of page heights; page i
// is drawn at x=0, y=sum of preceding page heights.
func Stitch(pages []image.Image) (*image.RGBA, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	width, height := 0, 0
	for _, page := range pages {
		bounds := page.Bounds()
		if bounds.Dx() > width {
			width = bounds.Dx()
		}
		height += bounds.Dy()
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	offset := 0
	for _, page := range pages {
		bounds := page.Bounds()
		target := image.Rect(0, offset, bounds.Dx(), offset+bounds.Dy())
		draw.Draw(canvas, target, page, bounds.Min, draw.Src)
		offset += bounds.Dy()
	}

	return canvas, nil
}

// countPages validates the document and returns its page count.
func countPages(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	pageCount, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count for %s: %w", pdfPath, err)
	}
	return pageCount, nil
}
