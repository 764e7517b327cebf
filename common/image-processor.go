package common

// Image processors resize and re-encode photographs for the gallery.
//
// Backends:
//   - sips:    macOS scriptable image processing system (default)
//   - vips:    libvips command line tools
//   - builtin: pure Go, github.com/disintegration/imaging
//
// Every backend is asked for the dimensions of the file it just wrote rather
// than having them computed from the requested size, since rounding and
// orientation handling differ between tools.

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ConvertOptions controls a single conversion.
type ConvertOptions struct {
	Format  string // only "jpeg" is produced today
	Quality int
	MaxEdge int
}

// Dimensions in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// ImageProcessor converts images and reports their pixel size.
type ImageProcessor interface {
	Name() string
	// Check fails when the backend cannot run on this machine.
	Check(ctx context.Context) error
	Convert(ctx context.Context, src, dst string, opts ConvertOptions) error
	Dimensions(ctx context.Context, path string) (Dimensions, error)
}

// NewImageProcessor returns the backend registered under name.
func NewImageProcessor(name string) (ImageProcessor, error) {
	switch strings.ToLower(name) {
	case "", "sips":
		return NewSipsProcessor(), nil
	case "vips":
		return NewVipsProcessor(), nil
	case "builtin":
		return NewBuiltinProcessor(), nil
	default:
		return nil, fmt.Errorf("unknown image processor: %s", name)
	}
}

// BuiltinProcessor decodes and encodes in process. It cannot read HEIC/HEIF.
type BuiltinProcessor struct{}

func NewBuiltinProcessor() *BuiltinProcessor {
	return &BuiltinProcessor{}
}

func (p *BuiltinProcessor) Name() string { return "builtin" }

func (p *BuiltinProcessor) Check(ctx context.Context) error { return nil }

func (p *BuiltinProcessor) Convert(ctx context.Context, src, dst string, opts ConvertOptions) error {
	if opts.Format != "" && opts.Format != "jpeg" {
		return fmt.Errorf("builtin processor cannot write %s", opts.Format)
	}

	switch strings.ToLower(filepath.Ext(src)) {
	case ".heic", ".heif":
		return fmt.Errorf("builtin processor cannot decode %s", filepath.Base(src))
	}

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", src, err)
	}

	b := img.Bounds()
	if b.Dx() > opts.MaxEdge || b.Dy() > opts.MaxEdge {
		img = imaging.Fit(img, opts.MaxEdge, opts.MaxEdge, imaging.Lanczos)
	}

	if err := imaging.Save(img, dst, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}

func (p *BuiltinProcessor) Dimensions(ctx context.Context, path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image dimensions for %s: %w", path, err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, fmt.Errorf("failed to read image dimensions for %s: %w", path, err)
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}
