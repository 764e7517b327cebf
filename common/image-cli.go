package common

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	sipsWidth  = regexp.MustCompile(`pixelWidth:\s+(\d+)`)
	sipsHeight = regexp.MustCompile(`pixelHeight:\s+(\d+)`)
)

// SipsProcessor shells out to macOS sips.
type SipsProcessor struct {
	path string
}

func NewSipsProcessor() *SipsProcessor {
	return &SipsProcessor{path: "sips"}
}

func (p *SipsProcessor) Name() string { return "sips" }

func (p *SipsProcessor) Check(ctx context.Context) error {
	if _, err := RunCommand(ctx, p.path, "--help"); err != nil {
		return fmt.Errorf("sips is required but not available")
	}
	return nil
}

func (p *SipsProcessor) Convert(ctx context.Context, src, dst string, opts ConvertOptions) error {
	format := opts.Format
	if format == "" {
		format = "jpeg"
	}
	_, err := RunCommand(ctx, p.path,
		"-s", "format", format,
		"-s", "formatOptions", strconv.Itoa(opts.Quality),
		"-Z", strconv.Itoa(opts.MaxEdge),
		src,
		"--out", dst,
	)
	return err
}

func (p *SipsProcessor) Dimensions(ctx context.Context, path string) (Dimensions, error) {
	out, err := RunCommand(ctx, p.path, "-g", "pixelWidth", "-g", "pixelHeight", path)
	if err != nil {
		return Dimensions{}, err
	}
	dims, ok := parseSipsDimensions(out)
	if !ok {
		return Dimensions{}, fmt.Errorf("failed to read image dimensions for %s", path)
	}
	return dims, nil
}

func parseSipsDimensions(out string) (Dimensions, bool) {
	w := sipsWidth.FindStringSubmatch(out)
	h := sipsHeight.FindStringSubmatch(out)
	if w == nil || h == nil {
		return Dimensions{}, false
	}
	width, _ := strconv.Atoi(w[1])
	height, _ := strconv.Atoi(h[1])
	return Dimensions{Width: width, Height: height}, true
}

// VipsProcessor shells out to the libvips CLI (vips and vipsheader).
type VipsProcessor struct {
	vipsPath   string
	headerPath string
}

func NewVipsProcessor() *VipsProcessor {
	return &VipsProcessor{vipsPath: "vips", headerPath: "vipsheader"}
}

func (p *VipsProcessor) Name() string { return "vips" }

func (p *VipsProcessor) Check(ctx context.Context) error {
	if _, err := RunCommand(ctx, p.vipsPath, "--version"); err != nil {
		return fmt.Errorf("vips is required but not available")
	}
	return nil
}

// Convert uses "vips thumbnail", bounding both sides by MaxEdge so the longer
// edge ends up at MaxEdge.
func (p *VipsProcessor) Convert(ctx context.Context, src, dst string, opts ConvertOptions) error {
	if opts.Format != "" && opts.Format != "jpeg" {
		return fmt.Errorf("vips processor only writes jpeg, got %s", opts.Format)
	}
	edge := strconv.Itoa(opts.MaxEdge)
	out := fmt.Sprintf("%s[Q=%d,strip]", dst, opts.Quality)
	_, err := RunCommand(ctx, p.vipsPath, "thumbnail", src, out, edge, "--height", edge)
	return err
}

func (p *VipsProcessor) Dimensions(ctx context.Context, path string) (Dimensions, error) {
	width, err := p.header(ctx, "width", path)
	if err != nil {
		return Dimensions{}, err
	}
	height, err := p.header(ctx, "height", path)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{Width: width, Height: height}, nil
}

func (p *VipsProcessor) header(ctx context.Context, field, path string) (int, error) {
	out, err := RunCommand(ctx, p.headerPath, "-f", field, path)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("failed to read image dimensions for %s", path)
	}
	return n, nil
}
