package builder

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"photofolio/common"
	"photofolio/config"
)

// Preparer turns a folder of source photographs into resized JPEGs and a manifest
type Preparer struct {
	cfg  *config.PrepareConfig
	proc common.ImageProcessor
	rng  *rand.Rand
	out  io.Writer
}

// Option customises a Preparer.
type Option func(*Preparer)

// WithRand replaces the shuffle source.
func WithRand(rng *rand.Rand) Option {
	return func(p *Preparer) {
		p.rng = rng
	}
}

// WithOutput redirects the run summary (stdout by default).
func WithOutput(w io.Writer) Option {
	return func(p *Preparer) {
		p.out = w
	}
}

// NewPreparer creates a new preparer
func NewPreparer(cfg *config.Config, proc common.ImageProcessor, opts ...Option) *Preparer {
	p := &Preparer{
		cfg:  &cfg.Prepare,
		proc: proc,
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.rng == nil {
		seed := uint64(cfg.Prepare.Seed)
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		p.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return p
}

// Result summarises a finished run.
type Result struct {
	Photos       common.Manifest
	Removed      int
	OutputDir    string
	ManifestFile string
	Randomized   bool
	BaseURL      string
}

// Run prepares every source photo. The manifest is written only after all of
// them converted; on failure the images already written stay on disk.
func (p *Preparer) Run(ctx context.Context) (*Result, error) {
	if err := p.proc.Check(ctx); err != nil {
		return nil, err
	}

	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}

	sources, err := common.ListImages(p.cfg.SourceDir, common.SourceExtensions)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", common.ErrNoImages, p.cfg.SourceDir)
	}

	if p.cfg.RandomizeOrder {
		common.Shuffle(sources, p.rng)
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.ManifestFile), 0755); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	result := &Result{
		OutputDir:    p.cfg.OutputDir,
		ManifestFile: p.cfg.ManifestFile,
		Randomized:   p.cfg.RandomizeOrder,
		BaseURL:      p.cfg.BaseURL(),
	}

	if p.cfg.CleanOutput {
		removed, err := p.cleanOutput()
		if err != nil {
			return nil, err
		}
		result.Removed = removed
	}

	slugs := common.NewSlugCounter()
	photos := make(common.Manifest, 0, len(sources))

	for i, src := range sources {
		photo, err := p.preparePhoto(ctx, src, slugs)
		if err != nil {
			return nil, err
		}
		log.Printf("📷 [%d/%d] %s -> %s (%dx%d)", i+1, len(sources), filepath.Base(src), photo.ID, photo.Width, photo.Height)
		photos = append(photos, photo)
	}

	if err := common.WriteManifest(p.cfg.ManifestFile, photos); err != nil {
		return nil, err
	}

	result.Photos = photos
	p.printSummary(result)
	return result, nil
}

// cleanOutput removes images left over from an earlier run
func (p *Preparer) cleanOutput() (int, error) {
	stale, err := common.ListImages(p.cfg.OutputDir, common.OutputExtensions)
	if err != nil {
		return 0, err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("failed to remove stale image: %w", err)
		}
	}
	if len(stale) > 0 {
		log.Printf("🧹 Removed %d stale images from %s", len(stale), p.cfg.OutputDir)
	}
	return len(stale), nil
}

func (p *Preparer) preparePhoto(ctx context.Context, src string, slugs *common.SlugCounter) (common.Photo, error) {
	stem := common.Stem(src)
	slug := slugs.Next(common.Slugify(stem))
	outputName := slug + ".jpg"
	outputPath := filepath.Join(p.cfg.OutputDir, outputName)

	err := p.proc.Convert(ctx, src, outputPath, common.ConvertOptions{
		Format:  "jpeg",
		Quality: p.cfg.JPEGQuality,
		MaxEdge: p.cfg.MaxEdge,
	})
	if err != nil {
		return common.Photo{}, fmt.Errorf("failed to convert %s: %w", src, err)
	}

	dims, err := p.proc.Dimensions(ctx, outputPath)
	if err != nil {
		return common.Photo{}, err
	}

	takenAt, err := common.TakenAt(src, p.cfg.TakenAt)
	if err != nil {
		return common.Photo{}, err
	}

	title := common.TitleCase(stem)
	return common.Photo{
		ID:       slug,
		Src:      p.resolveSrc(outputPath, outputName),
		Alt:      title + " photograph.",
		Width:    dims.Width,
		Height:   dims.Height,
		Title:    title,
		TakenAt:  takenAt,
		Location: common.PlaceholderLocation,
	}, nil
}

func (p *Preparer) resolveSrc(outputPath, outputName string) string {
	if base := p.cfg.BaseURL(); base != "" {
		return base + "/" + outputName
	}
	return common.ToWebPath(outputPath)
}

func (p *Preparer) printSummary(r *Result) {
	order := "filename order"
	if r.Randomized {
		order = "randomized"
	}
	srcMode := "local public path"
	if r.BaseURL != "" {
		srcMode = fmt.Sprintf("blob (%s)", r.BaseURL)
	}

	fmt.Fprintf(p.out, "Prepared %d images.\n", len(r.Photos))
	fmt.Fprintf(p.out, "Processed files: %s\n", r.OutputDir)
	fmt.Fprintf(p.out, "Generated data file: %s\n", r.ManifestFile)
	fmt.Fprintf(p.out, "Order: %s\n", order)
	fmt.Fprintf(p.out, "Src mode: %s\n", srcMode)
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, "Next:")
	fmt.Fprintf(p.out, "1) Review and edit titles/locations in %s\n", r.ManifestFile)
	if r.BaseURL == "" {
		fmt.Fprintf(p.out, "2) Upload files with: upload-photos %q %q\n", r.OutputDir, "photography")
		fmt.Fprintln(p.out, "3) Optional: rerun with BLOB_BASE_URL to write blob URLs directly into the data file")
	} else {
		fmt.Fprintln(p.out, "2) Deploy when ready")
	}
}
