package deployer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"photofolio/common"
	"photofolio/config"
)

// Deployer uploads processed photos to a blob store
type Deployer struct {
	cfg   *config.PublishConfig
	store ObjectStore
	out   io.Writer
}

// NewDeployer creates a new deployer
func NewDeployer(cfg *config.Config, store ObjectStore, out io.Writer) *Deployer {
	if out == nil {
		out = os.Stdout
	}
	return &Deployer{cfg: &cfg.Publish, store: store, out: out}
}

// Result lists what a deploy uploaded.
type Result struct {
	Targets []UploadTarget
	Prefix  string
}

// RemotePath joins prefix and the file's base name.
func RemotePath(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Deploy uploads every image in the input directory, one at a time. The first
// failure stops the run; objects uploaded before it stay in the store.
func (d *Deployer) Deploy(ctx context.Context) (*Result, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	files, err := common.ListImages(d.cfg.InputDir, common.OutputExtensions)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", common.ErrNoImages, d.cfg.InputDir)
	}

	if err := d.store.Prepare(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare %s store: %w", d.store.Name(), err)
	}

	prefix := strings.Trim(d.cfg.Prefix, "/")
	fmt.Fprintf(d.out, "Uploading %d files to %s prefix '%s/'...\n", len(files), d.store.Name(), prefix)

	result := &Result{Prefix: prefix}
	for _, path := range files {
		target := UploadTarget{
			LocalPath:   path,
			RemotePath:  RemotePath(prefix, path),
			CacheMaxAge: d.cfg.CacheMaxAge,
		}
		fmt.Fprintf(d.out, " -> %s\n", target.RemotePath)

		if err := d.store.Put(ctx, target); err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", target.RemotePath, err)
		}
		result.Targets = append(result.Targets, target)
	}

	log.Printf("✅ Uploaded %d files", len(result.Targets))

	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, "Upload complete.")
	fmt.Fprintf(d.out, "List files with: %s\n", d.store.ListHint(prefix))
	return result, nil
}
