package deployer

import (
	"context"
	"fmt"
	"io"

	"photofolio/config"
)

// UploadTarget pairs a processed file with its remote location.
type UploadTarget struct {
	LocalPath   string
	RemotePath  string
	CacheMaxAge int64 // seconds
}

// ObjectStore is a remote blob store that photos are published to.
type ObjectStore interface {
	Name() string
	// Prepare runs once per deploy before the first Put.
	Prepare(ctx context.Context) error
	// Put uploads one file, overwriting any existing object at RemotePath.
	Put(ctx context.Context, target UploadTarget) error
	// ListHint is a command the operator can run to see the uploaded objects.
	ListHint(prefix string) string
}

// NewObjectStore builds the store selected in the publish config. Uploader
// output from CLI backends goes to stdout and stderr.
func NewObjectStore(cfg *config.PublishConfig, stdout, stderr io.Writer) (ObjectStore, error) {
	switch cfg.Store {
	case "", "vercel":
		return NewVercelStore(cfg.Token, stdout, stderr), nil
	case "s3":
		return NewS3Store(cfg.S3), nil
	default:
		return nil, fmt.Errorf("unknown blob store: %s", cfg.Store)
	}
}
