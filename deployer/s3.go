package deployer

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"photofolio/config"
)

// S3Store uploads to an S3 bucket or any S3-compatible endpoint (R2, MinIO).
type S3Store struct {
	cfg    config.S3Config
	client *s3.Client
}

func NewS3Store(cfg config.S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) Name() string { return "S3" }

// Prepare builds the client. Static keys win over the default AWS credential chain.
func (s *S3Store) Prepare(ctx context.Context) error {
	if s.cfg.Bucket == "" {
		return fmt.Errorf("s3 bucket is not configured")
	}

	region := s.cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if s.cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s.cfg.AccessKeyID, s.cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load aws config: %w", err)
	}

	s.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.cfg.Endpoint)
		}
		o.UsePathStyle = s.cfg.PathStyle
	})

	log.Printf("🪣 S3 client ready (bucket %s, region %s)", s.cfg.Bucket, region)
	return nil
}

func (s *S3Store) Put(ctx context.Context, target UploadTarget) error {
	if s.client == nil {
		return fmt.Errorf("s3 store used before Prepare")
	}

	f, err := os.Open(target.LocalPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", target.LocalPath, err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(target.LocalPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.cfg.Bucket),
		Key:          aws.String(target.RemotePath),
		Body:         f,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(fmt.Sprintf("public, max-age=%d", target.CacheMaxAge)),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s failed: %w", target.RemotePath, err)
	}

	log.Printf("✓ Uploaded s3://%s/%s", s.cfg.Bucket, target.RemotePath)
	return nil
}

func (s *S3Store) ListHint(prefix string) string {
	hint := fmt.Sprintf("aws s3 ls s3://%s/%s/", s.cfg.Bucket, prefix)
	if s.cfg.Endpoint != "" {
		hint += " --endpoint-url " + s.cfg.Endpoint
	}
	return hint
}
