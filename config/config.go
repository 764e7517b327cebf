package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Prepare PrepareConfig `yaml:"prepare"`
	Publish PublishConfig `yaml:"publish"`
	Ntfy    NtfyConfig    `yaml:"ntfy"`
	Watch   WatchConfig   `yaml:"watch"`
}

// PrepareConfig drives the asset preparer.
type PrepareConfig struct {
	SourceDir      string `yaml:"source_dir"`
	OutputDir      string `yaml:"output_dir"`
	ManifestFile   string `yaml:"manifest_file"`
	MaxEdge        int    `yaml:"max_edge"`
	JPEGQuality    int    `yaml:"jpeg_quality"`
	CleanOutput    bool   `yaml:"clean_output"`
	RandomizeOrder bool   `yaml:"randomize_order"`
	BlobBaseURL    string `yaml:"blob_base_url"`

	// Processor is one of "sips", "vips" or "builtin".
	Processor string `yaml:"processor"`
	// TakenAt is "mtime" or "exif".
	TakenAt string `yaml:"taken_at"`
	// Seed for the shuffle; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// PublishConfig drives the asset publisher.
type PublishConfig struct {
	InputDir    string   `yaml:"input_dir"`
	Prefix      string   `yaml:"prefix"`
	CacheMaxAge int64    `yaml:"cache_max_age"`
	Token       string   `yaml:"token"`
	Store       string   `yaml:"store"`
	S3          S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type NtfyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Server  string `yaml:"server"`
	Topic   string `yaml:"topic"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Publish  bool          `yaml:"publish"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Prepare: PrepareConfig{
			SourceDir:      "photos",
			OutputDir:      "public/photography/images",
			ManifestFile:   "src/data/photography.json",
			MaxEdge:        2600,
			JPEGQuality:    82,
			CleanOutput:    true,
			RandomizeOrder: true,
			Processor:      "sips",
			TakenAt:        "mtime",
		},
		Publish: PublishConfig{
			InputDir:    "public/photography/images",
			Prefix:      "photography",
			CacheMaxAge: 31536000,
			Store:       "vercel",
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Ntfy: NtfyConfig{
			Server: "https://ntfy.sh",
		},
		Watch: WatchConfig{
			Debounce: 2 * time.Second,
		},
	}
}

// Load reads a YAML file on top of the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Resolve layers the configuration the way the CLIs need it: defaults, then
// the YAML file (when path is set), then .env, then the process environment.
func Resolve(path, envFile string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto the config. lookupEnv has the
// shape of os.LookupEnv. Numeric variables count as soon as they are set, so
// an empty MAX_EDGE reads as 0 and fails validation; other variables are
// ignored when empty. Values that are not numeric where a number is expected
// are rejected here.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	lookup := func(key string) (string, bool) {
		v, ok := lookupEnv(key)
		return v, ok && v != ""
	}
	number := lookupEnv

	if v, ok := number("MAX_EDGE"); ok {
		n, err := parseWhole(v)
		if err != nil {
			return fmt.Errorf("invalid MAX_EDGE value: %s", v)
		}
		c.Prepare.MaxEdge = int(n)
	}
	if v, ok := number("JPEG_QUALITY"); ok {
		n, err := parseWhole(v)
		if err != nil {
			return fmt.Errorf("invalid JPEG_QUALITY value: %s", v)
		}
		c.Prepare.JPEGQuality = int(n)
	}
	if v, ok := lookup("CLEAN_OUTPUT"); ok {
		c.Prepare.CleanOutput = v != "0"
	}
	if v, ok := lookup("RANDOMIZE_ORDER"); ok {
		c.Prepare.RandomizeOrder = v != "0"
	}
	if v, ok := lookup("BLOB_BASE_URL"); ok {
		c.Prepare.BlobBaseURL = v
	}
	if v, ok := lookup("PHOTO_PROCESSOR"); ok {
		c.Prepare.Processor = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("TAKEN_AT_SOURCE"); ok {
		c.Prepare.TakenAt = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("SHUFFLE_SEED"); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid SHUFFLE_SEED value: %s", v)
		}
		c.Prepare.Seed = n
	}

	if v, ok := number("CACHE_MAX_AGE"); ok {
		n, err := parseWhole(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_MAX_AGE value: %s", v)
		}
		c.Publish.CacheMaxAge = n
	}
	if v, ok := lookup("BLOB_READ_WRITE_TOKEN"); ok {
		c.Publish.Token = strings.TrimSpace(v)
	}
	if v, ok := lookup("BLOB_STORE"); ok {
		c.Publish.Store = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup("S3_BUCKET"); ok {
		c.Publish.S3.Bucket = v
	}
	if v, ok := lookup("S3_REGION"); ok {
		c.Publish.S3.Region = v
	}
	if v, ok := lookup("S3_ENDPOINT"); ok {
		c.Publish.S3.Endpoint = v
	}
	if v, ok := lookup("S3_PATH_STYLE"); ok {
		c.Publish.S3.PathStyle = v != "0" && !strings.EqualFold(v, "false")
	}
	if v, ok := lookup("S3_ACCESS_KEY_ID"); ok {
		c.Publish.S3.AccessKeyID = v
	}
	if v, ok := lookup("S3_SECRET_ACCESS_KEY"); ok {
		c.Publish.S3.SecretAccessKey = v
	}

	if v, ok := lookup("NTFY_TOPIC"); ok {
		c.Ntfy.Topic = v
		c.Ntfy.Enabled = true
	}
	if v, ok := lookup("NTFY_SERVER"); ok {
		c.Ntfy.Server = v
	}

	return nil
}

// parseWhole accepts any finite number with no fractional part, so "2600"
// and "2600.0" are both fine but "abc", "Infinity" and "1.5" are not. A blank
// value is 0.
func parseWhole(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a finite whole number: %s", s)
	}
	return int64(f), nil
}

// BaseURL returns the blob base URL with whitespace and trailing slashes removed.
func (p *PrepareConfig) BaseURL() string {
	return strings.TrimRight(strings.TrimSpace(p.BlobBaseURL), "/")
}

// Validate checks the preparer settings before any file is touched
func (p *PrepareConfig) Validate() error {
	if p.SourceDir == "" {
		return fmt.Errorf("prepare.source_dir is required")
	}
	if p.OutputDir == "" {
		return fmt.Errorf("prepare.output_dir is required")
	}
	if p.ManifestFile == "" {
		return fmt.Errorf("prepare.manifest_file is required")
	}
	if p.MaxEdge <= 0 {
		return fmt.Errorf("invalid MAX_EDGE value: %d", p.MaxEdge)
	}
	if p.JPEGQuality < 1 || p.JPEGQuality > 100 {
		return fmt.Errorf("invalid JPEG_QUALITY value: %d", p.JPEGQuality)
	}
	if base := p.BaseURL(); base != "" {
		u, err := url.Parse(base)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid BLOB_BASE_URL value: %s", base)
		}
	}
	switch p.TakenAt {
	case "", "mtime", "exif":
	default:
		return fmt.Errorf("invalid TAKEN_AT_SOURCE value: %s", p.TakenAt)
	}
	return nil
}

// Validate checks the publisher settings
func (p *PublishConfig) Validate() error {
	if p.InputDir == "" {
		return fmt.Errorf("publish.input_dir is required")
	}
	if p.CacheMaxAge < 0 {
		return fmt.Errorf("invalid CACHE_MAX_AGE value: %d", p.CacheMaxAge)
	}
	switch p.Store {
	case "", "vercel":
	case "s3":
		if p.S3.Bucket == "" {
			return fmt.Errorf("publish.s3.bucket is required for the s3 store")
		}
	default:
		return fmt.Errorf("unknown blob store: %s", p.Store)
	}
	return nil
}
