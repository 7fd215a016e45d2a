// Package config loads runtime settings for the image hash tools.
//
// Settings come from three layers, later layers winning: built-in defaults,
// an optional TOML file, and IMAGE_HASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/ironsheep/image-hash-mcp/internal/imaging"
)

// Environment variables that override file settings.
const (
	EnvLogLevel = "IMAGE_HASH_LOG_LEVEL"
	EnvWorkers  = "IMAGE_HASH_WORKERS"
	EnvResample = "IMAGE_HASH_RESAMPLE"
	EnvGrayMode = "IMAGE_HASH_GRAY_MODE"
	EnvConfig   = "IMAGE_HASH_CONFIG"
)

// Config holds all runtime settings.
type Config struct {
	// LogLevel is "info" or "debug".
	LogLevel string `toml:"log_level"`

	// Workers is the number of images hashed in parallel by batch calls.
	Workers int `toml:"workers"`

	// Resample names the resize filter: nearest, box, linear, catmullrom
	// or lanczos.
	Resample string `toml:"resample"`

	// GrayMode is "luma" or "lightness".
	GrayMode string `toml:"gray_mode"`

	// Orient enables brightness-based mirroring before hashing.
	Orient bool `toml:"orient"`

	// PreviewScale is the default magnification of preview images.
	PreviewScale int `toml:"preview_scale"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:     "info",
		Workers:      4,
		Resample:     "lanczos",
		GrayMode:     string(imaging.GrayLuma),
		Orient:       true,
		PreviewScale: 16,
	}
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "image-hash", "config.toml")
}

// Load builds the configuration.
//
// When path is empty, IMAGE_HASH_CONFIG and then DefaultPath are tried and a
// missing file is not an error. An explicitly named file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath()
	}

	if path != "" {
		err := cfg.loadFile(path)
		if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvResample); v != "" {
		c.Resample = v
	}
	if v := os.Getenv(EnvGrayMode); v != "" {
		c.GrayMode = v
	}
	return nil
}

// Validate checks every setting and normalizes case.
func (c *Config) Validate() error {
	c.LogLevel = strings.ToLower(c.LogLevel)
	switch c.LogLevel {
	case "info", "debug":
	default:
		return fmt.Errorf("log_level must be info or debug, got %q", c.LogLevel)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := imaging.ParseResampleFilter(c.Resample); err != nil {
		return err
	}
	c.Resample = strings.ToLower(c.Resample)
	mode, err := imaging.ParseGrayMode(c.GrayMode)
	if err != nil {
		return err
	}
	c.GrayMode = string(mode)
	if c.PreviewScale < 1 || c.PreviewScale > imaging.MaxPreviewScale {
		return fmt.Errorf("preview_scale must be between 1 and %d, got %d", imaging.MaxPreviewScale, c.PreviewScale)
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// NormalizeOptions returns the image normalization settings.
func (c *Config) NormalizeOptions() imaging.NormalizeOptions {
	return imaging.NormalizeOptions{
		Resample:   c.Resample,
		GrayMode:   imaging.GrayMode(c.GrayMode),
		SkipOrient: !c.Orient,
	}
}
