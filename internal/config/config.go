// Package config loads the scraper settings from a YAML file, .env files and
// CONSTITUENTS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/go-scripts/constituents/internal/types"
)

var (
	// ErrInvalid is returned when a setting is out of range.
	ErrInvalid = errors.New("invalid configuration")
	// ErrNoCategories is returned when no category carries a URL.
	ErrNoCategories = errors.New("no page URLs configured")
)

const envPrefix = "CONSTITUENTS_"

// Configuration holds the batch scraper settings
type Configuration struct {
	DownloadDir        string           `yaml:"download_dir"`
	RequestDelay       float64          `yaml:"request_delay"`
	Timeout            float64          `yaml:"timeout"`
	MaxRetries         int              `yaml:"max_retries"`
	RetryDelay         float64          `yaml:"retry_delay"`
	OrganizeByCategory bool             `yaml:"organize_by_category"`
	CreateSummary      bool             `yaml:"create_summary"`
	TimestampFiles     bool             `yaml:"timestamp_files"`
	RenderJS           bool             `yaml:"render_js"`
	LogFile            string           `yaml:"log_file"`
	Categories         []types.Category `yaml:"categories"`
}

// Default returns the built-in configuration used when no file is present
func Default() *Configuration {
	return &Configuration{
		DownloadDir:        "downloads",
		RequestDelay:       2.0,
		Timeout:            30,
		MaxRetries:         3,
		RetryDelay:         5.0,
		OrganizeByCategory: true,
		CreateSummary:      true,
		LogFile:            "scraper.log",
		Categories: []types.Category{
			{Name: "Sectoral Indices", URLs: append([]string(nil), sectoralIndices...)},
			{Name: "Broad Market Indices", URLs: append([]string(nil), broadIndices...)},
		},
	}
}

// Load reads the configuration at path on top of the defaults. A missing file
// is not an error: the defaults are used as-is. Environment overrides always win.
func Load(path string) (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable
func (c *Configuration) Validate() error {
	switch {
	case c.DownloadDir == "":
		return fmt.Errorf("%w: download_dir is empty", ErrInvalid)
	case c.RequestDelay < 0:
		return fmt.Errorf("%w: request_delay must not be negative", ErrInvalid)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalid)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry_delay must not be negative", ErrInvalid)
	}

	for _, cat := range c.Categories {
		if len(cat.URLs) > 0 {
			return nil
		}
	}
	return ErrNoCategories
}

// RequestDelayDuration is the pause between successive page requests
func (c *Configuration) RequestDelayDuration() time.Duration {
	return seconds(c.RequestDelay)
}

// TimeoutDuration is the per-request HTTP timeout
func (c *Configuration) TimeoutDuration() time.Duration {
	return seconds(c.Timeout)
}

// RetryDelayDuration is the pause between download attempts
func (c *Configuration) RetryDelayDuration() time.Duration {
	return seconds(c.RetryDelay)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func applyEnvOverrides(c *Configuration) error {
	if v, ok := lookup("DOWNLOAD_DIR"); ok {
		c.DownloadDir = v
	}
	if v, ok := lookup("LOG_FILE"); ok {
		c.LogFile = v
	}

	floats := map[string]*float64{
		"REQUEST_DELAY": &c.RequestDelay,
		"TIMEOUT":       &c.Timeout,
		"RETRY_DELAY":   &c.RetryDelay,
	}
	for key, dst := range floats {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, envPrefix, key, v, err)
		}
		*dst = f
	}

	if v, ok := lookup("MAX_RETRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sMAX_RETRIES=%q: %v", ErrInvalid, envPrefix, v, err)
		}
		c.MaxRetries = n
	}

	bools := map[string]*bool{
		"ORGANIZE_BY_CATEGORY": &c.OrganizeByCategory,
		"CREATE_SUMMARY":       &c.CreateSummary,
		"TIMESTAMP_FILES":      &c.TimestampFiles,
		"RENDER_JS":            &c.RenderJS,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, envPrefix, key, v, err)
		}
		*dst = b
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
