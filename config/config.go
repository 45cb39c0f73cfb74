package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
)

// Config represents the optimizer configuration.
// A Config is treated as immutable once handed to the optimizer.
type Config struct {
	Root             string             `yaml:"root"`
	SourceDirs       []string           `yaml:"source_dirs"`
	OptimizedDir     string             `yaml:"optimized_dir"`
	PlaceholderDir   string             `yaml:"placeholder_dir"`
	RasterExtensions []string           `yaml:"raster_extensions"`
	Widths           []int              `yaml:"widths"`
	Formats          []string           `yaml:"formats"`
	Thresholds       ThresholdsConfig   `yaml:"thresholds"`
	Quality          QualityConfig      `yaml:"quality"`
	Effort           EffortConfig       `yaml:"effort"`
	Placeholder      PlaceholderConfig  `yaml:"placeholder"`
	Critical         []string           `yaml:"critical"`
	Derivatives      []DerivativeConfig `yaml:"derivatives"`
	Favicon          FaviconConfig      `yaml:"favicon"`
	Snippet          SnippetConfig      `yaml:"snippet"`
	Backend          string             `yaml:"backend"`
	Logging          LoggingConfig      `yaml:"logging"`
	Output           OutputConfig       `yaml:"output"`
	Notify           NotifyConfig       `yaml:"notify"`
}

// ThresholdsConfig holds the byte sizes that switch quality tiers
type ThresholdsConfig struct {
	LargeBytes     int64 `yaml:"large_bytes"`
	VeryLargeBytes int64 `yaml:"very_large_bytes"`
}

type QualityConfig struct {
	High        int `yaml:"high"`
	Default     int `yaml:"default"`
	Large       int `yaml:"large"`
	VeryLarge   int `yaml:"very_large"`
	Placeholder int `yaml:"placeholder"`
	Favicon     int `yaml:"favicon"`
}

// EffortConfig uses the libvips WebP scale (0 fastest, 6 smallest output)
type EffortConfig struct {
	Modern int `yaml:"modern"`
	Max    int `yaml:"max"`
}

type PlaceholderConfig struct {
	Width int     `yaml:"width"`
	Blur  float64 `yaml:"blur"`
}

// DerivativeConfig describes an extra downscaled copy for one named image.
// Name is matched against the file name without extension.
type DerivativeConfig struct {
	Name   string `yaml:"name"`
	Suffix string `yaml:"suffix"`
	Width  int    `yaml:"width"`
}

type FaviconConfig struct {
	Path      string `yaml:"path"`
	OutputDir string `yaml:"output_dir"`
	Sizes     []int  `yaml:"sizes"`
}

// SnippetConfig feeds the suggested next.config.js images block
type SnippetConfig struct {
	ImageSizes      []int `yaml:"image_sizes"`
	MinimumCacheTTL int   `yaml:"minimum_cache_ttl"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OutputConfig struct {
	Colors bool `yaml:"colors"`
}

type NotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Server  string `yaml:"server"`
	Topic   string `yaml:"topic"`
}

// Default returns the built-in configuration used when no file is given
func Default() *Config {
	return &Config{
		Root: ".",
		SourceDirs: []string{
			"public/images",
			"public/assets",
			"public",
			"public/icons",
			"public/images/case-studies",
			"public/images/team",
			"public/images/blog",
		},
		OptimizedDir:     "optimized",
		PlaceholderDir:   "placeholders",
		RasterExtensions: []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".avif"},
		Widths:           []int{640, 750, 828, 1080, 1200, 1920, 2048, 3840},
		Formats:          []string{"webp", "avif"},
		Thresholds: ThresholdsConfig{
			LargeBytes:     1 * MiB,
			VeryLargeBytes: 4 * MiB,
		},
		Quality: QualityConfig{
			High:        85,
			Default:     80,
			Large:       75,
			VeryLarge:   65,
			Placeholder: 80,
			Favicon:     90,
		},
		Effort: EffortConfig{
			Modern: 6,
			Max:    6,
		},
		Placeholder: PlaceholderConfig{
			Width: 20,
			Blur:  2,
		},
		Critical: []string{
			"logo.png",
			"logo-dark.png",
			"logo-white.png",
			"favicon.png",
			"hero-background.jpg",
			"founder.jpg",
			"og-image.jpg",
		},
		Derivatives: []DerivativeConfig{
			{Name: "founder", Suffix: "reduced", Width: 1200},
		},
		Favicon: FaviconConfig{
			Path:      "public/favicon.ico",
			OutputDir: "public/optimized",
			Sizes:     []int{16, 32, 48, 64},
		},
		Snippet: SnippetConfig{
			ImageSizes:      []int{16, 32, 48, 64, 96, 128, 256, 384},
			MinimumCacheTTL: 60 * 60 * 24 * 30,
		},
		Backend: "vips",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Colors: true,
		},
		Notify: NotifyConfig{
			Server: "https://ntfy.sh",
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnv lets CI override a few settings without a config file
func (c *Config) applyEnv() {
	if v := os.Getenv("MINDSCAPE_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("MINDSCAPE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("MINDSCAPE_NTFY_TOPIC"); v != "" {
		c.Notify.Topic = v
		c.Notify.Enabled = true
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if len(c.SourceDirs) == 0 {
		return fmt.Errorf("source_dirs must not be empty")
	}
	if c.OptimizedDir == "" || c.PlaceholderDir == "" {
		return fmt.Errorf("optimized_dir and placeholder_dir are required")
	}
	if c.OptimizedDir == c.PlaceholderDir {
		return fmt.Errorf("optimized_dir and placeholder_dir must differ")
	}
	if len(c.RasterExtensions) == 0 {
		return fmt.Errorf("raster_extensions must not be empty")
	}
	for _, ext := range c.RasterExtensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("raster extension %q must start with a dot", ext)
		}
	}
	for _, w := range c.Widths {
		if w <= 0 {
			return fmt.Errorf("widths must be positive, got %d", w)
		}
	}
	for _, f := range c.Formats {
		if f != "webp" && f != "avif" {
			return fmt.Errorf("unsupported output format %q (must be webp or avif)", f)
		}
	}
	if c.Thresholds.LargeBytes <= 0 || c.Thresholds.VeryLargeBytes <= c.Thresholds.LargeBytes {
		return fmt.Errorf("thresholds must satisfy 0 < large_bytes < very_large_bytes")
	}

	qualities := map[string]int{
		"quality.high":        c.Quality.High,
		"quality.default":     c.Quality.Default,
		"quality.large":       c.Quality.Large,
		"quality.very_large":  c.Quality.VeryLarge,
		"quality.placeholder": c.Quality.Placeholder,
		"quality.favicon":     c.Quality.Favicon,
	}
	for name, q := range qualities {
		if q < 1 || q > 100 {
			return fmt.Errorf("%s must be between 1 and 100, got %d", name, q)
		}
	}

	if c.Effort.Modern < 0 || c.Effort.Modern > 6 || c.Effort.Max < 0 || c.Effort.Max > 6 {
		return fmt.Errorf("effort values must be between 0 and 6")
	}
	if c.Placeholder.Width <= 0 {
		return fmt.Errorf("placeholder.width must be positive")
	}
	for _, d := range c.Derivatives {
		if d.Name == "" || d.Suffix == "" || d.Width <= 0 {
			return fmt.Errorf("derivative entries need name, suffix and a positive width")
		}
	}
	for _, s := range c.Favicon.Sizes {
		if s <= 0 {
			return fmt.Errorf("favicon sizes must be positive, got %d", s)
		}
	}

	switch c.Backend {
	case "vips", "native":
	default:
		return fmt.Errorf("unknown backend %q (must be vips or native)", c.Backend)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}

	if c.Notify.Enabled && (c.Notify.Server == "" || c.Notify.Topic == "") {
		return fmt.Errorf("notify.server and notify.topic are required when notify is enabled")
	}

	return nil
}

// SourcePaths returns the configured source directories resolved against Root
func (c *Config) SourcePaths() []string {
	paths := make([]string, 0, len(c.SourceDirs))
	for _, dir := range c.SourceDirs {
		paths = append(paths, c.resolve(dir))
	}
	return paths
}

// FaviconPath returns the favicon source resolved against Root
func (c *Config) FaviconPath() string {
	return c.resolve(c.Favicon.Path)
}

// FaviconOutputDir returns the shared favicon output directory resolved against Root
func (c *Config) FaviconOutputDir() string {
	return c.resolve(c.Favicon.OutputDir)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}
