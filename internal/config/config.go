// Package config loads arangr settings from a YAML file, ARANGR_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/kk-code-lab/arangr/internal/fs"
	"github.com/kk-code-lab/arangr/internal/logging"
	"github.com/kk-code-lab/arangr/internal/office"
	"github.com/kk-code-lab/arangr/internal/preview"
)

const (
	appName   = "arangr"
	envPrefix = "ARANGR"
)

type PreviewConfig struct {
	MaxSize         string `mapstructure:"max_size"`
	LargeFile       string `mapstructure:"large_file"`
	TextReadCeiling string `mapstructure:"text_read_ceiling"`
	TextPrefix      string `mapstructure:"text_prefix"`
	DisplayChars    int    `mapstructure:"display_chars"`
	AIExcerptChars  int    `mapstructure:"ai_excerpt_chars"`
	HashMaxSize     string `mapstructure:"hash_max_size"`
	TextFallback    string `mapstructure:"text_fallback"`
	Workers         int    `mapstructure:"workers"`
}

type ImageConfig struct {
	MinZoom   float64 `mapstructure:"min_zoom"`
	MaxZoom   float64 `mapstructure:"max_zoom"`
	MaxPixels int64   `mapstructure:"max_pixels"`
}

type BrowseConfig struct {
	ShowHidden bool   `mapstructure:"show_hidden"`
	StartPath  string `mapstructure:"start_path"`
	Watch      bool   `mapstructure:"watch"`
}

type OfficeConfig struct {
	// Disabled lists document kinds whose backend is switched off.
	Disabled []string `mapstructure:"disabled"`
}

type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// Config is the full application configuration.
type Config struct {
	Preview PreviewConfig `mapstructure:"preview"`
	Image   ImageConfig   `mapstructure:"image"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Office  OfficeConfig  `mapstructure:"office"`
	Logging LoggingConfig `mapstructure:"logging"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// Binder hooks extra sources, typically command-line flags, into viper
// before the configuration is read.
type Binder func(v *viper.Viper) error

// Load reads configuration. An explicit path must exist; otherwise the file
// is looked up in $XDG_CONFIG_HOME/arangr and ~/.config/arangr and may be
// absent.
func Load(path string, binders ...Binder) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, bind := range binders {
		if err := bind(v); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is configured.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("preview.max_size", "50MiB")
	v.SetDefault("preview.large_file", "1MiB")
	v.SetDefault("preview.text_read_ceiling", "10MiB")
	v.SetDefault("preview.text_prefix", "1MiB")
	v.SetDefault("preview.display_chars", 50000)
	v.SetDefault("preview.ai_excerpt_chars", 5000)
	v.SetDefault("preview.hash_max_size", "10MiB")
	v.SetDefault("preview.text_fallback", "replace")
	v.SetDefault("preview.workers", 2)

	v.SetDefault("image.min_zoom", 0.05)
	v.SetDefault("image.max_zoom", 20.0)
	v.SetDefault("image.max_pixels", 178956970)

	v.SetDefault("browse.show_hidden", false)
	v.SetDefault("browse.start_path", "")
	v.SetDefault("browse.watch", true)

	v.SetDefault("office.disabled", []string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.components", map[string]string{})
}

func searchDirs() []string {
	dirs := []string{filepath.Join(xdg.ConfigHome, appName)}
	if home, err := os.UserHomeDir(); err == nil {
		fallback := filepath.Join(home, ".config", appName)
		if fallback != dirs[0] {
			dirs = append(dirs, fallback)
		}
	}
	return dirs
}

// Dir is the directory new config files are written to.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// Validate checks values that would make the preview pipeline misbehave.
func (c *Config) Validate() error {
	if _, err := c.Limits(); err != nil {
		return err
	}
	if c.Preview.Workers < 1 {
		return fmt.Errorf("preview.workers must be at least 1, got %d", c.Preview.Workers)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	for _, name := range c.Office.Disabled {
		if _, err := office.ParseKind(name); err != nil {
			return fmt.Errorf("office.disabled: %w", err)
		}
	}
	return nil
}

// Limits converts the preview settings into resolver ceilings.
func (c *Config) Limits() (preview.Limits, error) {
	var l preview.Limits
	sizes := []struct {
		key string
		raw string
		dst *int64
	}{
		{"preview.max_size", c.Preview.MaxSize, &l.MaxSize},
		{"preview.large_file", c.Preview.LargeFile, &l.LargeFile},
		{"preview.text_read_ceiling", c.Preview.TextReadCeiling, &l.TextReadCeiling},
		{"preview.text_prefix", c.Preview.TextPrefix, &l.TextPrefix},
		{"preview.hash_max_size", c.Preview.HashMaxSize, &l.HashMaxSize},
	}
	for _, s := range sizes {
		n, err := parseSize(s.raw)
		if err != nil {
			return l, fmt.Errorf("%s: %w", s.key, err)
		}
		*s.dst = n
	}
	if l.TextPrefix > l.TextReadCeiling {
		return l, fmt.Errorf("preview.text_prefix (%s) exceeds preview.text_read_ceiling (%s)",
			c.Preview.TextPrefix, c.Preview.TextReadCeiling)
	}
	if c.Preview.DisplayChars <= 0 || c.Preview.AIExcerptChars <= 0 {
		return l, errors.New("preview.display_chars and preview.ai_excerpt_chars must be positive")
	}
	l.DisplayChars = c.Preview.DisplayChars
	l.AIExcerptChars = c.Preview.AIExcerptChars

	fallback, err := fs.ParseFallback(c.Preview.TextFallback)
	if err != nil {
		return l, fmt.Errorf("preview.text_fallback: %w", err)
	}
	l.TextFallback = fallback

	if c.Image.MinZoom <= 0 || c.Image.MaxZoom < c.Image.MinZoom {
		return l, fmt.Errorf("image zoom bounds %g..%g are invalid", c.Image.MinZoom, c.Image.MaxZoom)
	}
	l.MinZoom, l.MaxZoom = c.Image.MinZoom, c.Image.MaxZoom

	if c.Image.MaxPixels <= 0 {
		return l, fmt.Errorf("image.max_pixels must be positive, got %d", c.Image.MaxPixels)
	}
	l.MaxImagePixels = c.Image.MaxPixels
	return l, nil
}

// ExtractorOptions turns office.disabled into extractor options.
func (c *Config) ExtractorOptions() []office.Option {
	var opts []office.Option
	for _, name := range c.Office.Disabled {
		if kind, err := office.ParseKind(name); err == nil {
			opts = append(opts, office.WithoutBackend(kind))
		}
	}
	return opts
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig(consoleLevel string) logging.Config {
	return logging.Config{
		Level:        c.Logging.Level,
		Path:         c.Logging.Path,
		Components:   c.Logging.Components,
		ConsoleLevel: consoleLevel,
	}
}

func parseSize(raw string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("size must be positive, got %q", raw)
	}
	return int64(n), nil
}
