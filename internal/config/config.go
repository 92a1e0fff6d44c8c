package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/tutorialbuilder/internal/foundation/errors"
)

// DefaultFileName is looked up in the working directory when no config path is given.
const DefaultFileName = "tutorialbuilder.yaml"

// Config represents the application configuration.
type Config struct {
	Source      string        `yaml:"source"`
	Destination string        `yaml:"destination"`
	Build       BuildConfig   `yaml:"build"`
	Render      RenderConfig  `yaml:"render"`
	Logging     LoggingConfig `yaml:"logging"`
	Serve       ServeConfig   `yaml:"serve"`

	// baseDir anchors relative Source/Destination paths: the directory of the
	// loaded config file, or the working directory when none was found.
	baseDir string
	// path of the loaded file; empty when running on defaults.
	path string
}

// BuildConfig names the files and directories of the source tree layout.
type BuildConfig struct {
	ContentFile    string              `yaml:"content_file"`
	MetaFile       string              `yaml:"meta_file"`
	TemplateFile   string              `yaml:"template_file"`
	StylesheetFile string              `yaml:"stylesheet_file"`
	IndexFile      string              `yaml:"index_file"`
	SharedDirs     []string            `yaml:"shared_dirs"`
	MissingSource  MissingSourcePolicy `yaml:"missing_source"`
	Prune          bool                `yaml:"prune"`
	Keep           []string            `yaml:"keep,omitempty"` // destination-relative paths prune never removes
}

// RenderConfig configures the markdown, highlighting and template collaborators.
type RenderConfig struct {
	AnchorPrefix     string `yaml:"anchor_prefix"`
	TableClass       string `yaml:"table_class"`
	NoHighlight      string `yaml:"no_highlight"`
	FallbackLanguage string `yaml:"fallback_language"`
	HighlightStyle   string `yaml:"highlight_style"`
	DateLayout       string `yaml:"date_layout"`
	SiteTitle        string `yaml:"site_title"`
	DefaultAuthor    Author `yaml:"default_author"`
}

// Author is the default author record injected into pages that do not set one.
type Author struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// ServeConfig configures the preview server.
type ServeConfig struct {
	Port            int           `yaml:"port"`
	LiveReload      *bool         `yaml:"live_reload,omitempty"`
	RebuildInterval time.Duration `yaml:"rebuild_interval"`
}

// LiveReloadEnabled reports the effective live reload setting (default on).
func (s ServeConfig) LiveReloadEnabled() bool {
	return s.LiveReload == nil || *s.LiveReload
}

// Load reads configuration from path. An empty path looks for DefaultFileName in
// the working directory and falls back to defaults when it does not exist; an
// explicit path that does not exist is a configuration error.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, ferrors.WrapError(cwdErr, ferrors.CategoryConfig, "resolve working directory").Fatal().Build()
		}
		cfg := Default()
		cfg.baseDir = cwd
		return cfg, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, ferrors.ConfigError("configuration file not found").WithContext("path", path).Build()
	default:
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").
			Fatal().WithContext("path", path).Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration file").
			Fatal().WithContext("path", path).Build()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve configuration path").Fatal().Build()
	}
	cfg.path = abs
	cfg.baseDir = filepath.Dir(abs)
	if err := cfg.ValidateRoots(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "validate configuration roots").
			Fatal().WithContext("path", path).Build()
	}
	return cfg, nil
}

// Parse decodes YAML (with ${VAR} expansion), applies defaults, normalizes and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(cfg)
	res := NormalizeConfig(cfg)
	for _, w := range res.Warnings {
		slog.Warn("Configuration normalized", "detail", w)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// WithBaseDir returns a copy of cfg anchored at dir. Used by tests and the preview command.
func (c *Config) WithBaseDir(dir string) *Config {
	cp := *c
	cp.baseDir = dir
	return &cp
}

// Path returns the absolute path of the loaded config file, or "" on defaults.
func (c *Config) Path() string { return c.path }

// SourceRoot returns the absolute source tree root.
func (c *Config) SourceRoot() string { return c.resolve(c.Source) }

// DestRoot returns the absolute destination tree root.
func (c *Config) DestRoot() string { return c.resolve(c.Destination) }

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.baseDir, p)
}
