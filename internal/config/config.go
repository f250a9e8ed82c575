// Package config loads crumb's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/artpar/crumb/internal/cookie"
	"github.com/artpar/crumb/internal/duration"
	"gopkg.in/yaml.v3"
)

// InMemory as Database keeps cookies for the life of the process only.
const InMemory = ":memory:"

// Config holds the crumb configuration.
type Config struct {
	// PageURL is the page whose cookie string is read and written
	PageURL string `yaml:"page_url"`

	// Database is the SQLite file cookies persist to, or InMemory
	Database string `yaml:"database"`

	// LogLevel is a zerolog level name
	LogLevel string `yaml:"log_level"`

	// Defaults apply to cookies stored without explicit attributes
	Defaults Defaults `yaml:"defaults"`
}

// Defaults are cookie attributes applied when a store leaves them unset.
type Defaults struct {
	Path     string         `yaml:"path"`
	Domain   string         `yaml:"domain"`
	Secure   bool           `yaml:"secure"`
	SameSite string         `yaml:"same_site"`
	Duration *duration.Spec `yaml:"duration"`
}

// Dir is the directory crumb keeps its files in.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}
	return filepath.Join(configDir, "crumb")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PageURL:  "https://localhost/",
		Database: filepath.Join(Dir(), "cookies.db"),
		LogLevel: "info",
		Defaults: Defaults{
			Path: cookie.DefaultPath,
		},
	}
}

// ConfigOption is a function that modifies the Config.
type ConfigOption func(*Config)

// WithPageURL sets the page URL.
func WithPageURL(u string) ConfigOption {
	return func(c *Config) {
		c.PageURL = u
	}
}

// WithDatabase sets the database path.
func WithDatabase(path string) ConfigOption {
	return func(c *Config) {
		c.Database = path
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// Load reads the YAML file at path over DefaultConfig and applies opts.
// An empty path means DefaultPath, which may be absent.
func Load(path string, opts ...ConfigOption) (Config, error) {
	cfg := DefaultConfig()

	optional := path == ""
	if optional {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the page URL and default SameSite.
func (c Config) Validate() error {
	u, err := url.Parse(c.PageURL)
	if err != nil {
		return fmt.Errorf("invalid page_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return fmt.Errorf("invalid page_url %q: must be an absolute http or https URL", c.PageURL)
	}
	if _, err := cookie.ParseSameSite(c.Defaults.SameSite); err != nil {
		return fmt.Errorf("invalid defaults.same_site: %w", err)
	}
	return nil
}

// Apply fills the unset attributes of opts from the defaults.
func (d Defaults) Apply(opts cookie.Options) cookie.Options {
	if opts.Path == "" {
		opts.Path = d.Path
	}
	if opts.Domain == "" {
		opts.Domain = d.Domain
	}
	if !opts.Secure {
		opts.Secure = d.Secure
	}
	if opts.SameSite == cookie.SameSiteDefault {
		// Validate has already rejected bad values
		opts.SameSite, _ = cookie.ParseSameSite(d.SameSite)
	}
	// A zero default lifetime means session cookies
	if opts.Duration == nil && d.Duration != nil && !d.Duration.IsZero() {
		spec := *d.Duration
		opts.Duration = &spec
	}
	return opts
}

// Save writes c to path as YAML, creating the directory.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
