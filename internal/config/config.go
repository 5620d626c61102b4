package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the configuration schema version written by Save.
const CurrentVersion = "1.0.0"

// Config is the complete gogallery configuration.
type Config struct {
	Version    string          `yaml:"version"`
	Server     ServerConfig    `yaml:"server"`
	Gallery    GalleryConfig   `yaml:"gallery"`
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`
	Cache      CacheConfig     `yaml:"cache"`
	Scroll     ScrollConfig    `yaml:"scroll"`
	Logging    LoggingConfig   `yaml:"logging"`

	configPath string
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`

	// WasmDir holds gallery.wasm and wasm_exec.js for the browser viewer.
	WasmDir string `yaml:"wasm_dir"`
}

// GalleryConfig controls which images are served and how the grid is laid out.
type GalleryConfig struct {
	Dir        string `yaml:"dir"`
	Rows       int    `yaml:"rows"`
	Cols       int    `yaml:"cols"`
	Randomize  bool   `yaml:"randomize"`
	Seed       int64  `yaml:"seed"`
	BufferRows int    `yaml:"buffer_rows"`

	// Layout is the content layout of the initial page: window or mask.
	Layout string `yaml:"layout"`
}

// ThumbnailConfig controls preview generation.
type ThumbnailConfig struct {
	Height  int    `yaml:"height"`
	Workers int    `yaml:"workers"`
	Quality int    `yaml:"quality"`
	Dir     string `yaml:"dir"`
}

// CacheConfig controls the persistent thumbnail index.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ScrollConfig tunes the scroll window used by viewers.
type ScrollConfig struct {
	ServerURL             string  `yaml:"server_url"`
	ScrollFactor          float64 `yaml:"scroll_factor"`
	Policy                string  `yaml:"policy"`
	DebounceRows          int     `yaml:"debounce_rows"`
	DropStale             bool    `yaml:"drop_stale"`
	ClampToEnd            bool    `yaml:"clamp_to_end"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
}

// LoggingConfig controls log level, format, and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in configuration: port 3353, a 3x3 grid and
// four resize workers.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			Host:                   "127.0.0.1",
			Port:                   3353,
			ShutdownTimeoutSeconds: 5,
		},
		Gallery: GalleryConfig{
			Dir:        "./",
			Rows:       3,
			Cols:       3,
			BufferRows: 1,
			Layout:     "window",
		},
		Thumbnails: ThumbnailConfig{
			Height:  800,
			Workers: 4,
			Quality: 85,
		},
		Cache: CacheConfig{
			Enabled:    false,
			TTLSeconds: 7 * 24 * 3600,
		},
		Scroll: ScrollConfig{
			ServerURL:             "http://127.0.0.1:3353",
			ScrollFactor:          1,
			Policy:                "fetch",
			DebounceRows:          2,
			RequestTimeoutSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// New returns the defaults overlaid with the config file, if present, and
// then with environment overrides. A malformed config file is ignored so the
// CLI can still start; use Load to surface the error.
func New() *Config {
	cfg := Default()

	path, err := DefaultConfigPath()
	if err == nil {
		cfg.configPath = path
		if loadErr := cfg.loadFile(path); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
			_, _ = fmt.Fprintf(os.Stderr, "Warning: ignoring config file %s: %v\n", path, loadErr)
		}
	}

	ApplyEnv(cfg)
	return cfg
}

// Load reads the config file at path on top of the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// ConfigPath returns the file this config is saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file this config is saved to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the config as YAML to ConfigPath.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if c.Version == "" {
		c.Version = CurrentVersion
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if mkErr := os.MkdirAll(filepath.Dir(c.configPath), 0o700); mkErr != nil {
		return fmt.Errorf("creating config directory: %w", mkErr)
	}
	if writeErr := os.WriteFile(c.configPath, data, 0o600); writeErr != nil {
		return fmt.Errorf("writing config file: %w", writeErr)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}
