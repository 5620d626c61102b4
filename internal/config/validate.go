package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Masterminds/semver/v3"

	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/scroll"
)

// supportedVersions is the range of config schema versions this build reads.
const supportedVersions = ">= 1.0.0, < 2.0.0"

const maxPort = 65535

// Validation errors.
var (
	ErrUnsupportedVersion = errors.New("unsupported config version")
	ErrInvalidValue       = errors.New("invalid config value")
)

// Validate checks the configuration for values the server or viewer cannot
// run with. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if err := checkVersion(c.Version); err != nil {
		errs = append(errs, err)
	}

	if c.Server.Port < 1 || c.Server.Port > maxPort {
		errs = append(errs, invalid("server.port", c.Server.Port, "must be between 1 and 65535"))
	}
	if c.Gallery.Rows < 1 {
		errs = append(errs, invalid("gallery.rows", c.Gallery.Rows, "must be at least 1"))
	}
	if c.Gallery.Cols < 1 {
		errs = append(errs, invalid("gallery.cols", c.Gallery.Cols, "must be at least 1"))
	}
	if c.Gallery.BufferRows < 0 {
		errs = append(errs, invalid("gallery.buffer_rows", c.Gallery.BufferRows, "must not be negative"))
	}
	if _, err := render.ParseLayout(c.Gallery.Layout); err != nil {
		errs = append(errs, invalid("gallery.layout", c.Gallery.Layout, "must be window or mask"))
	}
	if c.Thumbnails.Height < 1 {
		errs = append(errs, invalid("thumbnails.height", c.Thumbnails.Height, "must be at least 1"))
	}
	if c.Thumbnails.Workers < 1 {
		errs = append(errs, invalid("thumbnails.workers", c.Thumbnails.Workers, "must be at least 1"))
	}
	if c.Thumbnails.Quality < 1 || c.Thumbnails.Quality > 100 {
		errs = append(errs, invalid("thumbnails.quality", c.Thumbnails.Quality, "must be between 1 and 100"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, invalid("cache.ttl_seconds", c.Cache.TTLSeconds, "must not be negative"))
	}
	if !(c.Scroll.ScrollFactor > 0) {
		errs = append(errs, invalid("scroll.scroll_factor", c.Scroll.ScrollFactor, "must be positive"))
	}
	if _, err := scroll.ParsePolicy(c.Scroll.Policy); err != nil {
		errs = append(errs, invalid("scroll.policy", c.Scroll.Policy, "must be fetch or renumber"))
	}
	if c.Scroll.DebounceRows < 0 {
		errs = append(errs, invalid("scroll.debounce_rows", c.Scroll.DebounceRows, "must not be negative"))
	}
	if u, err := url.Parse(c.Scroll.ServerURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, invalid("scroll.server_url", c.Scroll.ServerURL, "must be an absolute URL"))
	}
	switch c.Logging.Format {
	case "", logging.FormatJSON, logging.FormatConsole:
	default:
		errs = append(errs, invalid("logging.format", c.Logging.Format, "must be json or console"))
	}

	return errors.Join(errs...)
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q is not a semantic version: %w", ErrUnsupportedVersion, v, err)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return fmt.Errorf("parsing version constraint: %w", err)
	}
	if !constraint.Check(parsed) {
		return fmt.Errorf("%w: %s (supported %s)", ErrUnsupportedVersion, v, supportedVersions)
	}
	return nil
}

func invalid(key string, value any, reason string) error {
	return fmt.Errorf("%w: %s=%v %s", ErrInvalidValue, key, value, reason)
}
