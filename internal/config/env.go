package config

import (
	"os"
	"strconv"

	"github.com/rshade/gogallery/internal/cache"
)

// Environment variables that override file configuration.
const (
	EnvHome         = "GOGALLERY_HOME"
	EnvHost         = "GOGALLERY_HOST"
	EnvPort         = "GOGALLERY_PORT"
	EnvDir          = "GOGALLERY_DIR"
	EnvServerURL    = "GOGALLERY_SERVER_URL"
	EnvLogLevel     = "GOGALLERY_LOG_LEVEL"
	EnvLogFormat    = "GOGALLERY_LOG_FORMAT"
	EnvCacheEnabled = "GOGALLERY_CACHE_ENABLED"
	EnvCacheDir     = "GOGALLERY_CACHE_DIR"
	EnvCacheTTL     = "GOGALLERY_CACHE_TTL_SECONDS"
	EnvThumbWorkers = "GOGALLERY_THUMB_WORKERS"
	EnvScrollFactor = "GOGALLERY_SCROLL_FACTOR"
	EnvScrollPolicy = "GOGALLERY_SCROLL_POLICY"
)

// ApplyEnv overlays environment variables onto cfg. Values that do not parse
// are ignored.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Server.Host, EnvHost)
	setInt(&cfg.Server.Port, EnvPort)
	setString(&cfg.Gallery.Dir, EnvDir)
	setString(&cfg.Scroll.ServerURL, EnvServerURL)
	setString(&cfg.Logging.Level, EnvLogLevel)
	setString(&cfg.Logging.Format, EnvLogFormat)
	setBool(&cfg.Cache.Enabled, EnvCacheEnabled)
	setString(&cfg.Cache.Dir, EnvCacheDir)
	setTTL(&cfg.Cache.TTLSeconds, EnvCacheTTL)
	setInt(&cfg.Thumbnails.Workers, EnvThumbWorkers)
	setFloat(&cfg.Scroll.ScrollFactor, EnvScrollFactor)
	setString(&cfg.Scroll.Policy, EnvScrollPolicy)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		*dst = v
	}
}

// setTTL accepts seconds or a duration such as "90m" or "24h".
func setTTL(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if ttl, err := cache.ParseTTL(v); err == nil {
			*dst = ttl
		}
	}
}
