package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/gogallery/internal/cache"
	"github.com/rshade/gogallery/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the configuration file for syntax and semantic correctness:
the schema version, port range, grid size, thumbnail settings, scroll
policy and viewer server URL.`,
		Example: `  # Validate current configuration
  gogallery config validate

  # Validate and show detailed information
  gogallery config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate parses the config file, surfacing syntax errors that
// the global loader skips, then validates the effective configuration.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	path, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}
	if _, err = config.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cfg := config.GetGlobalConfig()
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", cfg.ConfigPath())
	cmd.Printf("  Listen: %s:%d\n", cfg.Server.Host, cfg.Server.Port)
	cmd.Printf("  Gallery: %s (%dx%d, layout %s)\n", cfg.Gallery.Dir, cfg.Gallery.Rows, cfg.Gallery.Cols, cfg.Gallery.Layout)
	cmd.Printf("  Thumbnails: height %d, %d workers\n", cfg.Thumbnails.Height, cfg.Thumbnails.Workers)
	if cfg.Cache.Enabled {
		cmd.Printf("  Cache: enabled, ttl %s\n", cache.FormatDuration(time.Duration(cfg.Cache.TTLSeconds)*time.Second))
	} else {
		cmd.Println("  Cache: disabled")
	}
	cmd.Printf("  Scroll policy: %s\n", cfg.Scroll.Policy)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
