package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/gogallery/internal/config"
	"github.com/rshade/gogallery/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the gogallery CLI.
// It loads configuration, wires up logging and tracing, and adds the serve,
// view and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "gogallery",
		Short:         "Scrollable image gallery server and viewer",
		Long:          "gogallery: serve a directory of images as an endlessly scrolling grid, in the browser or the terminal",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logResult.Close()
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "YAML file overlaid on the configuration, section by section")
	cmd.AddCommand(NewServeCmd(), NewViewCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Serve the current directory on http://127.0.0.1:3353/gallery
  gogallery serve

  # Serve a photo directory as a 4x5 grid in random order
  gogallery serve --dir ~/photos --rows 4 --cols 5 --randomize

  # Browse a running server from the terminal
  gogallery view --server http://127.0.0.1:3353

  # Initialize configuration
  gogallery config init

  # Set configuration values
  gogallery config set thumbnails.workers 8`

// loadConfig builds the global configuration from the config file,
// environment and the --config overlay.
func loadConfig(cmd *cobra.Command) error {
	cfg := config.New()

	if overlay, _ := cmd.Flags().GetString("config"); overlay != "" {
		if err := config.ShallowMergeYAML(cfg, overlay); err != nil {
			return fmt.Errorf("loading --config: %w", err)
		}
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
