package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigSetCmd creates the config set command.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Sets a value in the configuration file. Keys are dotted paths such as
gallery.rows; values are parsed as YAML and must fit the key's type.
The resulting configuration must still validate.`,
		Example: `  # Use eight thumbnail workers
  gogallery config set thumbnails.workers 8

  # Keep thumbnails between runs
  gogallery config set cache.enabled true`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigFile()
			if err != nil {
				return err
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save: %w", err)
			}
			if err = cfg.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			cmd.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}
