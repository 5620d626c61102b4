package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/gogallery/internal/config"
)

// NewConfigListCmd creates the config list command.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every configuration key and its effective value",
		Example: `  gogallery config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			for _, key := range cfg.Keys() {
				v, err := cfg.Get(key)
				if err != nil {
					return err
				}
				cmd.Printf("%s = %v\n", key, v)
			}
			return nil
		},
	}
}
