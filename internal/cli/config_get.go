package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/gogallery/internal/config"
)

// NewConfigGetCmd creates the config get command. It reports the effective
// value, including environment and --config overrides.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a configuration value",
		Example: `  # Show the grid size
  gogallery config get gallery.rows

  # Show the whole scroll section
  gogallery config get scroll`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return err
			}
			if section, ok := v.(map[string]any); ok {
				out, marshalErr := yaml.Marshal(section)
				if marshalErr != nil {
					return marshalErr
				}
				cmd.Print(string(out))
				return nil
			}
			cmd.Println(v)
			return nil
		},
	}
}
