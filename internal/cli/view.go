package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/gogallery/internal/client"
	"github.com/rshade/gogallery/internal/config"
	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/scroll"
	"github.com/rshade/gogallery/internal/tui"
)

// ErrNotTerminal is returned when view is run without an interactive terminal.
var ErrNotTerminal = errors.New("view requires an interactive terminal")

type viewFlags struct {
	server       string
	scrollFactor float64
	policy       string
	dropStale    bool
	rows         int
}

// NewViewCmd creates the view command, a terminal viewer for a running
// gallery server.
func NewViewCmd() *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a gallery server from the terminal",
		Long: `Connects to a running gallery server and shows its images as a scrolling
text grid. Scroll with the mouse wheel, arrow keys or page keys.`,
		Example: `  # Browse the local server
  gogallery view

  # Browse a remote server, renumbering labels instead of fetching
  gogallery view --server http://photos.lan:3353 --policy renumber`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			cfg := config.GetGlobalConfig()
			applyViewFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			model, err := newViewer(cmd, cfg)
			if err != nil {
				return err
			}

			p := tea.NewProgram(model,
				tea.WithContext(cmd.Context()),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
			)
			if _, err = p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("running viewer: %w", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.server, "server", "", "base URL of the gallery server")
	f.Float64Var(&flags.scrollFactor, "scroll-factor", 0, "multiplier applied to every scroll delta")
	f.StringVar(&flags.policy, "policy", "", "row shift policy: fetch or renumber")
	f.BoolVar(&flags.dropStale, "drop-stale", false, "discard responses superseded by a newer request")
	f.IntVar(&flags.rows, "rows", 0, "rows per screen")

	return cmd
}

func applyViewFlags(cmd *cobra.Command, cfg *config.Config, flags viewFlags) {
	f := cmd.Flags()
	if f.Changed("server") {
		cfg.Scroll.ServerURL = flags.server
	}
	if f.Changed("scroll-factor") {
		cfg.Scroll.ScrollFactor = flags.scrollFactor
	}
	if f.Changed("policy") {
		cfg.Scroll.Policy = flags.policy
	}
	if f.Changed("drop-stale") {
		cfg.Scroll.DropStale = flags.dropStale
	}
	if f.Changed("rows") {
		cfg.Gallery.Rows = flags.rows
	}
}

// newViewer builds the client and viewer model from cfg.
func newViewer(cmd *cobra.Command, cfg *config.Config) (*tui.Model, error) {
	log := viewerLogger(cmd, cfg)

	scrollCfg, err := scrollConfig(cfg)
	if err != nil {
		return nil, err
	}

	c, err := client.New(cfg.Scroll.ServerURL,
		client.WithTimeout(time.Duration(cfg.Scroll.RequestTimeoutSeconds)*time.Second),
		client.WithLayout(string(render.LayoutWindow)),
		client.WithFormat(string(render.FormatText)),
		client.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	return tui.New(cmd.Context(), scrollCfg, c, tui.Options{
		Title:  "gogallery " + cfg.Scroll.ServerURL,
		Rows:   cfg.Gallery.Rows,
		Logger: log,
	})
}

// scrollConfig maps the scroll section onto the controller configuration.
func scrollConfig(cfg *config.Config) (scroll.Config, error) {
	policy, err := scroll.ParsePolicy(cfg.Scroll.Policy)
	if err != nil {
		return scroll.Config{}, err
	}

	sc := scroll.DefaultConfig()
	sc.ScrollFactor = cfg.Scroll.ScrollFactor
	sc.Policy = policy
	sc.DebounceRows = cfg.Scroll.DebounceRows
	sc.DropStale = cfg.Scroll.DropStale
	sc.ClampToEnd = cfg.Scroll.ClampToEnd
	sc.PageRows = cfg.Gallery.Rows
	sc.RenumberStep = cfg.Gallery.Cols
	return sc, nil
}

// viewerLogger returns the CLI logger when it writes to a file. Console
// output would tear the alternate screen, so it is discarded otherwise.
func viewerLogger(cmd *cobra.Command, cfg *config.Config) zerolog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	if cfg.Logging.File == "" || debug {
		return zerolog.Nop()
	}
	return logger
}
