package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/gogallery/internal/cache"
	"github.com/rshade/gogallery/internal/config"
	"github.com/rshade/gogallery/internal/library"
	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/server"
	"github.com/rshade/gogallery/internal/thumbs"
	"github.com/rshade/gogallery/pkg/version"
)

// serveFlags holds the serve command's flag values. Only flags the user set
// override the configuration.
type serveFlags struct {
	host        string
	port        int
	dir         string
	rows        int
	cols        int
	randomize   bool
	seed        int64
	workers     int
	thumbHeight int
	layout      string
	wasmDir     string
}

// NewServeCmd creates the serve command, which scans a directory and serves
// it as a scrolling gallery.
func NewServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a directory of images as a scrolling gallery",
		Long: `Scans a directory for JPEG and PNG images and serves them as a grid.

Open /gallery in a browser. Thumbnails are generated on demand by a pool of
workers; with the cache enabled they are kept between runs, otherwise they
live in a temporary directory removed on shutdown.`,
		Example: `  # Serve the current directory
  gogallery serve

  # Serve ~/photos on port 8080 as a 4x5 grid
  gogallery serve --dir ~/photos --port 8080 --rows 4 --cols 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetGlobalConfig()
			applyServeFlags(cmd, cfg, flags)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.host, "host", "", "address to listen on")
	f.IntVar(&flags.port, "port", 0, "port to listen on")
	f.StringVar(&flags.dir, "dir", "", "directory to look for images in")
	f.IntVar(&flags.rows, "rows", 0, "number of rows in the gallery view")
	f.IntVar(&flags.cols, "cols", 0, "number of columns in the gallery view")
	f.BoolVar(&flags.randomize, "randomize", false, "shuffle the images")
	f.Int64Var(&flags.seed, "seed", 0, "shuffle seed (0 = random)")
	f.IntVar(&flags.workers, "num-workers", 0, "number of thumbnail workers")
	f.IntVar(&flags.thumbHeight, "thumb-height", 0, "thumbnail height in pixels")
	f.StringVar(&flags.layout, "layout", "", "initial page layout: window or mask")
	f.StringVar(&flags.wasmDir, "wasm-dir", "", "directory holding gallery.wasm and wasm_exec.js")

	return cmd
}

// applyServeFlags overrides cfg with the flags the user set.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config, flags serveFlags) {
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Server.Host = flags.host
	}
	if f.Changed("port") {
		cfg.Server.Port = flags.port
	}
	if f.Changed("dir") {
		cfg.Gallery.Dir = flags.dir
	}
	if f.Changed("rows") {
		cfg.Gallery.Rows = flags.rows
	}
	if f.Changed("cols") {
		cfg.Gallery.Cols = flags.cols
	}
	if f.Changed("randomize") {
		cfg.Gallery.Randomize = flags.randomize
	}
	if f.Changed("seed") {
		cfg.Gallery.Seed = flags.seed
	}
	if f.Changed("num-workers") {
		cfg.Thumbnails.Workers = flags.workers
	}
	if f.Changed("thumb-height") {
		cfg.Thumbnails.Height = flags.thumbHeight
	}
	if f.Changed("layout") {
		cfg.Gallery.Layout = flags.layout
	}
	if f.Changed("wasm-dir") {
		cfg.Server.WasmDir = flags.wasmDir
	}
}

// runServe wires the gallery together and serves until ctx is done.
func runServe(ctx context.Context, cfg *config.Config) error {
	log := logging.FromContext(ctx)

	images, err := library.Scan(ctx, cfg.Gallery.Dir, library.ScanOptions{
		Randomize: cfg.Gallery.Randomize,
		Seed:      cfg.Gallery.Seed,
	})
	if err != nil {
		return err
	}
	catalog := library.NewCatalog(images)
	if catalog.Len() == 0 {
		log.Warn().Str("dir", cfg.Gallery.Dir).Msg("no images found")
	}

	store, err := prepareThumbnailStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cleanupErr := store.cleanup(); cleanupErr != nil {
			log.Warn().Err(cleanupErr).Str("dir", store.dir).Msg("removing thumbnail directory")
		}
	}()

	layout, err := render.ParseLayout(cfg.Gallery.Layout)
	if err != nil {
		return err
	}
	renderer, err := render.New(catalog, render.Options{
		Rows:       cfg.Gallery.Rows,
		Cols:       cfg.Gallery.Cols,
		BufferRows: cfg.Gallery.BufferRows,
	})
	if err != nil {
		return err
	}

	gen, err := thumbs.New(catalog, thumbs.Options{
		Dir:     store.dir,
		Height:  cfg.Thumbnails.Height,
		Workers: cfg.Thumbnails.Workers,
		Quality: cfg.Thumbnails.Quality,
		Rows:    cfg.Gallery.Rows,
		Cols:    cfg.Gallery.Cols,
		Index:   store.index,
	}, *log)
	if err != nil {
		return err
	}
	gen.Warm(0)

	srv, err := server.New(server.Options{
		Addr:            net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		GalleryDir:      cfg.Gallery.Dir,
		WasmDir:         cfg.Server.WasmDir,
		Layout:          layout,
		ShutdownTimeout: time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second,
		Version:         version.GetVersion(),
	}, catalog, renderer, gen, *log)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// thumbnailStore is where the generator writes and how it is cleaned up.
type thumbnailStore struct {
	dir   string
	index *cache.Index
	temp  bool
}

// cleanup removes a temporary thumbnail directory.
func (s thumbnailStore) cleanup() error {
	if !s.temp {
		return nil
	}
	return os.RemoveAll(s.dir)
}

// prepareThumbnailStore picks the thumbnail directory: the cache when it is
// enabled (pruning expired entries), the configured directory, or a fresh
// temporary directory.
func prepareThumbnailStore(cfg *config.Config) (thumbnailStore, error) {
	if cfg.Cache.Enabled {
		dir, err := cfg.GetCacheDir()
		if err != nil {
			return thumbnailStore{}, err
		}
		idx, err := cache.NewIndex(dir, true, cfg.Cache.TTLSeconds)
		if err != nil {
			return thumbnailStore{}, err
		}
		if err = idx.Prune(); err != nil {
			logger.Warn().Err(err).Msg("pruning thumbnail cache")
		}
		return thumbnailStore{dir: idx.ThumbDir(), index: idx}, nil
	}

	if cfg.Thumbnails.Dir != "" {
		return thumbnailStore{dir: cfg.Thumbnails.Dir}, nil
	}

	dir, err := os.MkdirTemp("", "gogallery-thumbs-")
	if err != nil {
		return thumbnailStore{}, fmt.Errorf("creating thumbnail directory: %w", err)
	}
	return thumbnailStore{dir: dir, temp: true}, nil
}
