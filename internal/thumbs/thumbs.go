// Package thumbs generates the scaled-down previews the gallery displays
// instead of full-resolution images.
//
// A Generator converts catalog images on a bounded pool of workers. Each
// image is converted at most once at a time; concurrent requests for the
// same image wait for the running conversion. Images already no taller
// than the target height are served as-is, never enlarged.
package thumbs

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/gogallery/internal/cache"
	"github.com/rshade/gogallery/internal/library"
	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/render"
)

// Defaults.
const (
	DefaultHeight  = 800
	DefaultWorkers = 4
	DefaultQuality = 85
)

// ErrNoDir is returned when no output directory is configured.
var ErrNoDir = errors.New("thumbnail directory is required")

// Options configures a Generator.
type Options struct {
	// Dir receives the generated files.
	Dir string

	Height  int
	Workers int

	// Quality is the JPEG encoder quality.
	Quality int

	// Rows and Cols describe the grid, for Warm.
	Rows int
	Cols int

	// Index, when non-nil and enabled, persists thumbnails across runs.
	Index *cache.Index
}

// Stats counts conversion outcomes.
type Stats struct {
	Generated int64
	Reused    int64
	Original  int64
	Failed    int64
}

type call struct {
	done chan struct{}
}

// Generator produces thumbnails for a catalog.
type Generator struct {
	cat    *library.Catalog
	opts   Options
	logger zerolog.Logger

	sem chan struct{}

	mu       sync.Mutex
	inflight map[int]*call
	failed   map[int]bool
	closed   bool

	generated atomic.Int64
	reused    atomic.Int64
	original  atomic.Int64
	failures  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	warm   sync.WaitGroup
}

// New creates a Generator writing into opts.Dir.
func New(cat *library.Catalog, opts Options, logger zerolog.Logger) (*Generator, error) {
	if opts.Dir == "" {
		return nil, ErrNoDir
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	opts.Rows = max(opts.Rows, 1)
	opts.Cols = max(opts.Cols, 1)

	if err := os.MkdirAll(opts.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating thumbnail directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Generator{
		cat:      cat,
		opts:     opts,
		logger:   logging.ComponentLogger(logger, "thumbs"),
		sem:      make(chan struct{}, opts.Workers),
		inflight: make(map[int]*call),
		failed:   make(map[int]bool),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Dir is the directory thumbnails are written to.
func (g *Generator) Dir() string {
	return g.opts.Dir
}

// Stats returns a snapshot of the conversion counters.
func (g *Generator) Stats() Stats {
	return Stats{
		Generated: g.generated.Load(),
		Reused:    g.reused.Load(),
		Original:  g.original.Load(),
		Failed:    g.failures.Load(),
	}
}

// Ensure blocks until every listed image has a thumbnail or has failed.
// Per-image failures are logged and leave the full-resolution fallback in
// place; only cancellation of ctx is returned.
func (g *Generator) Ensure(ctx context.Context, indices []int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Workers)

	for _, i := range indices {
		c, leader := g.claim(i)
		if c == nil {
			continue
		}
		eg.Go(func() error {
			if leader {
				g.run(egCtx, i, c)
			}
			select {
			case <-c.done:
				return nil
			case <-egCtx.Done():
				return egCtx.Err()
			}
		})
	}
	return eg.Wait()
}

// EnsureRange is Ensure for the images in [start, end) still missing one.
func (g *Generator) EnsureRange(ctx context.Context, start, end int) error {
	return g.Ensure(ctx, g.cat.MissingThumbnails(start, end))
}

// Warm converts, in the background, everything within two screens of
// firstRow. It returns immediately.
func (g *Generator) Warm(firstRow int) {
	start, end := render.Window(max(firstRow, 0), 2*g.opts.Rows, g.opts.Rows, g.opts.Cols, g.cat.Len())
	missing := g.cat.MissingThumbnails(start, end)
	if len(missing) == 0 {
		return
	}

	// Add must not race the Wait in Close.
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.warm.Add(1)
	g.mu.Unlock()

	go func() {
		defer g.warm.Done()
		if err := g.Ensure(g.ctx, missing); err != nil && !errors.Is(err, context.Canceled) {
			g.logger.Warn().Err(err).Int("first_row", firstRow).Msg("warming thumbnails")
		}
	}()
}

// Wait blocks until background warming started so far has finished.
func (g *Generator) Wait() {
	g.warm.Wait()
}

// Close stops background warming and waits for it to finish.
func (g *Generator) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.warm.Wait()
}

// claim returns the in-flight call for image i, starting a new one when
// none runs. A nil call means there is nothing to do.
func (g *Generator) claim(i int) (*call, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.inflight[i]; ok {
		return c, false
	}
	if g.failed[i] {
		return nil, false
	}
	im, ok := g.cat.Get(i)
	if !ok || im.ThumbPath != "" {
		return nil, false
	}

	c := &call{done: make(chan struct{})}
	g.inflight[i] = c
	return c, true
}

func (g *Generator) run(ctx context.Context, i int, c *call) {
	defer func() {
		g.mu.Lock()
		delete(g.inflight, i)
		g.mu.Unlock()
		close(c.done)
	}()

	select {
	case g.sem <- struct{}{}:
		defer func() { <-g.sem }()
	case <-ctx.Done():
		return
	}

	im, ok := g.cat.Get(i)
	if !ok {
		return
	}

	thumbPath, err := g.convert(im)
	if err != nil {
		g.failures.Add(1)
		g.mu.Lock()
		g.failed[i] = true
		g.mu.Unlock()
		g.logger.Error().Err(err).Str("image", im.AbsPath).Msg("thumbnail generation failed")
		return
	}
	g.cat.SetThumbnail(i, thumbPath)
}

// convert returns the URL path to display for im, writing a thumbnail when
// one is needed.
func (g *Generator) convert(im library.Image) (string, error) {
	key := cache.Key(im.AbsPath, im.Size, im.ModTime, g.opts.Height)
	name := key + outputExt(im.AbsPath)
	out := filepath.Join(g.opts.Dir, name)

	if g.opts.Index != nil && g.opts.Index.IsEnabled() {
		if entry, err := g.opts.Index.Get(key); err == nil {
			g.reused.Add(1)
			return library.ThumbnailPrefix + entry.Thumb, nil
		}
	}
	if _, err := os.Stat(out); err == nil {
		g.reused.Add(1)
		g.record(key, im.AbsPath, name)
		return library.ThumbnailPrefix + name, nil
	}

	written, err := Resize(im.AbsPath, out, g.opts.Height, g.opts.Quality)
	if err != nil {
		return "", err
	}
	if !written {
		g.original.Add(1)
		return im.ServerPath, nil
	}

	g.generated.Add(1)
	g.record(key, im.AbsPath, name)
	g.logger.Debug().Str("image", im.AbsPath).Str("thumb", name).Msg("thumbnail generated")
	return library.ThumbnailPrefix + name, nil
}

func (g *Generator) record(key, source, name string) {
	if g.opts.Index == nil || !g.opts.Index.IsEnabled() {
		return
	}
	if err := g.opts.Index.Put(key, source, name); err != nil {
		g.logger.Warn().Err(err).Str("thumb", name).Msg("indexing thumbnail")
	}
}

// Resize scales src to height, keeping the aspect ratio, and writes it to
// dst in the source's format. It reports false, writing nothing, when src
// is not taller than height.
func Resize(src, dst string, height, quality int) (bool, error) {
	f, err := os.Open(src)
	if err != nil {
		return false, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return false, fmt.Errorf("decoding %s: %w", src, err)
	}

	b := img.Bounds()
	if b.Dy() <= height {
		return false, nil
	}
	width := max(1, b.Dx()*height/b.Dy())
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return false, fmt.Errorf("creating thumbnail: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // Gone after a successful rename.

	if format == "png" {
		err = png.Encode(tmp, scaled)
	} else {
		err = jpeg.Encode(tmp, scaled, &jpeg.Options{Quality: quality})
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("encoding thumbnail: %w", err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return false, fmt.Errorf("writing thumbnail: %w", err)
	}
	return true, nil
}

func outputExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return ".png"
	}
	return ".jpg"
}
