// Package server serves the gallery page, the JSON page endpoint the
// scroll controller fetches from, and the images themselves.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/gogallery/internal/api"
	"github.com/rshade/gogallery/internal/library"
	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/thumbs"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

const readHeaderTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Addr is the listen address, host:port.
	Addr string

	// GalleryDir is served under /imgs/.
	GalleryDir string

	// WasmDir, when set, holds gallery.wasm and wasm_exec.js. Its files
	// are served under /assets/ ahead of the embedded ones.
	WasmDir string

	// Layout is used for the initial gallery page.
	Layout render.Layout

	ShutdownTimeout time.Duration

	// Version is reported by /healthz.
	Version string
}

// Server is the gallery HTTP server.
type Server struct {
	opts     Options
	catalog  *library.Catalog
	renderer *render.Renderer
	thumbs   *thumbs.Generator
	logger   zerolog.Logger
	assets   fs.FS
}

// New assembles a server. The generator's directory is served under
// /thumbs/.
func New(
	opts Options,
	catalog *library.Catalog,
	renderer *render.Renderer,
	gen *thumbs.Generator,
	logger zerolog.Logger,
) (*Server, error) {
	if opts.Layout == "" {
		opts.Layout = render.LayoutWindow
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	assets, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return nil, fmt.Errorf("loading embedded assets: %w", err)
	}
	if opts.WasmDir != "" {
		assets = overlayFS{os.DirFS(opts.WasmDir), assets}
	}

	return &Server{
		opts:     opts,
		catalog:  catalog,
		renderer: renderer,
		thumbs:   gen,
		logger:   logging.ComponentLogger(logger, "server"),
		assets:   assets,
	}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(api.RouteGallery, s.handleGallery)
	mux.HandleFunc(api.RoutePage, s.handlePage)
	mux.HandleFunc(api.RouteHealth, s.handleHealth)
	mux.Handle(api.RouteAssets, http.StripPrefix(api.RouteAssets, http.FileServerFS(s.assets)))
	mux.Handle(api.RouteImages, http.StripPrefix(api.RouteImages, http.FileServer(http.Dir(s.opts.GalleryDir))))
	mux.Handle(api.RouteThumbs, http.StripPrefix(api.RouteThumbs, http.FileServer(http.Dir(s.thumbs.Dir()))))
	mux.Handle("/{$}", http.RedirectHandler(api.RouteGallery, http.StatusFound))

	return chain(mux, s.recoverer, s.accessLog, s.requestID)
}

// ListenAndServe listens on Options.Addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully and
// stops thumbnail warming.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return s.logger.WithContext(context.Background()) },
	}

	p := message.NewPrinter(language.English)
	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("images", p.Sprintf("%d", s.catalog.Len())).
		Int("rows", s.renderer.TotalRows()).
		Msg("gallery server listening")

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("shutting down gallery server")
		err := srv.Shutdown(shutdownCtx)
		s.thumbs.Close()
		if err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// overlayFS serves files from top, falling back to base.
type overlayFS struct {
	top  fs.FS
	base fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	if f, err := o.top.Open(name); err == nil {
		return f, nil
	}
	return o.base.Open(name)
}
