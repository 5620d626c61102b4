package server

import (
	"encoding/json"
	"net/http"

	"github.com/rshade/gogallery/internal/api"
	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/render"
)

// maxRequestBytes caps page request bodies.
const maxRequestBytes = 1 << 16

// handleGallery serves the full page with the first window in place.
func (s *Server) handleGallery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if !s.prepare(w, r, 0, s.opts.Layout) {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Page(w, s.opts.Layout); err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("rendering gallery page")
	}
}

// handlePage answers the controller's POST with the window for FirstRow.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var req api.PageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	layout, err := render.ParseLayout(req.Layout)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	format, err := render.ParseFormat(req.Format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	firstRow := min(max(req.FirstRow, 0), s.renderer.TotalRows())

	if !s.prepare(w, r, firstRow, layout) {
		return
	}

	content, err := s.renderer.Content(firstRow, layout, format)
	if err != nil {
		log.Error().Err(err).Int("first_row", firstRow).Msg("rendering page")
		http.Error(w, "rendering failed", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, r, api.PageResponse{
		GalleryContent: content,
		DebounceRows:   s.renderer.DebounceRows(),
		TotalRows:      s.renderer.TotalRows(),
		APIVersion:     api.Version,
	})
	log.Debug().
		Int("first_row", firstRow).
		Str("layout", string(layout)).
		Str("format", string(format)).
		Msg("page served")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.thumbs.Stats()
	s.writeJSON(w, r, api.Health{
		Status:     "ok",
		Version:    s.opts.Version,
		APIVersion: api.Version,
		Images:     s.catalog.Len(),
		Thumbnails: stats.Generated + stats.Reused,
		Failed:     stats.Failed,
	})
}

// prepare makes sure the thumbnails shown from firstRow exist and starts
// warming the surrounding screens. It reports false if the client went
// away while waiting.
func (s *Server) prepare(w http.ResponseWriter, r *http.Request, firstRow int, layout render.Layout) bool {
	start, end := s.renderer.Range(firstRow, layout)
	if err := s.thumbs.EnsureRange(r.Context(), start, end); err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Int("first_row", firstRow).Msg("request cancelled")
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return false
	}
	s.thumbs.Warm(firstRow)
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("encoding response")
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(body); err != nil {
		logging.FromContext(r.Context()).Debug().Err(err).Msg("writing response")
	}
}
