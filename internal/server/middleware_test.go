package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gogallery/internal/logging"
)

func TestMiddleware_RecoverAndLog(t *testing.T) {
	var buf bytes.Buffer
	s := &Server{logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	var gotTrace string
	h := chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotTrace = logging.TraceIDFromContext(r.Context())
		panic("boom")
	}), s.recoverer, s.accessLog, s.requestID)

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	req.Header.Set(logging.TraceIDHeader, "trace-xyz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "trace-xyz", gotTrace)
	require.NotEmpty(t, rec.Header().Get(logging.RequestIDHeader))

	out := buf.String()
	assert.Contains(t, out, `"panic":"boom"`)
	assert.Contains(t, out, `"status":500`)
	assert.Contains(t, out, `"trace_id":"trace-xyz"`)
	assert.Contains(t, out, rec.Header().Get(logging.RequestIDHeader))
}

func TestMiddleware_GeneratesTraceID(t *testing.T) {
	s := &Server{logger: zerolog.Nop()}

	var gotTrace string
	h := s.requestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotTrace = logging.TraceIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, rec.Header().Get(logging.RequestIDHeader), gotTrace)
}

func TestEmbeddedAssets(t *testing.T) {
	sub, err := embeddedAssets.Open("assets/style.css")
	require.NoError(t, err)
	require.NoError(t, sub.Close())
}
