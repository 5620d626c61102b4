// Package client fetches gallery pages from a running server. It is the
// scroll controller's data source for the terminal viewer and the browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/rshade/gogallery/internal/api"
	"github.com/rshade/gogallery/internal/logging"
	"github.com/rshade/gogallery/internal/scroll"
)

// DefaultTimeout bounds a single page request.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps the decoded response body.
const maxResponseBytes = 32 << 20

var (
	// ErrStatus is returned for non-200 responses.
	ErrStatus = errors.New("unexpected response status")

	// ErrIncompatibleServer is returned when the server's API version is
	// outside the supported range.
	ErrIncompatibleServer = errors.New("incompatible server API version")
)

// Client posts page requests to a gallery server.
type Client struct {
	// HTTPClient is used for requests; tests may replace it.
	HTTPClient *http.Client

	endpoint   string
	layout     string
	format     string
	timeout    time.Duration
	constraint *semver.Constraints
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client. A nil client keeps the
// default.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the HTTP
// client, so a shared client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLayout selects the window layout requested from the server.
func WithLayout(layout string) Option {
	return func(c *Client) { c.layout = layout }
}

// WithFormat selects the markup requested from the server.
func WithFormat(format string) Option {
	return func(c *Client) { c.format = format }
}

// WithLogger sets the client's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = logging.ComponentLogger(l, "client") }
}

// New creates a client for the server at baseURL, e.g.
// "http://127.0.0.1:3353".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server URL %q must be http or https", baseURL)
	}

	constraint, err := semver.NewConstraint(api.VersionConstraint)
	if err != nil {
		return nil, fmt.Errorf("parsing API constraint: %w", err)
	}

	c := &Client{
		endpoint:   u.String() + api.RoutePage,
		constraint: constraint,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	}
	if c.timeout > 0 {
		hc := *c.HTTPClient
		hc.Timeout = c.timeout
		c.HTTPClient = &hc
	}
	return c, nil
}

// Endpoint is the page URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// FetchPage implements scroll.DataSource.
func (c *Client) FetchPage(ctx context.Context, req scroll.PageRequest) (scroll.Page, error) {
	body, err := json.Marshal(api.PageRequest{
		FirstRow: req.FirstRow,
		Layout:   c.layout,
		Format:   c.format,
	})
	if err != nil {
		return scroll.Page{}, fmt.Errorf("encoding page request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return scroll.Page{}, fmt.Errorf("creating page request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		httpReq.Header.Set(logging.TraceIDHeader, traceID)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return scroll.Page{}, fmt.Errorf("fetching row %d: %w", req.FirstRow, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return scroll.Page{}, fmt.Errorf("%w: %s: %s", ErrStatus, resp.Status, strings.TrimSpace(string(msg)))
	}

	var page api.PageResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&page); err != nil {
		return scroll.Page{}, fmt.Errorf("decoding page response: %w", err)
	}
	if err = c.checkVersion(page.APIVersion); err != nil {
		return scroll.Page{}, err
	}

	c.logger.Debug().
		Int("first_row", req.FirstRow).
		Uint64("seq", req.Seq).
		Dur("elapsed", time.Since(start)).
		Msg("page fetched")

	return scroll.Page{
		Content:      page.GalleryContent,
		DebounceRows: page.DebounceRows,
		TotalRows:    page.TotalRows,
		APIVersion:   page.APIVersion,
	}, nil
}

// checkVersion accepts servers that do not report a version.
func (c *Client) checkVersion(v string) error {
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIncompatibleServer, v, err)
	}
	if !c.constraint.Check(parsed) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleServer, v, api.VersionConstraint)
	}
	return nil
}
