package scroll

import (
	"context"
	"errors"
	"math"

	"github.com/rs/zerolog"
)

// unknownRows marks the total row count as not yet reported by a page.
const unknownRows = -1

// maxShiftRows bounds a single shift so huge deltas cannot overflow FirstRow.
const maxShiftRows = 1 << 30

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for shift and fetch diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSpawner replaces the function used to start fetches. The default
// starts a goroutine per fetch.
func WithSpawner(spawn func(func())) Option {
	return func(c *Controller) {
		if spawn != nil {
			c.spawn = spawn
		}
	}
}

// Controller turns scroll input into row-window shifts and keeps the rendered
// content in step with the first row index.
type Controller struct {
	cfg      Config
	renderer Renderer
	source   DataSource
	logger   zerolog.Logger
	spawn    func(func())

	ctx     context.Context
	results chan PageResult

	state        State
	phase        Phase
	seq          uint64
	pending      int
	lastPosition float64
	debounceRows int
	totalRows    int
	lastErr      error
}

// New creates a controller at row 0 with a zero offset. ctx bounds the
// lifetime of in-flight fetches.
func New(ctx context.Context, cfg Config, renderer Renderer, source DataSource, opts ...Option) (*Controller, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if renderer == nil {
		return nil, ErrNilRenderer
	}
	if source == nil && cfg.Policy == PolicyFetch {
		return nil, ErrNilSource
	}

	c := &Controller{
		cfg:          cfg,
		renderer:     renderer,
		source:       source,
		logger:       zerolog.Nop(),
		spawn:        func(f func()) { go f() },
		ctx:          ctx,
		results:      make(chan PageResult, cfg.ResultBuffer),
		state:        State{RowHeight: cfg.RowHeight},
		debounceRows: cfg.DebounceRows,
		totalRows:    unknownRows,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OnScrollInput applies one wheel delta. A candidate offset inside the
// current row only moves the offset. Otherwise the window shifts by as many
// whole rows as the candidate crossed, clamped at row 0 (and at the last full
// window with ClampToEnd), leaving the offset within one row height. Each
// shift issues one request.
func (c *Controller) OnScrollInput(rawDelta float64, unit InputUnit) Shift {
	if math.IsNaN(rawDelta) || math.IsInf(rawDelta, 0) {
		return c.settled()
	}

	rowHeight := c.state.RowHeight
	candidate := c.state.Offset + c.cfg.ScrollFactor*rawDelta*c.unitScale(unit)
	if candidate >= 0 && candidate < rowHeight {
		return c.moveTo(candidate)
	}

	crossed := math.Floor(candidate / rowHeight)
	offset := candidate - crossed*rowHeight
	if math.Abs(crossed) > maxShiftRows {
		crossed = math.Copysign(maxShiftRows, crossed)
		offset = 0
	}
	rows := int(crossed)

	if c.state.FirstRow+rows < 0 {
		rows = -c.state.FirstRow
		offset = 0
	}
	if last, ok := c.lastRow(); ok && rows > 0 {
		room := last - c.state.FirstRow
		if room <= 0 {
			return c.settled()
		}
		if rows > room {
			rows = room
			offset = 0
		}
	}

	if rows == 0 {
		return c.moveTo(offset)
	}
	return c.shift(RowDelta(rows), offset)
}

// OnScrollPosition handles an absolute scroll position. A new window is
// requested only once the position has moved more than DebounceRows rows
// since the last request. It reports whether a request was issued.
func (c *Controller) OnScrollPosition(position float64) bool {
	if math.IsNaN(position) || math.IsInf(position, 0) {
		return false
	}

	threshold := float64(c.debounceRows) * c.state.RowHeight
	if math.Abs(c.lastPosition-position) <= threshold {
		return false
	}

	c.lastPosition = position
	row := int(math.Floor(position / c.state.RowHeight))
	if row < 0 {
		row = 0
	}
	c.state.FirstRow = row

	req := c.requestPage()
	c.logger.Debug().
		Float64("position", position).
		Int("first_row", row).
		Uint64("seq", req.Seq).
		Msg("scroll position crossed debounce threshold")
	return true
}

// OnDataReady applies a completed fetch. Errors leave the current content in
// place. With DropStale, results for anything but the latest request are
// discarded. It reports whether the content was replaced.
func (c *Controller) OnDataReady(res PageResult) bool {
	if c.pending > 0 {
		c.pending--
	}

	if res.Err != nil {
		c.lastErr = res.Err
		evt := c.logger.Warn()
		if errors.Is(res.Err, context.Canceled) {
			evt = c.logger.Debug()
		}
		evt.Err(res.Err).
			Int("first_row", res.Request.FirstRow).
			Uint64("seq", res.Request.Seq).
			Msg("page fetch failed, keeping current content")
		return false
	}

	if c.cfg.DropStale && res.Request.Seq != c.seq {
		c.logger.Debug().
			Int("first_row", res.Request.FirstRow).
			Uint64("seq", res.Request.Seq).
			Uint64("latest_seq", c.seq).
			Msg("dropping stale page")
		return false
	}

	c.lastErr = nil
	if res.Page.DebounceRows > 0 {
		c.debounceRows = res.Page.DebounceRows
	}
	if res.Page.TotalRows > 0 {
		c.totalRows = res.Page.TotalRows
	}

	c.renderer.ReplaceContent(res.Page.Content)
	return true
}

// Refresh requests the page for the current first row.
func (c *Controller) Refresh() PageRequest {
	return c.requestPage()
}

// Results delivers completed fetches. Hosts that do not use Run must pass
// each value to OnDataReady on their event goroutine.
func (c *Controller) Results() <-chan PageResult {
	return c.results
}

// SetRowHeight updates the row height, for example after the renderer has
// measured its items. The offset is rescaled to the new height.
func (c *Controller) SetRowHeight(height float64) error {
	if !(height > 0) || math.IsInf(height, 0) {
		return ErrInvalidRowHeight
	}
	c.state.Offset = c.state.Offset / c.state.RowHeight * height
	c.state.RowHeight = height
	return nil
}

// State returns a copy of the current window state.
func (c *Controller) State() State {
	return c.state
}

// Phase returns the current shift phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Pending returns the number of issued requests whose results have not been
// applied yet.
func (c *Controller) Pending() int {
	return c.pending
}

// LastError returns the error of the most recent failed fetch, cleared by the
// next successful one.
func (c *Controller) LastError() error {
	return c.lastErr
}

// DebounceRows returns the threshold currently used by OnScrollPosition.
func (c *Controller) DebounceRows() int {
	return c.debounceRows
}

// TotalRows returns the row count reported by the server, or -1 if unknown.
func (c *Controller) TotalRows() int {
	return c.totalRows
}

// Config returns the controller's configuration.
func (c *Controller) Config() Config {
	return c.cfg
}

// shift moves the window by delta rows and snaps the offset without animation.
func (c *Controller) shift(delta RowDelta, offset float64) Shift {
	c.phase = PhaseShifting
	defer func() { c.phase = PhaseSettled }()

	c.state.FirstRow += int(delta)
	c.state.Offset = offset
	c.renderer.SetOffset(offset, false)

	s := Shift{Delta: delta, FirstRow: c.state.FirstRow, Offset: offset}

	if c.cfg.Policy == PolicyRenumber {
		if r, ok := c.renderer.(LabelRenumberer); ok {
			r.RenumberLabels(int(delta) * c.cfg.RenumberStep)
		}
	} else {
		s.Request = c.requestPage()
		s.Requested = true
	}

	c.logger.Debug().
		Int("delta", int(delta)).
		Int("first_row", s.FirstRow).
		Float64("offset", offset).
		Bool("requested", s.Requested).
		Msg("row window shifted")
	return s
}

// moveTo applies an in-bounds offset with animation.
func (c *Controller) moveTo(offset float64) Shift {
	c.state.Offset = offset
	c.renderer.SetOffset(offset, true)
	return c.settled()
}

func (c *Controller) settled() Shift {
	return Shift{FirstRow: c.state.FirstRow, Offset: c.state.Offset}
}

// requestPage issues one fire-and-forget fetch for the current first row.
func (c *Controller) requestPage() PageRequest {
	c.seq++
	req := PageRequest{FirstRow: c.state.FirstRow, Seq: c.seq}
	if c.source == nil {
		return req
	}
	c.pending++

	ctx, source, results := c.ctx, c.source, c.results
	c.spawn(func() {
		page, err := source.FetchPage(ctx, req)
		select {
		case results <- PageResult{Request: req, Page: page, Err: err}:
		case <-ctx.Done():
		}
	})
	return req
}

// lastRow returns the first row of the last full window, when ClampToEnd is
// set and the total row count is known.
func (c *Controller) lastRow() (int, bool) {
	if !c.cfg.ClampToEnd || c.totalRows == unknownRows {
		return 0, false
	}
	return max(c.totalRows-c.cfg.PageRows, 0), true
}

func (c *Controller) unitScale(unit InputUnit) float64 {
	switch unit {
	case UnitLine:
		return c.cfg.LineHeight
	case UnitPage:
		return float64(c.cfg.PageRows) * c.state.RowHeight
	default:
		return 1
	}
}

func isInf(f float64) bool {
	return math.IsInf(f, 0)
}
