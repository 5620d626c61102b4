package scroll

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type offsetWrite struct {
	value   float64
	animate bool
	phase   Phase
}

type recordingRenderer struct {
	ctrl     *Controller
	offsets  []offsetWrite
	content  string
	replaces int
	labels   []int
}

func (r *recordingRenderer) SetOffset(value float64, animate bool) {
	w := offsetWrite{value: value, animate: animate}
	if r.ctrl != nil {
		w.phase = r.ctrl.Phase()
	}
	r.offsets = append(r.offsets, w)
}

func (r *recordingRenderer) ReplaceContent(markup string) {
	r.content = markup
	r.replaces++
}

func (r *recordingRenderer) RenumberLabels(delta int) {
	r.labels = append(r.labels, delta)
}

func (r *recordingRenderer) lastOffset(t *testing.T) offsetWrite {
	t.Helper()
	require.NotEmpty(t, r.offsets)
	return r.offsets[len(r.offsets)-1]
}

type recordingSource struct {
	mu       sync.Mutex
	requests []PageRequest
	err      error
	page     func(PageRequest) Page
}

func (s *recordingSource) FetchPage(_ context.Context, req PageRequest) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return Page{}, s.err
	}
	if s.page != nil {
		return s.page(req), nil
	}
	return Page{Content: "rows from " + strconv.Itoa(req.FirstRow)}, nil
}

func (s *recordingSource) rows() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.FirstRow
	}
	return out
}

func syncSpawn(f func()) { f() }

func newTestController(t *testing.T, cfg Config) (*Controller, *recordingRenderer, *recordingSource) {
	t.Helper()
	r := &recordingRenderer{}
	s := &recordingSource{}
	c, err := New(context.Background(), cfg, r, s, WithSpawner(syncSpawn))
	require.NoError(t, err)
	r.ctrl = c
	return c, r, s
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RowHeight = 100
	cfg.ScrollFactor = 1
	return cfg
}

func TestNew_Validation(t *testing.T) {
	r := &recordingRenderer{}
	s := &recordingSource{}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"zero row height", func(c *Config) { c.RowHeight = 0 }, ErrInvalidRowHeight},
		{"negative row height", func(c *Config) { c.RowHeight = -5 }, ErrInvalidRowHeight},
		{"zero scroll factor", func(c *Config) { c.ScrollFactor = 0 }, ErrInvalidScrollFactor},
		{"negative debounce", func(c *Config) { c.DebounceRows = -1 }, ErrInvalidDebounceRows},
		{"unknown policy", func(c *Config) { c.Policy = Policy(9) }, ErrUnknownPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			_, err := New(context.Background(), cfg, r, s)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("nil renderer", func(t *testing.T) {
		_, err := New(context.Background(), testConfig(), nil, s)
		assert.ErrorIs(t, err, ErrNilRenderer)
	})

	t.Run("nil source with fetch policy", func(t *testing.T) {
		_, err := New(context.Background(), testConfig(), r, nil)
		assert.ErrorIs(t, err, ErrNilSource)
	})

	t.Run("nil source allowed when renumbering", func(t *testing.T) {
		cfg := testConfig()
		cfg.Policy = PolicyRenumber
		c, err := New(context.Background(), cfg, r, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, c.State().FirstRow)
	})
}

func TestOnScrollInput_WithinBounds(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	shift := c.OnScrollInput(40, UnitPixel)

	assert.Equal(t, RowDelta(0), shift.Delta)
	assert.False(t, shift.Requested)
	assert.Equal(t, 0, c.State().FirstRow)
	assert.InDelta(t, 40, c.State().Offset, 1e-9)
	assert.Equal(t, offsetWrite{value: 40, animate: true, phase: PhaseSettled}, r.lastOffset(t))
	assert.Empty(t, s.rows())
}

func TestOnScrollInput_DownwardShift(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	shift := c.OnScrollInput(150, UnitPixel)

	assert.Equal(t, RowDelta(1), shift.Delta)
	assert.True(t, shift.Requested)
	assert.Equal(t, 1, shift.Request.FirstRow)
	assert.Equal(t, 1, c.State().FirstRow)
	assert.InDelta(t, 50, c.State().Offset, 1e-9)

	last := r.lastOffset(t)
	assert.InDelta(t, 50, last.value, 1e-9)
	assert.False(t, last.animate, "row shift must not animate")
	assert.Equal(t, PhaseShifting, last.phase)
	assert.Equal(t, PhaseSettled, c.Phase())

	assert.Equal(t, []int{1}, s.rows())
}

func TestOnScrollInput_ExactRowHeightShifts(t *testing.T) {
	c, _, s := newTestController(t, testConfig())

	c.OnScrollInput(100, UnitPixel)

	assert.Equal(t, 1, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9)
	assert.Equal(t, []int{1}, s.rows())
}

func TestOnScrollInput_ClampAtTop(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	shift := c.OnScrollInput(-50, UnitPixel)

	assert.Equal(t, RowDelta(0), shift.Delta)
	assert.Equal(t, 0, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9)
	assert.InDelta(t, 0, r.lastOffset(t).value, 1e-9)
	assert.Empty(t, s.rows())
}

func TestOnScrollInput_UpwardShift(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	c.OnScrollInput(150, UnitPixel) // row 1, offset 50
	shift := c.OnScrollInput(-80, UnitPixel)

	assert.Equal(t, RowDelta(-1), shift.Delta)
	assert.Equal(t, 0, c.State().FirstRow)
	assert.InDelta(t, 70, c.State().Offset, 1e-9)
	assert.False(t, r.lastOffset(t).animate)
	assert.Equal(t, []int{1, 0}, s.rows())
}

func TestOnScrollInput_SubRowTicksNeverFetch(t *testing.T) {
	c, _, s := newTestController(t, testConfig())

	for range 9 {
		c.OnScrollInput(10, UnitPixel)
	}

	assert.Equal(t, 0, c.State().FirstRow)
	assert.InDelta(t, 90, c.State().Offset, 1e-9)
	assert.Empty(t, s.rows())

	c.OnScrollInput(10, UnitPixel)
	assert.Equal(t, 1, c.State().FirstRow)
	assert.Equal(t, []int{1}, s.rows())
}

func TestOnScrollInput_ScrollFactorAndUnits(t *testing.T) {
	tests := []struct {
		name     string
		factor   float64
		delta    float64
		unit     InputUnit
		wantRow  int
		wantOffs float64
	}{
		{"factor scales pixels", 15, 3, UnitPixel, 0, 45},
		{"factor crosses a row", 15, 8, UnitPixel, 1, 20},
		{"lines use line height", 1, 2, UnitLine, 0, 32},
		{"pages span page rows", 1, 1, UnitPage, 3, 0},
		{"large pixel deltas shift whole rows", 1, 950, UnitPixel, 9, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ScrollFactor = tt.factor
			c, _, _ := newTestController(t, cfg)

			c.OnScrollInput(tt.delta, tt.unit)

			assert.Equal(t, tt.wantRow, c.State().FirstRow)
			assert.InDelta(t, tt.wantOffs, c.State().Offset, 1e-9)
		})
	}
}

func TestOnScrollInput_PageKeepsOffsetWithinRow(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	c.OnScrollInput(500, UnitPixel)
	require.Equal(t, 5, c.State().FirstRow)
	require.InDelta(t, 0, c.State().Offset, 1e-9)

	up := c.OnScrollInput(-1, UnitPage)
	assert.Equal(t, RowDelta(-3), up.Delta)
	assert.Equal(t, 2, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9)
	assert.False(t, r.lastOffset(t).animate)

	down := c.OnScrollInput(1, UnitPage)
	assert.Equal(t, RowDelta(3), down.Delta)
	assert.Equal(t, 5, c.State().FirstRow)

	c.OnScrollInput(40, UnitPixel)
	c.OnScrollInput(-1, UnitPage)
	assert.Equal(t, 2, c.State().FirstRow)
	assert.InDelta(t, 40, c.State().Offset, 1e-9)

	for _, d := range []float64{-1, 1, 1, -1, -1, -1} {
		c.OnScrollInput(d, UnitPage)
		off := c.State().Offset
		require.Greater(t, off, -c.State().RowHeight)
		require.Less(t, off, c.State().RowHeight)
	}
	assert.Equal(t, 0, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9, "clamped at the top")
	assert.Equal(t, []int{5, 2, 5, 2, 0, 3, 6, 3, 0}, s.rows(), "one request per shift")
}

func TestOnScrollInput_ClampToEndLimitsPageShift(t *testing.T) {
	cfg := testConfig()
	cfg.ClampToEnd = true
	cfg.PageRows = 3
	c, _, s := newTestController(t, cfg)
	c.OnDataReady(PageResult{Page: Page{Content: "x", TotalRows: 7}})

	shift := c.OnScrollInput(2, UnitPage)
	assert.Equal(t, RowDelta(4), shift.Delta)
	assert.Equal(t, 4, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9)

	assert.Equal(t, RowDelta(0), c.OnScrollInput(1, UnitPage).Delta)
	assert.Equal(t, []int{4}, s.rows())
}

func TestOnScrollInput_HugeDeltaDoesNotOverflow(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())

	c.OnScrollInput(1e300, UnitPixel)
	assert.Positive(t, c.State().FirstRow)
	assert.InDelta(t, 0, c.State().Offset, 1e-9)

	c.OnScrollInput(-1e300, UnitPixel)
	assert.Equal(t, 0, c.State().FirstRow)
}

func TestOnScrollInput_IgnoresNonFinite(t *testing.T) {
	c, r, s := newTestController(t, testConfig())

	c.OnScrollInput(nan(), UnitPixel)

	assert.Equal(t, State{RowHeight: 100}, c.State())
	assert.Empty(t, r.offsets)
	assert.Empty(t, s.rows())
}

func TestOnScrollInput_FirstRowNeverNegative(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	rng := rand.New(rand.NewSource(42))

	for range 2000 {
		delta := (rng.Float64() - 0.6) * 250
		c.OnScrollInput(delta, UnitPixel)
		require.GreaterOrEqual(t, c.State().FirstRow, 0)
	}
}

func TestOnScrollInput_OneRequestPerShift(t *testing.T) {
	c, _, s := newTestController(t, testConfig())

	shifts := 0
	for _, d := range []float64{60, 60, 60, 60, -90, -90, -90, 30} {
		if c.OnScrollInput(d, UnitPixel).Delta != 0 {
			shifts++
		}
	}

	assert.Len(t, s.rows(), shifts)
	assert.Equal(t, shifts, c.Pending())
}

func TestOnScrollInput_RenumberPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.Policy = PolicyRenumber
	c, r, s := newTestController(t, cfg)

	c.OnScrollInput(120, UnitPixel)
	c.OnScrollInput(-150, UnitPixel)

	assert.Equal(t, []int{3, -3}, r.labels)
	assert.Empty(t, s.rows())
}

func TestOnScrollInput_ClampToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.ClampToEnd = true
	cfg.PageRows = 3
	c, _, s := newTestController(t, cfg)

	c.OnDataReady(PageResult{Page: Page{Content: "x", TotalRows: 5}})

	c.OnScrollInput(100, UnitPixel)
	c.OnScrollInput(100, UnitPixel)
	require.Equal(t, 2, c.State().FirstRow)

	shift := c.OnScrollInput(100, UnitPixel)
	assert.Equal(t, RowDelta(0), shift.Delta)
	assert.Equal(t, 2, c.State().FirstRow)
	assert.Equal(t, []int{1, 2}, s.rows())
}

func TestOnScrollPosition_Debounce(t *testing.T) {
	c, _, s := newTestController(t, testConfig())

	assert.False(t, c.OnScrollPosition(150), "within two rows of the start")
	assert.False(t, c.OnScrollPosition(200), "exactly at the threshold")
	assert.True(t, c.OnScrollPosition(250))
	assert.Equal(t, 2, c.State().FirstRow)

	assert.False(t, c.OnScrollPosition(300))
	assert.True(t, c.OnScrollPosition(40))
	assert.Equal(t, 0, c.State().FirstRow)

	assert.Equal(t, []int{2, 0}, s.rows())
}

func TestOnScrollPosition_DebounceFromPage(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())

	c.OnDataReady(PageResult{Page: Page{Content: "x", DebounceRows: 4}})
	assert.Equal(t, 4, c.DebounceRows())

	assert.False(t, c.OnScrollPosition(350))
	assert.True(t, c.OnScrollPosition(450))
}

func TestOnDataReady(t *testing.T) {
	t.Run("replaces content", func(t *testing.T) {
		c, r, _ := newTestController(t, testConfig())

		applied := c.OnDataReady(PageResult{Request: PageRequest{FirstRow: 1, Seq: 1}, Page: Page{Content: "<b>1</b>"}})

		assert.True(t, applied)
		assert.Equal(t, "<b>1</b>", r.content)
	})

	t.Run("idempotent for identical pages", func(t *testing.T) {
		c, r, _ := newTestController(t, testConfig())
		res := PageResult{Page: Page{Content: "<i>same</i>"}}

		c.OnDataReady(res)
		once := r.content
		c.OnDataReady(res)

		assert.Equal(t, once, r.content)
	})

	t.Run("error keeps content", func(t *testing.T) {
		c, r, _ := newTestController(t, testConfig())
		c.OnDataReady(PageResult{Page: Page{Content: "old"}})

		boom := errors.New("connection refused")
		applied := c.OnDataReady(PageResult{Err: boom})

		assert.False(t, applied)
		assert.Equal(t, "old", r.content)
		assert.ErrorIs(t, c.LastError(), boom)

		c.OnDataReady(PageResult{Page: Page{Content: "new"}})
		assert.NoError(t, c.LastError())
	})

	t.Run("last writer wins by default", func(t *testing.T) {
		c, r, _ := newTestController(t, testConfig())
		c.OnScrollInput(100, UnitPixel)
		c.OnScrollInput(100, UnitPixel)

		c.OnDataReady(PageResult{Request: PageRequest{FirstRow: 2, Seq: 2}, Page: Page{Content: "two"}})
		c.OnDataReady(PageResult{Request: PageRequest{FirstRow: 1, Seq: 1}, Page: Page{Content: "one"}})

		assert.Equal(t, "one", r.content)
	})

	t.Run("drop stale discards out of order responses", func(t *testing.T) {
		cfg := testConfig()
		cfg.DropStale = true
		c, r, _ := newTestController(t, cfg)
		c.OnScrollInput(100, UnitPixel)
		c.OnScrollInput(100, UnitPixel)

		assert.True(t, c.OnDataReady(PageResult{Request: PageRequest{FirstRow: 2, Seq: 2}, Page: Page{Content: "two"}}))
		assert.False(t, c.OnDataReady(PageResult{Request: PageRequest{FirstRow: 1, Seq: 1}, Page: Page{Content: "one"}}))

		assert.Equal(t, "two", r.content)
	})
}

func TestSetRowHeight(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())
	c.OnScrollInput(50, UnitPixel)

	require.NoError(t, c.SetRowHeight(200))
	assert.InDelta(t, 100, c.State().Offset, 1e-9)
	assert.InDelta(t, 200, c.State().RowHeight, 1e-9)

	assert.ErrorIs(t, c.SetRowHeight(0), ErrInvalidRowHeight)
}

func TestRefresh_AsyncDelivery(t *testing.T) {
	r := &recordingRenderer{}
	s := &recordingSource{}
	c, err := New(context.Background(), testConfig(), r, s)
	require.NoError(t, err)

	req := c.Refresh()
	assert.Equal(t, 0, req.FirstRow)

	select {
	case res := <-c.Results():
		assert.Equal(t, req, res.Request)
		c.OnDataReady(res)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for page")
	}
	assert.Equal(t, "rows from 0", r.content)
	assert.Equal(t, 0, c.Pending())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Renumber")
	require.NoError(t, err)
	assert.Equal(t, PolicyRenumber, p)
	assert.Equal(t, "renumber", p.String())

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFetch, p)

	_, err = ParsePolicy("teleport")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}

func nan() float64 {
	zero := 0.0
	return zero / zero
}
