package render_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gogallery/internal/library"
	"github.com/rshade/gogallery/internal/render"
)

func catalog(n int) *library.Catalog {
	images := make([]library.Image, n)
	for i := range images {
		images[i] = library.Image{ServerPath: fmt.Sprintf("imgs/p%02d.jpg", i)}
	}
	return library.NewCatalog(images)
}

func newRenderer(t *testing.T, n int) *render.Renderer {
	t.Helper()
	r, err := render.New(catalog(n), render.Options{Rows: 3, Cols: 3, BufferRows: 1})
	require.NoError(t, err)
	return r
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name                                string
		firstRow, prefetch, rows, cols, tot int
		wantStart, wantEnd                  int
	}{
		{"top", 0, 3, 3, 3, 100, 0, 18},
		{"middle", 5, 3, 3, 3, 100, 6, 33},
		{"prefetch larger than row", 2, 3, 3, 3, 100, 0, 24},
		{"clamped to total", 10, 3, 3, 3, 40, 21, 40},
		{"past end", 50, 0, 3, 3, 40, 40, 40},
		{"no prefetch", 4, 0, 4, 3, 100, 12, 24},
		{"huge first row", 1 << 62, 3, 3, 3, 30, 30, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := render.Window(tt.firstRow, tt.prefetch, tt.rows, tt.cols, tt.tot)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestItemStyle(t *testing.T) {
	s := render.ItemStyle(3, 5)
	assert.Equal(t, "19.80", s.Width)
	assert.Equal(t, "33.00", s.Height)
	assert.Equal(t, "0.17", s.MarginVert)
	assert.Equal(t, "0.10", s.MarginHoriz)
}

func TestDebounceRows(t *testing.T) {
	assert.Equal(t, 2, render.DebounceRows(3))
	assert.Equal(t, 2, render.DebounceRows(4))
	assert.Equal(t, 1, render.DebounceRows(1))
}

func TestParseLayoutAndFormat(t *testing.T) {
	l, err := render.ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, render.LayoutWindow, l)

	l, err = render.ParseLayout("MASK")
	require.NoError(t, err)
	assert.Equal(t, render.LayoutMask, l)

	_, err = render.ParseLayout("grid")
	require.ErrorIs(t, err, render.ErrUnknownLayout)

	f, err := render.ParseFormat("text")
	require.NoError(t, err)
	assert.Equal(t, render.FormatText, f)

	_, err = render.ParseFormat("pdf")
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestNew_InvalidGrid(t *testing.T) {
	_, err := render.New(catalog(1), render.Options{Rows: 0, Cols: 3})
	require.ErrorIs(t, err, render.ErrInvalidGrid)
}

func TestView_Window(t *testing.T) {
	r := newRenderer(t, 20)

	v := r.View(2, render.LayoutWindow)
	assert.Equal(t, 7, v.TotalRows)
	assert.Equal(t, 2, v.DebounceRows)
	require.Len(t, v.Rows, 4, "three screen rows plus one buffer row")
	assert.Equal(t, 2, v.Rows[0].Index)
	assert.Equal(t, 6, v.Rows[0].Items[0].Index)
	assert.Equal(t, 7, v.Rows[0].Items[0].Label)

	last := v.Rows[3]
	assert.Equal(t, 5, last.Index)
	assert.Len(t, last.Items, 3)

	// Near the end the last row is short.
	v = r.View(5, render.LayoutWindow)
	require.Len(t, v.Rows, 2)
	assert.Len(t, v.Rows[1].Items, 2)
}

func TestView_NegativeFirstRowClamped(t *testing.T) {
	r := newRenderer(t, 20)
	v := r.View(-4, render.LayoutWindow)
	assert.Equal(t, 0, v.FirstRow)
	assert.Equal(t, 0, v.Rows[0].Index)
}

func TestView_MaskBlanksOutsideWindow(t *testing.T) {
	r := newRenderer(t, 60)

	v := r.View(10, render.LayoutMask)
	require.Len(t, v.Rows, 20)

	start, end := r.Range(10, render.LayoutMask)
	assert.Equal(t, 21, start)
	assert.Equal(t, 48, end)

	for _, row := range v.Rows {
		for _, it := range row.Items {
			inWindow := it.Index >= start && it.Index < end
			assert.Equal(t, !inWindow, it.Blank, "item %d", it.Index)
		}
	}
}

func TestView_ThumbnailFallback(t *testing.T) {
	cat := catalog(3)
	cat.SetThumbnail(1, "thumbs/abc.jpg")
	r, err := render.New(cat, render.Options{Rows: 1, Cols: 3})
	require.NoError(t, err)

	items := r.View(0, render.LayoutWindow).Rows[0].Items
	assert.Equal(t, "imgs/p00.jpg", items[0].Src)
	assert.Equal(t, "thumbs/abc.jpg", items[1].Src)
	assert.Equal(t, "imgs/p01.jpg", items[1].Full)
}

func TestContent_HTML(t *testing.T) {
	r := newRenderer(t, 20)

	out, err := r.Content(1, render.LayoutWindow, render.FormatHTML)
	require.NoError(t, err)

	assert.Equal(t, 12, strings.Count(out, `class="gallery-item"`))
	assert.Contains(t, out, `<span class="gallery-label">4</span>`)
	assert.Contains(t, out, `src="imgs/p03.jpg"`)
	assert.Contains(t, out, "width: 33.00%")
	assert.NotContains(t, out, "p02.jpg", "row 0 is not part of the window")

	again, err := r.Content(1, render.LayoutWindow, render.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestContent_HTMLEscapesNames(t *testing.T) {
	cat := library.NewCatalog([]library.Image{{ServerPath: `imgs/<b>"x".jpg`}})
	r, err := render.New(cat, render.Options{Rows: 1, Cols: 1})
	require.NoError(t, err)

	out, err := r.Content(0, render.LayoutWindow, render.FormatHTML)
	require.NoError(t, err)
	assert.NotContains(t, out, "<b>")
}

func TestContent_MaskHTML(t *testing.T) {
	r := newRenderer(t, 60)

	out, err := r.Content(10, render.LayoutMask, render.FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, 60, strings.Count(out, `class="gallery-item`))
	assert.Equal(t, 33, strings.Count(out, `gallery-item blank`))
	assert.Equal(t, 27, strings.Count(out, "<img "))
}

func TestContent_Text(t *testing.T) {
	r := newRenderer(t, 20)

	out, err := r.Content(0, render.LayoutWindow, render.FormatText)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4*render.TextRowLines)
	assert.True(t, strings.HasPrefix(lines[0], "#1 "))
	assert.Contains(t, lines[0], "#3")
	assert.Contains(t, lines[1], "p00.jpg")
	assert.Empty(t, strings.TrimSpace(lines[2]))
	assert.Contains(t, lines[3], "#4")
}

func TestContent_UnknownFormat(t *testing.T) {
	r := newRenderer(t, 3)
	_, err := r.Content(0, render.LayoutWindow, render.Format("pdf"))
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestPage(t *testing.T) {
	r := newRenderer(t, 20)

	var buf bytes.Buffer
	require.NoError(t, r.Page(&buf, render.LayoutWindow))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `class="gallery-container"`)
	assert.Contains(t, out, `data-total-rows="7"`)
	assert.Contains(t, out, `data-debounce-rows="2"`)
	assert.Contains(t, out, `data-screen-rows="3"`)
	assert.Contains(t, out, `id="zoom"`)
	assert.Contains(t, out, `<span class="gallery-label">1</span>`)
}
