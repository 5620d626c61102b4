// Package render turns windows of the gallery catalog into markup: HTML for
// the browser and fixed-width text for the terminal viewer.
package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"

	"github.com/rshade/gogallery/internal/library"
)

// Layout selects which rows a content window contains.
type Layout string

const (
	// LayoutWindow renders only the visible rows plus a buffer, starting at
	// the first row. The wheel-driven viewport uses it.
	LayoutWindow Layout = "window"

	// LayoutMask renders the full grid and blanks every item outside a
	// prefetch window of one screen above and below.
	LayoutMask Layout = "mask"
)

// Format selects the markup.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// TextRowLines is the height of one row in the text format.
const TextRowLines = 3

// textCellWidth is the width of one item column in the text format.
const textCellWidth = 24

var (
	ErrUnknownLayout = errors.New("unknown layout")
	ErrUnknownFormat = errors.New("unknown format")
	ErrInvalidGrid   = errors.New("rows and cols must be positive")
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ParseLayout maps a request value to a Layout; empty means LayoutWindow.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(s)) {
	case "", LayoutWindow:
		return LayoutWindow, nil
	case LayoutMask:
		return LayoutMask, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownLayout, s)
	}
}

// ParseFormat maps a request value to a Format; empty means FormatHTML.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Source is the image catalog a Renderer reads from.
type Source interface {
	Len() int
	Slice(start, end int) []library.Image
}

// Options configures the grid.
type Options struct {
	Rows int
	Cols int

	// BufferRows is the number of rows rendered below the screen in the
	// window layout, so a partially scrolled row has content.
	BufferRows int

	Title string
}

// Renderer renders gallery pages and content windows.
type Renderer struct {
	src   Source
	opts  Options
	style Style
	html  *htmltemplate.Template
	text  *texttemplate.Template
}

// New parses the embedded templates.
func New(src Source, opts Options) (*Renderer, error) {
	if opts.Rows < 1 || opts.Cols < 1 {
		return nil, fmt.Errorf("%w: rows=%d cols=%d", ErrInvalidGrid, opts.Rows, opts.Cols)
	}
	opts.BufferRows = max(opts.BufferRows, 0)
	if opts.Title == "" {
		opts.Title = "gogallery"
	}

	html, err := htmltemplate.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing html templates: %w", err)
	}
	text, err := texttemplate.New("text").Funcs(texttemplate.FuncMap{
		"cell": cell,
	}).ParseFS(templateFS, "templates/*.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing text templates: %w", err)
	}

	return &Renderer{
		src:   src,
		opts:  opts,
		style: ItemStyle(opts.Rows, opts.Cols),
		html:  html,
		text:  text,
	}, nil
}

// Item is one grid cell as templates see it.
type Item struct {
	Index int

	// Label is the 1-based number shown on the item.
	Label int

	Src  string
	Full string
	Name string

	// Blank items are placeholders outside the prefetch window.
	Blank bool
}

// Row is one grid row.
type Row struct {
	Index int
	Items []Item
}

// View is the template data for one content window.
type View struct {
	FirstRow     int
	TotalRows    int
	DebounceRows int

	// ScreenRows is the number of grid rows visible at once.
	ScreenRows int

	Layout Layout
	Rows   []Row
	Style  Style
	Title  string
}

// TotalRows is the number of grid rows in the catalog.
func (r *Renderer) TotalRows() int {
	return (r.src.Len() + r.opts.Cols - 1) / r.opts.Cols
}

// DebounceRows is the refetch threshold for this grid.
func (r *Renderer) DebounceRows() int {
	return DebounceRows(r.opts.Rows)
}

// Range returns the item indices whose images appear in the given layout.
func (r *Renderer) Range(firstRow int, layout Layout) (int, int) {
	firstRow = max(firstRow, 0)
	if layout == LayoutMask {
		return Window(firstRow, r.opts.Rows, r.opts.Rows, r.opts.Cols, r.src.Len())
	}
	return Window(firstRow, 0, r.opts.Rows+r.opts.BufferRows, r.opts.Cols, r.src.Len())
}

// View builds the template data for a window starting at firstRow.
func (r *Renderer) View(firstRow int, layout Layout) View {
	firstRow = max(firstRow, 0)
	start, end := r.Range(firstRow, layout)
	visible := r.src.Slice(start, end)

	var items []Item
	if layout == LayoutMask {
		items = make([]Item, r.src.Len())
		for i := range items {
			items[i] = Item{Index: i, Label: i + 1, Blank: true}
		}
		for i, im := range visible {
			items[start+i] = newItem(start+i, im)
		}
	} else {
		items = make([]Item, 0, len(visible))
		for i, im := range visible {
			items = append(items, newItem(start+i, im))
		}
	}

	baseRow := firstRow
	if layout == LayoutMask {
		baseRow = 0
	} else if len(items) > 0 {
		baseRow = items[0].Index / r.opts.Cols
	}

	return View{
		FirstRow:     firstRow,
		TotalRows:    r.TotalRows(),
		DebounceRows: r.DebounceRows(),
		ScreenRows:   r.opts.Rows,
		Layout:       layout,
		Rows:         chunk(items, r.opts.Cols, baseRow),
		Style:        r.style,
		Title:        r.opts.Title,
	}
}

// Content renders the content window starting at firstRow.
func (r *Renderer) Content(firstRow int, layout Layout, format Format) (string, error) {
	var buf bytes.Buffer
	view := r.View(firstRow, layout)

	var err error
	switch format {
	case FormatHTML:
		err = r.html.ExecuteTemplate(&buf, "content", view)
	case FormatText:
		err = r.text.ExecuteTemplate(&buf, "content", view)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return "", fmt.Errorf("rendering %s content: %w", format, err)
	}
	return buf.String(), nil
}

// Page writes the full gallery page with the first window rendered in place.
func (r *Renderer) Page(w io.Writer, layout Layout) error {
	if err := r.html.ExecuteTemplate(w, "gallery", r.View(0, layout)); err != nil {
		return fmt.Errorf("rendering gallery page: %w", err)
	}
	return nil
}

func newItem(i int, im library.Image) Item {
	return Item{
		Index: i,
		Label: i + 1,
		Src:   im.DisplayPath(),
		Full:  im.ServerPath,
		Name:  im.Name(),
	}
}

func chunk(items []Item, cols, baseRow int) []Row {
	rows := make([]Row, 0, (len(items)+cols-1)/cols)
	for i := 0; i < len(items); i += cols {
		rows = append(rows, Row{
			Index: baseRow + i/cols,
			Items: items[i:min(i+cols, len(items))],
		})
	}
	return rows
}

// cell pads or truncates s to one text column.
func cell(s string) string {
	r := []rune(s)
	if len(r) > textCellWidth-1 {
		r = append(r[:textCellWidth-2], '~')
	}
	return string(r) + strings.Repeat(" ", textCellWidth-len(r))
}
