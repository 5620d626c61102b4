package scroll

import "context"

// State is the position of the row window.
type State struct {
	// FirstRow is the index of the first rendered row. Never negative.
	FirstRow int

	// Offset is the scroll distance into the window, positive toward higher
	// rows. A row shift renormalizes it by exactly one RowHeight.
	Offset float64

	// RowHeight is the height of one row.
	RowHeight float64
}

// Phase is the controller's position in its shift cycle.
type Phase int

const (
	// PhaseSettled means the offset is within bounds and no shift is underway.
	PhaseSettled Phase = iota
	// PhaseShifting is held while a row shift rewrites the offset.
	PhaseShifting
)

func (p Phase) String() string {
	if p == PhaseShifting {
		return "shifting"
	}
	return "settled"
}

// RowDelta is the number of rows a shift moved: positive down, negative up,
// 0 none. Ordinary wheel ticks move one row.
type RowDelta int

// Shift describes what a single input event did to the window.
type Shift struct {
	Delta     RowDelta
	FirstRow  int
	Offset    float64
	Requested bool
	Request   PageRequest
}

// PageRequest identifies the window a page is requested for.
type PageRequest struct {
	FirstRow int `json:"FirstRow"`

	// Seq tags the request within its controller. It never leaves the process.
	Seq uint64 `json:"-"`
}

// Page is the content returned for a window. Content is opaque markup.
type Page struct {
	Content      string
	DebounceRows int
	TotalRows    int
	APIVersion   string
}

// PageResult pairs a completed request with its page or error.
type PageResult struct {
	Request PageRequest
	Page    Page
	Err     error
}

// Renderer applies the controller's decisions to whatever shows the gallery.
type Renderer interface {
	// SetOffset moves the window to the given scroll offset. When animate is
	// false the change must appear instantly.
	SetOffset(value float64, animate bool)

	// ReplaceContent swaps the whole rendered window for markup.
	ReplaceContent(markup string)
}

// LabelRenumberer is implemented by renderers that support PolicyRenumber.
type LabelRenumberer interface {
	RenumberLabels(delta int)
}

// DataSource produces the page for a window.
type DataSource interface {
	FetchPage(ctx context.Context, req PageRequest) (Page, error)
}

// DataSourceFunc adapts a function to DataSource.
type DataSourceFunc func(ctx context.Context, req PageRequest) (Page, error)

// FetchPage calls f.
func (f DataSourceFunc) FetchPage(ctx context.Context, req PageRequest) (Page, error) {
	return f(ctx, req)
}
