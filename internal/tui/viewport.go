package tui

import (
	"math"
	"regexp"
	"strconv"

	"github.com/charmbracelet/bubbles/viewport"
)

// labelPattern matches the item numbers in text-format content.
var labelPattern = regexp.MustCompile(`#(\d+)`)

// Viewport renders the scroll window into a terminal viewport. It
// implements scroll.Renderer and scroll.LabelRenumberer; offsets are in
// lines.
type Viewport struct {
	model   viewport.Model
	content string
	offset  float64

	// Snaps counts offset writes made without animation, i.e. row shifts.
	Snaps int
}

// NewViewport creates a viewport of the given size.
func NewViewport(width, height int) *Viewport {
	return &Viewport{model: viewport.New(width, height)}
}

// SetOffset scrolls the content by whole lines. A terminal has no
// transitions to suppress, so animate only feeds the snap counter.
func (v *Viewport) SetOffset(value float64, animate bool) {
	if !animate {
		v.Snaps++
	}
	v.offset = value
	v.model.SetYOffset(int(math.Floor(value)))
}

// ReplaceContent swaps in new content, keeping the current offset.
func (v *Viewport) ReplaceContent(markup string) {
	v.content = markup
	v.model.SetContent(markup)
	v.model.SetYOffset(int(math.Floor(v.offset)))
}

// RenumberLabels shifts every "#n" label by delta.
func (v *Viewport) RenumberLabels(delta int) {
	v.ReplaceContent(labelPattern.ReplaceAllStringFunc(v.content, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil {
			return m
		}
		return "#" + strconv.Itoa(n+delta)
	}))
}

// Resize changes the visible area.
func (v *Viewport) Resize(width, height int) {
	v.model.Width = width
	v.model.Height = height
	v.model.SetYOffset(int(math.Floor(v.offset)))
}

// Content returns the full content.
func (v *Viewport) Content() string {
	return v.content
}

// Offset returns the last offset written.
func (v *Viewport) Offset() float64 {
	return v.offset
}

// View renders the visible lines.
func (v *Viewport) View() string {
	return v.model.View()
}
