package dom

import (
	"strconv"
)

// NoTransitionClass disables the container's CSS transition while present.
const NoTransitionClass = "notransition"

// Viewport renders the scroll window into a container element.
type Viewport struct {
	container Element
}

// NewViewport wraps the gallery container.
func NewViewport(container Element) *Viewport {
	return &Viewport{container: container}
}

// SetOffset positions the container. A non-animated write suppresses the
// transition: the class is added, the offset written, layout forced, and the
// class removed again, so the browser never animates the jump.
func (v *Viewport) SetOffset(value float64, animate bool) {
	top := formatPixels(-value)
	if animate {
		v.container.SetStyle("top", top)
		return
	}

	v.container.AddClass(NoTransitionClass)
	v.container.SetStyle("top", top)
	_ = v.container.OffsetHeight()
	v.container.RemoveClass(NoTransitionClass)
}

// ReplaceContent swaps the rendered rows.
func (v *Viewport) ReplaceContent(markup string) {
	v.container.SetInnerHTML(markup)
}

// RenumberLabels adds delta to every numeric item label. Labels that do not
// hold a number are left alone.
func (v *Viewport) RenumberLabels(delta int) {
	for _, l := range v.container.Labels() {
		n, err := strconv.Atoi(l.Text())
		if err != nil {
			continue
		}
		l.SetText(strconv.Itoa(n + delta))
	}
}

func formatPixels(v float64) string {
	if v == 0 {
		return "0px"
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
