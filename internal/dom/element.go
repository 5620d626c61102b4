package dom

// Element is the subset of a DOM element the viewport drives.
type Element interface {
	AddClass(name string)
	RemoveClass(name string)
	HasClass(name string) bool
	SetStyle(property, value string)

	// OffsetHeight reads the element's laid-out height. Reading it forces a
	// synchronous layout, which flushes pending class changes.
	OffsetHeight() float64

	SetInnerHTML(markup string)
	InnerHTML() string

	// Labels returns the item label elements inside this element.
	Labels() []Label
}

// Label is a text node whose content is an item number.
type Label interface {
	Text() string
	SetText(text string)
}

// Box is the measured geometry of a gallery item.
type Box struct {
	Height       float64
	MarginTop    float64
	MarginBottom float64
}

// MeasureRowHeight returns the distance between two consecutive rows.
func MeasureRowHeight(item Box) float64 {
	return item.Height + item.MarginTop + item.MarginBottom
}
