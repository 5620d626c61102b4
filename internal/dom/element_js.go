//go:build js && wasm

package dom

import (
	"strconv"
	"strings"
	"syscall/js"
)

// LabelSelector matches the numbered item labels inside the gallery.
const LabelSelector = ".gallery-label"

// jsElement is an Element backed by a live DOM node.
type jsElement struct {
	v js.Value
}

// WrapElement adapts a DOM node.
func WrapElement(v js.Value) Element {
	return jsElement{v: v}
}

// QuerySelector wraps the first document node matching selector, or reports
// false if there is none.
func QuerySelector(selector string) (Element, bool) {
	v := js.Global().Get("document").Call("querySelector", selector)
	if v.IsNull() || v.IsUndefined() {
		return nil, false
	}
	return jsElement{v: v}, true
}

// MeasureItem reads the geometry of the first node matching selector.
func MeasureItem(selector string) (Box, bool) {
	v := js.Global().Get("document").Call("querySelector", selector)
	if v.IsNull() || v.IsUndefined() {
		return Box{}, false
	}
	style := js.Global().Call("getComputedStyle", v)
	return Box{
		Height:       v.Get("offsetHeight").Float(),
		MarginTop:    parsePixels(style.Call("getPropertyValue", "margin-top").String()),
		MarginBottom: parsePixels(style.Call("getPropertyValue", "margin-bottom").String()),
	}, true
}

func (e jsElement) AddClass(name string)    { e.v.Get("classList").Call("add", name) }
func (e jsElement) RemoveClass(name string) { e.v.Get("classList").Call("remove", name) }

func (e jsElement) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e jsElement) SetStyle(property, value string) {
	e.v.Get("style").Set(property, value)
}

func (e jsElement) OffsetHeight() float64 {
	return e.v.Get("offsetHeight").Float()
}

func (e jsElement) SetInnerHTML(markup string) { e.v.Set("innerHTML", markup) }
func (e jsElement) InnerHTML() string          { return e.v.Get("innerHTML").String() }

func (e jsElement) Labels() []Label {
	nodes := e.v.Call("querySelectorAll", LabelSelector)
	n := nodes.Get("length").Int()
	out := make([]Label, 0, n)
	for i := range n {
		out = append(out, jsLabel{v: nodes.Index(i)})
	}
	return out
}

type jsLabel struct {
	v js.Value
}

func (l jsLabel) Text() string        { return l.v.Get("textContent").String() }
func (l jsLabel) SetText(text string) { l.v.Set("textContent", text) }

func parsePixels(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

// DataAttribute returns the data-<name> attribute of the first node matching
// selector, or "".
func DataAttribute(selector, name string) string {
	v := js.Global().Get("document").Call("querySelector", selector)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	attr := v.Call("getAttribute", "data-"+name)
	if attr.IsNull() {
		return ""
	}
	return attr.String()
}
