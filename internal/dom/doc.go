// Package dom renders the scroll window into a browser document.
//
// Viewport implements scroll.Renderer over a small Element abstraction so the
// transition suppression protocol can be exercised without a browser. The
// js/wasm build supplies an Element backed by syscall/js.
package dom
