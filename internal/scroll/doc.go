// Package scroll implements the row-window controller behind the gallery's
// infinite scrolling.
//
// A Controller owns the index of the first rendered row and the sub-row
// offset of the viewport. Wheel deltas move the offset smoothly; once a full
// row height is crossed the window shifts by exactly one row, the offset is
// renormalized without animation, and a single page request for the new
// window is issued to a DataSource. Responses come back on a channel and are
// applied through the Renderer, which owns everything visual.
//
// The controller is not safe for concurrent use. All calls are expected to
// come from one goroutine, either the host's own event loop (Bubble Tea,
// a browser callback) or Controller.Run.
package scroll
