// Package api defines the JSON exchanged between the gallery server and
// its scrolling clients.
package api

// Version is the wire format version reported in every page response.
// Clients accept any 1.x server.
const Version = "1.0.0"

// VersionConstraint is what clients require of a server's Version.
const VersionConstraint = "^1"

// Routes served by the gallery.
const (
	RouteGallery = "/gallery"
	RoutePage    = "/restGallery"
	RouteAssets  = "/assets/"
	RouteImages  = "/imgs/"
	RouteThumbs  = "/thumbs/"
	RouteHealth  = "/healthz"
)

// PageRequest asks for the content window starting at FirstRow. Layout is
// "window" or "mask" and Format "html" or "text"; empty values select the
// defaults, window and html.
type PageRequest struct {
	FirstRow int    `json:"FirstRow"`
	Layout   string `json:"Layout,omitempty"`
	Format   string `json:"Format,omitempty"`
}

// PageResponse carries the rendered window.
type PageResponse struct {
	GalleryContent string `json:"GalleryContent"`
	DebounceRows   int    `json:"DebounceRows"`
	TotalRows      int    `json:"TotalRows"`
	APIVersion     string `json:"APIVersion"`
}

// Health is the /healthz body.
type Health struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
	Images     int    `json:"images"`
	Thumbnails int64  `json:"thumbnails"`
	Failed     int64  `json:"failed"`
}
