//go:build js && wasm

// Command gallerywasm is the browser half of the gallery: it feeds wheel and
// scroll events from the page into a scroll controller that fetches row
// windows from the server the page was loaded from.
package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/rs/zerolog"

	"github.com/rshade/gogallery/internal/client"
	"github.com/rshade/gogallery/internal/dom"
	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/scroll"
)

const (
	viewportSelector  = ".gallery-viewport"
	containerSelector = ".gallery-container"
	itemSelector      = ".gallery-item"

	// scrollFactor scales browser wheel deltas so one notch moves a
	// noticeable part of a row.
	scrollFactor = 15

	eventBuffer = 64
)

// DOM WheelEvent.deltaMode values.
const (
	deltaPixel = 0
	deltaLine  = 1
	deltaPage  = 2
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, NoColor: true}).
		With().Timestamp().Str("component", "gallerywasm").Logger()

	container, ok := dom.QuerySelector(containerSelector)
	if !ok {
		logger.Error().Str("selector", containerSelector).Msg("gallery container not found")
		return
	}

	layout, err := render.ParseLayout(dom.DataAttribute(containerSelector, "layout"))
	if err != nil {
		logger.Warn().Err(err).Msg("falling back to window layout")
		layout = render.LayoutWindow
	}

	cfg := scroll.DefaultConfig()
	cfg.ScrollFactor = scrollFactor
	cfg.ClampToEnd = true
	if box, found := dom.MeasureItem(itemSelector); found {
		if h := dom.MeasureRowHeight(box); h > 0 {
			cfg.RowHeight = h
		}
	}
	if n, convErr := strconv.Atoi(dom.DataAttribute(containerSelector, "debounce-rows")); convErr == nil {
		cfg.DebounceRows = n
	}
	if n, convErr := strconv.Atoi(dom.DataAttribute(containerSelector, "screen-rows")); convErr == nil && n > 0 {
		cfg.PageRows = n
	}

	c, err := client.New(baseURL(), client.WithLayout(string(layout)), client.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("creating client")
		return
	}

	ctx := logger.WithContext(context.Background())
	ctrl, err := scroll.New(ctx, cfg, dom.NewViewport(container), c, scroll.WithLogger(logger))
	if err != nil {
		logger.Error().Err(err).Msg("creating scroll controller")
		return
	}

	events := make(chan scroll.InputEvent, eventBuffer)
	send := func(ev scroll.InputEvent) {
		select {
		case events <- ev:
		default:
			logger.Debug().Msg("dropping scroll event, controller busy")
		}
	}
	listen(layout, send)

	logger.Info().
		Str("layout", string(layout)).
		Float64("row_height", cfg.RowHeight).
		Msg("gallery scrolling started")
	if err = ctrl.Run(ctx, events); err != nil {
		logger.Error().Err(err).Msg("scroll loop stopped")
	}
}

// listen registers the input listeners. The mask layout renders every row,
// so the viewport scrolls natively and reports positions; the window layout
// translates wheel deltas.
func listen(layout render.Layout, send func(scroll.InputEvent)) {
	viewport := js.Global().Get("document").Call("querySelector", viewportSelector)
	if viewport.IsNull() {
		return
	}

	if layout == render.LayoutMask {
		viewport.Get("classList").Call("add", "scrollable")
		onScroll := js.FuncOf(func(this js.Value, _ []js.Value) any {
			send(scroll.PositionEvent(this.Get("scrollTop").Float()))
			return nil
		})
		viewport.Call("addEventListener", "scroll", onScroll)
		return
	}

	onWheel := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := args[0]
		ev.Call("preventDefault")
		send(scroll.WheelEvent(ev.Get("deltaY").Float(), wheelUnit(ev.Get("deltaMode").Int())))
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("passive", false)
	viewport.Call("addEventListener", "wheel", onWheel, opts)
}

func wheelUnit(mode int) scroll.InputUnit {
	switch mode {
	case deltaLine:
		return scroll.UnitLine
	case deltaPage:
		return scroll.UnitPage
	default:
		return scroll.UnitPixel
	}
}

// baseURL is the directory of the page URL, so page requests resolve the
// way relative links on the page do.
func baseURL() string {
	loc := js.Global().Get("window").Get("location")
	path := loc.Get("pathname").String()
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[:i]
	}
	return loc.Get("origin").String() + path
}
