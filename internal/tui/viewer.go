// Package tui is the terminal gallery viewer: a Bubble Tea program that
// drives a scroll.Controller from the mouse wheel and keyboard and shows
// the text rendering of each window fetched from the server.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/gogallery/internal/render"
	"github.com/rshade/gogallery/internal/scroll"
)

// Default dimensions before the first WindowSizeMsg.
const (
	defaultWidth  = 80
	defaultHeight = 24

	// chromeLines is the title bar plus the status bar.
	chromeLines = 2
)

// resultMsg carries a fetched page into the update loop.
type resultMsg scroll.PageResult

// resultsClosedMsg signals that the controller context ended.
type resultsClosedMsg struct{}

// Options configures the viewer.
type Options struct {
	// Title is shown in the title bar.
	Title string

	// Rows is the number of grid rows per screen.
	Rows int

	Logger zerolog.Logger
}

// Model is the Bubble Tea model of the viewer.
type Model struct {
	ctx      context.Context
	ctrl     *scroll.Controller
	view     *Viewport
	spinner  spinner.Model
	keys     keyMap
	printer  *message.Printer
	title    string
	width    int
	height   int
	quitting bool
}

// New creates a viewer fetching from source. cfg's distances are adjusted
// to terminal lines: a row is render.TextRowLines tall and one wheel notch
// or arrow key moves one line.
func New(ctx context.Context, cfg scroll.Config, source scroll.DataSource, opts Options) (*Model, error) {
	cfg.RowHeight = render.TextRowLines
	cfg.LineHeight = 1
	if opts.Rows > 0 {
		cfg.PageRows = opts.Rows
	}
	if opts.Title == "" {
		opts.Title = "gogallery"
	}

	view := NewViewport(defaultWidth, defaultHeight-chromeLines)
	ctrl, err := scroll.New(ctx, cfg, view, source, scroll.WithLogger(opts.Logger))
	if err != nil {
		return nil, fmt.Errorf("creating scroll controller: %w", err)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = MutedStyle

	return &Model{
		ctx:     ctx,
		ctrl:    ctrl,
		view:    view,
		spinner: sp,
		keys:    defaultKeyMap(),
		printer: message.NewPrinter(language.English),
		title:   opts.Title,
		width:   defaultWidth,
		height:  defaultHeight,
	}, nil
}

// Controller exposes the scroll controller.
func (m *Model) Controller() *scroll.Controller {
	return m.ctrl
}

// Viewport exposes the terminal renderer.
func (m *Model) Viewport() *Viewport {
	return m.view
}

// Init requests the first window and starts listening for results.
func (m *Model) Init() tea.Cmd {
	m.ctrl.Refresh()
	return tea.Batch(m.spinner.Tick, m.waitForResult())
}

// waitForResult blocks on the controller's results channel. Exactly one
// such command is outstanding at a time.
func (m *Model) waitForResult() tea.Cmd {
	results := m.ctrl.Results()
	ctx := m.ctx
	return func() tea.Msg {
		select {
		case res := <-results:
			return resultMsg(res)
		case <-ctx.Done():
			return resultsClosedMsg{}
		}
	}
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Resize(msg.Width, max(msg.Height-chromeLines, 1))
		return m, nil

	case resultMsg:
		m.ctrl.OnDataReady(scroll.PageResult(msg))
		return m, m.waitForResult()

	case resultsClosedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

//nolint:exhaustive // Only wheel events scroll.
func (m *Model) handleMouse(msg tea.MouseMsg) *Model {
	if msg.Action != tea.MouseActionPress {
		return m
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.ctrl.OnScrollInput(1, scroll.UnitLine)
	case tea.MouseButtonWheelUp:
		m.ctrl.OnScrollInput(-1, scroll.UnitLine)
	}
	return m
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.ctrl.OnScrollInput(1, scroll.UnitLine)
	case key.Matches(msg, m.keys.Up):
		m.ctrl.OnScrollInput(-1, scroll.UnitLine)
	case key.Matches(msg, m.keys.PageDown):
		m.ctrl.OnScrollInput(1, scroll.UnitPage)
	case key.Matches(msg, m.keys.PageUp):
		m.ctrl.OnScrollInput(-1, scroll.UnitPage)
	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.Refresh()
	}
	return m, nil
}

// View renders the title bar, the gallery window and the status bar.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("  ")
	b.WriteString(MutedStyle.Render(m.keys.shortHelp()))
	b.WriteString("\n")
	b.WriteString(m.view.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

// statusLine reports position, fetches in flight and the last error.
func (m *Model) statusLine() string {
	st := m.ctrl.State()

	var parts []string
	if total := m.ctrl.TotalRows(); total > 0 {
		parts = append(parts, m.printer.Sprintf("row %d of %d", st.FirstRow+1, total))
	} else {
		parts = append(parts, m.printer.Sprintf("row %d", st.FirstRow+1))
	}
	parts = append(parts, fmt.Sprintf("offset %.0f/%.0f", st.Offset, st.RowHeight))
	if n := m.ctrl.Pending(); n > 0 {
		parts = append(parts, m.spinner.View()+fmt.Sprintf(" %d loading", n))
	}

	line := StatusStyle.Width(m.width).Render(" " + strings.Join(parts, " · "))
	if err := m.ctrl.LastError(); err != nil {
		line = ErrorStyle.Render("error: "+err.Error()) + "\n" + line
	}
	return line
}
