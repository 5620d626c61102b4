package scroll

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects what the controller does when the row window shifts.
type Policy int

const (
	// PolicyFetch requests the newly exposed window from the DataSource.
	PolicyFetch Policy = iota

	// PolicyRenumber renumbers the rendered item labels instead of fetching.
	// Intended for demos and debugging the windowing without a server.
	PolicyRenumber
)

// String returns the configuration name of the policy.
func (p Policy) String() string {
	switch p {
	case PolicyFetch:
		return "fetch"
	case PolicyRenumber:
		return "renumber"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy parses a policy name as used in configuration files and flags.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fetch":
		return PolicyFetch, nil
	case "renumber":
		return PolicyRenumber, nil
	default:
		return PolicyFetch, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// InputUnit is the unit a raw scroll delta is expressed in.
type InputUnit int

const (
	// UnitPixel deltas are distances in the same unit as RowHeight.
	UnitPixel InputUnit = iota
	// UnitLine deltas count lines of LineHeight each.
	UnitLine
	// UnitPage deltas count pages of PageRows rows each.
	UnitPage
)

// Default controller configuration.
const (
	DefaultRowHeight    = 100.0
	DefaultScrollFactor = 1.0
	DefaultLineHeight   = 16.0
	DefaultPageRows     = 3
	DefaultDebounceRows = 2
	DefaultRenumberStep = 3
	DefaultResultBuffer = 16
)

// Configuration errors.
var (
	ErrInvalidRowHeight    = errors.New("row height must be positive")
	ErrInvalidScrollFactor = errors.New("scroll factor must be positive")
	ErrInvalidLineHeight   = errors.New("line height must be positive")
	ErrInvalidPageRows     = errors.New("page rows must be positive")
	ErrInvalidDebounceRows = errors.New("debounce rows must not be negative")
	ErrUnknownPolicy       = errors.New("unknown scroll policy")
	ErrNilRenderer         = errors.New("renderer cannot be nil")
	ErrNilSource           = errors.New("data source cannot be nil")
)

// Config holds the per-instance tuning of a Controller.
type Config struct {
	// RowHeight is the height of one gallery row in the renderer's units.
	RowHeight float64

	// ScrollFactor scales every raw delta before it is applied.
	ScrollFactor float64

	// LineHeight is the distance of one UnitLine delta.
	LineHeight float64

	// PageRows is the number of rows in one UnitPage delta, and the number
	// of rows visible at once when clamping to the end of the gallery.
	PageRows int

	// DebounceRows is how far, in rows, the absolute scroll position must
	// move before the position variant requests a new window.
	DebounceRows int

	// Policy selects fetching or label renumbering on a row shift.
	Policy Policy

	// RenumberStep is the label delta applied per row under PolicyRenumber.
	RenumberStep int

	// DropStale discards responses that were not issued for the latest
	// request. When false the last response to resolve wins.
	DropStale bool

	// ClampToEnd stops downward shifts at the last full window once the
	// total row count is known from a page.
	ClampToEnd bool

	// ResultBuffer is the capacity of the results channel.
	ResultBuffer int
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RowHeight:    DefaultRowHeight,
		ScrollFactor: DefaultScrollFactor,
		LineHeight:   DefaultLineHeight,
		PageRows:     DefaultPageRows,
		DebounceRows: DefaultDebounceRows,
		Policy:       PolicyFetch,
		RenumberStep: DefaultRenumberStep,
		ResultBuffer: DefaultResultBuffer,
	}
}

// Validate reports the first invalid field, if any.
func (c Config) Validate() error {
	switch {
	case !(c.RowHeight > 0) || isInf(c.RowHeight):
		return fmt.Errorf("%w: got %v", ErrInvalidRowHeight, c.RowHeight)
	case !(c.ScrollFactor > 0) || isInf(c.ScrollFactor):
		return fmt.Errorf("%w: got %v", ErrInvalidScrollFactor, c.ScrollFactor)
	case !(c.LineHeight > 0) || isInf(c.LineHeight):
		return fmt.Errorf("%w: got %v", ErrInvalidLineHeight, c.LineHeight)
	case c.PageRows < 1:
		return fmt.Errorf("%w: got %d", ErrInvalidPageRows, c.PageRows)
	case c.DebounceRows < 0:
		return fmt.Errorf("%w: got %d", ErrInvalidDebounceRows, c.DebounceRows)
	case c.Policy != PolicyFetch && c.Policy != PolicyRenumber:
		return fmt.Errorf("%w: %d", ErrUnknownPolicy, int(c.Policy))
	}
	return nil
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.LineHeight == 0 {
		c.LineHeight = DefaultLineHeight
	}
	if c.PageRows == 0 {
		c.PageRows = DefaultPageRows
	}
	if c.RenumberStep == 0 {
		c.RenumberStep = DefaultRenumberStep
	}
	if c.ResultBuffer < 1 {
		c.ResultBuffer = DefaultResultBuffer
	}
	return c
}
