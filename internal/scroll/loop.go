package scroll

import "context"

// EventKind distinguishes the two input variants.
type EventKind int

const (
	// EventWheel carries a relative delta in Unit.
	EventWheel EventKind = iota
	// EventPosition carries an absolute scroll position.
	EventPosition
)

// InputEvent is one scroll input delivered to Run.
type InputEvent struct {
	Kind     EventKind
	Delta    float64
	Unit     InputUnit
	Position float64
}

// WheelEvent builds a wheel input event.
func WheelEvent(delta float64, unit InputUnit) InputEvent {
	return InputEvent{Kind: EventWheel, Delta: delta, Unit: unit}
}

// PositionEvent builds an absolute scroll position event.
func PositionEvent(position float64) InputEvent {
	return InputEvent{Kind: EventPosition, Position: position}
}

// Apply dispatches an input event to the matching handler.
func (c *Controller) Apply(ev InputEvent) {
	switch ev.Kind {
	case EventPosition:
		c.OnScrollPosition(ev.Position)
	default:
		c.OnScrollInput(ev.Delta, ev.Unit)
	}
}

// Run serially applies input events and fetch results until ctx is done or
// events is closed. Every state change of the controller happens on the
// calling goroutine.
func (c *Controller) Run(ctx context.Context, events <-chan InputEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Apply(ev)
		case res := <-c.results:
			c.OnDataReady(res)
		}
	}
}
