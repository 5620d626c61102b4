package scroll

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_AppliesEventsAndResults(t *testing.T) {
	r := &recordingRenderer{}
	s := &recordingSource{}
	c, err := New(context.Background(), testConfig(), r, s)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan InputEvent)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, events) }()

	events <- WheelEvent(150, UnitPixel)
	events <- PositionEvent(900)

	// Results are applied on the loop goroutine; close the input once both
	// pages have had time to land.
	require.Eventually(t, func() bool {
		return len(s.rows()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	close(events)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not return after events closed")
	}

	assert.Equal(t, []int{1, 9}, s.rows())
	assert.Equal(t, 9, c.State().FirstRow)
	assert.Contains(t, []string{"rows from 1", "rows from 9"}, r.content)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	c, _, _ := newTestController(t, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan InputEvent)
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, events) }()

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
}

func TestApply_Dispatch(t *testing.T) {
	c, _, s := newTestController(t, testConfig())

	c.Apply(WheelEvent(30, UnitPixel))
	assert.InDelta(t, 30, c.State().Offset, 1e-9)

	c.Apply(PositionEvent(1000))
	assert.Equal(t, 10, c.State().FirstRow)
	assert.Equal(t, []int{10}, s.rows())
}
