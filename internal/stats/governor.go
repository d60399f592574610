package stats

import (
	"context"
)

// Governor bounds how many peers are processed simultaneously.
// A slow peer occupies its own slot only; the rest of the batch keeps
// moving through the remaining slots.
type Governor struct {
	slots chan struct{}
}

// NewGovernor creates a governor allowing max concurrent invocations.
// Values below one are clamped to one.
func NewGovernor(max int) *Governor {
	if max < 1 {
		max = 1
	}
	return &Governor{
		slots: make(chan struct{}, max),
	}
}

// Do runs fn once a slot is free. It returns the context error when
// the wait is cancelled before a slot opens; fn's own failures are the
// caller's concern.
func (g *Governor) Do(ctx context.Context, fn func()) error {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-g.slots }()

	fn()
	return nil
}
