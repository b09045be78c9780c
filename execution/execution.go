package execution

import (
	"context"
	"sync"
	"time"
)

// Controller carries the cooperative pause/resume/cancel flags shared
// between an algorithm and its caller. Flags are polled at slice
// boundaries only, so cancellation latency is bounded by one sampling
// interval rather than being immediate
type Controller struct {
	mu        sync.Mutex
	paused    bool
	cancelled bool
}

// Pause requests the algorithm hold before submitting further slices
func (c *Controller) Pause() {
	c.mu.Lock()
	c.paused = true
	c.mu.Unlock()
}

// Resume clears a pause
func (c *Controller) Resume() {
	c.mu.Lock()
	c.paused = false
	c.mu.Unlock()
}

// Cancel requests the algorithm stop at the next slice boundary
func (c *Controller) Cancel() {
	c.mu.Lock()
	c.cancelled = true
	c.mu.Unlock()
}

// IsPaused reports whether a pause is in effect
func (c *Controller) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// IsCancelled reports whether a cancel was requested
func (c *Controller) IsCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Sleep waits for the duration or until the context is done, whichever
// comes first
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SleepUntil waits until the scheduled time or context cancellation
func SleepUntil(ctx context.Context, t time.Time) error {
	return Sleep(ctx, time.Until(t))
}

// AwaitResume blocks while the controller is paused, polling at the
// given interval. It returns early on cancellation from either the
// controller or the context
func AwaitResume(ctx context.Context, c *Controller, poll time.Duration) error {
	if poll <= 0 {
		poll = 10 * time.Millisecond
	}
	for c.IsPaused() && !c.IsCancelled() {
		if err := Sleep(ctx, poll); err != nil {
			return err
		}
	}
	return ctx.Err()
}
