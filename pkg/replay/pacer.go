package replay

import (
	"context"
	"time"
)

// FrameTime is the interval between two rendering frames at 60fps.
const FrameTime = time.Second / 60

// Pacer provides the two suspension points of a replay pass.
type Pacer interface {
	// NextFrame blocks until the next frame boundary.
	NextFrame(ctx context.Context) error
	// Sleep blocks for d.
	Sleep(ctx context.Context, d time.Duration) error
}

// FramePacer paces replay against wall-clock frame boundaries.
type FramePacer struct {
	origin time.Time
}

// NewFramePacer returns a pacer whose frames are counted from now.
func NewFramePacer() *FramePacer {
	return &FramePacer{origin: time.Now()}
}

// NextFrame waits until the next 60fps boundary.
func (p *FramePacer) NextFrame(ctx context.Context) error {
	elapsed := time.Since(p.origin)
	return p.Sleep(ctx, FrameTime-elapsed%FrameTime)
}

// Sleep waits for d or until ctx is done.
func (p *FramePacer) Sleep(ctx context.Context, d time.Duration) error {
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

// InstantPacer never waits. Headless replays use it to run a script as fast
// as it can be dispatched while keeping the tangency and skip rules.
type InstantPacer struct{}

// NextFrame returns immediately.
func (InstantPacer) NextFrame(ctx context.Context) error { return ctx.Err() }

// Sleep returns immediately.
func (InstantPacer) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }
