// Package idle decides when a page has been quiet long enough to start
// an automatic replay.
package idle

import (
	"context"
	"time"
)

// Defaults for a Detector.
const (
	DefaultThreshold = 50 * time.Millisecond
	DefaultPoll      = 50 * time.Millisecond
)

// ActivitySource exposes the page clock and the timestamp of the most recent
// dispatch, both in milliseconds.
type ActivitySource interface {
	Now() float64
	LastActivity() float64
}

// SleepFunc suspends for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Detector polls an ActivitySource until it has been idle for Threshold.
type Detector struct {
	Threshold time.Duration
	Poll      time.Duration

	sleep SleepFunc
}

// Option configures a Detector.
type Option func(*Detector)

// WithThreshold sets the required quiet period. Non-positive values keep the default.
func WithThreshold(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.Threshold = d
		}
	}
}

// WithPoll sets the polling interval.
func WithPoll(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.Poll = d
		}
	}
}

// WithSleep replaces the wait between polls.
func WithSleep(fn SleepFunc) Option {
	return func(det *Detector) {
		det.sleep = fn
	}
}

// New creates a Detector with the default threshold and poll interval.
func New(opts ...Option) *Detector {
	d := &Detector{
		Threshold: DefaultThreshold,
		Poll:      DefaultPoll,
		sleep:     sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Idle reports whether src has been quiet for at least the threshold.
func (d *Detector) Idle(src ActivitySource) bool {
	quiet := src.Now() - src.LastActivity()
	return quiet >= float64(d.Threshold)/float64(time.Millisecond)
}

// WaitUntilIdle blocks until src is idle or ctx is done. Any activity seen
// while waiting restarts the quiet period.
func (d *Detector) WaitUntilIdle(ctx context.Context, src ActivitySource) error {
	for !d.Idle(src) {
		if err := d.sleep(ctx, d.Poll); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
