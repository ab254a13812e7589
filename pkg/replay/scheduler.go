// Package replay drives a recorded action list back through a page,
// reproducing the original pacing.
package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/address"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/event"
)

const (
	frameMs = 1000.0 / 60
	// initCompensation is subtracted from timer waits to absorb the cost of
	// building and dispatching the next event.
	initCompensation = 1.5
)

// SkipReason explains why an action was not dispatched.
type SkipReason string

const (
	SkipTangent      SkipReason = "tangent"
	SkipUnresolvable SkipReason = "unresolvable"
	SkipMissingCtor  SkipReason = "missing_constructor"
	skipNone         SkipReason = ""
)

// Progress is reported after every action of a pass.
type Progress struct {
	Index     int
	Total     int
	Replayed  int
	Skipped   int
	Remaining int
	Reason    SkipReason
	Action    domain.Action
}

// Dispatched reports whether the action reached the page.
func (p Progress) Dispatched() bool { return p.Reason == skipNone }

// Report summarizes one replay pass.
type Report struct {
	Replayed       int
	Skipped        int
	SkippedIndexes []int
	Duration       time.Duration
	Aborted        bool
}

// Scheduler replays actions against a window, one pass at a time.
type Scheduler struct {
	win        *dom.Window
	pacer      Pacer
	logger     *slog.Logger
	onProgress func(Progress)

	replaying atomic.Bool
	cancel    atomic.Bool

	mu      sync.Mutex
	pointer [2]float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithPacer overrides the frame and timer waits.
func WithPacer(p Pacer) Option {
	return func(s *Scheduler) {
		s.pacer = p
	}
}

// WithLogger configures a logger for the Scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithOnProgress registers a callback invoked after each action of a pass.
func WithOnProgress(fn func(Progress)) Option {
	return func(s *Scheduler) {
		s.onProgress = fn
	}
}

// New creates a Scheduler for win.
func New(win *dom.Window, opts ...Option) *Scheduler {
	s := &Scheduler{
		win:    win,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pacer == nil {
		s.pacer = NewFramePacer()
	}
	return s
}

// Replaying reports whether a pass is in progress.
func (s *Scheduler) Replaying() bool { return s.replaying.Load() }

// Stop aborts the current pass at its next resumption point.
func (s *Scheduler) Stop() { s.cancel.Store(true) }

// Pointer returns the page coordinates of the last dispatched action.
func (s *Scheduler) Pointer() (x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer[0], s.pointer[1]
}

func (s *Scheduler) stopped(ctx context.Context) bool {
	return s.cancel.Load() || ctx.Err() != nil
}

// Play replays actions in order. It returns ctx.Err() when the context ends
// the pass; a Stop ends it with a nil error and Report.Aborted set.
func (s *Scheduler) Play(ctx context.Context, actions []domain.Action) (Report, error) {
	if !s.replaying.CompareAndSwap(false, true) {
		return Report{}, domain.ErrReplaying
	}
	defer s.replaying.Store(false)
	s.cancel.Store(false)
	if err := ctx.Err(); err != nil {
		return Report{Aborted: true}, err
	}

	start := time.Now()
	report := Report{}
	var prev *domain.Action

	for i := range actions {
		if s.stopped(ctx) {
			report.Aborted = true
			break
		}
		action := actions[i]

		if prev != nil {
			if err := s.wait(ctx, action.Event.TimeStamp-prev.Event.TimeStamp); err != nil {
				report.Aborted = true
				break
			}
			if s.stopped(ctx) {
				report.Aborted = true
				break
			}
		}

		var reason SkipReason
		if isTangent(actions, i, prev) {
			reason = SkipTangent
		} else {
			reason = s.dispatch(action)
			prev = &actions[i]
		}

		if reason == skipNone {
			report.Replayed++
		} else {
			report.Skipped++
			report.SkippedIndexes = append(report.SkippedIndexes, i)
		}
		s.progress(Progress{
			Index:     i,
			Total:     len(actions),
			Replayed:  report.Replayed,
			Skipped:   report.Skipped,
			Remaining: len(actions) - i - 1,
			Reason:    reason,
			Action:    action,
		})
	}

	report.Duration = time.Since(start)
	s.logger.Debug("replay pass finished",
		"replayed", report.Replayed,
		"skipped", report.Skipped,
		"aborted", report.Aborted,
		"duration", report.Duration,
	)
	if report.Aborted && ctx.Err() != nil {
		return report, ctx.Err()
	}
	return report, nil
}

// ReplayOne dispatches actions[n] immediately, without timing or tangency checks.
func (s *Scheduler) ReplayOne(ctx context.Context, actions []domain.Action, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n < 0 || n >= len(actions) {
		return fmt.Errorf("%w: %d of %d", domain.ErrIndexOutOfRange, n, len(actions))
	}
	switch s.dispatch(actions[n]) {
	case SkipUnresolvable:
		return fmt.Errorf("action %d: %w", n, domain.ErrUnresolvable)
	case SkipMissingCtor:
		return fmt.Errorf("action %d: %w", n, domain.ErrMissingConstructor)
	}
	return nil
}

// wait suspends according to the gap dt (in ms) since the previous dispatch.
func (s *Scheduler) wait(ctx context.Context, dt float64) error {
	switch {
	case dt <= frameMs*2/3:
		return nil
	case dt < frameMs*2.5:
		return s.pacer.NextFrame(ctx)
	default:
		d := time.Duration((dt - initCompensation) * float64(time.Millisecond))
		return s.pacer.Sleep(ctx, d)
	}
}

// isTangent reports whether actions[i] is a second observation of a dispatch
// already covered by its neighbour: a capturing observation defers to the
// next action, a bubbling one to the last dispatched action.
func isTangent(actions []domain.Action, i int, prev *domain.Action) bool {
	cur := actions[i].Event
	var other *domain.Action
	if cur.CaptureFlag() {
		if i+1 < len(actions) {
			other = &actions[i+1]
		}
	} else {
		other = prev
	}
	return other != nil && other.Event.Type == cur.Type && other.Event.TimeStamp == cur.TimeStamp
}

func (s *Scheduler) dispatch(a domain.Action) SkipReason {
	e, err := event.Reconstruct(a.Event)
	if err != nil {
		s.logger.Warn("cannot rebuild event", "type", a.Event.Type, "err", err)
		return SkipMissingCtor
	}
	e.TimeStamp = s.win.Now()

	target, ok := address.ToNode(s.win, a.Selectors)
	if !ok {
		s.logger.Warn("missing node for selectors", "selectors", a.Selectors)
		return SkipUnresolvable
	}

	s.mu.Lock()
	s.pointer = [2]float64{e.PageX, e.PageY}
	s.mu.Unlock()

	target.DispatchEvent(e)
	return skipNone
}

func (s *Scheduler) progress(p Progress) {
	if s.onProgress != nil {
		s.onProgress(p)
	}
}
