/*
Package intercept observes every listener registration of a page.

Install places an Interceptor as the page's registration hook. From then on
each registered listener is replaced by a wrapper that, while recording,
addresses the listener's current target before the original listener runs,
then serializes the event and hands the resulting Action to the OnAction
callback. The original listener always runs unchanged, and every observed
event refreshes the last-activity timestamp used for idle detection.
*/
package intercept

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/address"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/event"
)

// Key identifies a registration for removal bookkeeping. Two registrations
// are the same when they use the same listener value and the same capture
// flag, which is the equality the surface applies on removal. One wrapper
// serves every target a key is registered on; it is dropped once the last
// of those registrations is removed.
type Key struct {
	Listener dom.Listener
	Capture  bool
}

// KeyOf returns the bookkeeping key of a registration.
func KeyOf(l dom.Listener, opts dom.ListenerOptions) Key {
	return Key{Listener: l, Capture: opts.Capture}
}

// Interceptor is the page-wide registration hook.
type Interceptor struct {
	win    *dom.Window
	logger *slog.Logger

	recording atomic.Bool

	mu           sync.Mutex
	lastActivity float64
	onAction     func(domain.Action)
	wrappers     map[Key]*entry
}

type entry struct {
	w    dom.Listener
	refs int
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger configures the logger warnings are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interceptor) {
		i.logger = logger
	}
}

// WithOnAction sets the initial action callback.
func WithOnAction(fn func(domain.Action)) Option {
	return func(i *Interceptor) {
		i.onAction = fn
	}
}

// Install hooks listener registration on w. A page has a single
// interceptor: installing again returns the existing one and leaves options
// untouched, so listeners are never wrapped twice.
func Install(w *dom.Window, opts ...Option) (*Interceptor, error) {
	if existing, ok := w.RegistrationHook().(*Interceptor); ok {
		return existing, nil
	}
	i := &Interceptor{
		win:      w,
		logger:   logging.NewNop(),
		wrappers: make(map[Key]*entry),
	}
	for _, opt := range opts {
		opt(i)
	}
	if err := w.SetRegistrationHook(i); err != nil {
		return nil, err
	}
	return i, nil
}

// IsInstalled reports whether w has an interceptor.
func IsInstalled(w *dom.Window) bool {
	_, ok := w.RegistrationHook().(*Interceptor)
	return ok
}

// SetRecording turns capture on or off.
func (i *Interceptor) SetRecording(on bool) { i.recording.Store(on) }

// Recording reports whether capture is on.
func (i *Interceptor) Recording() bool { return i.recording.Load() }

// SetOnAction replaces the action callback.
func (i *Interceptor) SetOnAction(fn func(domain.Action)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onAction = fn
}

// LastActivity returns the timestamp of the last event any wrapped listener
// observed, in page milliseconds.
func (i *Interceptor) LastActivity() float64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.lastActivity
}

// Now returns the page clock reading.
func (i *Interceptor) Now() float64 { return i.win.Now() }

// Wrapped returns the number of cached wrappers.
func (i *Interceptor) Wrapped() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.wrappers)
}

// WrapListener implements dom.RegistrationHook.
func (i *Interceptor) WrapListener(_ string, l dom.Listener, opts dom.ListenerOptions) dom.Listener {
	key := KeyOf(l, opts)

	i.mu.Lock()
	defer i.mu.Unlock()
	w := &wrapper{i: i, l: l, capture: opts.Capture}
	// once listeners detach themselves, there is nothing to remove later
	if opts.Once {
		return w
	}
	e, ok := i.wrappers[key]
	if !ok {
		e = &entry{w: w}
		i.wrappers[key] = e
	}
	e.refs++
	return e.w
}

// UnwrapListener implements dom.RegistrationHook.
func (i *Interceptor) UnwrapListener(_ string, l dom.Listener, opts dom.ListenerOptions) (dom.Listener, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.wrappers[KeyOf(l, opts)]
	if !ok {
		return nil, false
	}
	return e.w, true
}

// ReleaseListener implements dom.RegistrationHook.
func (i *Interceptor) ReleaseListener(_ string, l dom.Listener, opts dom.ListenerOptions) {
	if opts.Once {
		return
	}
	key := KeyOf(l, opts)

	i.mu.Lock()
	defer i.mu.Unlock()
	e, ok := i.wrappers[key]
	if !ok {
		return
	}
	if e.refs--; e.refs <= 0 {
		delete(i.wrappers, key)
	}
}

func (i *Interceptor) touch(ts float64) {
	i.mu.Lock()
	i.lastActivity = ts
	i.mu.Unlock()
}

func (i *Interceptor) emit(a domain.Action) {
	i.mu.Lock()
	fn := i.onAction
	i.mu.Unlock()
	if fn != nil {
		fn(a)
	}
}

type wrapper struct {
	i       *Interceptor
	l       dom.Listener
	capture bool
}

func (w *wrapper) HandleEvent(e *dom.Event) {
	recording := w.i.Recording() && event.Recordable(e)

	// address first: the listener may detach its own node
	var selectors []string
	if recording {
		selectors = address.ToSelectors(e.CurrentTarget())
	}

	w.l.HandleEvent(e)

	w.i.touch(e.TimeStamp)

	if !recording {
		return
	}
	if !hasSelector(selectors) {
		w.i.logger.Warn("no selectors", "type", e.Type, "err", domain.ErrEmptySelectors)
		return
	}
	w.i.emit(domain.Action{
		Selectors: selectors,
		Event:     event.Serialize(e, domain.Bool(w.capture)),
	})
}

func hasSelector(selectors []string) bool {
	for _, s := range selectors {
		if s != "" {
			return true
		}
	}
	return false
}
