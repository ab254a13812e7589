package dom

import (
	"time"

	"github.com/aretw0/domrec/pkg/domain"
)

// Clock returns the milliseconds elapsed since the page's time origin.
type Clock interface {
	Now() float64
}

// ClockFunc adapts a function to a Clock.
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }

type monotonicClock struct {
	origin time.Time
}

func (c monotonicClock) Now() float64 {
	return float64(time.Since(c.origin).Microseconds()) / 1000
}

// Window is the page: the top of every event path and the owner of the
// page-wide registration hook.
type Window struct {
	listenerList
	doc   *Document
	clock Clock
	hook  RegistrationHook
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithClock replaces the page clock.
func WithClock(c Clock) WindowOption {
	return func(w *Window) {
		w.clock = c
	}
}

// NewWindow creates an empty page with an empty Document.
func NewWindow(opts ...WindowOption) *Window {
	w := &Window{clock: monotonicClock{origin: time.Now()}}
	for _, opt := range opts {
		opt(w)
	}
	w.doc = &Document{win: w}
	return w
}

// Document returns the page's document.
func (w *Window) Document() *Document { return w.doc }

// Now returns the page clock reading in milliseconds.
func (w *Window) Now() float64 { return w.clock.Now() }

// SetRegistrationHook routes all later listener registrations through h.
// A page accepts a single hook; installing the same hook again is a no-op.
func (w *Window) SetRegistrationHook(h RegistrationHook) error {
	if w.hook != nil && w.hook != h {
		return domain.ErrAlreadyInstalled
	}
	w.hook = h
	return nil
}

// RegistrationHook returns the installed hook, or nil.
func (w *Window) RegistrationHook() RegistrationHook { return w.hook }

// NewEvent creates an event stamped with the page clock.
func (w *Window) NewEvent(kind domain.Kind, typ string, init EventInit) *Event {
	e := NewEvent(kind, typ, init)
	e.TimeStamp = w.Now()
	return e
}

// AddEventListener registers l for typ on the window.
func (w *Window) AddEventListener(typ string, l Listener, opts ListenerOptions) {
	register(w, &w.listenerList, typ, l, opts)
}

// RemoveEventListener detaches a listener registered with the same arguments.
func (w *Window) RemoveEventListener(typ string, l Listener, opts ListenerOptions) {
	unregister(w, &w.listenerList, typ, l, opts)
}

// DispatchEvent dispatches a script-created event at the window.
func (w *Window) DispatchEvent(e *Event) bool { return dispatch(w, e, false) }

// Fire dispatches e as a trusted event produced by the surface itself.
func (w *Window) Fire(e *Event) bool { return dispatch(w, e, true) }

// ListenerCount returns how many listeners are attached for typ.
func (w *Window) ListenerCount(typ string) int { return w.count(typ) }

func (w *Window) owner() *Window           { return w }
func (w *Window) listeners() *listenerList { return &w.listenerList }
func (w *Window) eventParent(*Event) EventTarget {
	return nil
}
