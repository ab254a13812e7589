package dom

// Listener receives dispatched events.
// Listener values are compared by identity, so implementations should be
// pointer types.
type Listener interface {
	HandleEvent(e *Event)
}

type funcListener struct {
	fn func(e *Event)
}

func (l *funcListener) HandleEvent(e *Event) { l.fn(e) }

// ListenerFunc adapts fn to a Listener. Every call returns a distinct
// listener; keep the returned value to remove it later.
func ListenerFunc(fn func(e *Event)) Listener {
	return &funcListener{fn: fn}
}

// ListenerOptions mirrors the options of a listener registration.
type ListenerOptions struct {
	Capture bool
	Once    bool
	Passive bool
}

// Capture is shorthand for ListenerOptions{Capture: true}.
var Capture = ListenerOptions{Capture: true}

// RegistrationHook intercepts listener registration for a whole page.
// WrapListener returns the listener actually attached; UnwrapListener returns
// the listener to detach for a removal request, or false to detach the
// original arguments unchanged. ReleaseListener is called once for every
// wrapped registration that did not end up attached (a duplicate add) or
// that a removal actually detached.
type RegistrationHook interface {
	WrapListener(typ string, l Listener, opts ListenerOptions) Listener
	UnwrapListener(typ string, l Listener, opts ListenerOptions) (Listener, bool)
	ReleaseListener(typ string, l Listener, opts ListenerOptions)
}

type registration struct {
	typ     string
	l       Listener
	capture bool
	once    bool
	passive bool
	removed bool
}

// listenerList is embedded by every node kind.
type listenerList struct {
	regs []*registration
}

func (ll *listenerList) add(typ string, l Listener, opts ListenerOptions) bool {
	if l == nil {
		return false
	}
	for _, r := range ll.regs {
		if r.typ == typ && r.l == l && r.capture == opts.Capture {
			return false
		}
	}
	ll.regs = append(ll.regs, &registration{
		typ:     typ,
		l:       l,
		capture: opts.Capture,
		once:    opts.Once,
		passive: opts.Passive,
	})
	return true
}

func (ll *listenerList) remove(typ string, l Listener, capture bool) bool {
	for i, r := range ll.regs {
		if r.typ == typ && r.l == l && r.capture == capture {
			r.removed = true
			ll.regs = append(ll.regs[:i:i], ll.regs[i+1:]...)
			return true
		}
	}
	return false
}

func (ll *listenerList) count(typ string) int {
	n := 0
	for _, r := range ll.regs {
		if r.typ == typ {
			n++
		}
	}
	return n
}

func (ll *listenerList) snapshot() []*registration {
	return append([]*registration(nil), ll.regs...)
}

func register(w *Window, ll *listenerList, typ string, l Listener, opts ListenerOptions) {
	if w == nil || w.hook == nil {
		ll.add(typ, l, opts)
		return
	}
	if !ll.add(typ, w.hook.WrapListener(typ, l, opts), opts) {
		w.hook.ReleaseListener(typ, l, opts)
	}
}

func unregister(w *Window, ll *listenerList, typ string, l Listener, opts ListenerOptions) {
	if w == nil || w.hook == nil {
		ll.remove(typ, l, opts.Capture)
		return
	}
	wrapped, ok := w.hook.UnwrapListener(typ, l, opts)
	if !ok {
		ll.remove(typ, l, opts.Capture)
		return
	}
	if ll.remove(typ, wrapped, opts.Capture) {
		w.hook.ReleaseListener(typ, l, opts)
	}
}
