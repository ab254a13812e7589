package dom_test

import (
	"testing"

	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPage(t *testing.T) (*dom.Window, *dom.Element, *dom.Element) {
	t.Helper()
	w, err := dom.ParseHTMLString(`<html><body><div id="outer"><button id="btn">go</button></div></body></html>`)
	require.NoError(t, err)
	doc := w.Document()
	return w, doc.GetElementByID("outer"), doc.GetElementByID("btn")
}

func record(log *[]string, name string) dom.Listener {
	return dom.ListenerFunc(func(e *dom.Event) {
		*log = append(*log, name)
	})
}

func TestDispatch_Order(t *testing.T) {
	w, outer, btn := newPage(t)
	var log []string

	w.AddEventListener("click", record(&log, "window-capture"), dom.Capture)
	w.AddEventListener("click", record(&log, "window-bubble"), dom.ListenerOptions{})
	outer.AddEventListener("click", record(&log, "outer-bubble"), dom.ListenerOptions{})
	outer.AddEventListener("click", record(&log, "outer-capture"), dom.Capture)
	btn.AddEventListener("click", record(&log, "btn-bubble"), dom.ListenerOptions{})
	btn.AddEventListener("click", record(&log, "btn-capture"), dom.Capture)

	btn.DispatchEvent(dom.NewEvent(domain.KindPointer, "click", dom.EventInit{Bubbles: true}))

	assert.Equal(t, []string{
		"window-capture",
		"outer-capture",
		"btn-capture",
		"btn-bubble",
		"outer-bubble",
		"window-bubble",
	}, log)
}

func TestDispatch_NonBubblingSkipsAncestorsOnBubble(t *testing.T) {
	w, _, btn := newPage(t)
	var log []string
	w.AddEventListener("focus", record(&log, "window-capture"), dom.Capture)
	w.AddEventListener("focus", record(&log, "window-bubble"), dom.ListenerOptions{})
	btn.AddEventListener("focus", record(&log, "btn"), dom.ListenerOptions{})

	btn.DispatchEvent(dom.NewEvent(domain.KindFocus, "focus", dom.EventInit{}))

	assert.Equal(t, []string{"window-capture", "btn"}, log)
}

func TestDispatch_DuplicateRegistrationIgnored(t *testing.T) {
	_, _, btn := newPage(t)
	count := 0
	l := dom.ListenerFunc(func(*dom.Event) { count++ })

	btn.AddEventListener("click", l, dom.ListenerOptions{})
	btn.AddEventListener("click", l, dom.ListenerOptions{})
	btn.AddEventListener("click", l, dom.Capture)
	assert.Equal(t, 2, btn.ListenerCount("click"))

	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{Bubbles: true}))
	assert.Equal(t, 2, count)

	btn.RemoveEventListener("click", l, dom.ListenerOptions{})
	btn.RemoveEventListener("click", l, dom.Capture)
	assert.Equal(t, 0, btn.ListenerCount("click"))
}

func TestDispatch_Once(t *testing.T) {
	_, _, btn := newPage(t)
	count := 0
	btn.AddEventListener("click", dom.ListenerFunc(func(*dom.Event) { count++ }), dom.ListenerOptions{Once: true})

	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{}))
	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{}))

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, btn.ListenerCount("click"))
}

func TestDispatch_StopPropagation(t *testing.T) {
	w, outer, btn := newPage(t)
	var log []string
	outer.AddEventListener("click", dom.ListenerFunc(func(e *dom.Event) {
		log = append(log, "outer")
		e.StopPropagation()
	}), dom.Capture)
	btn.AddEventListener("click", record(&log, "btn"), dom.ListenerOptions{})
	w.AddEventListener("click", record(&log, "window"), dom.ListenerOptions{})

	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{Bubbles: true}))

	assert.Equal(t, []string{"outer"}, log)
}

func TestDispatch_PreventDefault(t *testing.T) {
	_, _, btn := newPage(t)
	btn.AddEventListener("keydown", dom.ListenerFunc(func(e *dom.Event) { e.PreventDefault() }), dom.ListenerOptions{})

	assert.True(t, btn.DispatchEvent(dom.NewEvent(domain.KindKeyboard, "keydown", dom.EventInit{})))
	assert.False(t, btn.DispatchEvent(dom.NewEvent(domain.KindKeyboard, "keydown", dom.EventInit{Cancelable: true})))
}

func TestDispatch_ShadowComposedAndRetargeted(t *testing.T) {
	w, err := dom.ParseHTMLString(`<html><body><x-card id="card"><template shadowrootmode="open"><span part="label">hi</span></template></x-card></body></html>`)
	require.NoError(t, err)
	card := w.Document().GetElementByID("card")
	require.NotNil(t, card.ShadowRoot())
	span, err := card.ShadowRoot().QuerySelector("span")
	require.NoError(t, err)
	require.NotNil(t, span)

	var seenByWindow, seenBySpan dom.EventTarget
	w.AddEventListener("click", dom.ListenerFunc(func(e *dom.Event) { seenByWindow = e.Target() }), dom.ListenerOptions{})
	span.AddEventListener("click", dom.ListenerFunc(func(e *dom.Event) { seenBySpan = e.Target() }), dom.ListenerOptions{})

	span.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{Bubbles: true, Composed: true}))
	assert.Same(t, span, seenBySpan)
	assert.Same(t, card, seenByWindow)

	seenByWindow = nil
	span.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{Bubbles: true}))
	assert.Nil(t, seenByWindow, "non-composed events stop at the shadow root")
}

func TestFire_IsTrusted(t *testing.T) {
	_, _, btn := newPage(t)
	var trusted []bool
	btn.AddEventListener("click", dom.ListenerFunc(func(e *dom.Event) { trusted = append(trusted, e.IsTrusted()) }), dom.ListenerOptions{})

	btn.Fire(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{}))
	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{}))

	assert.Equal(t, []bool{true, false}, trusted)
}

type countingHook struct {
	wrapped   int
	unwrapped int
	cache     map[dom.Listener]dom.Listener
}

func (h *countingHook) WrapListener(_ string, l dom.Listener, _ dom.ListenerOptions) dom.Listener {
	h.wrapped++
	wrapper := dom.ListenerFunc(l.HandleEvent)
	h.cache[l] = wrapper
	return wrapper
}

func (h *countingHook) UnwrapListener(_ string, l dom.Listener, _ dom.ListenerOptions) (dom.Listener, bool) {
	w, ok := h.cache[l]
	return w, ok
}

func (h *countingHook) ReleaseListener(_ string, l dom.Listener, _ dom.ListenerOptions) {
	h.unwrapped++
	delete(h.cache, l)
}

func TestRegistrationHook(t *testing.T) {
	w, _, btn := newPage(t)
	hook := &countingHook{cache: map[dom.Listener]dom.Listener{}}
	require.NoError(t, w.SetRegistrationHook(hook))
	require.NoError(t, w.SetRegistrationHook(hook), "same hook installs idempotently")
	assert.ErrorIs(t, w.SetRegistrationHook(&countingHook{}), domain.ErrAlreadyInstalled)

	count := 0
	l := dom.ListenerFunc(func(*dom.Event) { count++ })
	btn.AddEventListener("click", l, dom.ListenerOptions{})
	btn.DispatchEvent(dom.NewEvent(domain.KindMouse, "click", dom.EventInit{}))
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, hook.wrapped)

	btn.RemoveEventListener("click", l, dom.ListenerOptions{})
	assert.Equal(t, 1, hook.unwrapped)
	assert.Equal(t, 0, btn.ListenerCount("click"))

	// a removal that detaches nothing is not released
	btn.AddEventListener("click", l, dom.ListenerOptions{})
	w.Document().RemoveEventListener("click", l, dom.ListenerOptions{})
	assert.Equal(t, 1, hook.unwrapped)
	assert.Equal(t, 1, btn.ListenerCount("click"))
}
