package dom

import "github.com/aretw0/domrec/pkg/domain"

// Phase is the event phase a listener is invoked in.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
)

// EventInit carries the dispatch flags of a new event.
type EventInit struct {
	Bubbles    bool
	Composed   bool
	Cancelable bool
}

// Event is an interaction event travelling through the tree.
type Event struct {
	Kind      domain.Kind
	Type      string
	TimeStamp float64

	Bubbles    bool
	Composed   bool
	Cancelable bool

	PointerID int
	Buttons   int
	AltKey    bool
	CtrlKey   bool
	ShiftKey  bool
	MetaKey   bool
	PageX     float64
	PageY     float64
	DeltaX    float64
	DeltaY    float64
	Key       string
	Which     int

	target        EventTarget
	currentTarget EventTarget
	phase         Phase
	trusted       bool
	stop          bool
	stopNow       bool
	canceled      bool
	dispatching   bool
}

// NewEvent creates an untrusted event, as a script would.
func NewEvent(kind domain.Kind, typ string, init EventInit) *Event {
	return &Event{
		Kind:       kind,
		Type:       typ,
		Bubbles:    init.Bubbles,
		Composed:   init.Composed,
		Cancelable: init.Cancelable,
	}
}

// Target returns the target as seen by the listener currently running.
func (e *Event) Target() EventTarget { return e.target }

// CurrentTarget returns the target whose listener is currently running.
func (e *Event) CurrentTarget() EventTarget { return e.currentTarget }

// Phase returns the current dispatch phase.
func (e *Event) Phase() Phase { return e.phase }

// IsTrusted reports whether the event was produced by the surface itself
// rather than dispatched by a script.
func (e *Event) IsTrusted() bool { return e.trusted }

// StopPropagation prevents the event from reaching further targets.
func (e *Event) StopPropagation() { e.stop = true }

// StopImmediatePropagation also skips the remaining listeners of the current target.
func (e *Event) StopImmediatePropagation() {
	e.stop = true
	e.stopNow = true
}

// PreventDefault cancels the event if it is cancelable.
func (e *Event) PreventDefault() {
	if e.Cancelable {
		e.canceled = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool { return e.canceled }
