// Package event converts live interaction events to storable records and back.
package event

import (
	"fmt"

	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
)

// Props is the fixed set of fields copied onto a reconstructed event.
type Props struct {
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
}

// DispatchOptions are the flags a synthetic event is constructed with.
type DispatchOptions struct {
	Bubbles    bool
	Composed   bool
	Cancelable bool
}

// Constructor builds a fresh event of one family.
type Constructor func(typ string, opts DispatchOptions) *dom.Event

func construct(kind domain.Kind) Constructor {
	return func(typ string, opts DispatchOptions) *dom.Event {
		return dom.NewEvent(kind, typ, dom.EventInit(opts))
	}
}

// Constructors maps each recordable family to the way a live instance is built.
var Constructors = map[domain.Kind]Constructor{
	domain.KindInput:    construct(domain.KindInput),
	domain.KindKeyboard: construct(domain.KindKeyboard),
	domain.KindMouse:    construct(domain.KindMouse),
	domain.KindPointer:  construct(domain.KindPointer),
	domain.KindWheel:    construct(domain.KindWheel),
}

// Recordable reports whether e belongs to a family that can be captured.
func Recordable(e *dom.Event) bool {
	return e != nil && e.Kind.Recordable()
}

// Serialize copies the replay-relevant fields of e. capture records the
// phase of the listener that observed it and may be nil when unknown.
func Serialize(e *dom.Event, capture *bool) domain.SavedEvent {
	return domain.SavedEvent{
		Kind:       e.Kind,
		Capture:    capture,
		PointerID:  e.PointerID,
		Buttons:    e.Buttons,
		AltKey:     e.AltKey,
		CtrlKey:    e.CtrlKey,
		ShiftKey:   e.ShiftKey,
		MetaKey:    e.MetaKey,
		PageX:      e.PageX,
		PageY:      e.PageY,
		DeltaX:     e.DeltaX,
		DeltaY:     e.DeltaY,
		Key:        e.Key,
		Which:      e.Which,
		Type:       e.Type,
		TimeStamp:  e.TimeStamp,
		Bubbles:    e.Bubbles,
		Composed:   e.Composed,
		Cancelable: e.Cancelable,
	}
}

// PropsForReconstruction extracts exactly the copyable fields.
func PropsForReconstruction(s domain.SavedEvent) Props {
	return Props{
		PointerID: s.PointerID,
		Buttons:   s.Buttons,
		AltKey:    s.AltKey,
		CtrlKey:   s.CtrlKey,
		ShiftKey:  s.ShiftKey,
		MetaKey:   s.MetaKey,
		PageX:     s.PageX,
		PageY:     s.PageY,
		DeltaX:    s.DeltaX,
		DeltaY:    s.DeltaY,
		Key:       s.Key,
		Which:     s.Which,
	}
}

// DispatchOptionsFor extracts the construction flags.
func DispatchOptionsFor(s domain.SavedEvent) DispatchOptions {
	return DispatchOptions{
		Bubbles:    s.Bubbles,
		Composed:   s.Composed,
		Cancelable: s.Cancelable,
	}
}

// Apply copies p onto e.
func (p Props) Apply(e *dom.Event) {
	e.PointerID = p.PointerID
	e.Buttons = p.Buttons
	e.AltKey = p.AltKey
	e.CtrlKey = p.CtrlKey
	e.ShiftKey = p.ShiftKey
	e.MetaKey = p.MetaKey
	e.PageX = p.PageX
	e.PageY = p.PageY
	e.DeltaX = p.DeltaX
	e.DeltaY = p.DeltaY
	e.Key = p.Key
	e.Which = p.Which
}

// Reconstruct builds a synthetic event from s. The event's timestamp is left
// for the dispatching page to assign.
func Reconstruct(s domain.SavedEvent) (*dom.Event, error) {
	ctor, ok := Constructors[s.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrMissingConstructor, s.Kind)
	}
	e := ctor(s.Type, DispatchOptionsFor(s))
	PropsForReconstruction(s).Apply(e)
	return e, nil
}
