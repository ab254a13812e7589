package domain

// Kind identifies the native event family an event was constructed by.
type Kind string

// Recordable event families. The string values match the constructor names
// persisted by earlier recordings.
const (
	KindInput    Kind = "InputEvent"
	KindKeyboard Kind = "KeyboardEvent"
	KindMouse    Kind = "MouseEvent"
	KindPointer  Kind = "PointerEvent"
	KindWheel    Kind = "WheelEvent"
)

// Families that exist on the surface but are never recorded.
const (
	KindEvent Kind = "Event"
	KindFocus Kind = "FocusEvent"
)

var recordable = map[Kind]bool{
	KindInput:    true,
	KindKeyboard: true,
	KindMouse:    true,
	KindPointer:  true,
	KindWheel:    true,
}

// Recordable reports whether events of this kind can be captured and rebuilt.
func (k Kind) Recordable() bool {
	return recordable[k]
}

// Kinds returns the recordable kinds in a stable order.
func Kinds() []Kind {
	return []Kind{KindInput, KindKeyboard, KindMouse, KindPointer, KindWheel}
}
