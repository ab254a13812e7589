package domain

// WindowSelector is the single-element selector chain denoting the window.
const WindowSelector = "window"

// ActionsKey is the store key the recorder persists its script under.
const ActionsKey = "recorder-actions"

// Action is one recorded interaction.
// Selectors is read left to right, descending into one nested shadow root per
// element, and resolves back to the node the listener was attached to.
type Action struct {
	Selectors []string   `json:"selectors"`
	Event     SavedEvent `json:"event"`
}

// OnWindow reports whether the action targeted the window.
func (a Action) OnWindow() bool {
	return len(a.Selectors) > 0 && a.Selectors[0] == WindowSelector
}

// LastSegment returns the innermost compound selector of the chain,
// e.g. "button:nth-child(2)" for "div > button:nth-child(2)".
func (a Action) LastSegment() string {
	if len(a.Selectors) == 0 {
		return ""
	}
	last := a.Selectors[len(a.Selectors)-1]
	for i := len(last) - 1; i >= 2; i-- {
		if last[i-2:i+1] == " > " {
			return last[i+1:]
		}
	}
	return last
}

// SavedEvent is the serialized form of an interaction event.
// Only the fields needed by listeners on replay are kept.
type SavedEvent struct {
	Kind    Kind  `json:"is"`
	Capture *bool `json:"capture,omitempty"`

	PointerID int     `json:"pointerId,omitempty"`
	Buttons   int     `json:"buttons"`
	AltKey    bool    `json:"altKey"`
	CtrlKey   bool    `json:"ctrlKey"`
	ShiftKey  bool    `json:"shiftKey"`
	MetaKey   bool    `json:"metaKey"`
	PageX     float64 `json:"pageX"`
	PageY     float64 `json:"pageY"`
	DeltaX    float64 `json:"deltaX,omitempty"`
	DeltaY    float64 `json:"deltaY,omitempty"`
	Key       string  `json:"key,omitempty"`
	Which     int     `json:"which"`

	Type      string  `json:"type"`
	TimeStamp float64 `json:"timeStamp"`

	Bubbles    bool `json:"bubbles"`
	Composed   bool `json:"composed"`
	Cancelable bool `json:"cancelable"`
}

// CaptureFlag returns the capture flag, treating unset as false.
func (e SavedEvent) CaptureFlag() bool {
	return e.Capture != nil && *e.Capture
}

// Bool returns a pointer to b, for building tri-state capture flags.
func Bool(b bool) *bool {
	return &b
}
