package domain

// Group is a named, closed set of event types.
type Group struct {
	Name  string
	Types []string
}

// Group names.
const (
	GroupMisc     = "misc"
	GroupPointer  = "pointer"
	GroupMouse    = "mouse"
	GroupKeyboard = "keyboard"
)

var groups = []Group{
	{GroupMisc, []string{"blur", "focus", "click", "dblclick", "wheel", "input", "change", "contextmenu"}},
	{GroupPointer, []string{"pointerdown", "pointerup", "pointermove", "pointerover", "pointerenter", "pointerleave", "pointercancel"}},
	{GroupMouse, []string{"mousedown", "mouseup", "mousemove", "mouseover", "mouseenter", "mouseleave"}},
	{GroupKeyboard, []string{"keydown", "keyup", "keypress"}},
}

// Groups returns every event group in display order.
func Groups() []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Name: g.Name, Types: append([]string(nil), g.Types...)}
	}
	return out
}

// GroupOf returns the group name an event type belongs to, or "" when the
// type is not part of any group.
func GroupOf(eventType string) string {
	for _, g := range groups {
		for _, t := range g.Types {
			if t == eventType {
				return g.Name
			}
		}
	}
	return ""
}

// TypesOf returns the event types of a group, or nil for an unknown group.
func TypesOf(group string) []string {
	for _, g := range groups {
		if g.Name == group {
			return append([]string(nil), g.Types...)
		}
	}
	return nil
}

// AllTypes returns every known event type, grouped in display order.
func AllTypes() []string {
	var all []string
	for _, g := range groups {
		all = append(all, g.Types...)
	}
	return all
}
