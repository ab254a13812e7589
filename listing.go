package domrec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/domrec/pkg/domain"
)

// ActionLines renders one line per action: milliseconds since the first
// action, the event type and the innermost selector segment.
func ActionLines(actions []domain.Action) []string {
	if len(actions) == 0 {
		return nil
	}
	first := int64(actions[0].Event.TimeStamp)
	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = fmt.Sprintf("%d %s %s", int64(a.Event.TimeStamp)-first, a.Event.Type, a.LastSegment())
	}
	return lines
}

// ActionDetails renders the full selector chain and the event as indented JSON.
func ActionDetails(a domain.Action) string {
	event, err := json.MarshalIndent(a.Event, "", "  ")
	if err != nil {
		event = []byte(err.Error())
	}
	return "\n" + strings.Join(a.Selectors, "\n > ") + "\n" + string(event)
}
