package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/domrec/pkg/domain"
)

// ReplayOverlay marks the outcome of a replay pass on the diagram.
type ReplayOverlay struct {
	Replayed       int
	SkippedIndexes []int
}

// GenerateMermaid produces a Mermaid flowchart of a script. Every distinct
// selector chain becomes one node and every action an edge from the previous
// target, labelled with its index, event type and the gap since the previous
// action. Shapes:
// - Start: ((Circle))
// - Window: {{Hexagon}}
// - Keyboard target: [/Parallelogram/]
// - Default: [Rectangle]
func GenerateMermaid(actions []domain.Action, overlay *ReplayOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    start((\"start\"))\n")

	ids := make(map[string]string)
	targetOf := make([]string, len(actions))
	for i, a := range actions {
		chain := strings.Join(a.Selectors, " / ")
		id, ok := ids[chain]
		if !ok {
			id = fmt.Sprintf("t%d", len(ids))
			ids[chain] = id

			opener, closer := "[", "]"
			switch {
			case a.OnWindow():
				opener, closer = "{{", "}}"
			case a.Event.Kind == domain.KindKeyboard || a.Event.Kind == domain.KindInput:
				opener, closer = "[/", "/]"
			}
			fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escapeLabel(chain), closer)
		}
		targetOf[i] = id
	}

	from := "start"
	for i, a := range actions {
		label := fmt.Sprintf("%d: %s", i, a.Event.Type)
		if i > 0 {
			label += fmt.Sprintf(" +%dms", int64(a.Event.TimeStamp)-int64(actions[i-1].Event.TimeStamp))
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(label), targetOf[i])
		from = targetOf[i]
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast on both themes.
		sb.WriteString("    classDef replayed fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#ffcdd2,stroke:#b71c1c,stroke-width:4px,color:#000;\n")

		skipped := make(map[int]bool, len(overlay.SkippedIndexes))
		for _, i := range overlay.SkippedIndexes {
			skipped[i] = true
		}
		// A target is styled skipped once any of its actions failed to resolve.
		styled := make(map[string]string)
		var order []string
		for i := 0; i < len(actions) && i < overlay.Replayed+len(overlay.SkippedIndexes); i++ {
			id := targetOf[i]
			if _, seen := styled[id]; !seen {
				order = append(order, id)
			}
			if skipped[i] {
				styled[id] = "skipped"
			} else if styled[id] == "" {
				styled[id] = "replayed"
			}
		}
		for _, id := range order {
			fmt.Fprintf(&sb, "    class %s %s;\n", id, styled[id])
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
