package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(120),
	)

	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}
