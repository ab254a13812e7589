package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/domrec/pkg/address"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
)

// Option configures a validation run.
type Option func(*options)

type options struct {
	win *dom.Window
}

// WithWindow also checks that every selector chain resolves on win.
func WithWindow(win *dom.Window) Option {
	return func(o *options) {
		o.win = win
	}
}

// ValidateScript checks a recorded script for problems that would make
// replay misbehave: empty or malformed selector chains, event kinds that
// cannot be rebuilt, unknown event types and timestamps going backwards.
func ValidateScript(actions []domain.Action, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var errors []string
	report := func(i int, format string, args ...any) {
		errors = append(errors, fmt.Sprintf("action %d: %s", i, fmt.Sprintf(format, args...)))
	}

	prev := 0.0
	for i, a := range actions {
		switch {
		case len(a.Selectors) == 0:
			report(i, "%v", domain.ErrEmptySelectors)
		case a.OnWindow():
			if len(a.Selectors) > 1 {
				report(i, "window selector cannot descend into %q", a.Selectors[1])
			}
		default:
			for _, sel := range a.Selectors {
				if _, err := dom.ParseSelector(sel); err != nil {
					report(i, "%v", err)
				}
			}
		}

		if !a.Event.Kind.Recordable() {
			report(i, "%v: %q", domain.ErrMissingConstructor, a.Event.Kind)
		}
		if domain.GroupOf(a.Event.Type) == "" {
			report(i, "unknown event type %q", a.Event.Type)
		}
		if i > 0 && a.Event.TimeStamp < prev {
			report(i, "timestamp %.1f is before the previous action (%.1f)", a.Event.TimeStamp, prev)
		}
		prev = a.Event.TimeStamp

		if o.win != nil && len(a.Selectors) > 0 {
			if _, ok := address.ToNode(o.win, a.Selectors); !ok {
				report(i, "%v: %s", domain.ErrUnresolvable, strings.Join(a.Selectors, " / "))
			}
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}
