package session

import (
	"slices"

	"github.com/aretw0/domrec/pkg/domain"
)

// Filters selects which actions a session retains.
type Filters struct {
	EventTypes    []string
	EnabledGroups []string
}

// Allows reports whether an event type passes both the type and group filters.
func (f Filters) Allows(eventType string) bool {
	if !slices.Contains(f.EventTypes, eventType) {
		return false
	}
	group := domain.GroupOf(eventType)
	return group != "" && slices.Contains(f.EnabledGroups, group)
}

// SelectAll returns f with every type of group enabled.
func (f Filters) SelectAll(group string) Filters {
	out := f.clone()
	for _, t := range domain.TypesOf(group) {
		if !slices.Contains(out.EventTypes, t) {
			out.EventTypes = append(out.EventTypes, t)
		}
	}
	return out
}

// DeselectAll returns f with every type of group disabled.
func (f Filters) DeselectAll(group string) Filters {
	out := f.clone()
	drop := domain.TypesOf(group)
	out.EventTypes = slices.DeleteFunc(out.EventTypes, func(t string) bool {
		return slices.Contains(drop, t)
	})
	return out
}

func (f Filters) clone() Filters {
	return Filters{
		EventTypes:    slices.Clone(f.EventTypes),
		EnabledGroups: slices.Clone(f.EnabledGroups),
	}
}
