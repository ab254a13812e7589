package middleware

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/ports"
)

// Mask replaces masked key values.
const Mask = "***"

type keyMaskMiddleware struct {
	next     ports.ActionStore
	patterns []*regexp.Regexp
}

// NewKeyMaskMiddleware creates a middleware that masks the key of keystroke
// actions whose selector chain matches one of the patterns, e.g.
// `\[type=password\]`. Hops are joined with " >> " before matching.
func NewKeyMaskMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid mask pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ActionStore) ports.ActionStore {
		return &keyMaskMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *keyMaskMiddleware) Save(ctx context.Context, key string, actions []domain.Action) error {
	// Clone so the recorder's in-memory list keeps the real keys for replay.
	masked := slices.Clone(actions)
	for i, a := range masked {
		if a.Event.Key != "" && m.matches(a.Selectors) {
			masked[i].Event.Key = Mask
		}
	}
	return m.next.Save(ctx, key, masked)
}

func (m *keyMaskMiddleware) Load(ctx context.Context, key string) ([]domain.Action, error) {
	return m.next.Load(ctx, key)
}

func (m *keyMaskMiddleware) matches(selectors []string) bool {
	chain := strings.Join(selectors, " >> ")
	for _, p := range m.patterns {
		if p.MatchString(chain) {
			return true
		}
	}
	return false
}
