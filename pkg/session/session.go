package session

import (
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/google/uuid"
)

// Outcome is what a session did with an offered action.
type Outcome int

const (
	Retained Outcome = iota
	Skipped
	Duplicate
	OwnSurface
	NotRecording
)

func (o Outcome) String() string {
	switch o {
	case Retained:
		return "retained"
	case Skipped:
		return "skipped"
	case Duplicate:
		return "duplicate"
	case OwnSurface:
		return "own_surface"
	default:
		return "not_recording"
	}
}

// Source is the capture side a session attaches to while recording.
type Source interface {
	SetOnAction(fn func(domain.Action))
	SetRecording(on bool)
}

// Session holds the recorded actions and the recording flags.
// Safe for concurrent use.
type Session struct {
	mu          sync.Mutex
	id          string
	actions     []domain.Action
	prev        *domain.Action
	prevJSON    []byte
	recording   bool
	pending     bool
	dirty       bool
	skipped     int
	filters     Filters
	ownSelector string
	source      Source
	observer    func(Outcome, domain.Action)
	logger      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithOwnSelector discards actions whose chain passes through the element
// addressed by selector, i.e. the recorder's own surface.
func WithOwnSelector(selector string) Option {
	return func(s *Session) {
		s.ownSelector = selector
	}
}

// WithObserver is called after every offered action with its outcome.
func WithObserver(fn func(Outcome, domain.Action)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// New creates an idle session.
func New(filters Filters, opts ...Option) *Session {
	s := &Session{
		filters: filters.clone(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOwnSelector replaces the selector of the recorder's own surface.
func (s *Session) SetOwnSelector(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownSelector = selector
}

// Start clears the action list and begins recording from src.
func (s *Session) Start(src Source) {
	s.mu.Lock()
	s.id = uuid.NewString()
	s.actions = s.actions[:0]
	s.prev = nil
	s.prevJSON = nil
	s.skipped = 0
	s.recording = true
	s.pending = true
	s.dirty = true
	s.source = src
	id := s.id
	s.mu.Unlock()

	if src != nil {
		src.SetOnAction(func(a domain.Action) { s.OnAction(a) })
		src.SetRecording(true)
	}
	s.logger.Info("recording started", "session_id", id)
}

// Stop ends recording and trims the tail once per recording.
// It returns the number of actions trimmed.
func (s *Session) Stop() int {
	s.mu.Lock()
	src := s.source
	s.source = nil
	s.recording = false
	trimmed := 0
	if s.pending {
		s.pending = false
		before := len(s.actions)
		s.actions = TrimTrailing(s.actions)
		trimmed = before - len(s.actions)
	}
	id, n := s.id, len(s.actions)
	s.mu.Unlock()

	if src != nil {
		src.SetRecording(false)
	}
	s.logger.Info("recording stopped", "session_id", id, "actions", n, "trimmed", trimmed)
	return trimmed
}

// OnAction offers a captured action to the session.
func (s *Session) OnAction(a domain.Action) Outcome {
	s.mu.Lock()
	outcome := s.accept(a)
	obs := s.observer
	s.mu.Unlock()

	if obs != nil {
		obs(outcome, a)
	}
	return outcome
}

func (s *Session) accept(a domain.Action) Outcome {
	if !s.recording {
		return NotRecording
	}
	if s.isOwnSurface(a) {
		return OwnSurface
	}
	if !s.filters.Allows(a.Event.Type) {
		s.skipped++
		return Skipped
	}
	encoded, err := json.Marshal(a.Event)
	if err != nil {
		s.logger.Warn("failed to encode action", "type", a.Event.Type, "err", err)
		s.skipped++
		return Skipped
	}
	if s.prev != nil &&
		a.Event.TimeStamp == s.prev.Event.TimeStamp &&
		a.Event.Type == s.prev.Event.Type &&
		slices.Equal(a.Selectors, s.prev.Selectors) &&
		string(encoded) == string(s.prevJSON) {
		return Duplicate
	}
	a.Selectors = slices.Clone(a.Selectors)
	s.actions = append(s.actions, a)
	s.prev = &s.actions[len(s.actions)-1]
	s.prevJSON = encoded
	return Retained
}

func (s *Session) isOwnSurface(a domain.Action) bool {
	if s.ownSelector == "" {
		return false
	}
	for _, sel := range a.Selectors {
		if sel == s.ownSelector || strings.HasPrefix(sel, s.ownSelector+" > ") {
			return true
		}
	}
	return false
}

// TrimTrailing drops the pointer noise that ends a recording: a pointerdown
// on the window (the click on the stop control), together with the window
// pointermoves around it.
func TrimTrailing(actions []domain.Action) []domain.Action {
	end := len(actions)
	for end > 0 && isWindowEvent(actions[end-1], "pointermove") {
		end--
	}
	if end == 0 || !isWindowEvent(actions[end-1], "pointerdown") {
		return actions
	}
	end--
	for end > 0 && isWindowEvent(actions[end-1], "pointermove") {
		end--
	}
	return actions[:end]
}

func isWindowEvent(a domain.Action, typ string) bool {
	return a.OnWindow() && a.Event.Type == typ
}

// Load replaces the action list with a persisted script.
func (s *Session) Load(actions []domain.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = slices.Clone(actions)
	s.prev = nil
	s.prevJSON = nil
	s.dirty = false
	s.pending = false
}

// Actions returns a copy of the action list.
func (s *Session) Actions() []domain.Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.actions)
}

// Len returns the number of retained actions.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actions)
}

// ID returns the identifier of the current or last recording.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Recording reports whether the session is recording.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// Skipped returns how many actions the filters rejected this recording.
func (s *Session) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Dirty reports whether actions changed since they were last persisted.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkSaved clears the dirty flag after a successful persist.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Filters returns the active filters.
func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.clone()
}

// SetFilters replaces the active filters. It applies to later actions only.
func (s *Session) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f.clone()
}

// SelectAll enables every type of group.
func (s *Session) SelectAll(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.SelectAll(group)
}

// DeselectAll disables every type of group.
func (s *Session) DeselectAll(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = s.filters.DeselectAll(group)
}
