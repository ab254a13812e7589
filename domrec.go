package domrec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/domrec/internal/logging"
	"github.com/aretw0/domrec/pkg/adapters/memory"
	"github.com/aretw0/domrec/pkg/address"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/idle"
	"github.com/aretw0/domrec/pkg/intercept"
	"github.com/aretw0/domrec/pkg/observability"
	"github.com/aretw0/domrec/pkg/persistence"
	"github.com/aretw0/domrec/pkg/ports"
	"github.com/aretw0/domrec/pkg/replay"
	"github.com/aretw0/domrec/pkg/session"
	"github.com/aretw0/domrec/pkg/settings"
)

// Recorder is the high-level entry point: it records interactions on a page,
// persists them and replays them with their original timing.
type Recorder struct {
	win         *dom.Window
	interceptor *intercept.Interceptor
	session     *session.Session
	scheduler   *replay.Scheduler

	store    ports.ActionStore
	prefs    ports.SettingsStore
	key      string
	metrics  *observability.Metrics
	logger   *slog.Logger
	pacer    replay.Pacer
	idleOpts []idle.Option
	onStatus func(string)

	ownRoot      *dom.Element
	ownListeners map[string]dom.Listener

	replaying     atomic.Bool
	stopRequested atomic.Bool
	autoplay      atomic.Bool

	mu           sync.Mutex
	settings     settings.Settings
	skipped      int
	replayed     int
	replayTotal  int
	skippedIdx   []int
	lastReport   replay.Report
	cancelReplay context.CancelFunc
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithStore sets the remote script store (default: in-memory).
func WithStore(s ports.ActionStore) Option {
	return func(r *Recorder) {
		r.store = s
	}
}

// WithSettingsStore sets the preference store (default: in-memory).
func WithSettingsStore(s ports.SettingsStore) Option {
	return func(r *Recorder) {
		r.prefs = s
	}
}

// WithKey sets the key the script is saved under (default: domain.ActionsKey).
func WithKey(key string) Option {
	return func(r *Recorder) {
		r.key = key
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithMetrics reports recording and replay counters to m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithPacer overrides the replay frame and timer waits.
func WithPacer(p replay.Pacer) Option {
	return func(r *Recorder) {
		r.pacer = p
	}
}

// WithIdleOptions configures the detector autoplay waits on.
// The threshold always comes from the stored preferences.
func WithIdleOptions(opts ...idle.Option) Option {
	return func(r *Recorder) {
		r.idleOpts = append(r.idleOpts, opts...)
	}
}

// WithOwnRoot marks el as the recorder's own control surface: its actions
// are never recorded, and user activity on it cancels autoplay and replay.
func WithOwnRoot(el *dom.Element) Option {
	return func(r *Recorder) {
		r.ownRoot = el
	}
}

// WithOnStatus registers a callback invoked with the status line whenever
// it may have changed.
func WithOnStatus(fn func(string)) Option {
	return func(r *Recorder) {
		r.onStatus = fn
	}
}

// New installs the interceptor on win and loads the stored preferences.
func New(win *dom.Window, opts ...Option) (*Recorder, error) {
	r := &Recorder{
		win:    win,
		key:    domain.ActionsKey,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = persistence.NewActionStore(memory.NewStore())
	}
	if r.prefs == nil {
		r.prefs = memory.NewSettings(nil)
	}

	prefs, err := settings.Load(r.prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	r.settings = prefs

	r.interceptor, err = intercept.Install(win, intercept.WithLogger(r.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to install interceptor: %w", err)
	}

	sessionOpts := []session.Option{
		session.WithLogger(r.logger),
		session.WithObserver(r.observe),
	}
	if r.ownRoot != nil {
		sessionOpts = append(sessionOpts, session.WithOwnSelector(address.ElementSelector(r.ownRoot)))
	}
	r.session = session.New(filtersOf(prefs), sessionOpts...)

	schedOpts := []replay.Option{
		replay.WithLogger(r.logger),
		replay.WithOnProgress(r.progress),
	}
	if r.pacer != nil {
		schedOpts = append(schedOpts, replay.WithPacer(r.pacer))
	}
	r.scheduler = replay.New(win, schedOpts...)

	r.attachOwnRoot()
	return r, nil
}

func filtersOf(s settings.Settings) session.Filters {
	return session.Filters{EventTypes: s.EventTypes, EnabledGroups: s.EnabledGroups}
}

func (r *Recorder) attachOwnRoot() {
	if r.ownRoot == nil {
		return
	}
	r.ownListeners = make(map[string]dom.Listener)
	for _, typ := range domain.AllTypes() {
		l := dom.ListenerFunc(func(e *dom.Event) {
			r.autoplay.Store(false)
			e.StopPropagation()
			if e.IsTrusted() && r.replaying.Load() {
				r.StopReplaying()
			}
		})
		r.ownListeners[typ] = l
		r.ownRoot.AddEventListener(typ, l, dom.ListenerOptions{})
	}
}

// Session exposes the underlying recording session.
func (r *Recorder) Session() *session.Session { return r.session }

// StartRecording clears the script and begins capturing. It fails while a
// replay is running.
func (r *Recorder) StartRecording() error {
	if r.replaying.Load() {
		return domain.ErrReplaying
	}
	r.mu.Lock()
	r.skipped = 0
	r.skippedIdx = nil
	r.mu.Unlock()
	if r.ownRoot != nil {
		// the address depends on the page shape at the time of recording
		r.session.SetOwnSelector(address.ElementSelector(r.ownRoot))
	}
	r.session.Start(r.interceptor)
	r.notify()
	return nil
}

// StopRecording ends capture and trims the trailing pointer noise. It is a
// no-op while a replay is running.
func (r *Recorder) StopRecording() {
	if r.replaying.Load() {
		return
	}
	r.stopRecording()
}

func (r *Recorder) stopRecording() {
	if !r.session.Recording() {
		return
	}
	if trimmed := r.session.Stop(); trimmed > 0 {
		r.logger.Debug("trimmed trailing actions", "count", trimmed)
	}
	r.notify()
}

// Recording reports whether capture is on.
func (r *Recorder) Recording() bool { return r.session.Recording() }

// Replaying reports whether a replay is running.
func (r *Recorder) Replaying() bool { return r.replaying.Load() }

// Unsaved reports whether the script changed since it was last saved or loaded.
func (r *Recorder) Unsaved() bool { return r.session.Dirty() }

// Actions returns a copy of the current script.
func (r *Recorder) Actions() []domain.Action { return r.session.Actions() }

// StartReplaying stops recording and replays the whole script, repeating
// while looping is enabled. It returns nil when stopped by StopReplaying.
func (r *Recorder) StartReplaying(ctx context.Context) error {
	if !r.replaying.CompareAndSwap(false, true) {
		return domain.ErrReplaying
	}
	defer r.replaying.Store(false)
	r.stopRequested.Store(false)
	r.stopRecording()

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelReplay = cancel
	r.mu.Unlock()
	defer func() {
		cancel()
		r.mu.Lock()
		r.cancelReplay = nil
		r.mu.Unlock()
		r.notify()
	}()

	actions := r.session.Actions()
	if len(actions) == 0 {
		r.logger.Debug("replay skipped, no recorded actions")
		return nil
	}
	for !r.stopRequested.Load() && ctx.Err() == nil {
		r.mu.Lock()
		r.replayed, r.skipped = 0, 0
		r.replayTotal = len(actions)
		r.skippedIdx = nil
		loop := r.settings.Loop
		r.mu.Unlock()
		r.notify()

		report, err := r.scheduler.Play(ctx, actions)
		r.metrics.ReplayPass(report.Duration)
		r.mu.Lock()
		r.lastReport = report
		r.mu.Unlock()
		if err != nil {
			if r.stopRequested.Load() && errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		r.logger.Debug("replay pass finished",
			"replayed", report.Replayed,
			"skipped", report.Skipped,
			"duration", report.Duration,
		)
		if report.Aborted || !loop {
			break
		}
	}
	return nil
}

// LastReport returns the report of the most recent replay pass.
func (r *Recorder) LastReport() replay.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastReport
}

// ReplayAction dispatches the n-th action alone, without timing.
func (r *Recorder) ReplayAction(ctx context.Context, n int) error {
	if !r.replaying.CompareAndSwap(false, true) {
		return domain.ErrReplaying
	}
	defer r.replaying.Store(false)
	r.stopRecording()
	err := r.scheduler.ReplayOne(ctx, r.session.Actions(), n)
	r.notify()
	return err
}

// StopReplaying aborts a running replay and any loop, then stops recording.
func (r *Recorder) StopReplaying() {
	r.stopRequested.Store(true)
	r.scheduler.Stop()
	r.mu.Lock()
	cancel := r.cancelReplay
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.StopRecording()
}

// PostActions stops recording and saves the script. On failure the script
// stays marked unsaved.
func (r *Recorder) PostActions(ctx context.Context) error {
	r.StopRecording()
	if err := r.store.Save(ctx, r.key, r.session.Actions()); err != nil {
		r.logger.Warn("failed to save actions", "key", r.key, "err", err)
		return fmt.Errorf("failed to save actions: %w", err)
	}
	r.session.MarkSaved()
	r.notify()
	return nil
}

// GetActions replaces the script with the stored one.
func (r *Recorder) GetActions(ctx context.Context) error {
	actions, err := r.store.Load(ctx, r.key)
	if err != nil {
		r.logger.Warn("failed to load actions", "key", r.key, "err", err)
		return fmt.Errorf("failed to load actions: %w", err)
	}
	r.session.Load(actions)
	r.notify()
	return nil
}

// ReplayServer fetches the stored script and replays it. A failed fetch is
// logged and the current script is replayed instead.
func (r *Recorder) ReplayServer(ctx context.Context) error {
	_ = r.GetActions(ctx)
	return r.StartReplaying(ctx)
}

// MaybeAutoplay replays the script once the page has been idle for the
// configured time, provided autoplay is enabled and nothing cancelled it
// meanwhile. It reports whether a replay ran.
func (r *Recorder) MaybeAutoplay(ctx context.Context) (bool, error) {
	if r.session.Len() == 0 {
		return false, nil
	}
	prefs := r.Settings()
	if !prefs.Autoplay {
		return false, nil
	}
	r.autoplay.Store(true)
	r.notify()

	opts := append([]idle.Option{idle.WithThreshold(prefs.MinIdle())}, r.idleOpts...)
	if err := idle.New(opts...).WaitUntilIdle(ctx, r.interceptor); err != nil {
		r.autoplay.Store(false)
		return false, err
	}
	if !r.autoplay.Swap(false) {
		r.logger.Debug("autoplay cancelled")
		return false, nil
	}
	return true, r.StartReplaying(ctx)
}

// CancelAutoplay drops a pending autoplay.
func (r *Recorder) CancelAutoplay() { r.autoplay.Store(false) }

// AutoplayPending reports whether MaybeAutoplay is waiting for idle.
func (r *Recorder) AutoplayPending() bool { return r.autoplay.Load() }

// Settings returns the current preferences.
func (r *Recorder) Settings() settings.Settings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settings
}

// ReloadSettings re-reads the preference store and applies its filters.
func (r *Recorder) ReloadSettings() error {
	prefs, err := settings.Load(r.prefs)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	r.mu.Lock()
	r.settings = prefs
	r.mu.Unlock()
	r.session.SetFilters(filtersOf(prefs))
	r.notify()
	return nil
}

// WatchSettings reloads the preferences whenever w signals a change, until
// ctx ends.
func (r *Recorder) WatchSettings(ctx context.Context, w ports.Watchable) error {
	ch, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for range ch {
			if err := r.ReloadSettings(); err != nil {
				r.logger.Warn("settings reload failed", "err", err)
				continue
			}
			r.logger.Info("settings reloaded")
		}
	}()
	return nil
}

// SetFilters replaces the type and group filters and persists them.
func (r *Recorder) SetFilters(f session.Filters) error {
	r.session.SetFilters(f)
	return r.persistFilters()
}

// SelectAll enables every type of group and persists the filters.
func (r *Recorder) SelectAll(group string) error {
	r.session.SelectAll(group)
	return r.persistFilters()
}

// DeselectAll disables every type of group and persists the filters.
func (r *Recorder) DeselectAll(group string) error {
	r.session.DeselectAll(group)
	return r.persistFilters()
}

// SetAutoplay toggles and persists the autoplay preference.
func (r *Recorder) SetAutoplay(on bool) error {
	return r.updateSettings(func(s *settings.Settings) { s.Autoplay = on })
}

// SetLoop toggles and persists the loop preference.
func (r *Recorder) SetLoop(on bool) error {
	return r.updateSettings(func(s *settings.Settings) { s.Loop = on })
}

func (r *Recorder) persistFilters() error {
	f := r.session.Filters()
	return r.updateSettings(func(s *settings.Settings) {
		s.EventTypes = f.EventTypes
		s.EnabledGroups = f.EnabledGroups
	})
}

func (r *Recorder) updateSettings(fn func(*settings.Settings)) error {
	r.mu.Lock()
	next := r.settings
	fn(&next)
	r.settings = next
	r.mu.Unlock()
	if err := settings.Save(r.prefs, next); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	r.notify()
	return nil
}

// Status returns the status line shown next to the controls.
func (r *Recorder) Status() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replaying.Load() {
		remaining := r.replayTotal - r.replayed - r.skipped
		return fmt.Sprintf("%d remaining (%d skipped, %d total)", remaining, r.skipped, r.replayTotal)
	}
	return fmt.Sprintf("%d actions, %d skipped", r.session.Len(), r.skipped)
}

// Snapshot is a point-in-time view of the recorder for presentation.
type Snapshot struct {
	SessionID       string
	Recording       bool
	Replaying       bool
	AutoplayPending bool
	Unsaved         bool
	Status          string
	Actions         []domain.Action
	SkippedIndexes  []int
	PointerX        float64
	PointerY        float64
	Settings        settings.Settings
}

// Snapshot returns the current state.
func (r *Recorder) Snapshot() Snapshot {
	x, y := r.scheduler.Pointer()
	status := r.Status()
	r.mu.Lock()
	skipped := append([]int(nil), r.skippedIdx...)
	prefs := r.settings
	r.mu.Unlock()
	return Snapshot{
		SessionID:       r.session.ID(),
		Recording:       r.session.Recording(),
		Replaying:       r.replaying.Load(),
		AutoplayPending: r.autoplay.Load(),
		Unsaved:         r.session.Dirty(),
		Status:          status,
		Actions:         r.session.Actions(),
		SkippedIndexes:  skipped,
		PointerX:        x,
		PointerY:        y,
		Settings:        prefs,
	}
}

// Close stops any replay or recording and detaches the own-root listeners.
func (r *Recorder) Close() error {
	r.autoplay.Store(false)
	r.StopReplaying()
	r.stopRecording()
	for typ, l := range r.ownListeners {
		r.ownRoot.RemoveEventListener(typ, l, dom.ListenerOptions{})
	}
	r.ownListeners = nil
	return nil
}

func (r *Recorder) observe(outcome session.Outcome, a domain.Action) {
	switch outcome {
	case session.Retained:
		r.metrics.ActionRecorded(a.Event.Type)
	case session.NotRecording:
		return
	default:
		r.metrics.ActionRejected(outcome.String())
	}
	skipped := r.session.Skipped()
	r.mu.Lock()
	r.skipped = skipped
	r.mu.Unlock()
	r.notify()
}

func (r *Recorder) progress(p replay.Progress) {
	r.mu.Lock()
	r.replayed = p.Replayed
	r.skipped = p.Skipped
	if !p.Dispatched() {
		r.skippedIdx = append(r.skippedIdx, p.Index)
	}
	r.mu.Unlock()
	if p.Dispatched() {
		r.metrics.ReplayDispatched()
	} else {
		r.metrics.ReplaySkipped(string(p.Reason))
	}
	r.notify()
}

func (r *Recorder) notify() {
	if r.onStatus != nil {
		r.onStatus(r.Status())
	}
}
