package domrec_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/domrec"
	"github.com/aretw0/domrec/pkg/adapters/memory"
	"github.com/aretw0/domrec/pkg/dom"
	"github.com/aretw0/domrec/pkg/domain"
	"github.com/aretw0/domrec/pkg/idle"
	"github.com/aretw0/domrec/pkg/observability"
	"github.com/aretw0/domrec/pkg/persistence"
	"github.com/aretw0/domrec/pkg/replay"
	"github.com/aretw0/domrec/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><div id="app"><button id="go">go</button></div><div id="recorder"><button id="rec">rec</button></div></body></html>`

type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(ms float64) {
	c.mu.Lock()
	c.now += ms
	c.mu.Unlock()
}

// hookPacer never waits and runs onWait on every suspension.
type hookPacer struct {
	waits  int
	onWait func(n int)
}

func (p *hookPacer) NextFrame(ctx context.Context) error { return p.wait(ctx) }

func (p *hookPacer) Sleep(ctx context.Context, _ time.Duration) error { return p.wait(ctx) }

func (p *hookPacer) wait(ctx context.Context) error {
	p.waits++
	if p.onWait != nil {
		p.onWait(p.waits)
	}
	return ctx.Err()
}

type fixture struct {
	win    *dom.Window
	clock  *fakeClock
	rec    *domrec.Recorder
	store  *persistence.ActionStore
	prefs  *memory.Settings
	pacer  *hookPacer
	clicks *[]float64
}

func setup(t *testing.T, prefs map[string]string, opts ...domrec.Option) *fixture {
	t.Helper()
	clock := &fakeClock{now: 1000}
	win, err := dom.ParseHTMLString(page, dom.WithClock(clock))
	require.NoError(t, err)

	f := &fixture{
		win:   win,
		clock: clock,
		store: persistence.NewActionStore(memory.NewStore()),
		prefs: memory.NewSettings(prefs),
		pacer: &hookPacer{},
	}
	base := []domrec.Option{
		domrec.WithStore(f.store),
		domrec.WithSettingsStore(f.prefs),
		domrec.WithPacer(f.pacer),
		domrec.WithOwnRoot(win.Document().GetElementByID("recorder")),
	}
	f.rec, err = domrec.New(win, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.rec.Close() })

	var clicks []float64
	win.Document().GetElementByID("go").AddEventListener("click", dom.ListenerFunc(func(e *dom.Event) {
		clicks = append(clicks, e.TimeStamp)
	}), dom.ListenerOptions{})
	f.clicks = &clicks
	return f
}

func (f *fixture) click(id string) {
	e := f.win.NewEvent(domain.KindPointer, "click", dom.EventInit{Bubbles: true, Composed: true, Cancelable: true})
	f.win.Document().GetElementByID(id).Fire(e)
}

func script(f *fixture, timestamps ...float64) []domain.Action {
	sel := f.recordOne()
	actions := make([]domain.Action, len(timestamps))
	for i, ts := range timestamps {
		actions[i] = domain.Action{
			Selectors: sel,
			Event: domain.SavedEvent{
				Kind: domain.KindPointer, Type: "click", TimeStamp: ts,
				Bubbles: true, Composed: true, Cancelable: true,
			},
		}
	}
	return actions
}

// recordOne captures a single click on #go and returns its selectors.
func (f *fixture) recordOne() []string {
	_ = f.rec.StartRecording()
	f.click("go")
	f.rec.StopRecording()
	actions := f.rec.Actions()
	*f.clicks = nil
	if len(actions) == 0 {
		return nil
	}
	return actions[0].Selectors
}

func TestRecorder_RecordAndStatus(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.rec.StartRecording())
	assert.True(t, f.rec.Recording())
	f.click("go")
	f.clock.advance(10)
	f.click("go")
	f.rec.StopRecording()

	assert.False(t, f.rec.Recording())
	assert.True(t, f.rec.Unsaved())
	actions := f.rec.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "click", actions[0].Event.Type)
	assert.Equal(t, "2 actions, 0 skipped", f.rec.Status())
	assert.NotEmpty(t, f.rec.Snapshot().SessionID)
}

func TestRecorder_FiltersCountSkipped(t *testing.T) {
	f := setup(t, map[string]string{settings.KeyEventTypes: "pointermove"})

	require.NoError(t, f.rec.StartRecording())
	f.click("go")
	f.rec.StopRecording()

	assert.Empty(t, f.rec.Actions())
	assert.Equal(t, "0 actions, 1 skipped", f.rec.Status())
}

func TestRecorder_OwnRootIsNotRecorded(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.rec.StartRecording())
	f.click("rec")
	f.rec.StopRecording()

	assert.Empty(t, f.rec.Actions())
	assert.Equal(t, "0 actions, 0 skipped", f.rec.Status())
}

func TestRecorder_OwnRootFollowsPageChanges(t *testing.T) {
	win, err := dom.ParseHTMLString(`<html><body><div id="recorder"><button id="rec">rec</button></div></body></html>`)
	require.NoError(t, err)
	rec, err := domrec.New(win, domrec.WithOwnRoot(win.Document().GetElementByID("recorder")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	// a sibling changes how #recorder is addressed
	body := win.Document().Body()
	body.AppendChild(win.Document().CreateElement("div"))

	require.NoError(t, rec.StartRecording())
	e := win.NewEvent(domain.KindPointer, "click", dom.EventInit{Bubbles: true, Composed: true, Cancelable: true})
	win.Document().GetElementByID("rec").Fire(e)
	rec.StopRecording()

	assert.Empty(t, rec.Actions())
}

func TestRecorder_EmptyScriptLoopReturns(t *testing.T) {
	f := setup(t, map[string]string{settings.KeyLoop: "true"}, domrec.WithPacer(replay.InstantPacer{}))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- f.rec.StartReplaying(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		f.rec.StopReplaying()
		t.Fatal("replay of an empty script did not return")
	}
	assert.False(t, f.rec.Replaying())
	assert.Empty(t, *f.clicks)
}

func TestRecorder_LoopHonoursContext(t *testing.T) {
	f := setup(t, map[string]string{settings.KeyLoop: "true"})
	f.rec.Session().Load(script(f, 0, 1000))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.pacer.onWait = func(n int) {
		if n == 1 {
			cancel()
		}
	}
	err := f.rec.StartReplaying(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, *f.clicks, 1)
	assert.False(t, f.rec.Replaying())
}

func TestRecorder_ReplayDispatchesScript(t *testing.T) {
	var statuses []string
	f := setup(t, nil, domrec.WithOnStatus(func(s string) { statuses = append(statuses, s) }))
	f.rec.Session().Load(script(f, 0, 1000))

	require.NoError(t, f.rec.StartReplaying(context.Background()))

	assert.Len(t, *f.clicks, 2)
	assert.False(t, f.rec.Replaying())
	assert.Contains(t, statuses, "2 remaining (0 skipped, 2 total)")
	assert.Contains(t, statuses, "0 remaining (0 skipped, 2 total)")
	assert.Equal(t, "2 actions, 0 skipped", f.rec.Status())
}

func TestRecorder_ReplayStopsRecording(t *testing.T) {
	f := setup(t, nil)
	actions := script(f, 0)
	require.NoError(t, f.rec.StartRecording())
	f.rec.Session().Load(actions)

	require.NoError(t, f.rec.StartReplaying(context.Background()))
	assert.False(t, f.rec.Recording())
}

func TestRecorder_RecordingRefusedWhileReplaying(t *testing.T) {
	f := setup(t, nil)
	f.rec.Session().Load(script(f, 0, 1000))

	var startErr error
	f.pacer.onWait = func(int) { startErr = f.rec.StartRecording() }
	require.NoError(t, f.rec.StartReplaying(context.Background()))

	assert.ErrorIs(t, startErr, domain.ErrReplaying)
	assert.NoError(t, f.rec.ReplayAction(context.Background(), 0))
}

func TestRecorder_LoopUntilStopped(t *testing.T) {
	f := setup(t, map[string]string{settings.KeyLoop: "true"})
	f.rec.Session().Load(script(f, 0, 1000))

	f.pacer.onWait = func(n int) {
		if n == 3 {
			f.rec.StopReplaying()
		}
	}
	require.NoError(t, f.rec.StartReplaying(context.Background()))

	// three passes started; the third is aborted while waiting for its second action
	assert.Len(t, *f.clicks, 5)
	assert.False(t, f.rec.Replaying())
}

func TestRecorder_OwnRootActivityAbortsReplay(t *testing.T) {
	f := setup(t, map[string]string{settings.KeyLoop: "true"})
	f.rec.Session().Load(script(f, 0, 1000, 2000))

	f.pacer.onWait = func(int) { f.click("rec") }
	require.NoError(t, f.rec.StartReplaying(context.Background()))

	assert.Len(t, *f.clicks, 1)
	snap := f.rec.Snapshot()
	assert.False(t, snap.Replaying)
	assert.False(t, snap.AutoplayPending)
}

func TestRecorder_ReplayAction(t *testing.T) {
	f := setup(t, nil)
	f.rec.Session().Load(script(f, 0, 1000))

	require.NoError(t, f.rec.ReplayAction(context.Background(), 1))
	assert.Len(t, *f.clicks, 1)
	assert.ErrorIs(t, f.rec.ReplayAction(context.Background(), 5), domain.ErrIndexOutOfRange)
}

func TestRecorder_UnresolvableActionsAreSkipped(t *testing.T) {
	f := setup(t, nil)
	actions := script(f, 0, 1000)
	actions[0].Selectors = []string{"html > body > nav"}
	f.rec.Session().Load(actions)

	require.NoError(t, f.rec.StartReplaying(context.Background()))
	assert.Len(t, *f.clicks, 1)
	assert.Equal(t, []int{0}, f.rec.Snapshot().SkippedIndexes)
	assert.Equal(t, []int{0}, f.rec.LastReport().SkippedIndexes)
	assert.Equal(t, 1, f.rec.LastReport().Replayed)
	assert.Equal(t, "2 actions, 1 skipped", f.rec.Status())
}

func TestRecorder_PostAndGetActions(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil)

	require.NoError(t, f.rec.StartRecording())
	f.click("go")
	require.NoError(t, f.rec.PostActions(ctx))
	assert.False(t, f.rec.Recording(), "posting stops recording")
	assert.False(t, f.rec.Unsaved())

	stored, err := f.store.Load(ctx, domain.ActionsKey)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	f.rec.Session().Load(nil)
	require.NoError(t, f.rec.GetActions(ctx))
	assert.Len(t, f.rec.Actions(), 1)
}

type failingStore struct{}

func (failingStore) Load(context.Context, string) ([]domain.Action, error) {
	return nil, domain.ErrActionsNotFound
}

func (failingStore) Save(context.Context, string, []domain.Action) error {
	return errors.New("store unavailable")
}

func TestRecorder_FailingStoreKeepsUnsaved(t *testing.T) {
	ctx := context.Background()
	f := setup(t, nil, domrec.WithStore(failingStore{}))

	require.NoError(t, f.rec.StartRecording())
	f.click("go")
	assert.Error(t, f.rec.PostActions(ctx))
	assert.True(t, f.rec.Unsaved())

	assert.ErrorIs(t, f.rec.GetActions(ctx), domain.ErrActionsNotFound)
	assert.Len(t, f.rec.Actions(), 1, "a failed fetch keeps the current script")
}

func TestRecorder_ReplayServerFallsBackToCurrentScript(t *testing.T) {
	f := setup(t, nil, domrec.WithStore(failingStore{}))
	f.rec.Session().Load(script(f, 0))

	require.NoError(t, f.rec.ReplayServer(context.Background()))
	assert.Len(t, *f.clicks, 1)
}

func TestRecorder_MaybeAutoplay(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		f := setup(t, nil)
		f.rec.Session().Load(script(f, 0))
		ran, err := f.rec.MaybeAutoplay(ctx)
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("empty script", func(t *testing.T) {
		f := setup(t, map[string]string{settings.KeyAutoplay: "true"})
		ran, err := f.rec.MaybeAutoplay(ctx)
		require.NoError(t, err)
		assert.False(t, ran)
	})

	t.Run("replays once idle", func(t *testing.T) {
		var f *fixture
		f = setup(t, map[string]string{settings.KeyAutoplay: "true"},
			domrec.WithIdleOptions(idle.WithSleep(func(context.Context, time.Duration) error {
				f.clock.advance(50)
				return nil
			})))
		f.rec.Session().Load(script(f, 0))
		f.click("go")
		*f.clicks = nil

		ran, err := f.rec.MaybeAutoplay(ctx)
		require.NoError(t, err)
		assert.True(t, ran)
		assert.Len(t, *f.clicks, 1)
		assert.False(t, f.rec.AutoplayPending())
	})

	t.Run("cancelled by own root", func(t *testing.T) {
		var f *fixture
		f = setup(t, map[string]string{settings.KeyAutoplay: "true"},
			domrec.WithIdleOptions(idle.WithSleep(func(context.Context, time.Duration) error {
				f.click("rec")
				f.clock.advance(100)
				return nil
			})))
		f.rec.Session().Load(script(f, 0))
		f.click("go")
		*f.clicks = nil

		ran, err := f.rec.MaybeAutoplay(ctx)
		require.NoError(t, err)
		assert.False(t, ran)
		assert.Empty(t, *f.clicks)
	})
}

func TestRecorder_FiltersArePersisted(t *testing.T) {
	f := setup(t, nil)

	require.NoError(t, f.rec.SelectAll("keyboard"))
	raw, ok, err := f.prefs.Get(settings.KeyEventTypes)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, strings.Split(raw, ","), "keyup")

	require.NoError(t, f.rec.DeselectAll("pointer"))
	raw, _, _ = f.prefs.Get(settings.KeyEventTypes)
	assert.NotContains(t, strings.Split(raw, ","), "pointermove")

	require.NoError(t, f.rec.SetLoop(true))
	assert.True(t, f.rec.Settings().Loop)
}

func TestRecorder_ReloadSettings(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.prefs.Set(settings.KeyEventTypes, "keydown"))
	require.NoError(t, f.rec.ReloadSettings())

	require.NoError(t, f.rec.StartRecording())
	f.click("go")
	f.rec.StopRecording()
	assert.Empty(t, f.rec.Actions())
}

func TestRecorder_Metrics(t *testing.T) {
	m := observability.NewMetrics()
	f := setup(t, nil, domrec.WithMetrics(m))

	require.NoError(t, f.rec.StartRecording())
	f.click("go")
	f.rec.StopRecording()
	require.NoError(t, f.rec.StartReplaying(context.Background()))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestActionLines(t *testing.T) {
	actions := []domain.Action{
		{Selectors: []string{"html > body > div#app", "button:nth-child(2)"}, Event: domain.SavedEvent{Type: "click", TimeStamp: 100.7}},
		{Selectors: []string{"window"}, Event: domain.SavedEvent{Type: "keydown", TimeStamp: 350.2}},
	}
	assert.Equal(t, []string{
		"0 click button:nth-child(2)",
		"250 keydown window",
	}, domrec.ActionLines(actions))
	assert.Nil(t, domrec.ActionLines(nil))

	details := domrec.ActionDetails(actions[0])
	assert.True(t, strings.HasPrefix(details, "\nhtml > body > div#app\n > button:nth-child(2)\n{"))
	assert.Contains(t, details, `"type": "click"`)
}
