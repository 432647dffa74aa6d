package controller_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyattjouan/stagehand/internal/controller"
	"github.com/wyattjouan/stagehand/pkg/cloud"
	"github.com/wyattjouan/stagehand/pkg/domain"
	"github.com/wyattjouan/stagehand/pkg/events"
	"github.com/wyattjouan/stagehand/pkg/stage"
)

const legacyPayload = `{"objName":"Stage","info":{"projectName":"Pong"},"variables":[{"name":"☁hs","value":0}],"children":[]}`

// recorder captures bus traffic so tests can assert on ordering.
type recorder struct {
	mu     sync.Mutex
	labels []string
	errs   []error
}

func (r *recorder) add(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels = append(r.labels, label)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.labels))
	copy(out, r.labels)
	return out
}

func (r *recorder) errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}

func record(bus *events.Bus) *recorder {
	rec := &recorder{}
	bus.LoadStarted.Subscribe(func(string) { rec.add("load_started") })
	bus.Progress.Subscribe(func(float64) { rec.add("progress") })
	bus.SessionAttached.Subscribe(func(*domain.Session) { rec.add("attached") })
	bus.SessionDetached.Subscribe(func(*domain.Session) { rec.add("detached") })
	bus.Resumed.Subscribe(func(struct{}) { rec.add("resumed") })
	bus.Paused.Subscribe(func(struct{}) { rec.add("paused") })
	bus.Error.Subscribe(func(err error) {
		rec.add("error")
		rec.mu.Lock()
		rec.errs = append(rec.errs, err)
		rec.mu.Unlock()
	})
	return rec
}

func newController(opts domain.Options) (*controller.Controller, *recorder) {
	bus := events.NewBus(nil)
	rec := record(bus)
	c := controller.New(controller.Config{
		Bus:     bus,
		Factory: stage.Factory,
		Options: opts,
	})
	return c, rec
}

func TestLoadFromBuffer_EventOrdering(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())

	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassUnknown)

	got := rec.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, "load_started", got[0])
	assert.Equal(t, "attached", got[len(got)-1])
	assert.NotContains(t, got, "error")

	sess := c.Session()
	require.NotNil(t, sess)
	assert.False(t, sess.Running(), "manual autoplay must leave the session paused")
}

func TestLoadFromBuffer_AutoplayAlways(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.Autoplay = domain.AutoplayAlways
	c, rec := newController(opts)

	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	sess := c.Session()
	require.NotNil(t, sess)
	assert.True(t, sess.Running())
	assert.Contains(t, rec.snapshot(), "resumed")
}

func TestLoadFromFile_ExtensionAuthoritative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"name":"Stage","isStage":true}]}`), 0o644))

	c, rec := newController(domain.DefaultOptions())
	c.LoadFromFile(context.Background(), path)

	require.NotNil(t, c.Session())
	assert.NotContains(t, rec.snapshot(), "error")
	assert.Equal(t, path, c.Session().SourceID)
}

func TestLoadFromFile_UnrecognizedExtension(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())
	c.LoadFromFile(context.Background(), "game.exe")

	errs := rec.errors()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], domain.ErrUnrecognizedExtension)

	var loadErr *domain.LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, "detect", loadErr.Phase)
	assert.Nil(t, c.Session())
}

func TestLoad_LegacyUnsupportedFormat(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())
	c.LoadFromBuffer(context.Background(), []byte("ScratchV0 blob"), domain.ClassUnknown)

	errs := rec.errors()
	require.Len(t, errs, 1)
	var notSupported *domain.ProjectNotSupportedError
	assert.ErrorAs(t, errs[0], &notSupported)
	assert.Nil(t, c.Session())
}

type stubSource struct {
	payload []byte
	err     error
}

func (s *stubSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	return s.payload, s.err
}

type stubCloudLog struct {
	entries []domain.CloudEntry
}

func (s *stubCloudLog) RecentEntries(ctx context.Context, id string, limit int) ([]domain.CloudEntry, error) {
	return s.entries, nil
}

func TestLoadByID_NotFoundPassedThrough(t *testing.T) {
	bus := events.NewBus(nil)
	rec := record(bus)
	c := controller.New(controller.Config{
		Bus:     bus,
		Source:  &stubSource{err: &domain.ProjectNotFoundError{ID: "42"}},
		Factory: stage.Factory,
		Options: domain.DefaultOptions(),
	})

	c.LoadByID(context.Background(), "42")

	errs := rec.errors()
	require.Len(t, errs, 1)
	var notFound *domain.ProjectNotFoundError
	require.ErrorAs(t, errs[0], &notFound)
	assert.Equal(t, "42", notFound.ID)
}

func TestLoadByID_ReplaysCloudLog(t *testing.T) {
	bus := events.NewBus(nil)
	c := controller.New(controller.Config{
		Bus:    bus,
		Source: &stubSource{payload: []byte(legacyPayload)},
		Cloud: cloud.NewReplayer(&stubCloudLog{entries: []domain.CloudEntry{
			{Verb: domain.CloudSet, Name: "☁hs", Value: 99},
		}}),
		Factory: stage.Factory,
		Options: domain.DefaultOptions(),
	})

	c.LoadByID(context.Background(), "42")

	sess := c.Session()
	require.NotNil(t, sess)
	assert.Equal(t, 99, sess.Stage.Variables()["☁hs"])
}

func TestLoadFromBuffer_NoReplayWithoutRemoteID(t *testing.T) {
	bus := events.NewBus(nil)
	c := controller.New(controller.Config{
		Bus: bus,
		Cloud: cloud.NewReplayer(&stubCloudLog{entries: []domain.CloudEntry{
			{Verb: domain.CloudSet, Name: "☁hs", Value: 99},
		}}),
		Factory: stage.Factory,
		Options: domain.DefaultOptions(),
	})

	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	sess := c.Session()
	require.NotNil(t, sess)
	assert.Equal(t, float64(0), toFloat(sess.Stage.Variables()["☁hs"]))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return -1
	}
}

// scriptedFactory hands out canned behaviors call by call so tests can hold a
// load open across a competing load.
type scriptedFactory struct {
	mu    sync.Mutex
	calls int

	entered chan struct{} // closed when the first call starts
	release chan struct{} // first call blocks until this closes
	firstErr error

	stages []*stage.Headless
}

func (f *scriptedFactory) factory(ctx context.Context, project *domain.Project, opts domain.Options) (domain.Stage, error) {
	f.mu.Lock()
	f.calls++
	first := f.calls == 1
	f.mu.Unlock()

	if first {
		close(f.entered)
		<-f.release
		if f.firstErr != nil {
			return nil, f.firstErr
		}
	}

	h := stage.NewHeadless(project)
	f.mu.Lock()
	f.stages = append(f.stages, h)
	f.mu.Unlock()
	return h, nil
}

func TestLoad_LastLoadWins(t *testing.T) {
	script := &scriptedFactory{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	bus := events.NewBus(nil)
	rec := record(bus)
	c := controller.New(controller.Config{
		Bus:     bus,
		Factory: script.factory,
		Options: domain.DefaultOptions(),
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)
	}()
	<-script.entered

	// A second load supersedes the one stuck in its factory.
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)
	winner := c.Session()
	require.NotNil(t, winner)

	close(script.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first load did not finish")
	}

	// The stale result never attached; its stage was torn down. The winner's
	// factory call completed first, so it occupies index 0.
	assert.Same(t, winner, c.Session())
	require.Len(t, script.stages, 2)
	assert.True(t, script.stages[1].Destroyed(), "stale stage must be destroyed")
	assert.False(t, script.stages[0].Destroyed())

	attached := 0
	for _, l := range rec.snapshot() {
		if l == "attached" {
			attached++
		}
	}
	assert.Equal(t, 1, attached, "only the winning load attaches")
}

func TestLoad_SupersededFailureIsSwallowed(t *testing.T) {
	script := &scriptedFactory{
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
		firstErr: errors.New("renderer exploded"),
	}
	bus := events.NewBus(nil)
	rec := record(bus)
	c := controller.New(controller.Config{
		Bus:     bus,
		Factory: script.factory,
		Options: domain.DefaultOptions(),
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)
	}()
	<-script.entered

	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)
	close(script.release)
	<-done

	assert.Empty(t, rec.errors(), "failures of superseded loads never surface")
	assert.NotNil(t, c.Session())
}

func TestLoad_CancelledParentContextIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	factory := func(ctx context.Context, project *domain.Project, opts domain.Options) (domain.Stage, error) {
		return nil, ctx.Err()
	}
	bus := events.NewBus(nil)
	rec := record(bus)
	c := controller.New(controller.Config{
		Bus:     bus,
		Factory: factory,
		Options: domain.DefaultOptions(),
	})

	c.LoadFromBuffer(ctx, []byte(legacyPayload), domain.ClassLegacyJSON)

	assert.Empty(t, rec.errors(), "cancellation is not an error")
	assert.Nil(t, c.Session())
}

func TestLifecycle_NoSession(t *testing.T) {
	c, _ := newController(domain.DefaultOptions())

	assert.ErrorIs(t, c.Resume(), domain.ErrNoSession)
	assert.ErrorIs(t, c.Pause(), domain.ErrNoSession)
	assert.ErrorIs(t, c.StopAll(), domain.ErrNoSession)
	assert.ErrorIs(t, c.TriggerGreenFlag(), domain.ErrNoSession)
	assert.ErrorIs(t, c.ToggleRunning(), domain.ErrNoSession)
}

func TestLifecycle_ResumePauseStates(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	assert.ErrorIs(t, c.Pause(), domain.ErrAlreadyPaused)
	require.NoError(t, c.Resume())
	assert.ErrorIs(t, c.Resume(), domain.ErrAlreadyRunning)
	require.NoError(t, c.Pause())

	got := rec.snapshot()
	assert.Contains(t, got, "resumed")
	assert.Contains(t, got, "paused")
}

func TestLifecycle_GreenFlagResumesFirst(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	require.NoError(t, c.TriggerGreenFlag())

	sess := c.Session()
	assert.True(t, sess.Running(), "green flag never leaves the session paused")
	assert.Contains(t, rec.snapshot(), "resumed")

	h := sess.Stage.(*stage.Headless)
	assert.Equal(t, 1, h.GreenFlags())
}

func TestLifecycle_Toggle(t *testing.T) {
	c, _ := newController(domain.DefaultOptions())
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	require.NoError(t, c.ToggleRunning())
	assert.True(t, c.Session().Running())
	require.NoError(t, c.ToggleRunning())
	assert.False(t, c.Session().Running())
}

func TestDetach(t *testing.T) {
	c, rec := newController(domain.DefaultOptions())
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	sess := c.Session()
	require.NotNil(t, sess)
	c.Detach()

	assert.Nil(t, c.Session())
	assert.True(t, sess.Stage.(*stage.Headless).Destroyed())
	assert.Contains(t, rec.snapshot(), "detached")
}

func TestSetOptions_EmitsChangedFieldsOnly(t *testing.T) {
	bus := events.NewBus(nil)
	c := controller.New(controller.Config{
		Bus:     bus,
		Factory: stage.Factory,
		Options: domain.DefaultOptions(),
	})

	var patches []domain.Patch
	var themes []string
	bus.OptionsChanged.Subscribe(func(p domain.Patch) { patches = append(patches, p) })
	bus.ThemeChanged.Subscribe(func(theme string) { themes = append(themes, theme) })

	theme := "dark"
	turbo := false // already the default, must not register as a change
	next := c.SetOptions(domain.Patch{Theme: &theme, Turbo: &turbo})

	assert.Equal(t, "dark", next.Theme)
	require.Len(t, patches, 1)
	assert.NotNil(t, patches[0].Theme)
	assert.Nil(t, patches[0].Turbo)
	assert.Equal(t, []string{"dark"}, themes)

	// A no-op patch emits nothing.
	c.SetOptions(domain.Patch{Theme: &theme})
	assert.Len(t, patches, 1)
}

func TestFullscreen_ThemeForceAndRestore(t *testing.T) {
	c, _ := newController(domain.DefaultOptions())

	require.Equal(t, "light", c.Options().Theme)

	geo := c.EnterFullscreen(1920, 1080)
	assert.True(t, c.Fullscreen())
	assert.Equal(t, "dark", c.Options().Theme)
	assert.Equal(t, geo.Width*3, geo.Height*4)

	c.ExitFullscreen()
	assert.False(t, c.Fullscreen())
	assert.Equal(t, "light", c.Options().Theme)
}

func TestFullscreen_IgnoresPaddingAndCap(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.MaxWidth = 480
	c, _ := newController(opts)

	windowed := c.Resize(1920, 1080)
	assert.Equal(t, 480, windowed.Width)

	full := c.EnterFullscreen(1920, 1080)
	assert.Greater(t, full.Width, windowed.Width)
}

func TestFullscreen_SyncWithPlatform(t *testing.T) {
	c, _ := newController(domain.DefaultOptions())

	c.EnterFullscreen(1280, 720)
	c.SyncFullscreen(true)
	assert.True(t, c.Fullscreen())

	c.SyncFullscreen(false)
	assert.False(t, c.Fullscreen())
	assert.Equal(t, "light", c.Options().Theme)
}

func TestResize_PushesZoomToStage(t *testing.T) {
	opts := domain.DefaultOptions()
	opts.Padding = 0
	c, _ := newController(opts)
	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)

	geo := c.Resize(960, 720)
	assert.Equal(t, float64(2), geo.Scale)

	h := c.Session().Stage.(*stage.Headless)
	assert.Equal(t, float64(2), h.Zoom())
}

func TestString_StatusLine(t *testing.T) {
	c, _ := newController(domain.DefaultOptions())
	assert.Equal(t, "no session", c.String())

	c.LoadFromBuffer(context.Background(), []byte(legacyPayload), domain.ClassLegacyJSON)
	assert.Contains(t, c.String(), "paused")

	require.NoError(t, c.Resume())
	assert.Contains(t, c.String(), "running")
}
