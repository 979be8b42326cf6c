package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/gesture"
	"github.com/flickwm/flick/internal/scene"
	"github.com/flickwm/flick/internal/shell"
)

type fixture struct {
	backend  *backend.Headless
	renderer *backend.RecordingRenderer
	shell    *shell.Shell
	manager  *Manager
	clock    time.Time
}

func newFixture(t *testing.T, startView shell.View) *fixture {
	t.Helper()
	f := &fixture{
		backend:  backend.NewHeadless(),
		renderer: backend.NewRecordingRenderer(),
		clock:    time.Unix(1000, 0),
	}
	f.shell = shell.New(startView, 200, shell.Hooks{})

	tree := scene.NewTree()
	bg := tree.NewRect(0, 0, backend.Color{})
	f.manager = NewManager(f.renderer, tree, bg, f.shell, 3, nil)
	f.manager.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) addOutput(name string) *backend.HeadlessOutput {
	out := f.backend.AddOutput(name, 1080, 2340)
	f.backend.Start()
	f.manager.HandleNewOutput(out)
	return out
}

func (f *fixture) tick(out *backend.HeadlessOutput, dt time.Duration) {
	f.clock = f.clock.Add(dt)
	out.TickFrame()
}

func TestNewOutputCommitsPreferredMode(t *testing.T) {
	f := newFixture(t, shell.ViewHome)
	out := f.addOutput("HEADLESS-1")

	require.NotEmpty(t, out.Commits)
	first := out.Commits[0]
	require.NotNil(t, first.Mode)
	assert.Equal(t, 1080, first.Mode.Width)
	require.NotNil(t, first.Enabled)
	assert.True(t, *first.Enabled)
	assert.Positive(t, out.ScheduledFrames, "a first frame must be scheduled")
}

func TestWarmupFramesProduceNoCommits(t *testing.T) {
	f := newFixture(t, shell.ViewHome)
	out := f.addOutput("HEADLESS-1")
	modeCommits := len(out.Commits)

	for i := 0; i < 3; i++ {
		f.tick(out, 16*time.Millisecond)
	}

	assert.Len(t, out.Commits, modeCommits, "warmup frames must not commit")
	assert.Empty(t, f.renderer.Passes)
	assert.Empty(t, out.FrameDone, "frame done waits for real frames")

	// Each warmup frame schedules the next
	assert.GreaterOrEqual(t, out.ScheduledFrames, 4)

	f.tick(out, 16*time.Millisecond)
	assert.Len(t, out.Commits, modeCommits+1, "fourth frame renders")
	assert.Len(t, out.FrameDone, 1)
	assert.Equal(t, uint32(1), f.manager.TotalFrames())
}

func warmUp(f *fixture, out *backend.HeadlessOutput) {
	for i := 0; i < 3; i++ {
		f.tick(out, 16*time.Millisecond)
	}
}

func TestScenePathRendersBackground(t *testing.T) {
	f := newFixture(t, shell.ViewHome)
	out := f.addOutput("HEADLESS-1")
	warmUp(f, out)

	f.tick(out, 16*time.Millisecond)

	require.Len(t, f.renderer.Passes, 1)
	pass := f.renderer.Passes[0]
	require.Len(t, pass.Rects, 1)
	// Home background
	assert.InDelta(t, 0.1, pass.Rects[0].Color.R, 1e-9)
	assert.InDelta(t, 0.2, pass.Rects[0].Color.G, 1e-9)
	assert.InDelta(t, 0.8, pass.Rects[0].Color.B, 1e-9)
	assert.Equal(t, backend.Box{Width: 1080, Height: 2340}, pass.Rects[0].Box)
}

func TestManualPathForHwcomposerOutputs(t *testing.T) {
	f := newFixture(t, shell.ViewApp)
	out := f.addOutput("HWCOMPOSER-1")
	warmUp(f, out)

	f.tick(out, 16*time.Millisecond)

	require.Len(t, f.renderer.Passes, 1)
	pass := f.renderer.Passes[0]
	assert.NotNil(t, pass.Output, "manual path binds the output to the pass")
	require.Len(t, pass.Rects, 1)
	// App background is black
	assert.Equal(t, backend.Color{A: 1}, pass.Rects[0].Color)

	committed := out.Commits[len(out.Commits)-1]
	assert.NotNil(t, committed.Buffer)
	require.NotNil(t, committed.Damage)
	assert.Equal(t, backend.Box{Width: 1080, Height: 2340}, *committed.Damage)
}

func TestTransitionKeepsFramesScheduled(t *testing.T) {
	f := newFixture(t, shell.ViewApp)
	out := f.addOutput("HEADLESS-1")
	warmUp(f, out)

	f.shell.HandleGesture(gesture.Event{Type: gesture.EventEdgeSwipeStart, Edge: gesture.EdgeBottom})
	require.True(t, f.shell.IsTransitioning())

	before := out.ScheduledFrames
	f.tick(out, 16*time.Millisecond)
	assert.Greater(t, out.ScheduledFrames, before, "animation needs the next frame")
}

func TestFrameDeltaDrivesShellUpdate(t *testing.T) {
	f := newFixture(t, shell.ViewApp)
	out := f.addOutput("HEADLESS-1")
	warmUp(f, out)
	f.tick(out, 16*time.Millisecond)

	// Enter the time-driven animation phase directly
	f.shell.GoToView(shell.ViewApp)
	f.shell.HandleGesture(gesture.Event{Type: gesture.EventEdgeSwipeStart, Edge: gesture.EdgeBottom})

	// A swipe left unfinished stays at its progress; frames keep
	// rendering the blended color.
	f.shell.HandleGesture(gesture.Event{Type: gesture.EventEdgeSwipeUpdate, Edge: gesture.EdgeBottom, Progress: 0.5})
	f.tick(out, 16*time.Millisecond)

	last := f.renderer.Passes[len(f.renderer.Passes)-1]
	require.Len(t, last.Rects, 1)
	// Halfway between App black and Home blue
	assert.InDelta(t, 0.05, last.Rects[0].Color.R, 1e-9)
	assert.InDelta(t, 0.4, last.Rects[0].Color.B, 1e-9)
}

func TestOnSizeNotification(t *testing.T) {
	f := newFixture(t, shell.ViewHome)

	var w, h int
	f.manager.onSize = func(nw, nh int) { w, h = nw, nh }
	f.addOutput("HEADLESS-1")

	assert.Equal(t, 1080, w)
	assert.Equal(t, 2340, h)
	pw, ph := f.manager.PrimarySize()
	assert.Equal(t, 1080, pw)
	assert.Equal(t, 2340, ph)
}

func TestOutputRemoval(t *testing.T) {
	f := newFixture(t, shell.ViewHome)
	out := f.addOutput("HEADLESS-1")

	out.Remove()
	w, h := f.manager.PrimarySize()
	assert.Zero(t, w)
	assert.Zero(t, h)

	// Frames after removal are ignored
	frames := f.manager.TotalFrames()
	out.TickFrame()
	assert.Equal(t, frames, f.manager.TotalFrames())
}
