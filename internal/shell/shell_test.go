package shell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flickwm/flick/internal/gesture"
)

func swipeStart(edge gesture.Edge) gesture.Event {
	return gesture.Event{Type: gesture.EventEdgeSwipeStart, Edge: edge, Fingers: 1}
}

func swipeUpdate(edge gesture.Edge, progress float64) gesture.Event {
	return gesture.Event{Type: gesture.EventEdgeSwipeUpdate, Edge: edge, Progress: progress}
}

func swipeEnd(edge gesture.Edge, completed bool) gesture.Event {
	return gesture.Event{Type: gesture.EventEdgeSwipeEnd, Edge: edge, Completed: completed}
}

func TestTransitionTargets(t *testing.T) {
	tests := []struct {
		name string
		from View
		edge gesture.Edge
		want View
	}{
		{"app bottom goes home", ViewApp, gesture.EdgeBottom, ViewHome},
		{"app top goes home", ViewApp, gesture.EdgeTop, ViewHome},
		{"app left opens quick settings", ViewApp, gesture.EdgeLeft, ViewQuickSettings},
		{"app right opens switcher", ViewApp, gesture.EdgeRight, ViewAppSwitcher},
		{"home left opens quick settings", ViewHome, gesture.EdgeLeft, ViewQuickSettings},
		{"home right opens switcher", ViewHome, gesture.EdgeRight, ViewAppSwitcher},
		{"home bottom stays", ViewHome, gesture.EdgeBottom, ViewHome},
		{"quick settings right goes home", ViewQuickSettings, gesture.EdgeRight, ViewHome},
		{"quick settings bottom goes home", ViewQuickSettings, gesture.EdgeBottom, ViewHome},
		{"switcher left goes home", ViewAppSwitcher, gesture.EdgeLeft, ViewHome},
		{"switcher bottom goes home", ViewAppSwitcher, gesture.EdgeBottom, ViewHome},
		{"lock ignores bottom", ViewLock, gesture.EdgeBottom, ViewLock},
		{"lock ignores left", ViewLock, gesture.EdgeLeft, ViewLock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, transitionTarget(tt.from, tt.edge))
		})
	}
}

func TestCompletedSwipeChangesView(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	assert.True(t, s.IsTransitioning())
	assert.Equal(t, ViewApp, s.CurrentView())

	require.True(t, s.HandleGesture(swipeUpdate(gesture.EdgeBottom, 0.6)))
	assert.InDelta(t, 0.6, s.TransitionProgress(), 0.001)

	require.True(t, s.HandleGesture(swipeEnd(gesture.EdgeBottom, true)))
	assert.Equal(t, ViewHome, s.CurrentView())
	assert.False(t, s.IsTransitioning())
}

func TestCancelledSwipeKeepsView(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	require.True(t, s.HandleGesture(swipeUpdate(gesture.EdgeBottom, 0.3)))
	require.True(t, s.HandleGesture(swipeEnd(gesture.EdgeBottom, false)))

	assert.Equal(t, ViewApp, s.CurrentView())
	assert.False(t, s.IsTransitioning())
	assert.Zero(t, s.TransitionProgress())
}

func TestSwipeToSameViewStartsNothing(t *testing.T) {
	s := New(ViewHome, 200, Hooks{})

	assert.False(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	assert.False(t, s.IsTransitioning())
}

func TestLockIgnoresGestures(t *testing.T) {
	s := New(ViewLock, 200, Hooks{})

	for _, edge := range []gesture.Edge{gesture.EdgeLeft, gesture.EdgeRight, gesture.EdgeTop, gesture.EdgeBottom} {
		assert.False(t, s.HandleGesture(swipeStart(edge)), "edge %s", edge)
	}
	assert.Equal(t, ViewLock, s.CurrentView())
}

func TestUnlockLeavesLockScreen(t *testing.T) {
	s := New(ViewLock, 200, Hooks{})

	s.Unlock()
	assert.Equal(t, ViewHome, s.CurrentView())

	// Unlock is a no-op outside the lock screen
	s.GoToView(ViewApp)
	s.Unlock()
	assert.Equal(t, ViewApp, s.CurrentView())
}

func TestUpdatesFromOtherEdgeIgnored(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	assert.False(t, s.HandleGesture(swipeUpdate(gesture.EdgeLeft, 0.9)))
	assert.Zero(t, s.TransitionProgress())

	assert.False(t, s.HandleGesture(swipeEnd(gesture.EdgeLeft, true)))
	assert.Equal(t, ViewApp, s.CurrentView())
	assert.True(t, s.IsTransitioning())
}

func TestProgressClampedToOne(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	require.True(t, s.HandleGesture(swipeUpdate(gesture.EdgeBottom, 1.7)))
	assert.Equal(t, 1.0, s.TransitionProgress())
}

func TestTapNotHandled(t *testing.T) {
	s := New(ViewHome, 200, Hooks{})
	assert.False(t, s.HandleGesture(gesture.Event{Type: gesture.EventTap, X: 100, Y: 200}))
}

func TestHandleActionGoHome(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})
	s.HandleAction(gesture.ActionGoHome)
	assert.Equal(t, ViewHome, s.CurrentView())
}

func TestHandleActionCloseApp(t *testing.T) {
	closed := false
	s := New(ViewApp, 200, Hooks{CloseApp: func() { closed = true }})

	s.HandleAction(gesture.ActionCloseApp)
	assert.True(t, closed)
	assert.Equal(t, ViewHome, s.CurrentView())
}

func TestCloseAppOnlyFromAppView(t *testing.T) {
	closed := false
	s := New(ViewHome, 200, Hooks{CloseApp: func() { closed = true }})

	s.HandleAction(gesture.ActionCloseApp)
	assert.False(t, closed)
	assert.Equal(t, ViewHome, s.CurrentView())
}

func TestShowKeyboardHook(t *testing.T) {
	shown := false
	s := New(ViewApp, 200, Hooks{ShowKeyboard: func() { shown = true }})

	s.HandleAction(gesture.ActionShowKeyboard)
	assert.True(t, shown)
	assert.Equal(t, ViewApp, s.CurrentView(), "keyboard request must not change view")
}

func TestUpdateAnimatesToCompletion(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})
	s.transitionState = TransitionAnimating
	s.transitionFrom = ViewApp
	s.transitionTo = ViewHome
	s.transitionProgress = 0.5

	s.Update(50) // 0.75
	assert.True(t, s.IsTransitioning())
	assert.InDelta(t, 0.75, s.TransitionProgress(), 0.001)

	s.Update(60) // >= 1.0, commits
	assert.False(t, s.IsTransitioning())
	assert.Equal(t, ViewHome, s.CurrentView())
}

func TestUpdateCancelsBackToSource(t *testing.T) {
	s := New(ViewApp, 200, Hooks{})
	s.transitionState = TransitionCancelling
	s.transitionFrom = ViewApp
	s.transitionTo = ViewHome
	s.transitionProgress = 0.3

	s.Update(100) // 0.3 - 0.5 <= 0, clears
	assert.False(t, s.IsTransitioning())
	assert.Equal(t, ViewApp, s.CurrentView())
}

func TestRenderRequestedDuringTransition(t *testing.T) {
	renders := 0
	s := New(ViewApp, 200, Hooks{RequestRender: func() { renders++ }})

	require.True(t, s.HandleGesture(swipeStart(gesture.EdgeBottom)))
	require.True(t, s.HandleGesture(swipeUpdate(gesture.EdgeBottom, 0.5)))
	require.True(t, s.HandleGesture(swipeEnd(gesture.EdgeBottom, true)))

	assert.GreaterOrEqual(t, renders, 2)
}

func TestParseViewRoundTrip(t *testing.T) {
	for _, v := range []View{ViewLock, ViewHome, ViewApp, ViewAppSwitcher, ViewQuickSettings} {
		got, ok := ParseView(v.String())
		require.True(t, ok)
		assert.Equal(t, v, got)
	}

	_, ok := ParseView("desktop")
	assert.False(t, ok)
}
