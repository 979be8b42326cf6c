// Package shell owns the mobile shell state machine: which logical
// screen is showing, any in-progress transition between screens, and
// the background color both render paths clear to.
package shell

import (
	"github.com/flickwm/flick/internal/gesture"
	"github.com/flickwm/flick/internal/logger"
)

// View is a logical screen of the mobile shell
type View int

const (
	ViewLock View = iota
	ViewHome
	ViewApp
	ViewAppSwitcher
	ViewQuickSettings
)

func (v View) String() string {
	switch v {
	case ViewLock:
		return "lock"
	case ViewHome:
		return "home"
	case ViewApp:
		return "app"
	case ViewAppSwitcher:
		return "app_switcher"
	case ViewQuickSettings:
		return "quick_settings"
	default:
		return "unknown"
	}
}

// ParseView maps a view name back to its View. The second result is
// false for unknown names.
func ParseView(name string) (View, bool) {
	switch name {
	case "lock":
		return ViewLock, true
	case "home":
		return ViewHome, true
	case "app":
		return ViewApp, true
	case "app_switcher":
		return ViewAppSwitcher, true
	case "quick_settings":
		return ViewQuickSettings, true
	default:
		return ViewHome, false
	}
}

// TransitionState describes the phase of a view transition
type TransitionState int

const (
	TransitionNone TransitionState = iota
	TransitionStarting
	TransitionAnimating
	TransitionCancelling
)

// Hooks are the shell's side-effect outlets. All are optional.
type Hooks struct {
	// RequestRender asks the compositor to repaint with the current color
	RequestRender func()
	// ShowKeyboard raises the on-screen keyboard service
	ShowKeyboard func()
	// CloseApp sends close to the focused toplevel
	CloseApp func()
}

// Shell is the mobile shell state machine. All methods run on the main
// event loop; the struct is not safe for concurrent use.
type Shell struct {
	currentView View

	transitionState    TransitionState
	transitionFrom     View
	transitionTo       View
	transitionProgress float64
	activeEdge         gesture.Edge

	animationMs float64

	hooks Hooks
}

// New creates a shell starting at the given view
func New(start View, animationMs int, hooks Hooks) *Shell {
	if animationMs <= 0 {
		animationMs = 200
	}
	s := &Shell{
		currentView: start,
		animationMs: float64(animationMs),
		hooks:       hooks,
	}
	logger.Infof("Shell initialized, starting at %s", s.currentView)
	return s
}

// CurrentView returns the logical screen currently showing
func (s *Shell) CurrentView() View {
	return s.currentView
}

// IsTransitioning reports whether a transition is in progress
func (s *Shell) IsTransitioning() bool {
	return s.transitionState != TransitionNone
}

// TransitionProgress returns the progress of the active transition,
// zero when none is active.
func (s *Shell) TransitionProgress() float64 {
	return s.transitionProgress
}

// transitionTarget derives the destination view for a swipe from the
// given edge in the current view. Cells missing from the table keep
// the current view.
func transitionTarget(current View, edge gesture.Edge) View {
	switch current {
	case ViewApp:
		switch edge {
		case gesture.EdgeBottom:
			return ViewHome
		case gesture.EdgeTop:
			return ViewHome
		case gesture.EdgeLeft:
			return ViewQuickSettings
		case gesture.EdgeRight:
			return ViewAppSwitcher
		}

	case ViewHome:
		switch edge {
		case gesture.EdgeLeft:
			return ViewQuickSettings
		case gesture.EdgeRight:
			return ViewAppSwitcher
		}

	case ViewQuickSettings:
		switch edge {
		case gesture.EdgeRight, gesture.EdgeBottom:
			return ViewHome
		}

	case ViewAppSwitcher:
		switch edge {
		case gesture.EdgeLeft, gesture.EdgeBottom:
			return ViewHome
		}

	case ViewLock:
		// Unlock is an external trigger, never a gesture
	}
	return current
}

// HandleGesture consumes a gesture event. It returns true when the
// shell handled the event; taps return false so the compositor can
// deliver them to the focused surface.
func (s *Shell) HandleGesture(event gesture.Event) bool {
	switch event.Type {
	case gesture.EventEdgeSwipeStart:
		target := transitionTarget(s.currentView, event.Edge)
		if target != s.currentView {
			s.transitionState = TransitionStarting
			s.transitionFrom = s.currentView
			s.transitionTo = target
			s.transitionProgress = 0
			s.activeEdge = event.Edge

			logger.Debugf("Shell: starting transition %s -> %s (edge %s)",
				s.transitionFrom, s.transitionTo, event.Edge)
			return true
		}

	case gesture.EventEdgeSwipeUpdate:
		if s.transitionState == TransitionStarting && event.Edge == s.activeEdge {
			s.transitionProgress = event.Progress
			if s.transitionProgress > 1 {
				s.transitionProgress = 1
			}
			s.requestRender()
			return true
		}

	case gesture.EventEdgeSwipeEnd:
		if s.transitionState == TransitionStarting && event.Edge == s.activeEdge {
			if event.Completed {
				logger.Infof("Shell: completing transition to %s", s.transitionTo)
				s.currentView = s.transitionTo
				s.clearTransition()
				logger.Infof("Shell: now at %s", s.currentView)
			} else {
				logger.Debugf("Shell: cancelling transition, returning to %s", s.transitionFrom)
				s.clearTransition()
			}
			s.requestRender()
			return true
		}

	case gesture.EventTap:
		logger.Debugf("Shell: tap at (%.0f, %.0f) in view %s", event.X, event.Y, s.currentView)
		// Let the compositor deliver taps to client surfaces
		return false
	}

	return false
}

// HandleAction applies a semantic command derived from a completed gesture
func (s *Shell) HandleAction(action gesture.Action) {
	switch action {
	case gesture.ActionGoHome:
		if s.currentView != ViewHome {
			logger.Info("Shell: going home")
			s.setView(ViewHome)
		}

	case gesture.ActionShowKeyboard:
		logger.Info("Shell: requesting on-screen keyboard")
		if s.hooks.ShowKeyboard != nil {
			s.hooks.ShowKeyboard()
		}

	case gesture.ActionCloseApp:
		if s.currentView == ViewApp {
			logger.Info("Shell: closing app, going home")
			if s.hooks.CloseApp != nil {
				s.hooks.CloseApp()
			}
			s.setView(ViewHome)
		}

	case gesture.ActionQuickSettings:
		if s.currentView != ViewQuickSettings {
			logger.Info("Shell: opening quick settings")
			s.setView(ViewQuickSettings)
		}

	case gesture.ActionAppSwitcher:
		if s.currentView != ViewAppSwitcher {
			logger.Info("Shell: opening app switcher")
			s.setView(ViewAppSwitcher)
		}
	}
}

// Update advances time-driven transition animation. deltaMs is the
// time since the previous frame tick.
func (s *Shell) Update(deltaMs float64) {
	switch s.transitionState {
	case TransitionAnimating:
		s.transitionProgress += deltaMs / s.animationMs
		if s.transitionProgress >= 1 {
			s.currentView = s.transitionTo
			s.clearTransition()
		}
		s.requestRender()

	case TransitionCancelling:
		s.transitionProgress -= deltaMs / s.animationMs
		if s.transitionProgress <= 0 {
			s.clearTransition()
		}
		s.requestRender()
	}
}

// GoToView forces a transition to a specific view (Super key, IPC)
func (s *Shell) GoToView(view View) {
	if s.currentView != view {
		logger.Infof("Shell: programmatic transition %s -> %s", s.currentView, view)
		s.setView(view)
	}
}

// Unlock leaves the lock screen. The authentication decision is made
// elsewhere; this is only the state change.
func (s *Shell) Unlock() {
	if s.currentView == ViewLock {
		logger.Info("Shell: unlocked")
		s.setView(ViewHome)
	}
}

// Lock shows the lock screen and abandons any transition
func (s *Shell) Lock() {
	s.clearTransition()
	s.setView(ViewLock)
}

func (s *Shell) setView(view View) {
	if s.currentView == view {
		return
	}
	s.currentView = view
	s.requestRender()
}

func (s *Shell) clearTransition() {
	s.transitionState = TransitionNone
	s.transitionProgress = 0
}

func (s *Shell) requestRender() {
	if s.hooks.RequestRender != nil {
		s.hooks.RequestRender()
	}
}
