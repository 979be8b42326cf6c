// Package view tracks application windows. The policy is mobile: every
// window is fullscreen at the output size, and exactly one has focus.
package view

import (
	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/logger"
	"github.com/flickwm/flick/internal/scene"
)

// View is one application window and its scene subtree
type View struct {
	Toplevel backend.Toplevel
	Subtree  *scene.Tree

	manager *Manager
	subs    backend.Subscriptions
	mapped  bool
}

// Title returns the window title
func (v *View) Title() string {
	return v.Toplevel.Title()
}

// Mapped reports whether the window currently has a surface
func (v *View) Mapped() bool {
	return v.mapped
}

// Hooks let the embedder react to focus and lifecycle changes
type Hooks struct {
	// OnFocus fires after a view takes focus; the seat uses it to
	// move keyboard focus.
	OnFocus func(v *View)
	// OnMapped fires when a window gets its first surface
	OnMapped func(v *View)
	// OnEmpty fires when the last mapped window goes away
	OnEmpty func()
}

// Manager owns the focus list. Index zero is the focused view.
type Manager struct {
	layer *scene.Tree
	hooks Hooks

	views            []*View
	outputW, outputH int
}

// NewManager creates a view manager rendering into the given layer
func NewManager(layer *scene.Tree, hooks Hooks) *Manager {
	return &Manager{layer: layer, hooks: hooks}
}

// SetOutputSize records the display size and resizes mapped views
func (m *Manager) SetOutputSize(w, h int) {
	m.outputW, m.outputH = w, h
	for _, v := range m.views {
		if v.mapped {
			v.Toplevel.SetSize(w, h)
		}
	}
}

// Count returns the number of mapped views
func (m *Manager) Count() int {
	return len(m.views)
}

// Focused returns the focused view, nil when no window is mapped
func (m *Manager) Focused() *View {
	if len(m.views) == 0 {
		return nil
	}
	return m.views[0]
}

// AddToplevel adopts a new application window
func (m *Manager) AddToplevel(tl backend.Toplevel) *View {
	v := &View{
		Toplevel: tl,
		Subtree:  m.layer.NewSubtree(),
		manager:  m,
	}
	v.Subtree.SetEnabled(false)

	backend.On(tl.OnMap(), &v.subs, func(struct{}) { m.handleMap(v) })
	backend.On(tl.OnUnmap(), &v.subs, func(struct{}) { m.handleUnmap(v) })
	backend.On(tl.OnDestroy(), &v.subs, func(struct{}) { m.handleDestroy(v) })

	// Phones have no floating windows; interactive moves and resizes
	// are ignored, maximize and fullscreen are answered with the full
	// display size.
	backend.On(tl.OnRequestMove(), &v.subs, func(struct{}) {})
	backend.On(tl.OnRequestResize(), &v.subs, func(struct{}) {})
	backend.On(tl.OnRequestMaximize(), &v.subs, func(struct{}) {
		tl.SetMaximized(true)
		tl.SetSize(m.outputW, m.outputH)
	})
	backend.On(tl.OnRequestFullscreen(), &v.subs, func(struct{}) {
		tl.SetFullscreen(true)
		tl.SetSize(m.outputW, m.outputH)
	})

	logger.Debugf("New toplevel %q (%s)", tl.Title(), tl.AppID())
	return v
}

func (m *Manager) handleMap(v *View) {
	v.mapped = true
	v.Subtree.SetEnabled(true)
	v.Subtree.SetPosition(0, 0)
	v.Toplevel.SetSize(m.outputW, m.outputH)
	v.Toplevel.SetFullscreen(true)

	m.views = append([]*View{v}, m.views...)
	m.focusFront()

	logger.Infof("Mapped %q (%d views)", v.Title(), len(m.views))
	if m.hooks.OnMapped != nil {
		m.hooks.OnMapped(v)
	}
}

func (m *Manager) handleUnmap(v *View) {
	hadFocus := m.Focused() == v
	v.mapped = false
	v.Subtree.SetEnabled(false)
	m.remove(v)

	logger.Infof("Unmapped %q (%d views)", v.Title(), len(m.views))
	if hadFocus {
		m.focusFront()
	}
	if len(m.views) == 0 && m.hooks.OnEmpty != nil {
		m.hooks.OnEmpty()
	}
}

func (m *Manager) handleDestroy(v *View) {
	// Unmap normally precedes destroy, but protect against clients
	// that skip it.
	if v.mapped {
		m.handleUnmap(v)
	}
	v.subs.Release()
	scene.Detach(v.Subtree)
	logger.Debugf("Destroyed toplevel %q", v.Title())
}

func (m *Manager) remove(v *View) {
	for i, other := range m.views {
		if other == v {
			m.views = append(m.views[:i], m.views[i+1:]...)
			return
		}
	}
}

// Focus gives a view keyboard focus and raises it
func (m *Manager) Focus(v *View) {
	if v == nil || m.Focused() == v {
		return
	}

	if prev := m.Focused(); prev != nil {
		prev.Toplevel.SetActivated(false)
	}

	m.remove(v)
	m.views = append([]*View{v}, m.views...)

	scene.RaiseToTop(v.Subtree)
	v.Toplevel.SetActivated(true)

	logger.Debugf("Focused %q", v.Title())
	if m.hooks.OnFocus != nil {
		m.hooks.OnFocus(v)
	}
}

func (m *Manager) focusFront() {
	front := m.Focused()
	if front == nil {
		return
	}
	scene.RaiseToTop(front.Subtree)
	front.Toplevel.SetActivated(true)
	for _, v := range m.views[1:] {
		v.Toplevel.SetActivated(false)
	}
	if m.hooks.OnFocus != nil {
		m.hooks.OnFocus(front)
	}
}

// FocusNext cycles focus through the view list, wrapping around
func (m *Manager) FocusNext() {
	if len(m.views) < 2 {
		return
	}
	// Rotate the focused view to the back
	front := m.views[0]
	m.views = append(m.views[1:], front)
	front.Toplevel.SetActivated(false)
	m.focusFront()
}

// CloseFocused asks the focused window to close
func (m *Manager) CloseFocused() {
	if v := m.Focused(); v != nil {
		logger.Infof("Sending close to %q", v.Title())
		v.Toplevel.SendClose()
	}
}
