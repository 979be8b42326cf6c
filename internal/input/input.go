// Package input routes device events to the gesture recognizer, the
// shell, and the seat. Edge swipes and compositor keybindings are
// consumed here; everything else is forwarded to the focused client.
package input

import (
	"sync"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/gesture"
	"github.com/flickwm/flick/internal/logger"
	"github.com/flickwm/flick/internal/shell"
)

// Keycodes from linux/input-event-codes.h
const (
	keyEsc       = 1
	keyTab       = 15
	keyLeftCtrl  = 29
	keyLeftAlt   = 56
	keyF1        = 59
	keyF10       = 68
	keyF4        = 62
	keyF11       = 87
	keyF12       = 88
	keyRightCtrl = 97
	keyRightAlt  = 100
	keyLeftMeta  = 125
	keyRightMeta = 126
	btnLeft      = 272
)

// Key repeat parameters advertised to clients.
const (
	RepeatRateHz  = 25
	RepeatDelayMs = 600
)

// pointerTouchID is the synthetic touch slot used to replay pointer
// drags through the gesture recognizer, so a mouse can drive edge
// swipes on devices without a touchscreen.
const pointerTouchID int32 = -1

// Hooks are the manager's side-effect outlets. All are optional.
type Hooks struct {
	// Terminate shuts the compositor down (Escape)
	Terminate func()
	// FocusNext cycles window focus (Alt+Tab)
	FocusNext func()
	// CloseApp closes the focused window (Alt+F4)
	CloseApp func()
}

// Manager owns all input devices and the routing policy between the
// gesture recognizer, the shell state machine, and the seat.
type Manager struct {
	mu sync.Mutex

	seat     backend.Seat
	shell    *shell.Shell
	gestures *gesture.Recognizer
	session  backend.Session
	hooks    Hooks

	screenW float64
	screenH float64

	devices map[backend.Device]*backend.Subscriptions

	// pressed modifier keycodes
	mods map[uint32]bool

	// touch ids whose down event started a shell gesture; their
	// motion and up events are withheld from the seat
	consumed map[int32]bool

	// keycodes whose press was swallowed by a binding; the matching
	// release is swallowed too so the client never sees an unpaired
	// key-up
	consumedKeys map[uint32]bool

	// synthetic touch state for pointer drags
	pointerX float64
	pointerY float64
	dragging bool
}

// NewManager creates an input manager routing into the given seat,
// shell, and recognizer. session may be nil when VT switching is
// unavailable.
func NewManager(seat backend.Seat, sh *shell.Shell, gr *gesture.Recognizer, session backend.Session, screenW, screenH int, hooks Hooks) *Manager {
	return &Manager{
		seat:         seat,
		shell:        sh,
		gestures:     gr,
		session:      session,
		hooks:        hooks,
		screenW:      float64(screenW),
		screenH:      float64(screenH),
		devices:      make(map[backend.Device]*backend.Subscriptions),
		mods:         make(map[uint32]bool),
		consumed:     make(map[int32]bool),
		consumedKeys: make(map[uint32]bool),
	}
}

// SetScreenSize updates the coordinate space touch events are scaled
// into. Called when the output changes mode.
func (m *Manager) SetScreenSize(w, h int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screenW = float64(w)
	m.screenH = float64(h)
	m.gestures.SetScreenSize(w, h)
}

// AddDevice starts routing events from a device. The device is dropped
// automatically when it signals destroy.
func (m *Manager) AddDevice(dev backend.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.devices[dev]; ok {
		return
	}
	logger.Infof("Input: new %s device %q", dev.Type(), dev.Name())

	subs := &backend.Subscriptions{}
	backend.On(dev.OnKey(), subs, m.handleKey)
	backend.On(dev.OnTouchDown(), subs, m.handleTouchDown)
	backend.On(dev.OnTouchMotion(), subs, m.handleTouchMotion)
	backend.On(dev.OnTouchUp(), subs, m.handleTouchUp)
	backend.On(dev.OnTouchCancel(), subs, func(struct{}) { m.handleTouchCancel() })
	backend.On(dev.OnPointerMotion(), subs, m.handlePointerMotion)
	backend.On(dev.OnPointerButton(), subs, m.handlePointerButton)
	backend.On(dev.OnDestroy(), subs, func(struct{}) { m.removeDevice(dev) })
	m.devices[dev] = subs

	if dev.Type() == backend.DeviceKeyboard {
		m.seat.SetRepeatInfo(RepeatRateHz, RepeatDelayMs)
	}
	m.updateCapabilities()
}

func (m *Manager) removeDevice(dev backend.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs, ok := m.devices[dev]
	if !ok {
		return
	}
	logger.Infof("Input: removed %s device %q", dev.Type(), dev.Name())
	subs.Release()
	delete(m.devices, dev)
	m.updateCapabilities()
}

// DeviceCount returns the number of tracked devices
func (m *Manager) DeviceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices)
}

// updateCapabilities advertises the union of device classes on the
// seat. Called with m.mu held.
func (m *Manager) updateCapabilities() {
	var caps backend.Capability
	for dev := range m.devices {
		switch dev.Type() {
		case backend.DeviceKeyboard:
			caps |= backend.CapKeyboard
		case backend.DevicePointer:
			caps |= backend.CapPointer
		case backend.DeviceTouch:
			caps |= backend.CapTouch
		}
	}
	m.seat.SetCapabilities(caps)
}

func isModifier(code uint32) bool {
	switch code {
	case keyLeftCtrl, keyRightCtrl, keyLeftAlt, keyRightAlt, keyLeftMeta, keyRightMeta:
		return true
	}
	return false
}

func (m *Manager) modDown(codes ...uint32) bool {
	for _, c := range codes {
		if m.mods[c] {
			return true
		}
	}
	return false
}

// vtFromKey maps a function keycode to its virtual terminal number,
// zero for non-function keys.
func vtFromKey(code uint32) int {
	switch {
	case code >= keyF1 && code <= keyF10:
		return int(code-keyF1) + 1
	case code == keyF11:
		return 11
	case code == keyF12:
		return 12
	}
	return 0
}

func (m *Manager) handleKey(ev backend.KeyEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if isModifier(ev.Code) {
		m.mods[ev.Code] = ev.Pressed
		if ev.Pressed && (ev.Code == keyLeftMeta || ev.Code == keyRightMeta) {
			if m.shell.CurrentView() != shell.ViewLock {
				logger.Debug("Input: Super pressed, going home")
				m.shell.GoToView(shell.ViewHome)
			}
		}
		m.seat.NotifyKey(ev.Time, ev.Code, ev.Pressed)
		m.seat.NotifyModifiers()
		return
	}

	if ev.Pressed {
		if m.handleBinding(ev.Code) {
			m.consumedKeys[ev.Code] = true
			return
		}
	} else if m.consumedKeys[ev.Code] {
		delete(m.consumedKeys, ev.Code)
		return
	}
	m.seat.NotifyKey(ev.Time, ev.Code, ev.Pressed)
}

// handleBinding dispatches compositor keybindings. Returns true when
// the key was consumed. Called with m.mu held.
func (m *Manager) handleBinding(code uint32) bool {
	ctrl := m.modDown(keyLeftCtrl, keyRightCtrl)
	alt := m.modDown(keyLeftAlt, keyRightAlt)

	if ctrl && alt {
		if vt := vtFromKey(code); vt > 0 {
			if m.session == nil {
				logger.Warn("Input: no session, cannot switch VT")
				return true
			}
			logger.Infof("Input: switching to VT %d", vt)
			if err := m.session.ChangeVT(vt); err != nil {
				logger.Errorf("Input: VT switch failed: %v", err)
			}
			return true
		}
	}

	if alt && code == keyTab {
		logger.Debug("Input: Alt+Tab, cycling focus")
		if m.hooks.FocusNext != nil {
			m.hooks.FocusNext()
		}
		return true
	}

	if alt && code == keyF4 {
		logger.Debug("Input: Alt+F4, closing focused window")
		if m.hooks.CloseApp != nil {
			m.hooks.CloseApp()
		}
		return true
	}

	if code == keyEsc {
		logger.Info("Input: Escape pressed, terminating")
		if m.hooks.Terminate != nil {
			m.hooks.Terminate()
		}
		return true
	}

	return false
}

func (m *Manager) handleTouchDown(ev backend.TouchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, y := ev.X*m.screenW, ev.Y*m.screenH
	if !m.touchDown(ev.ID, x, y) {
		m.seat.NotifyTouchDown(ev.Time, ev.ID, x, y)
	}
}

func (m *Manager) handleTouchMotion(ev backend.TouchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, y := ev.X*m.screenW, ev.Y*m.screenH
	if !m.touchMotion(ev.ID, x, y) {
		m.seat.NotifyTouchMotion(ev.Time, ev.ID, x, y)
	}
}

func (m *Manager) handleTouchUp(ev backend.TouchEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.touchUp(ev.ID) {
		m.seat.NotifyTouchUp(ev.Time, ev.ID)
	}
}

func (m *Manager) handleTouchCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gestures.TouchCancel()
	m.consumed = make(map[int32]bool)
	m.seat.NotifyTouchCancel()
}

// touchDown runs a touch point through the recognizer in layout pixel
// coordinates and reports whether the shell consumed it. Points that
// start a shell gesture are withheld from the client for their whole
// lifetime. Called with m.mu held.
func (m *Manager) touchDown(id int32, x, y float64) bool {
	if gev, ok := m.gestures.TouchDown(id, x, y); ok {
		if m.shell.HandleGesture(gev) {
			m.consumed[id] = true
			return true
		}
	}
	return false
}

func (m *Manager) touchMotion(id int32, x, y float64) bool {
	if gev, ok := m.gestures.TouchMotion(id, x, y); ok {
		m.shell.HandleGesture(gev)
	}
	return m.consumed[id]
}

func (m *Manager) touchUp(id int32) bool {
	if gev, ok := m.gestures.TouchUp(id); ok {
		m.shell.HandleGesture(gev)
		switch action := gesture.ToAction(gev); action {
		case gesture.ActionNone, gesture.ActionTap, gesture.ActionLongPress:
		default:
			m.shell.HandleAction(action)
		}
	}
	if m.consumed[id] {
		delete(m.consumed, id)
		return true
	}
	return false
}

func (m *Manager) handlePointerMotion(ev backend.PointerMotionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pointerX = clamp(m.pointerX+ev.DX, 0, m.screenW)
	m.pointerY = clamp(m.pointerY+ev.DY, 0, m.screenH)

	if m.dragging {
		m.touchMotion(pointerTouchID, m.pointerX, m.pointerY)
	}
	m.seat.NotifyPointerMotion(ev.Time, ev.DX, ev.DY)
	m.seat.NotifyPointerFrame()
}

// handlePointerButton replays left-button drags through the touch
// pipeline so pointer users get edge swipes too.
func (m *Manager) handlePointerButton(ev backend.PointerButtonEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.Button == btnLeft {
		if ev.Pressed && !m.dragging {
			m.dragging = true
			if m.touchDown(pointerTouchID, m.pointerX, m.pointerY) {
				return
			}
		} else if !ev.Pressed && m.dragging {
			m.dragging = false
			if m.touchUp(pointerTouchID) {
				return
			}
		}
	}
	m.seat.NotifyPointerButton(ev.Time, ev.Button, ev.Pressed)
	m.seat.NotifyPointerFrame()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
