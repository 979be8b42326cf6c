// Package backend abstracts the display and input hardware behind a
// small capability surface. Two implementations exist: a headless
// backend for tests and nested development, and an Android hwcomposer
// backend for phone hardware.
package backend

import (
	"fmt"
	"os"
	"time"

	"github.com/flickwm/flick/internal/logger"
)

// Backend owns outputs and input devices
type Backend interface {
	// Start makes the backend begin emitting outputs and devices
	Start() error
	Destroy()

	OnNewOutput() *Signal[Output]
	OnNewInput() *Signal[Device]
	// OnNewToplevel announces application windows surfaced by the
	// display server side of the backend.
	OnNewToplevel() *Signal[Toplevel]

	// NewRenderer creates a renderer able to draw into this backend's
	// buffers.
	NewRenderer() (Renderer, error)

	// NewSeat creates the input seat clients bind to
	NewSeat(name string) Seat

	// Session is nil when the backend does not manage a login session
	Session() Session
}

// Dispatcher is implemented by backends and device sources whose
// signals originate on foreign threads. The embedder installs its
// main-loop post function and emissions then run on that loop only.
type Dispatcher interface {
	SetDispatch(fn func(func()))
}

// Session is the login session for direct-hardware backends
type Session interface {
	ChangeVT(vt int) error
	OnActive() *Signal[bool]
	OnDestroy() *Signal[struct{}]
}

// OutputMode is a display mode advertised by an output
type OutputMode struct {
	Width, Height int
	RefreshMHz    int
	Preferred     bool
}

// Box is an axis-aligned pixel rectangle
type Box struct {
	X, Y, Width, Height int
}

// Color is a straight-alpha clear color, channels in [0, 1]
type Color struct {
	R, G, B, A float64
}

// OutputState is a pending output commit. Nil fields are unchanged.
type OutputState struct {
	Enabled *bool
	Mode    *OutputMode
	Buffer  Buffer
	Damage  *Box
}

// Output is a connected display
type Output interface {
	Name() string
	// Size is the committed mode size in pixels
	Size() (int, int)
	PreferredMode() *OutputMode

	Commit(state *OutputState) error
	ScheduleFrame()
	SendFrameDone(at time.Time)

	// Swapchain returns the primary swapchain for manual rendering,
	// allocating it on first use.
	Swapchain() (Swapchain, error)

	OnFrame() *Signal[struct{}]
	OnDestroy() *Signal[struct{}]
}

// Swapchain hands out render buffers
type Swapchain interface {
	Acquire() (Buffer, error)
}

// Buffer is a single render target
type Buffer interface {
	Size() (int, int)
	// Unlock releases the buffer back to its swapchain
	Unlock()
}

// Renderer begins render passes on buffers
type Renderer interface {
	BeginPass(buf Buffer) (Pass, error)
	// BeginPassForOutput binds output-specific state (color transforms,
	// damage tracking) in addition to the buffer.
	BeginPassForOutput(buf Buffer, out Output) (Pass, error)
	// Destroy releases renderer resources
	Destroy()
}

// Pass is an in-progress render pass
type Pass interface {
	AddRect(box Box, color Color, clip *Box)
	Submit() error
}

// Toplevel is an application window
type Toplevel interface {
	Title() string
	AppID() string

	SetSize(w, h int)
	SetActivated(activated bool)
	SetFullscreen(fullscreen bool)
	SetMaximized(maximized bool)
	SendClose()

	OnMap() *Signal[struct{}]
	OnUnmap() *Signal[struct{}]
	OnDestroy() *Signal[struct{}]
	OnRequestMove() *Signal[struct{}]
	OnRequestResize() *Signal[struct{}]
	OnRequestMaximize() *Signal[struct{}]
	OnRequestFullscreen() *Signal[struct{}]
}

// Capability is the set of input classes a seat advertises
type Capability uint32

const (
	CapKeyboard Capability = 1 << iota
	CapPointer
	CapTouch
)

// Seat delivers input to the focused client
type Seat interface {
	SetCapabilities(caps Capability)
	// SetRepeatInfo advertises keyboard repeat parameters to clients
	SetRepeatInfo(rateHz, delayMs int)

	NotifyKey(at time.Time, keycode uint32, pressed bool)
	NotifyModifiers()

	NotifyTouchDown(at time.Time, id int32, x, y float64)
	NotifyTouchMotion(at time.Time, id int32, x, y float64)
	NotifyTouchUp(at time.Time, id int32)
	NotifyTouchCancel()

	NotifyPointerMotion(at time.Time, dx, dy float64)
	NotifyPointerButton(at time.Time, button uint32, pressed bool)
	NotifyPointerAxis(at time.Time, axis int, delta float64)
	NotifyPointerFrame()
}

// DeviceType classifies an input device
type DeviceType int

const (
	DeviceOther DeviceType = iota
	DeviceKeyboard
	DevicePointer
	DeviceTouch
)

func (t DeviceType) String() string {
	switch t {
	case DeviceKeyboard:
		return "keyboard"
	case DevicePointer:
		return "pointer"
	case DeviceTouch:
		return "touch"
	default:
		return "other"
	}
}

// KeyEvent is a key press or release
type KeyEvent struct {
	Time    time.Time
	Code    uint32
	Pressed bool
}

// TouchEvent is a touch point update. X and Y are normalized to [0, 1]
// in device coordinates.
type TouchEvent struct {
	Time time.Time
	ID   int32
	X, Y float64
}

// PointerMotionEvent is a relative pointer move
type PointerMotionEvent struct {
	Time   time.Time
	DX, DY float64
}

// PointerButtonEvent is a pointer button press or release
type PointerButtonEvent struct {
	Time    time.Time
	Button  uint32
	Pressed bool
}

// Device is a physical input device
type Device interface {
	Name() string
	Type() DeviceType

	OnKey() *Signal[KeyEvent]
	OnTouchDown() *Signal[TouchEvent]
	OnTouchMotion() *Signal[TouchEvent]
	OnTouchUp() *Signal[TouchEvent]
	OnTouchCancel() *Signal[struct{}]
	OnPointerMotion() *Signal[PointerMotionEvent]
	OnPointerButton() *Signal[PointerButtonEvent]
	OnDestroy() *Signal[struct{}]
}

// Autocreate picks a backend from the WLR_BACKENDS environment
// variable. Unknown values fall back to headless with a warning.
func Autocreate() (Backend, error) {
	name := os.Getenv("WLR_BACKENDS")
	switch name {
	case "", "headless":
		logger.Info("Using headless backend")
		return NewHeadless(), nil
	case "hwcomposer":
		logger.Info("Using hwcomposer backend")
		if renderer := os.Getenv("WLR_RENDERER"); renderer != "" {
			logger.Infof("Renderer requested via WLR_RENDERER: %s", renderer)
		}
		b, err := NewHWC()
		if err != nil {
			return nil, fmt.Errorf("failed to create hwcomposer backend: %w", err)
		}
		return b, nil
	default:
		logger.Warnf("Unknown backend %q, falling back to headless", name)
		return NewHeadless(), nil
	}
}
