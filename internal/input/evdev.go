package input

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/logger"
)

const (
	devicePattern    = "/dev/input/event*"
	deviceScanPeriod = 2 * time.Second
	mtSlotCount      = 10
)

// EvdevScanner discovers kernel input devices and surfaces them as
// backend devices. The hwcomposer backend has no input side of its
// own, so on real hardware the server feeds the manager from here.
type EvdevScanner struct {
	mu      sync.Mutex
	devices map[string]*evdevDevice

	// pinned device nodes; when set, discovery is skipped and only
	// these paths are opened
	pinned []string

	// axis range touch coordinates are normalized against
	touchW float64
	touchH float64

	onNewDevice backend.Signal[backend.Device]

	// dispatch hops signal emissions off the reader goroutines, onto
	// the compositor loop when the embedder installed one
	dispatch func(fn func())

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewEvdevScanner creates a scanner. Touch coordinates are assumed to
// cover the panel resolution; FLICK_TOUCH_WIDTH and FLICK_TOUCH_HEIGHT
// override the range for panels that report in other units.
func NewEvdevScanner(screenW, screenH int) *EvdevScanner {
	return &EvdevScanner{
		devices:  make(map[string]*evdevDevice),
		touchW:   envRange("FLICK_TOUCH_WIDTH", float64(screenW)),
		touchH:   envRange("FLICK_TOUCH_HEIGHT", float64(screenH)),
		dispatch: func(fn func()) { fn() },
	}
}

// SetDispatch routes every signal emission through fn. Device events
// are read on per-device goroutines; the compositor installs its
// main-loop queue here so listeners only ever run on that loop. Must
// be called before Start.
func (s *EvdevScanner) SetDispatch(fn func(func())) {
	s.dispatch = fn
}

// NewEvdevScannerWithDevices creates a scanner bound to specific
// device nodes instead of discovering them. The poll loop still runs
// so a pinned node that disappears is reopened when it comes back.
func NewEvdevScannerWithDevices(screenW, screenH int, paths []string) *EvdevScanner {
	s := NewEvdevScanner(screenW, screenH)
	s.pinned = paths
	return s
}

func envRange(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return float64(n)
		}
		logger.Warnf("Ignoring invalid %s=%q", key, v)
	}
	return fallback
}

// OnNewDevice announces discovered devices
func (s *EvdevScanner) OnNewDevice() *backend.Signal[backend.Device] {
	return &s.onNewDevice
}

// Start performs an initial scan and then polls for hotplugged
// devices until Stop is called.
func (s *EvdevScanner) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.scan(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(deviceScanPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scan(ctx)
			}
		}
	}()
	return nil
}

// Stop ends scanning and closes every open device
func (s *EvdevScanner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	devices := make([]*evdevDevice, 0, len(s.devices))
	for _, d := range s.devices {
		devices = append(devices, d)
	}
	s.devices = make(map[string]*evdevDevice)
	s.mu.Unlock()

	for _, d := range devices {
		d.close()
	}
	s.wg.Wait()
}

func (s *EvdevScanner) scan(ctx context.Context) {
	for _, dev := range s.listDevices() {
		s.mu.Lock()
		_, known := s.devices[dev.Fn]
		running := s.running
		s.mu.Unlock()
		if known || !running {
			dev.File.Close()
			continue
		}

		typ := classifyDevice(dev)
		if typ == backend.DeviceOther {
			logger.Debugf("Evdev: skipping %q (%s)", dev.Name, dev.Fn)
			dev.File.Close()
			continue
		}

		d := newEvdevDevice(dev, typ, s.touchW, s.touchH, s.dispatch)
		s.mu.Lock()
		s.devices[dev.Fn] = d
		s.mu.Unlock()

		s.dispatch(func() { s.onNewDevice.Emit(d) })

		s.wg.Add(1)
		go func(d *evdevDevice) {
			defer s.wg.Done()
			d.readLoop(ctx)
			s.mu.Lock()
			delete(s.devices, d.path)
			s.mu.Unlock()
		}(d)
	}
}

// listDevices opens candidate device nodes, either the pinned set or
// everything matching the scan pattern. Already-open nodes are still
// returned and filtered by the caller.
func (s *EvdevScanner) listDevices() []*evdev.InputDevice {
	if len(s.pinned) > 0 {
		var found []*evdev.InputDevice
		for _, path := range s.pinned {
			s.mu.Lock()
			_, known := s.devices[path]
			s.mu.Unlock()
			if known {
				continue
			}
			dev, err := evdev.Open(path)
			if err != nil {
				logger.Warnf("Evdev: cannot open pinned device %s: %v", path, err)
				continue
			}
			found = append(found, dev)
		}
		return found
	}

	found, err := evdev.ListInputDevices(devicePattern)
	if err != nil {
		logger.Warnf("Evdev: device scan failed: %v", err)
		return nil
	}
	return found
}

// classifyDevice decides what class a kernel device belongs to from
// its advertised capabilities. Power and lid style button devices
// expose EV_KEY too and must not be mistaken for keyboards.
func classifyDevice(dev *evdev.InputDevice) backend.DeviceType {
	abs := dev.CapabilitiesFlat[evdev.EV_ABS]
	for _, code := range abs {
		if code == evdev.ABS_MT_POSITION_X || code == evdev.ABS_X {
			return backend.DeviceTouch
		}
	}

	rel := dev.CapabilitiesFlat[evdev.EV_REL]
	keys := dev.CapabilitiesFlat[evdev.EV_KEY]
	hasRelX, hasRelY := false, false
	for _, code := range rel {
		if code == evdev.REL_X {
			hasRelX = true
		}
		if code == evdev.REL_Y {
			hasRelY = true
		}
	}
	if hasRelX && hasRelY {
		for _, code := range keys {
			if code == evdev.BTN_LEFT || code == evdev.BTN_RIGHT || code == evdev.BTN_MIDDLE {
				return backend.DevicePointer
			}
		}
	}

	nameLower := strings.ToLower(dev.Name)
	for _, pattern := range []string{"power", "sleep", "lid", "video", "button"} {
		if strings.Contains(nameLower, pattern) {
			return backend.DeviceOther
		}
	}
	for _, code := range keys {
		if code >= evdev.KEY_A && code <= evdev.KEY_Z {
			return backend.DeviceKeyboard
		}
	}

	return backend.DeviceOther
}

// mtSlot is one contact of the multitouch protocol B state
type mtSlot struct {
	tracking int32
	x, y     float64
	began    bool
	ended    bool
	moved    bool
}

// evdevDevice adapts one kernel device to the backend device surface.
// Raw events are folded into per-frame state and flushed on
// SYN_REPORT, matching how the kernel batches them.
type evdevDevice struct {
	dev  *evdev.InputDevice
	path string
	name string
	typ  backend.DeviceType

	touchW float64
	touchH float64

	// accumulated relative motion for the current frame
	relX float64
	relY float64

	slots   [mtSlotCount]mtSlot
	curSlot int

	// single-touch fallback for panels without MT slots
	stDown bool

	// post carries emissions off the read goroutine; events are
	// captured by value so the read goroutine never shares state
	// with listeners
	post func(func())

	closed chan struct{}

	onKey           backend.Signal[backend.KeyEvent]
	onTouchDown     backend.Signal[backend.TouchEvent]
	onTouchMotion   backend.Signal[backend.TouchEvent]
	onTouchUp       backend.Signal[backend.TouchEvent]
	onTouchCancel   backend.Signal[struct{}]
	onPointerMotion backend.Signal[backend.PointerMotionEvent]
	onPointerButton backend.Signal[backend.PointerButtonEvent]
	onDestroy       backend.Signal[struct{}]
}

func newEvdevDevice(dev *evdev.InputDevice, typ backend.DeviceType, touchW, touchH float64, post func(func())) *evdevDevice {
	d := &evdevDevice{
		dev:    dev,
		path:   dev.Fn,
		name:   dev.Name,
		typ:    typ,
		touchW: touchW,
		touchH: touchH,
		post:   post,
		closed: make(chan struct{}),
	}
	for i := range d.slots {
		d.slots[i].tracking = -1
	}
	return d
}

func (d *evdevDevice) Name() string             { return d.name }
func (d *evdevDevice) Type() backend.DeviceType { return d.typ }

func (d *evdevDevice) OnKey() *backend.Signal[backend.KeyEvent]         { return &d.onKey }
func (d *evdevDevice) OnTouchDown() *backend.Signal[backend.TouchEvent] { return &d.onTouchDown }
func (d *evdevDevice) OnTouchMotion() *backend.Signal[backend.TouchEvent] {
	return &d.onTouchMotion
}
func (d *evdevDevice) OnTouchUp() *backend.Signal[backend.TouchEvent] { return &d.onTouchUp }
func (d *evdevDevice) OnTouchCancel() *backend.Signal[struct{}]       { return &d.onTouchCancel }
func (d *evdevDevice) OnPointerMotion() *backend.Signal[backend.PointerMotionEvent] {
	return &d.onPointerMotion
}
func (d *evdevDevice) OnPointerButton() *backend.Signal[backend.PointerButtonEvent] {
	return &d.onPointerButton
}
func (d *evdevDevice) OnDestroy() *backend.Signal[struct{}] { return &d.onDestroy }

func (d *evdevDevice) close() {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
}

func (d *evdevDevice) readLoop(ctx context.Context) {
	logger.Infof("Evdev: reading %s device %q (%s)", d.typ, d.name, d.path)
	defer d.post(func() { d.onDestroy.Emit(struct{}{}) })

	// Exclusive access keeps events away from the text console
	if err := d.dev.Grab(); err != nil {
		logger.Warnf("Evdev: failed to grab %s: %v", d.path, err)
	} else {
		defer func() {
			if err := d.dev.Release(); err != nil {
				logger.Debugf("Evdev: release %s: %v", d.path, err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.closed:
			return
		default:
		}

		events, err := d.dev.Read()
		if err != nil {
			if strings.Contains(err.Error(), "resource temporarily unavailable") {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			logger.Errorf("Evdev: read from %s failed: %v", d.path, err)
			return
		}

		for i := range events {
			d.dispatch(&events[i])
		}
	}
}

func (d *evdevDevice) dispatch(ev *evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_KEY:
		// Value 2 is kernel autorepeat; repeat is the compositor's job
		if ev.Value != 0 && ev.Value != 1 {
			return
		}
		d.handleKeyCode(ev.Code, ev.Value == 1)

	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			d.relX += float64(ev.Value)
		case evdev.REL_Y:
			d.relY += float64(ev.Value)
		}

	case evdev.EV_ABS:
		d.handleAbs(ev.Code, ev.Value)

	case evdev.EV_SYN:
		if ev.Code == evdev.SYN_REPORT {
			d.flush()
		}
	}
}

func (d *evdevDevice) handleKeyCode(code uint16, pressed bool) {
	switch {
	case code == evdev.BTN_TOUCH:
		// Single-touch protocol contact state; MT panels manage
		// contacts through tracking ids instead.
		if d.typ == backend.DeviceTouch && !d.hasMTContacts() {
			slot := &d.slots[0]
			if pressed {
				slot.began = true
			} else if d.stDown {
				slot.ended = true
			}
		}
	case code >= evdev.BTN_LEFT && code <= evdev.BTN_TASK:
		ev := backend.PointerButtonEvent{
			Time:    time.Now(),
			Button:  uint32(code),
			Pressed: pressed,
		}
		d.post(func() { d.onPointerButton.Emit(ev) })
	default:
		ev := backend.KeyEvent{
			Time:    time.Now(),
			Code:    uint32(code),
			Pressed: pressed,
		}
		d.post(func() { d.onKey.Emit(ev) })
	}
}

// hasMTContacts reports whether any slot carries a kernel tracking id,
// which marks the device as using the MT protocol.
func (d *evdevDevice) hasMTContacts() bool {
	for i := range d.slots {
		if d.slots[i].tracking >= 0 {
			return true
		}
	}
	return false
}

func (d *evdevDevice) handleAbs(code uint16, value int32) {
	switch code {
	case evdev.ABS_MT_SLOT:
		if value >= 0 && int(value) < mtSlotCount {
			d.curSlot = int(value)
		}
	case evdev.ABS_MT_TRACKING_ID:
		slot := &d.slots[d.curSlot]
		if value >= 0 {
			slot.tracking = value
			slot.began = true
		} else {
			slot.ended = true
		}
	case evdev.ABS_MT_POSITION_X:
		slot := &d.slots[d.curSlot]
		slot.x = float64(value)
		slot.moved = true
	case evdev.ABS_MT_POSITION_Y:
		slot := &d.slots[d.curSlot]
		slot.y = float64(value)
		slot.moved = true
	case evdev.ABS_X:
		if !d.hasMTContacts() {
			d.slots[0].x = float64(value)
			d.slots[0].moved = true
		}
	case evdev.ABS_Y:
		if !d.hasMTContacts() {
			d.slots[0].y = float64(value)
			d.slots[0].moved = true
		}
	}
}

// flush emits the events accumulated since the previous SYN_REPORT
func (d *evdevDevice) flush() {
	if d.relX != 0 || d.relY != 0 {
		ev := backend.PointerMotionEvent{
			Time: time.Now(),
			DX:   d.relX,
			DY:   d.relY,
		}
		d.post(func() { d.onPointerMotion.Emit(ev) })
		d.relX, d.relY = 0, 0
	}

	now := time.Now()
	for i := range d.slots {
		slot := &d.slots[i]
		id := slot.tracking
		if id < 0 {
			// single-touch fallback uses the slot index as id
			id = int32(i)
		}
		ev := backend.TouchEvent{
			Time: now,
			ID:   id,
			X:    clamp(slot.x/d.touchW, 0, 1),
			Y:    clamp(slot.y/d.touchH, 0, 1),
		}

		switch {
		case slot.began && slot.ended:
			// contact came and went within one frame
			d.post(func() {
				d.onTouchDown.Emit(ev)
				d.onTouchUp.Emit(ev)
			})
			slot.tracking = -1
			d.stDown = false
		case slot.began:
			d.post(func() { d.onTouchDown.Emit(ev) })
			if slot.tracking < 0 {
				d.stDown = true
			}
		case slot.ended:
			d.post(func() { d.onTouchUp.Emit(ev) })
			slot.tracking = -1
			d.stDown = false
		case slot.moved && (slot.tracking >= 0 || d.stDown):
			d.post(func() { d.onTouchMotion.Emit(ev) })
		}
		slot.began, slot.ended, slot.moved = false, false, false
	}
}
