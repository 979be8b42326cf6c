package backend

import (
	"fmt"
	"sync"
	"time"

	"github.com/flickwm/flick/internal/logger"
)

// Headless is a backend with no hardware behind it. Outputs and input
// devices are injected by the embedder, and frames fire only when
// TickFrame is called. It backs the test suite and nested development.
type Headless struct {
	newOutput   Signal[Output]
	newInput    Signal[Device]
	newToplevel Signal[Toplevel]

	mu      sync.Mutex
	started bool
	pending []func()
}

// NewHeadless creates a headless backend
func NewHeadless() *Headless {
	return &Headless{}
}

func (h *Headless) Start() error {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.started = true
	h.mu.Unlock()

	for _, emit := range pending {
		emit()
	}
	return nil
}

func (h *Headless) Destroy() {}

func (h *Headless) OnNewOutput() *Signal[Output]     { return &h.newOutput }
func (h *Headless) OnNewInput() *Signal[Device]      { return &h.newInput }
func (h *Headless) OnNewToplevel() *Signal[Toplevel] { return &h.newToplevel }
func (h *Headless) Session() Session                 { return nil }
func (h *Headless) NewSeat(name string) Seat         { return NewRecordingSeat(name) }
func (h *Headless) NewRenderer() (Renderer, error)   { return NewRecordingRenderer(), nil }

// AddOutput creates and announces a headless output. Before Start the
// announcement is queued, matching hardware backends that enumerate
// outputs on startup.
func (h *Headless) AddOutput(name string, width, height int) *HeadlessOutput {
	out := &HeadlessOutput{
		name: name,
		mode: OutputMode{Width: width, Height: height, RefreshMHz: 60000, Preferred: true},
	}
	h.announce(func() { h.newOutput.Emit(out) })
	return out
}

// AddDevice announces an injected input device
func (h *Headless) AddDevice(dev Device) {
	h.announce(func() { h.newInput.Emit(dev) })
}

// AddToplevel announces an injected application window
func (h *Headless) AddToplevel(tl Toplevel) {
	h.announce(func() { h.newToplevel.Emit(tl) })
}

func (h *Headless) announce(emit func()) {
	h.mu.Lock()
	if !h.started {
		h.pending = append(h.pending, emit)
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()
	emit()
}

// HeadlessOutput is a fixed-mode output that commits into memory
type HeadlessOutput struct {
	name string
	mode OutputMode

	frame   Signal[struct{}]
	destroy Signal[struct{}]

	committedW, committedH int
	swapchain              *headlessSwapchain

	// Commits records every successful commit in order
	Commits []OutputState
	// FrameDone records SendFrameDone timestamps
	FrameDone []time.Time
	// ScheduledFrames counts ScheduleFrame calls
	ScheduledFrames int
}

func (o *HeadlessOutput) Name() string { return o.name }

func (o *HeadlessOutput) Size() (int, int) {
	return o.committedW, o.committedH
}

func (o *HeadlessOutput) PreferredMode() *OutputMode {
	m := o.mode
	return &m
}

func (o *HeadlessOutput) Commit(state *OutputState) error {
	if state.Mode != nil {
		o.committedW = state.Mode.Width
		o.committedH = state.Mode.Height
	}
	o.Commits = append(o.Commits, *state)
	if state.Buffer != nil {
		state.Buffer.Unlock()
	}
	return nil
}

func (o *HeadlessOutput) ScheduleFrame() {
	o.ScheduledFrames++
}

func (o *HeadlessOutput) SendFrameDone(at time.Time) {
	o.FrameDone = append(o.FrameDone, at)
}

func (o *HeadlessOutput) Swapchain() (Swapchain, error) {
	if o.swapchain == nil {
		w, h := o.committedW, o.committedH
		if w == 0 || h == 0 {
			w, h = o.mode.Width, o.mode.Height
		}
		o.swapchain = newHeadlessSwapchain(w, h)
	}
	return o.swapchain, nil
}

func (o *HeadlessOutput) OnFrame() *Signal[struct{}]   { return &o.frame }
func (o *HeadlessOutput) OnDestroy() *Signal[struct{}] { return &o.destroy }

// TickFrame fires the output's frame signal, standing in for vsync
func (o *HeadlessOutput) TickFrame() {
	o.frame.Emit(struct{}{})
}

// Remove fires the destroy signal
func (o *HeadlessOutput) Remove() {
	o.destroy.Emit(struct{}{})
}

type headlessSwapchain struct {
	width, height int
	buffers       [3]*headlessBuffer
	next          int
}

func newHeadlessSwapchain(w, h int) *headlessSwapchain {
	sc := &headlessSwapchain{width: w, height: h}
	for i := range sc.buffers {
		sc.buffers[i] = &headlessBuffer{width: w, height: h}
	}
	return sc
}

func (sc *headlessSwapchain) Acquire() (Buffer, error) {
	for i := 0; i < len(sc.buffers); i++ {
		buf := sc.buffers[(sc.next+i)%len(sc.buffers)]
		if !buf.locked {
			sc.next = (sc.next + i + 1) % len(sc.buffers)
			buf.locked = true
			return buf, nil
		}
	}
	return nil, fmt.Errorf("swapchain exhausted")
}

type headlessBuffer struct {
	width, height int
	locked        bool
}

func (b *headlessBuffer) Size() (int, int) { return b.width, b.height }
func (b *headlessBuffer) Unlock()          { b.locked = false }

// RecordingRenderer records render passes instead of drawing
type RecordingRenderer struct {
	// Passes holds every submitted pass in order
	Passes []*RecordedPass
	// Destroyed is set once Destroy has been called
	Destroyed bool
}

// NewRecordingRenderer creates a renderer that records passes
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

func (r *RecordingRenderer) BeginPass(buf Buffer) (Pass, error) {
	return &RecordedPass{renderer: r, Buffer: buf}, nil
}

func (r *RecordingRenderer) BeginPassForOutput(buf Buffer, out Output) (Pass, error) {
	return &RecordedPass{renderer: r, Buffer: buf, Output: out}, nil
}

func (r *RecordingRenderer) Destroy() {
	r.Destroyed = true
}

// RecordedPass is a pass captured by RecordingRenderer
type RecordedPass struct {
	renderer *RecordingRenderer

	Buffer    Buffer
	Output    Output
	Rects     []RecordedRect
	Submitted bool
}

// RecordedRect is one AddRect call
type RecordedRect struct {
	Box   Box
	Color Color
	Clip  *Box
}

func (p *RecordedPass) AddRect(box Box, color Color, clip *Box) {
	p.Rects = append(p.Rects, RecordedRect{Box: box, Color: color, Clip: clip})
}

func (p *RecordedPass) Submit() error {
	p.Submitted = true
	p.renderer.Passes = append(p.renderer.Passes, p)
	return nil
}

// RecordingSeat records every notification passed to it
type RecordingSeat struct {
	name string

	Caps        Capability
	RepeatRate  int
	RepeatDelay int
	Keys        []KeyEvent
	TouchDowns  []TouchEvent
	TouchMoves  []TouchEvent
	TouchUps    []TouchEvent
	Cancels     int
	Motions     []PointerMotionEvent
	Buttons     []PointerButtonEvent
	AxisEvents  int
	FrameEvents int
}

// NewRecordingSeat creates a seat that records notifications
func NewRecordingSeat(name string) *RecordingSeat {
	return &RecordingSeat{name: name}
}

func (s *RecordingSeat) SetCapabilities(caps Capability) {
	s.Caps = caps
	logger.Debugf("Seat %s capabilities: %#x", s.name, uint32(caps))
}

func (s *RecordingSeat) SetRepeatInfo(rateHz, delayMs int) {
	s.RepeatRate = rateHz
	s.RepeatDelay = delayMs
}

func (s *RecordingSeat) NotifyKey(at time.Time, keycode uint32, pressed bool) {
	s.Keys = append(s.Keys, KeyEvent{Time: at, Code: keycode, Pressed: pressed})
}

func (s *RecordingSeat) NotifyModifiers() {}

func (s *RecordingSeat) NotifyTouchDown(at time.Time, id int32, x, y float64) {
	s.TouchDowns = append(s.TouchDowns, TouchEvent{Time: at, ID: id, X: x, Y: y})
}

func (s *RecordingSeat) NotifyTouchMotion(at time.Time, id int32, x, y float64) {
	s.TouchMoves = append(s.TouchMoves, TouchEvent{Time: at, ID: id, X: x, Y: y})
}

func (s *RecordingSeat) NotifyTouchUp(at time.Time, id int32) {
	s.TouchUps = append(s.TouchUps, TouchEvent{Time: at, ID: id})
}

func (s *RecordingSeat) NotifyTouchCancel() {
	s.Cancels++
}

func (s *RecordingSeat) NotifyPointerMotion(at time.Time, dx, dy float64) {
	s.Motions = append(s.Motions, PointerMotionEvent{Time: at, DX: dx, DY: dy})
}

func (s *RecordingSeat) NotifyPointerButton(at time.Time, button uint32, pressed bool) {
	s.Buttons = append(s.Buttons, PointerButtonEvent{Time: at, Button: button, Pressed: pressed})
}

func (s *RecordingSeat) NotifyPointerAxis(at time.Time, axis int, delta float64) {
	s.AxisEvents++
}

func (s *RecordingSeat) NotifyPointerFrame() {
	s.FrameEvents++
}

// TestDevice is an injectable input device for the headless backend
type TestDevice struct {
	name string
	typ  DeviceType

	key           Signal[KeyEvent]
	touchDown     Signal[TouchEvent]
	touchMotion   Signal[TouchEvent]
	touchUp       Signal[TouchEvent]
	touchCancel   Signal[struct{}]
	pointerMotion Signal[PointerMotionEvent]
	pointerButton Signal[PointerButtonEvent]
	destroy       Signal[struct{}]
}

// NewTestDevice creates an injectable device of the given type
func NewTestDevice(name string, typ DeviceType) *TestDevice {
	return &TestDevice{name: name, typ: typ}
}

func (d *TestDevice) Name() string     { return d.name }
func (d *TestDevice) Type() DeviceType { return d.typ }

func (d *TestDevice) OnKey() *Signal[KeyEvent]                     { return &d.key }
func (d *TestDevice) OnTouchDown() *Signal[TouchEvent]             { return &d.touchDown }
func (d *TestDevice) OnTouchMotion() *Signal[TouchEvent]           { return &d.touchMotion }
func (d *TestDevice) OnTouchUp() *Signal[TouchEvent]               { return &d.touchUp }
func (d *TestDevice) OnTouchCancel() *Signal[struct{}]             { return &d.touchCancel }
func (d *TestDevice) OnPointerMotion() *Signal[PointerMotionEvent] { return &d.pointerMotion }
func (d *TestDevice) OnPointerButton() *Signal[PointerButtonEvent] { return &d.pointerButton }
func (d *TestDevice) OnDestroy() *Signal[struct{}]                 { return &d.destroy }

// Event injection helpers for tests

func (d *TestDevice) Key(at time.Time, code uint32, pressed bool) {
	d.key.Emit(KeyEvent{Time: at, Code: code, Pressed: pressed})
}

func (d *TestDevice) TouchDown(at time.Time, id int32, x, y float64) {
	d.touchDown.Emit(TouchEvent{Time: at, ID: id, X: x, Y: y})
}

func (d *TestDevice) TouchMotion(at time.Time, id int32, x, y float64) {
	d.touchMotion.Emit(TouchEvent{Time: at, ID: id, X: x, Y: y})
}

func (d *TestDevice) TouchUp(at time.Time, id int32) {
	d.touchUp.Emit(TouchEvent{Time: at, ID: id})
}

func (d *TestDevice) TouchCancel() {
	d.touchCancel.Emit(struct{}{})
}

func (d *TestDevice) PointerMotion(at time.Time, dx, dy float64) {
	d.pointerMotion.Emit(PointerMotionEvent{Time: at, DX: dx, DY: dy})
}

func (d *TestDevice) PointerButton(at time.Time, button uint32, pressed bool) {
	d.pointerButton.Emit(PointerButtonEvent{Time: at, Button: button, Pressed: pressed})
}

func (d *TestDevice) Remove() {
	d.destroy.Emit(struct{}{})
}

// TestToplevel is an injectable application window
type TestToplevel struct {
	title string
	appID string

	W, H       int
	Activated  bool
	Fullscreen bool
	Maximized  bool
	Closed     bool

	mapped            Signal[struct{}]
	unmapped          Signal[struct{}]
	destroy           Signal[struct{}]
	requestMove       Signal[struct{}]
	requestResize     Signal[struct{}]
	requestMaximize   Signal[struct{}]
	requestFullscreen Signal[struct{}]
}

// NewTestToplevel creates an injectable toplevel
func NewTestToplevel(title, appID string) *TestToplevel {
	return &TestToplevel{title: title, appID: appID}
}

func (t *TestToplevel) Title() string { return t.title }
func (t *TestToplevel) AppID() string { return t.appID }

func (t *TestToplevel) SetSize(w, h int)              { t.W, t.H = w, h }
func (t *TestToplevel) SetActivated(activated bool)   { t.Activated = activated }
func (t *TestToplevel) SetFullscreen(fullscreen bool) { t.Fullscreen = fullscreen }
func (t *TestToplevel) SetMaximized(maximized bool)   { t.Maximized = maximized }
func (t *TestToplevel) SendClose()                    { t.Closed = true }

func (t *TestToplevel) OnMap() *Signal[struct{}]               { return &t.mapped }
func (t *TestToplevel) OnUnmap() *Signal[struct{}]             { return &t.unmapped }
func (t *TestToplevel) OnDestroy() *Signal[struct{}]           { return &t.destroy }
func (t *TestToplevel) OnRequestMove() *Signal[struct{}]       { return &t.requestMove }
func (t *TestToplevel) OnRequestResize() *Signal[struct{}]     { return &t.requestResize }
func (t *TestToplevel) OnRequestMaximize() *Signal[struct{}]   { return &t.requestMaximize }
func (t *TestToplevel) OnRequestFullscreen() *Signal[struct{}] { return &t.requestFullscreen }

// Map fires the map signal
func (t *TestToplevel) Map() { t.mapped.Emit(struct{}{}) }

// Unmap fires the unmap signal
func (t *TestToplevel) Unmap() { t.unmapped.Emit(struct{}{}) }

// Destroy fires the destroy signal
func (t *TestToplevel) Destroy() { t.destroy.Emit(struct{}{}) }

// RequestFullscreen fires the request-fullscreen signal
func (t *TestToplevel) RequestFullscreen() { t.requestFullscreen.Emit(struct{}{}) }

// RequestMaximize fires the request-maximize signal
func (t *TestToplevel) RequestMaximize() { t.requestMaximize.Emit(struct{}{}) }
