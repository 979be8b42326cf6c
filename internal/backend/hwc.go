package backend

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/flickwm/flick/internal/hwc"
)

// HWCBackend drives a phone panel through the hwcomposer2 shim. It
// exposes exactly one output, named with the HWCOMPOSER prefix so the
// output manager selects the manual render path. Input devices come
// from evdev, not from this backend.
type HWCBackend struct {
	ctx    *hwc.Context
	output *hwcOutput

	// dispatch hops vsync off the HWC event thread and onto the
	// compositor loop; without one installed, emissions run inline
	dispatch func(fn func())

	newOutput   Signal[Output]
	newInput    Signal[Device]
	newToplevel Signal[Toplevel]
}

// NewHWC opens the hwcomposer device and initializes the display
func NewHWC() (*HWCBackend, error) {
	if hwc.DeviceProvider == nil {
		return nil, fmt.Errorf("no hwcomposer device provider registered")
	}
	dev, err := hwc.DeviceProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to open hwcomposer device: %w", err)
	}
	ctx, err := hwc.Init(dev)
	if err != nil {
		return nil, err
	}
	return newHWCBackend(ctx), nil
}

func newHWCBackend(ctx *hwc.Context) *HWCBackend {
	b := &HWCBackend{
		ctx:      ctx,
		dispatch: func(fn func()) { fn() },
	}
	info := ctx.DisplayInfo()
	b.output = &hwcOutput{
		backend: b,
		name:    "HWCOMPOSER-1",
		mode: OutputMode{
			Width:      info.Width,
			Height:     info.Height,
			RefreshMHz: int(info.RefreshRate * 1000),
			Preferred:  true,
		},
	}
	return b
}

// SetDispatch routes emissions from the HWC event thread through fn.
// The server installs its main-loop queue here so frame listeners
// never run concurrently with compositor state. Must be called before
// Start.
func (b *HWCBackend) SetDispatch(fn func(func())) {
	b.dispatch = fn
}

func (b *HWCBackend) Start() error {
	b.ctx.SetVsyncCallback(b.output.handleVsync)
	b.ctx.SetVsyncEnabled(true)
	b.newOutput.Emit(b.output)
	return nil
}

func (b *HWCBackend) Destroy() {
	b.ctx.SetVsyncEnabled(false)
	b.output.destroy.Emit(struct{}{})
	b.ctx.Destroy()
}

func (b *HWCBackend) OnNewOutput() *Signal[Output]     { return &b.newOutput }
func (b *HWCBackend) OnNewInput() *Signal[Device]      { return &b.newInput }
func (b *HWCBackend) OnNewToplevel() *Signal[Toplevel] { return &b.newToplevel }
func (b *HWCBackend) Session() Session                 { return nil }
func (b *HWCBackend) NewSeat(name string) Seat         { return NewRecordingSeat(name) }

func (b *HWCBackend) NewRenderer() (Renderer, error) {
	return NewSoftwareRenderer(), nil
}

// Stats exposes the shim's present counters
func (b *HWCBackend) Stats() hwc.Stats {
	return b.ctx.Stats()
}

type hwcOutput struct {
	backend *HWCBackend
	name    string
	mode    OutputMode

	committedW, committedH int

	framePending atomic.Bool
	frame        Signal[struct{}]
	destroy      Signal[struct{}]
}

func (o *hwcOutput) Name() string { return o.name }

func (o *hwcOutput) Size() (int, int) {
	return o.committedW, o.committedH
}

func (o *hwcOutput) PreferredMode() *OutputMode {
	m := o.mode
	return &m
}

func (o *hwcOutput) Commit(state *OutputState) error {
	if state.Mode != nil {
		if state.Mode.Width != o.mode.Width || state.Mode.Height != o.mode.Height {
			return fmt.Errorf("panel supports only %dx%d", o.mode.Width, o.mode.Height)
		}
		o.committedW = state.Mode.Width
		o.committedH = state.Mode.Height
	}
	if state.Buffer != nil {
		buf, ok := state.Buffer.(*hwcBuffer)
		if !ok {
			return fmt.Errorf("foreign buffer committed to hwcomposer output")
		}
		if err := o.backend.ctx.NativeWindow().Queue(buf.gb); err != nil {
			return err
		}
		state.Buffer.Unlock()
	}
	return nil
}

func (o *hwcOutput) ScheduleFrame() {
	o.framePending.Store(true)
}

func (o *hwcOutput) SendFrameDone(at time.Time) {}

func (o *hwcOutput) Swapchain() (Swapchain, error) {
	return &hwcSwapchain{window: o.backend.ctx.NativeWindow()}, nil
}

func (o *hwcOutput) OnFrame() *Signal[struct{}]   { return &o.frame }
func (o *hwcOutput) OnDestroy() *Signal[struct{}] { return &o.destroy }

// handleVsync runs on the hwc event thread; the frame signal is
// posted through the backend dispatch so it fires on the compositor
// loop instead.
func (o *hwcOutput) handleVsync(timestampNs int64) {
	if o.framePending.Swap(false) {
		o.backend.dispatch(func() { o.frame.Emit(struct{}{}) })
	}
}

type hwcSwapchain struct {
	window *hwc.Window
}

func (sc *hwcSwapchain) Acquire() (Buffer, error) {
	gb, err := sc.window.Dequeue()
	if err != nil {
		return nil, err
	}
	return &hwcBuffer{gb: gb}, nil
}

type hwcBuffer struct {
	gb *hwc.GraphicBuffer
}

func (b *hwcBuffer) Size() (int, int) {
	return b.gb.Width, b.gb.Height
}

// Unlock is a no-op: the native window returns the buffer to its pool
// after presentation.
func (b *hwcBuffer) Unlock() {}

func (b *hwcBuffer) pixels() ([]byte, int) {
	return b.gb.Pixels, b.gb.Stride
}

// pixelBuffer is implemented by buffers with CPU-mapped storage
type pixelBuffer interface {
	Buffer
	pixels() ([]byte, int)
}

// SoftwareRenderer fills CPU-mapped buffers. It covers the shell's
// needs, which are clear rects.
type SoftwareRenderer struct{}

// NewSoftwareRenderer creates a CPU renderer
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

func (r *SoftwareRenderer) BeginPass(buf Buffer) (Pass, error) {
	pb, ok := buf.(pixelBuffer)
	if !ok {
		return nil, fmt.Errorf("buffer has no CPU mapping")
	}
	return &softwarePass{buf: pb}, nil
}

func (r *SoftwareRenderer) BeginPassForOutput(buf Buffer, out Output) (Pass, error) {
	return r.BeginPass(buf)
}

// Destroy is a no-op, the CPU renderer holds no GPU state
func (r *SoftwareRenderer) Destroy() {}

type softwarePass struct {
	buf pixelBuffer
	ops []func()
}

func (p *softwarePass) AddRect(box Box, color Color, clip *Box) {
	target := box
	if clip != nil {
		target = intersect(box, *clip)
	}
	p.ops = append(p.ops, func() { fillRect(p.buf, target, color) })
}

func (p *softwarePass) Submit() error {
	for _, op := range p.ops {
		op()
	}
	p.ops = nil
	return nil
}

func intersect(a, b Box) Box {
	x1 := max(a.X, b.X)
	y1 := max(a.Y, b.Y)
	x2 := min(a.X+a.Width, b.X+b.Width)
	y2 := min(a.Y+a.Height, b.Y+b.Height)
	if x2 <= x1 || y2 <= y1 {
		return Box{}
	}
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func fillRect(buf pixelBuffer, box Box, color Color) {
	pixels, stride := buf.pixels()
	w, h := buf.Size()
	box = intersect(box, Box{Width: w, Height: h})
	if box.Width <= 0 || box.Height <= 0 {
		return
	}

	r := channelByte(color.R)
	g := channelByte(color.G)
	bl := channelByte(color.B)
	a := channelByte(color.A)

	for y := box.Y; y < box.Y+box.Height; y++ {
		row := pixels[y*stride*4:]
		for x := box.X; x < box.X+box.Width; x++ {
			i := x * 4
			row[i] = r
			row[i+1] = g
			row[i+2] = bl
			row[i+3] = a
		}
	}
}

func channelByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

var _ Backend = (*HWCBackend)(nil)
var _ Output = (*hwcOutput)(nil)
