package hwc

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLayer struct {
	mu sync.Mutex

	compositionType CompositionType
	blendMode       BlendMode
	alpha           float64
	slots           []uint32
}

func (l *fakeLayer) SetCompositionType(t CompositionType) error {
	l.compositionType = t
	return nil
}

func (l *fakeLayer) SetBlendMode(m BlendMode) error {
	l.blendMode = m
	return nil
}

func (l *fakeLayer) SetSourceCrop(x, y, w, h float64) error  { return nil }
func (l *fakeLayer) SetDisplayFrame(x, y, w, h int32) error  { return nil }
func (l *fakeLayer) SetVisibleRegion(x, y, w, h int32) error { return nil }
func (l *fakeLayer) SetPlaneAlpha(alpha float64) error       { l.alpha = alpha; return nil }

func (l *fakeLayer) SetBuffer(slot uint32, buf *GraphicBuffer, acquireFence int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.slots = append(l.slots, slot)
	return nil
}

func (l *fakeLayer) slotHistory() []uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]uint32(nil), l.slots...)
}

type fakeDisplay struct {
	mu sync.Mutex

	cfg       *DisplayConfig
	cfgErr    error
	powerLog  []bool
	layer     *fakeLayer
	destroyed bool

	clientTargetSlots []uint32
	clientTargetErr   error

	validateTypes    uint32
	validateRequests uint32
	validateErr      error
	accepted         int

	presents    int
	presentErr  error
	retireFence int

	layerDestroyed bool
}

func (d *fakeDisplay) ActiveConfig() (*DisplayConfig, error) {
	if d.cfgErr != nil {
		return nil, d.cfgErr
	}
	return d.cfg, nil
}

func (d *fakeDisplay) SetPowerMode(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.powerLog = append(d.powerLog, on)
	return nil
}

func (d *fakeDisplay) CreateLayer() (Layer, error) {
	d.layer = &fakeLayer{}
	return d.layer, nil
}

func (d *fakeDisplay) DestroyLayer(layer Layer) error {
	d.layerDestroyed = true
	return nil
}

func (d *fakeDisplay) SetClientTarget(slot uint32, buf *GraphicBuffer, acquireFence int, dataspace int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.clientTargetErr != nil {
		return d.clientTargetErr
	}
	d.clientTargetSlots = append(d.clientTargetSlots, slot)
	return nil
}

func (d *fakeDisplay) Validate() (uint32, uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.validateTypes, d.validateRequests, d.validateErr
}

func (d *fakeDisplay) AcceptChanges() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.accepted++
	return nil
}

func (d *fakeDisplay) Present() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.presentErr != nil {
		return -1, d.presentErr
	}
	d.presents++
	return d.retireFence, nil
}

func (d *fakeDisplay) Destroy() error {
	d.destroyed = true
	return nil
}

func (d *fakeDisplay) presentCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presents
}

type fakeDevice struct {
	display     *fakeDisplay
	grallocInit bool
	cb          Callbacks
	closed      bool
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		display: &fakeDisplay{
			cfg: &DisplayConfig{
				Width:         1080,
				Height:        2340,
				VsyncPeriodNs: 16666666,
				DpiX:          400,
				DpiY:          400,
			},
			retireFence: -1,
		},
	}
}

func (d *fakeDevice) InitGralloc() error {
	d.grallocInit = true
	return nil
}

func (d *fakeDevice) RegisterCallbacks(cb Callbacks) error {
	d.cb = cb
	if cb.Hotplug != nil {
		cb.Hotplug(primaryDisplay, true)
	}
	return nil
}

func (d *fakeDevice) GetDisplay(id uint64) (Display, error) {
	if id != primaryDisplay {
		return nil, fmt.Errorf("no display %d", id)
	}
	return d.display, nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func initTestContext(t *testing.T, dev *fakeDevice) *Context {
	t.Helper()
	ctx, err := Init(dev)
	require.NoError(t, err)
	t.Cleanup(ctx.Destroy)
	return ctx
}

func presentFrames(t *testing.T, ctx *Context, n int) {
	t.Helper()
	win := ctx.NativeWindow()
	for i := 0; i < n; i++ {
		buf, err := win.Dequeue()
		require.NoError(t, err)
		require.NoError(t, win.Queue(buf))
	}
	require.Eventually(t, func() bool {
		return ctx.Stats().Frames >= uint32(n)
	}, 2*time.Second, time.Millisecond)
}

func TestInitBringsUpDisplay(t *testing.T) {
	dev := newFakeDevice()
	ctx := initTestContext(t, dev)

	assert.True(t, dev.grallocInit)
	info := ctx.DisplayInfo()
	assert.Equal(t, 1080, info.Width)
	assert.Equal(t, 2340, info.Height)
	assert.InDelta(t, 60.0, info.RefreshRate, 0.1)
	assert.InDelta(t, 68.58, info.PhysWidthMM, 0.01)

	require.NotNil(t, dev.display.layer)
	assert.Equal(t, CompositionClient, dev.display.layer.compositionType)
	assert.Equal(t, BlendNone, dev.display.layer.blendMode)
	assert.Equal(t, 1.0, dev.display.layer.alpha)

	require.NotEmpty(t, dev.display.powerLog)
	assert.True(t, dev.display.powerLog[0], "display should be powered on during init")
}

func TestSecondInitRejected(t *testing.T) {
	dev := newFakeDevice()
	initTestContext(t, dev)

	_, err := Init(newFakeDevice())
	assert.Error(t, err)
}

func TestBufferSlotsRotate(t *testing.T) {
	dev := newFakeDevice()
	ctx := initTestContext(t, dev)

	presentFrames(t, ctx, 7)

	stats := ctx.Stats()
	assert.Equal(t, uint32(7), stats.Frames)
	assert.Equal(t, uint32(0), stats.Errors)
	assert.Equal(t, []uint32{0, 1, 2, 0, 1, 2, 0}, dev.display.layer.slotHistory())
	assert.Equal(t, 7, dev.display.presentCount())
}

func TestValidateChangesAccepted(t *testing.T) {
	dev := newFakeDevice()
	dev.display.validateTypes = 1
	dev.display.validateErr = ErrHasChanges
	ctx := initTestContext(t, dev)

	presentFrames(t, ctx, 1)

	stats := ctx.Stats()
	assert.Equal(t, uint32(0), stats.Errors, "HasChanges is not an error")
	assert.Equal(t, 1, dev.display.accepted)
	assert.Equal(t, 1, dev.display.presentCount())
}

func TestValidateFailureSkipsPresent(t *testing.T) {
	dev := newFakeDevice()
	dev.display.validateErr = Error(2)
	ctx := initTestContext(t, dev)

	win := ctx.NativeWindow()
	buf, err := win.Dequeue()
	require.NoError(t, err)
	require.NoError(t, win.Queue(buf))

	require.Eventually(t, func() bool {
		return ctx.Stats().Errors >= 1
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, 0, dev.display.presentCount(), "present must be skipped after failed validate")
	assert.Equal(t, uint32(1), ctx.Stats().Frames, "frame counter still advances")
}

func TestRetireFenceWrittenBack(t *testing.T) {
	dev := newFakeDevice()
	dev.display.retireFence = 42
	ctx := initTestContext(t, dev)

	win := ctx.NativeWindow()
	buf, err := win.Dequeue()
	require.NoError(t, err)
	require.NoError(t, win.Queue(buf))

	require.Eventually(t, func() bool {
		return ctx.Stats().Frames == 1
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, 42, buf.ReleaseFence)
}

func TestDisplayInfoFallbacks(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("FLICK_DISPLAY_WIDTH", "720")
		t.Setenv("FLICK_DISPLAY_HEIGHT", "1520")

		d := &fakeDisplay{cfgErr: fmt.Errorf("no config")}
		info := resolveDisplayInfo(d)
		assert.Equal(t, 720, info.Width)
		assert.Equal(t, 1520, info.Height)
		assert.InDelta(t, 60.0, info.RefreshRate, 0.1)
	})

	t.Run("stock phone mode", func(t *testing.T) {
		t.Setenv("FLICK_DISPLAY_WIDTH", "")
		t.Setenv("FLICK_DISPLAY_HEIGHT", "")

		d := &fakeDisplay{cfgErr: fmt.Errorf("no config")}
		info := resolveDisplayInfo(d)
		assert.Equal(t, fallbackWidth, info.Width)
		assert.Equal(t, fallbackHeight, info.Height)
		assert.Equal(t, int64(fallbackVsyncPeriodNs), info.VsyncPeriodNs)
	})

	t.Run("missing vsync period", func(t *testing.T) {
		d := &fakeDisplay{cfg: &DisplayConfig{Width: 1080, Height: 1920}}
		info := resolveDisplayInfo(d)
		assert.Equal(t, int64(fallbackVsyncPeriodNs), info.VsyncPeriodNs)
	})
}

func TestVsyncGatedByEnable(t *testing.T) {
	dev := newFakeDevice()
	ctx := initTestContext(t, dev)

	var mu sync.Mutex
	var stamps []int64
	ctx.SetVsyncCallback(func(ts int64) {
		mu.Lock()
		stamps = append(stamps, ts)
		mu.Unlock()
	})

	dev.cb.Vsync(primaryDisplay, 111)
	ctx.SetVsyncEnabled(true)
	dev.cb.Vsync(primaryDisplay, 222)
	dev.cb.Vsync(1, 333) // other display, ignored
	ctx.SetVsyncEnabled(false)
	dev.cb.Vsync(primaryDisplay, 444)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int64{222}, stamps)
}

func TestDestroyTearsDown(t *testing.T) {
	dev := newFakeDevice()
	ctx, err := Init(dev)
	require.NoError(t, err)

	ctx.Destroy()

	assert.True(t, dev.display.layerDestroyed)
	assert.True(t, dev.display.destroyed)
	assert.True(t, dev.closed)
	require.NotEmpty(t, dev.display.powerLog)
	assert.False(t, dev.display.powerLog[len(dev.display.powerLog)-1], "display powered off last")

	// A fresh context may now be created
	ctx2, err := Init(newFakeDevice())
	require.NoError(t, err)
	ctx2.Destroy()
}

func TestWindowDequeueBlocksWhenExhausted(t *testing.T) {
	// No present callback, so queued buffers never return to the pool
	win := NewWindow(4, 4, nil)
	defer win.Close()

	// The window owns three slots; after three dequeues the pool is dry
	var held []*GraphicBuffer
	for i := 0; i < windowBufferCount; i++ {
		buf, err := win.Dequeue()
		require.NoError(t, err)
		held = append(held, buf)
	}

	done := make(chan struct{})
	go func() {
		win.Dequeue()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Dequeue should block with all slots held")
	case <-time.After(50 * time.Millisecond):
	}

	win.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dequeue should unblock on Close")
	}
	_ = held
}
