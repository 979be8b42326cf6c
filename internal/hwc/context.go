package hwc

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flickwm/flick/internal/logger"
)

const (
	primaryDisplay = 0

	fallbackWidth         = 1080
	fallbackHeight        = 2340
	fallbackVsyncPeriodNs = 16666666

	errorLogInterval = 60
	frameLogInterval = 300
)

// DisplayInfo describes the driven panel
type DisplayInfo struct {
	Width, Height int
	RefreshRate   float64
	VsyncPeriodNs int64
	PhysWidthMM   float64
	PhysHeightMM  float64
}

// Stats is a snapshot of the present counters
type Stats struct {
	Frames uint32
	Errors uint32
}

// Context owns one display, its composition layer, and the native
// window the renderer draws into. At most one context exists per
// process.
type Context struct {
	device  Device
	display Display
	layer   Layer
	window  *Window

	info DisplayInfo

	frameCount atomic.Uint32
	errorCount atomic.Uint32
	bufferSlot atomic.Uint32

	vsyncEnabled atomic.Bool
	vsyncMu      sync.Mutex
	vsyncCB      func(timestampNs int64)
}

var (
	globalMu sync.Mutex
	global   *Context
)

// Init brings up the primary display on the given device: unblank,
// gralloc, event callbacks, display mode, power, composition layer,
// and the native window. Destroy undoes all of it.
func Init(dev Device) (*Context, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return nil, fmt.Errorf("hwc context already initialized")
	}

	if err := os.Setenv("EGL_PLATFORM", "hwcomposer"); err != nil {
		return nil, fmt.Errorf("failed to set EGL_PLATFORM: %w", err)
	}

	// Panels often come up dark after boot
	UnblankDisplay()

	if err := dev.InitGralloc(); err != nil {
		return nil, fmt.Errorf("gralloc init failed: %w", err)
	}

	ctx := &Context{device: dev}

	err := dev.RegisterCallbacks(Callbacks{
		Vsync: ctx.handleVsync,
		Hotplug: func(display uint64, connected bool) {
			logger.Infof("HWC hotplug: display %d connected=%v", display, connected)
		},
		Refresh: func(display uint64) {
			logger.Debugf("HWC refresh request for display %d", display)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register callbacks: %w", err)
	}

	// The initial hotplug arrives asynchronously right after callback
	// registration; give it time to land before resolving the display.
	time.Sleep(100 * time.Millisecond)

	display, err := dev.GetDisplay(primaryDisplay)
	if err != nil {
		return nil, fmt.Errorf("failed to get primary display: %w", err)
	}
	ctx.display = display

	ctx.info = resolveDisplayInfo(display)
	logger.Infof("HWC display: %dx%d @ %.1f Hz (%.0fx%.0f mm)",
		ctx.info.Width, ctx.info.Height, ctx.info.RefreshRate,
		ctx.info.PhysWidthMM, ctx.info.PhysHeightMM)

	if err := display.SetPowerMode(true); err != nil {
		return nil, fmt.Errorf("failed to power display: %w", err)
	}

	layer, err := display.CreateLayer()
	if err != nil {
		return nil, fmt.Errorf("failed to create layer: %w", err)
	}
	ctx.layer = layer

	w, h := ctx.info.Width, ctx.info.Height
	if err := configureLayer(layer, w, h); err != nil {
		return nil, err
	}

	ctx.window = NewWindow(w, h, ctx.presentBuffer)

	// Some panels blank again during bringup
	UnblankDisplay()

	global = ctx
	logger.Info("HWC context initialized")
	return ctx, nil
}

func configureLayer(layer Layer, w, h int) error {
	if err := layer.SetCompositionType(CompositionClient); err != nil {
		return fmt.Errorf("failed to set composition type: %w", err)
	}
	if err := layer.SetBlendMode(BlendNone); err != nil {
		return fmt.Errorf("failed to set blend mode: %w", err)
	}
	if err := layer.SetSourceCrop(0, 0, float64(w), float64(h)); err != nil {
		return fmt.Errorf("failed to set source crop: %w", err)
	}
	if err := layer.SetDisplayFrame(0, 0, int32(w), int32(h)); err != nil {
		return fmt.Errorf("failed to set display frame: %w", err)
	}
	if err := layer.SetVisibleRegion(0, 0, int32(w), int32(h)); err != nil {
		return fmt.Errorf("failed to set visible region: %w", err)
	}
	if err := layer.SetPlaneAlpha(1.0); err != nil {
		return fmt.Errorf("failed to set plane alpha: %w", err)
	}
	return nil
}

// resolveDisplayInfo takes the active config when the panel reports
// one, otherwise falls through env overrides and the framebuffer to a
// stock phone mode.
func resolveDisplayInfo(display Display) DisplayInfo {
	if cfg, err := display.ActiveConfig(); err == nil && cfg.Width > 0 && cfg.Height > 0 {
		info := DisplayInfo{
			Width:         cfg.Width,
			Height:        cfg.Height,
			VsyncPeriodNs: cfg.VsyncPeriodNs,
		}
		if info.VsyncPeriodNs <= 0 {
			info.VsyncPeriodNs = fallbackVsyncPeriodNs
		}
		info.RefreshRate = 1e9 / float64(info.VsyncPeriodNs)
		if cfg.DpiX > 0 {
			info.PhysWidthMM = float64(cfg.Width) / cfg.DpiX * 25.4
		}
		if cfg.DpiY > 0 {
			info.PhysHeightMM = float64(cfg.Height) / cfg.DpiY * 25.4
		}
		return info
	}

	w, h := fallbackWidth, fallbackHeight
	if ew, err := strconv.Atoi(os.Getenv("FLICK_DISPLAY_WIDTH")); err == nil && ew > 0 {
		if eh, err := strconv.Atoi(os.Getenv("FLICK_DISPLAY_HEIGHT")); err == nil && eh > 0 {
			w, h = ew, eh
			logger.Warnf("No active config, using env display size %dx%d", w, h)
			return fallbackInfo(w, h)
		}
	}

	if fw, fh, err := fbVirtualSize(); err == nil {
		logger.Warnf("No active config, using framebuffer size %dx%d", fw, fh)
		return fallbackInfo(fw, fh)
	}

	logger.Warnf("No active config, assuming %dx%d@60", w, h)
	return fallbackInfo(w, h)
}

func fallbackInfo(w, h int) DisplayInfo {
	return DisplayInfo{
		Width:         w,
		Height:        h,
		VsyncPeriodNs: fallbackVsyncPeriodNs,
		RefreshRate:   1e9 / float64(fallbackVsyncPeriodNs),
	}
}

// presentBuffer runs on the window queue goroutine for every frame the
// renderer finishes.
func (c *Context) presentBuffer(buf *GraphicBuffer) {
	count := c.frameCount.Add(1) - 1
	fence := buf.AcquireFence
	slot := (c.bufferSlot.Add(1) - 1) % windowBufferCount

	if err := c.layer.SetBuffer(slot, buf, fence); err != nil {
		c.noteError("set layer buffer", err)
	}

	if err := c.display.SetClientTarget(slot, buf, fence, 0); err != nil {
		c.noteError("set client target", err)
	}

	numTypes, numRequests, err := c.display.Validate()
	if err != nil && !errors.Is(err, ErrHasChanges) {
		c.noteError("validate", err)
		return
	}
	if numTypes > 0 || numRequests > 0 {
		if err := c.display.AcceptChanges(); err != nil {
			c.noteError("accept changes", err)
		}
	}

	retireFence, err := c.display.Present()
	if err != nil {
		c.noteError("present", err)
	}
	if retireFence >= 0 {
		buf.ReleaseFence = retireFence
	}

	if (count+1)%frameLogInterval == 0 {
		logger.Debugf("HWC presented %d frames (%d errors)", count+1, c.errorCount.Load())
	}
}

func (c *Context) noteError(op string, err error) {
	n := c.errorCount.Add(1)
	if n%errorLogInterval == 1 {
		logger.Errorf("HWC %s failed (error %d): %v", op, n, err)
	}
}

func (c *Context) handleVsync(display uint64, timestampNs int64) {
	if display != primaryDisplay || !c.vsyncEnabled.Load() {
		return
	}
	c.vsyncMu.Lock()
	cb := c.vsyncCB
	c.vsyncMu.Unlock()
	if cb != nil {
		cb(timestampNs)
	}
}

// DisplayInfo returns the resolved panel description
func (c *Context) DisplayInfo() DisplayInfo {
	return c.info
}

// NativeWindow returns the window the renderer draws into
func (c *Context) NativeWindow() *Window {
	return c.window
}

// SetPower switches the display power mode
func (c *Context) SetPower(on bool) error {
	return c.display.SetPowerMode(on)
}

// SetVsyncEnabled gates vsync callback delivery
func (c *Context) SetVsyncEnabled(enabled bool) {
	c.vsyncEnabled.Store(enabled)
}

// SetVsyncCallback installs the vsync consumer. The callback may run
// on the device's event thread.
func (c *Context) SetVsyncCallback(cb func(timestampNs int64)) {
	c.vsyncMu.Lock()
	c.vsyncCB = cb
	c.vsyncMu.Unlock()
}

// Stats snapshots the present counters
func (c *Context) Stats() Stats {
	return Stats{
		Frames: c.frameCount.Load(),
		Errors: c.errorCount.Load(),
	}
}

// Destroy tears the context down in reverse bringup order
func (c *Context) Destroy() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if err := c.display.SetPowerMode(false); err != nil {
		logger.Warnf("Failed to power off display: %v", err)
	}
	if err := c.display.DestroyLayer(c.layer); err != nil {
		logger.Warnf("Failed to destroy layer: %v", err)
	}
	if err := c.display.Destroy(); err != nil {
		logger.Warnf("Failed to destroy display: %v", err)
	}
	c.window.Close()
	if err := c.device.Close(); err != nil {
		logger.Warnf("Failed to close hwc device: %v", err)
	}

	if global == c {
		global = nil
	}
	logger.Info("HWC context destroyed")
}
