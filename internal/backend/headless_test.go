package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flickwm/flick/internal/hwc"
)

func TestHeadlessQueuesAnnouncementsUntilStart(t *testing.T) {
	h := NewHeadless()

	var outputs []Output
	h.OnNewOutput().Subscribe(func(o Output) { outputs = append(outputs, o) })

	out := h.AddOutput("HEADLESS-1", 1080, 2340)
	assert.Empty(t, outputs, "announcement must wait for Start")

	require.NoError(t, h.Start())
	require.Len(t, outputs, 1)
	assert.Same(t, Output(out), outputs[0])

	// After Start, announcements are immediate
	h.AddOutput("HEADLESS-2", 720, 1520)
	assert.Len(t, outputs, 2)
}

func TestHeadlessOutputCommit(t *testing.T) {
	h := NewHeadless()
	out := h.AddOutput("HEADLESS-1", 1080, 2340)
	require.NoError(t, h.Start())

	mode := out.PreferredMode()
	require.NotNil(t, mode)
	assert.True(t, mode.Preferred)

	require.NoError(t, out.Commit(&OutputState{Mode: mode}))
	w, hgt := out.Size()
	assert.Equal(t, 1080, w)
	assert.Equal(t, 2340, hgt)
	assert.Len(t, out.Commits, 1)
}

func TestHeadlessSwapchainRecycles(t *testing.T) {
	h := NewHeadless()
	out := h.AddOutput("HEADLESS-1", 64, 64)
	require.NoError(t, h.Start())

	sc, err := out.Swapchain()
	require.NoError(t, err)

	var bufs []Buffer
	for i := 0; i < 3; i++ {
		buf, err := sc.Acquire()
		require.NoError(t, err)
		bufs = append(bufs, buf)
	}

	_, err = sc.Acquire()
	assert.Error(t, err, "three buffers locked, pool exhausted")

	bufs[0].Unlock()
	buf, err := sc.Acquire()
	require.NoError(t, err)
	assert.NotNil(t, buf)
}

func TestHeadlessFrameTick(t *testing.T) {
	h := NewHeadless()
	out := h.AddOutput("HEADLESS-1", 64, 64)
	require.NoError(t, h.Start())

	frames := 0
	out.OnFrame().Subscribe(func(struct{}) { frames++ })

	out.TickFrame()
	out.TickFrame()
	assert.Equal(t, 2, frames)
}

func TestRecordingRendererCapturesPasses(t *testing.T) {
	r := NewRecordingRenderer()
	buf := &headlessBuffer{width: 10, height: 10}

	pass, err := r.BeginPass(buf)
	require.NoError(t, err)
	pass.AddRect(Box{Width: 10, Height: 10}, Color{R: 1}, nil)
	require.NoError(t, pass.Submit())

	require.Len(t, r.Passes, 1)
	assert.True(t, r.Passes[0].Submitted)
	require.Len(t, r.Passes[0].Rects, 1)
	assert.Equal(t, Color{R: 1}, r.Passes[0].Rects[0].Color)
}

func TestSoftwareRendererFillsPixels(t *testing.T) {
	buf := &hwcBuffer{gb: hwc.NewGraphicBuffer(4, 2)}
	r := NewSoftwareRenderer()

	pass, err := r.BeginPass(buf)
	require.NoError(t, err)
	pass.AddRect(Box{Width: 4, Height: 2}, Color{R: 1, G: 0.5, B: 0, A: 1}, nil)
	require.NoError(t, pass.Submit())

	px := buf.gb.Pixels
	assert.Equal(t, byte(255), px[0])
	assert.Equal(t, byte(128), px[1])
	assert.Equal(t, byte(0), px[2])
	assert.Equal(t, byte(255), px[3])
	// Last pixel of the buffer got the same fill
	last := len(px) - 4
	assert.Equal(t, byte(255), px[last])
}

func TestSoftwareRendererClips(t *testing.T) {
	buf := &hwcBuffer{gb: hwc.NewGraphicBuffer(4, 4)}
	r := NewSoftwareRenderer()

	pass, err := r.BeginPass(buf)
	require.NoError(t, err)
	clip := Box{X: 0, Y: 0, Width: 2, Height: 4}
	pass.AddRect(Box{Width: 4, Height: 4}, Color{R: 1, A: 1}, &clip)
	require.NoError(t, pass.Submit())

	px := buf.gb.Pixels
	// Column 1 is inside the clip, column 2 is not
	assert.Equal(t, byte(255), px[1*4])
	assert.Equal(t, byte(0), px[2*4])
}

func TestAutocreateFallsBackToHeadless(t *testing.T) {
	t.Setenv("WLR_BACKENDS", "quantum")
	b, err := Autocreate()
	require.NoError(t, err)
	_, ok := b.(*Headless)
	assert.True(t, ok)
}
