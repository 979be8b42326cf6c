// Package output manages displays: mode setup on hotplug, the
// per-frame render loop, and the choice between scene rendering and
// the manual hwcomposer path.
package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/logger"
	"github.com/flickwm/flick/internal/scene"
	"github.com/flickwm/flick/internal/shell"
)

// hwcNamePrefix marks outputs that need the manual render path. The
// hwcomposer EGL stack cannot run the scene renderer's output commit,
// so those outputs get a hand-built pass instead.
const hwcNamePrefix = "HWCOMPOSER"

// Manager owns every connected output
type Manager struct {
	renderer   backend.Renderer
	tree       *scene.Tree
	background *scene.Rect
	shell      *shell.Shell

	warmupFrames int
	outputs      []*managedOutput

	// onSize fires when the primary output size changes
	onSize func(w, h int)

	totalFrames uint32

	now func() time.Time
}

type managedOutput struct {
	out        backend.Output
	sceneOut   *scene.Output
	frameCount int
	lastFrame  time.Time
	subs       backend.Subscriptions
}

// NewManager creates the output manager. warmupFrames frames are
// skipped on each new output while the display pipeline settles.
func NewManager(renderer backend.Renderer, tree *scene.Tree, background *scene.Rect, sh *shell.Shell, warmupFrames int, onSize func(w, h int)) *Manager {
	return &Manager{
		renderer:     renderer,
		tree:         tree,
		background:   background,
		shell:        sh,
		warmupFrames: warmupFrames,
		onSize:       onSize,
		now:          time.Now,
	}
}

// HandleNewOutput brings up a hotplugged output
func (m *Manager) HandleNewOutput(out backend.Output) {
	mode := out.PreferredMode()
	if mode == nil {
		logger.Errorf("Output %s has no preferred mode, ignoring", out.Name())
		return
	}

	enabled := true
	if err := out.Commit(&backend.OutputState{Enabled: &enabled, Mode: mode}); err != nil {
		logger.Errorf("Failed to enable output %s: %v", out.Name(), err)
		return
	}

	w, h := out.Size()
	logger.Infof("Output %s: %dx%d", out.Name(), w, h)

	mo := &managedOutput{
		out:      out,
		sceneOut: scene.NewOutput(m.tree, out, m.renderer),
	}
	backend.On(out.OnFrame(), &mo.subs, func(struct{}) { m.handleFrame(mo) })
	backend.On(out.OnDestroy(), &mo.subs, func(struct{}) { m.handleDestroy(mo) })
	m.outputs = append(m.outputs, mo)

	m.background.SetSize(w, h)
	if m.onSize != nil {
		m.onSize(w, h)
	}

	out.ScheduleFrame()
}

func (m *Manager) handleDestroy(mo *managedOutput) {
	mo.subs.Release()
	for i, other := range m.outputs {
		if other == mo {
			m.outputs = append(m.outputs[:i], m.outputs[i+1:]...)
			break
		}
	}
	logger.Infof("Output %s removed", mo.out.Name())
}

func (m *Manager) handleFrame(mo *managedOutput) {
	now := m.now()

	// Advance shell animation by wall-clock delta
	if !mo.lastFrame.IsZero() {
		m.shell.Update(float64(now.Sub(mo.lastFrame)) / float64(time.Millisecond))
	}
	mo.lastFrame = now

	m.background.SetColor(toBackendColor(m.shell.CurrentColor()))

	// The first frames after bringup hit the pipeline before buffers
	// and fences settle; skip them.
	if mo.frameCount < m.warmupFrames {
		mo.frameCount++
		mo.out.ScheduleFrame()
		return
	}
	mo.frameCount++

	var err error
	if strings.HasPrefix(mo.out.Name(), hwcNamePrefix) {
		err = m.renderManual(mo)
	} else {
		err = mo.sceneOut.Commit()
	}
	if err != nil {
		logger.Errorf("Frame on %s failed: %v", mo.out.Name(), err)
	} else {
		m.totalFrames++
	}

	mo.out.SendFrameDone(now)

	if m.shell.IsTransitioning() {
		mo.out.ScheduleFrame()
	}
}

// renderManual builds the frame by hand: acquire a swapchain buffer,
// clear it to the shell color, and commit it with full damage.
func (m *Manager) renderManual(mo *managedOutput) error {
	sc, err := mo.out.Swapchain()
	if err != nil {
		return fmt.Errorf("failed to configure swapchain: %w", err)
	}

	buf, err := sc.Acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire buffer: %w", err)
	}

	pass, err := m.renderer.BeginPassForOutput(buf, mo.out)
	if err != nil {
		buf.Unlock()
		return fmt.Errorf("failed to begin render pass: %w", err)
	}

	w, h := buf.Size()
	full := backend.Box{Width: w, Height: h}
	pass.AddRect(full, toBackendColor(m.shell.CurrentColor()), nil)

	if err := pass.Submit(); err != nil {
		buf.Unlock()
		return fmt.Errorf("failed to submit render pass: %w", err)
	}

	if err := mo.out.Commit(&backend.OutputState{Buffer: buf, Damage: &full}); err != nil {
		buf.Unlock()
		return fmt.Errorf("failed to commit output: %w", err)
	}
	return nil
}

// ScheduleAll requests a new frame on every output
func (m *Manager) ScheduleAll() {
	for _, mo := range m.outputs {
		mo.out.ScheduleFrame()
	}
}

// PrimarySize returns the size of the first output, zero without one
func (m *Manager) PrimarySize() (int, int) {
	if len(m.outputs) == 0 {
		return 0, 0
	}
	return m.outputs[0].out.Size()
}

// TotalFrames counts the frames committed across all outputs
func (m *Manager) TotalFrames() uint32 {
	return m.totalFrames
}

func toBackendColor(c shell.Color) backend.Color {
	return backend.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
