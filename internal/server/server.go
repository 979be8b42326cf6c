// Package server assembles the compositor: backend, scene graph,
// shell, input routing, window management, and the control socket.
package server

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/flickwm/flick/internal/backend"
	"github.com/flickwm/flick/internal/config"
	"github.com/flickwm/flick/internal/gesture"
	"github.com/flickwm/flick/internal/input"
	"github.com/flickwm/flick/internal/ipc"
	"github.com/flickwm/flick/internal/logger"
	"github.com/flickwm/flick/internal/output"
	pb "github.com/flickwm/flick/internal/proto"
	"github.com/flickwm/flick/internal/scene"
	"github.com/flickwm/flick/internal/shell"
	"github.com/flickwm/flick/internal/view"
)

// Display name advertised to clients
const waylandDisplay = "flick-0"

// Initial coordinate space before the first output reports its mode
const (
	defaultWidth  = 1280
	defaultHeight = 720
)

// terminalCandidates are probed in order when no terminal is
// configured
var terminalCandidates = []string{
	"/usr/bin/foot",
	"/usr/bin/alacritty",
	"/usr/bin/weston-terminal",
}

// Server is the running compositor
type Server struct {
	mu sync.Mutex

	cfg *config.Config

	backend  backend.Backend
	renderer backend.Renderer
	seat     backend.Seat

	tree       *scene.Tree
	background *scene.Rect

	shell    *shell.Shell
	gestures *gesture.Recognizer
	views    *view.Manager
	outputs  *output.Manager
	inputs   *input.Manager
	scanner  *input.EvdevScanner
	sock     *ipc.SocketServer

	subs backend.Subscriptions

	// events is the main-loop queue. Everything that originates on a
	// foreign thread, such as HWC vsync, evdev readers, or the
	// control socket, is posted here and runs on the Run goroutine,
	// so compositor state is only ever touched from one place.
	events chan func()
	// quit closes when the main loop stops draining events
	quit     chan struct{}
	quitOnce sync.Once

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New builds the compositor on the given backend. Nothing runs until
// Run is called.
func New(cfg *config.Config, b backend.Backend) (*Server, error) {
	s := &Server{
		cfg:     cfg,
		backend: b,
		events:  make(chan func(), 256),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	renderer, err := b.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer

	w, h := defaultWidth, defaultHeight
	if cfg.Display.Width > 0 && cfg.Display.Height > 0 {
		w, h = cfg.Display.Width, cfg.Display.Height
	}

	s.tree = scene.NewTree()
	s.background = s.tree.NewRect(w, h, backend.Color{A: 1})

	startView, ok := shell.ParseView(cfg.Shell.StartView)
	if !ok {
		logger.Warnf("Unknown start view %q, starting at home", cfg.Shell.StartView)
	}
	s.shell = shell.New(startView, cfg.Shell.AnimationMs, shell.Hooks{
		RequestRender: func() { s.outputs.ScheduleAll() },
		ShowKeyboard:  s.showKeyboard,
		CloseApp:      func() { s.views.CloseFocused() },
	})

	s.seat = b.NewSeat("seat0")
	s.gestures = gesture.New(w, h, gestureConfig(cfg))

	s.views = view.NewManager(s.tree.NewSubtree(), view.Hooks{
		OnFocus: func(v *view.View) {
			logger.Debugf("Server: focus -> %q", v.Title())
		},
		OnMapped: func(v *view.View) {
			s.shell.GoToView(shell.ViewApp)
		},
		OnEmpty: func() {
			if s.shell.CurrentView() == shell.ViewApp {
				s.shell.GoToView(shell.ViewHome)
			}
		},
	})

	s.outputs = output.NewManager(renderer, s.tree, s.background, s.shell,
		cfg.Display.WarmupFrames, s.handleOutputSize)

	s.inputs = input.NewManager(s.seat, s.shell, s.gestures, b.Session(), w, h, input.Hooks{
		Terminate: s.Terminate,
		FocusNext: func() { s.views.FocusNext() },
		CloseApp:  func() { s.views.CloseFocused() },
	})

	backend.On(b.OnNewOutput(), &s.subs, s.outputs.HandleNewOutput)
	backend.On(b.OnNewInput(), &s.subs, s.inputs.AddDevice)
	backend.On(b.OnNewToplevel(), &s.subs, func(tl backend.Toplevel) { s.views.AddToplevel(tl) })

	if session := b.Session(); session != nil {
		backend.On(session.OnActive(), &s.subs, func(active bool) {
			logger.Infof("Server: session active=%t", active)
			if active {
				s.outputs.ScheduleAll()
			}
		})
	}

	return s, nil
}

func gestureConfig(cfg *config.Config) gesture.Config {
	return gesture.Config{
		EdgeThreshold:          cfg.Gesture.EdgeThreshold,
		SwipeThreshold:         cfg.Gesture.SwipeThreshold,
		SwipeCompleteThreshold: cfg.Gesture.SwipeCompleteThreshold,
		SwipeLongThreshold:     cfg.Gesture.SwipeLongThreshold,
		LongPressMs:            cfg.Gesture.LongPressMs,
		TapMs:                  cfg.Gesture.TapMs,
		TapDistance:            cfg.Gesture.TapDistance,
		FlickVelocity:          cfg.Gesture.FlickVelocity,
	}
}

// handleOutputSize propagates a mode change to every coordinate
// consumer
func (s *Server) handleOutputSize(w, h int) {
	logger.Infof("Server: output size %dx%d", w, h)
	s.background.SetSize(w, h)
	s.inputs.SetScreenSize(w, h)
	s.views.SetOutputSize(w, h)
}

// Run starts the compositor and blocks until the context is cancelled
// or Terminate is called.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	defer func() {
		s.stopLoop()
		close(s.done)
	}()

	if err := os.Setenv("WAYLAND_DISPLAY", waylandDisplay); err != nil {
		logger.Warnf("Failed to export WAYLAND_DISPLAY: %v", err)
	}

	sock, err := ipc.NewSocketServer(s)
	if err != nil {
		return fmt.Errorf("failed to create control socket: %w", err)
	}
	s.sock = sock
	if err := sock.Start(); err != nil {
		return fmt.Errorf("failed to start control socket: %w", err)
	}

	// Backends and device sources with foreign event threads hand
	// their emissions to the main loop below.
	if d, ok := s.backend.(backend.Dispatcher); ok {
		d.SetDispatch(s.post)
	}

	if err := s.backend.Start(); err != nil {
		sock.Stop()
		return fmt.Errorf("failed to start backend: %w", err)
	}

	// The hwcomposer backend has no input devices of its own; feed
	// the manager from the kernel directly.
	if _, ok := s.backend.(*backend.HWCBackend); ok {
		w, h := s.outputs.PrimarySize()
		if w == 0 || h == 0 {
			w, h = defaultWidth, defaultHeight
		}
		if pinned := s.cfg.Input.DevicePaths(); len(pinned) > 0 {
			logger.Infof("Input devices pinned by config: %v", pinned)
			s.scanner = input.NewEvdevScannerWithDevices(w, h, pinned)
		} else {
			s.scanner = input.NewEvdevScanner(w, h)
		}
		s.scanner.SetDispatch(s.post)
		backend.On(s.scanner.OnNewDevice(), &s.subs, s.inputs.AddDevice)
		if err := s.scanner.Start(); err != nil {
			logger.Errorf("Failed to start device scanner: %v", err)
		}
	}

	s.launchTerminal(ctx)
	s.outputs.ScheduleAll()
	logger.Infof("Compositor running on %s", waylandDisplay)

	for {
		select {
		case <-ctx.Done():
			s.stopLoop()
			s.shutdown()
			return nil
		case fn := <-s.events:
			fn()
		}
	}
}

// stopLoop marks the main loop as no longer draining, unblocking any
// goroutine waiting in runOn
func (s *Server) stopLoop() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// post queues fn on the main loop. Safe from any goroutine; when the
// queue is full the event is dropped rather than blocking a hardware
// event thread.
func (s *Server) post(fn func()) {
	select {
	case s.events <- fn:
	default:
		logger.Warn("Server: event queue full, dropping event")
	}
}

// runOn executes fn on the main loop and waits for it. Used by the
// control-socket goroutines so their reads and writes are serialized
// with everything else.
func (s *Server) runOn(fn func()) error {
	ran := make(chan struct{})
	select {
	case s.events <- func() { fn(); close(ran) }:
	case <-s.quit:
		return fmt.Errorf("server is shutting down")
	}
	select {
	case <-ran:
		return nil
	case <-s.quit:
		return fmt.Errorf("server is shutting down")
	}
}

// Terminate asks a running server to shut down
func (s *Server) Terminate() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the server has finished shutting down
func (s *Server) Wait() {
	<-s.done
}

// Unlock leaves the lock screen
func (s *Server) Unlock() {
	if err := s.runOn(s.shell.Unlock); err != nil {
		logger.Debugf("Server: unlock skipped: %v", err)
	}
}

// shutdown tears components down in reverse bringup order
func (s *Server) shutdown() {
	logger.Info("Server: shutting down")
	if s.scanner != nil {
		s.scanner.Stop()
	}
	if s.sock != nil {
		s.sock.Stop()
	}
	s.subs.Release()
	s.backend.Destroy()
	s.renderer.Destroy()
}

// launchTerminal starts the configured terminal, or probes for a
// known one, so a freshly booted device has something to run.
func (s *Server) launchTerminal(ctx context.Context) {
	term := os.Getenv("FLICK_TERMINAL")
	if term == "" {
		term = s.cfg.Shell.Terminal
	}
	if term == "" {
		for _, candidate := range terminalCandidates {
			if _, err := os.Stat(candidate); err == nil {
				term = candidate
				break
			}
		}
	}
	if term == "" {
		logger.Info("No terminal found, skipping autolaunch")
		return
	}

	cmd := exec.CommandContext(ctx, term)
	cmd.Env = append(os.Environ(), "WAYLAND_DISPLAY="+waylandDisplay)
	if err := cmd.Start(); err != nil {
		logger.Warnf("Failed to launch terminal %s: %v", term, err)
		return
	}
	logger.Infof("Launched terminal %s (pid %d)", term, cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			logger.Debugf("Terminal exited: %v", err)
		}
	}()
}

func (s *Server) showKeyboard() {
	// On-screen keyboard is an external service; nothing to raise yet
	logger.Info("Server: on-screen keyboard requested")
}

func toProtoView(v shell.View) pb.ShellView {
	switch v {
	case shell.ViewLock:
		return pb.ShellView_LOCK
	case shell.ViewHome:
		return pb.ShellView_HOME
	case shell.ViewApp:
		return pb.ShellView_APP
	case shell.ViewAppSwitcher:
		return pb.ShellView_APP_SWITCHER
	case shell.ViewQuickSettings:
		return pb.ShellView_QUICK_SETTINGS
	default:
		return pb.ShellView_SHELL_VIEW_UNSPECIFIED
	}
}

func fromProtoView(v pb.ShellView) (shell.View, bool) {
	switch v {
	case pb.ShellView_LOCK:
		return shell.ViewLock, true
	case pb.ShellView_HOME:
		return shell.ViewHome, true
	case pb.ShellView_APP:
		return shell.ViewApp, true
	case pb.ShellView_APP_SWITCHER:
		return shell.ViewAppSwitcher, true
	case pb.ShellView_QUICK_SETTINGS:
		return shell.ViewQuickSettings, true
	default:
		return shell.ViewHome, false
	}
}

// buildStatus snapshots the compositor state. Runs on the main loop.
func (s *Server) buildStatus() *pb.StatusResponse {
	w, h := s.outputs.PrimarySize()
	resp := &pb.StatusResponse{
		View:          toProtoView(s.shell.CurrentView()),
		Transitioning: s.shell.IsTransitioning(),
		Progress:      s.shell.TransitionProgress(),
		OutputWidth:   int32(w),
		OutputHeight:  int32(h),
		FrameCount:    s.outputs.TotalFrames(),
		ViewCount:     uint32(s.views.Count()),
	}
	if s.sock != nil {
		resp.Socket = s.sock.SocketPath()
	}
	if hwcBackend, ok := s.backend.(*backend.HWCBackend); ok {
		resp.ErrorCount = uint32(hwcBackend.Stats().Errors)
	}
	return resp
}

// HandleStatusQuery answers a status request on the control socket
func (s *Server) HandleStatusQuery(query *pb.StatusQuery) (*pb.IPCMessage, error) {
	var resp *pb.IPCMessage
	err := s.runOn(func() {
		resp = ipc.NewStatusResponseMessage(s.buildStatus())
	})
	return resp, err
}

// HandleViewCommand switches the shell view on behalf of the CLI.
// The lock screen can only be left through Unlock, never over the
// socket.
func (s *Server) HandleViewCommand(cmd *pb.ViewCommand) (*pb.IPCMessage, error) {
	target, ok := fromProtoView(cmd.GetView())
	if !ok {
		return ipc.NewErrorMessage(fmt.Sprintf("unknown view %d", cmd.GetView())), nil
	}

	var resp *pb.IPCMessage
	err := s.runOn(func() {
		if s.shell.CurrentView() == shell.ViewLock && target != shell.ViewLock {
			resp = ipc.NewErrorMessage("shell is locked")
			return
		}
		if target == shell.ViewLock {
			s.shell.Lock()
		} else {
			s.shell.GoToView(target)
		}
		logger.Infof("Server: view command -> %s", target)
		resp = ipc.NewStatusResponseMessage(s.buildStatus())
	})
	return resp, err
}
