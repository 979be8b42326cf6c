package ipc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pb "github.com/flickwm/flick/internal/proto"
)

// MockHandler implements MessageHandler for testing
type MockHandler struct {
	statusCalled bool
	viewCalled   bool
	lastView     pb.ShellView
	statusError  error
	viewError    error
}

func (m *MockHandler) HandleStatusQuery(query *pb.StatusQuery) (*pb.IPCMessage, error) {
	m.statusCalled = true
	if m.statusError != nil {
		return nil, m.statusError
	}
	return NewStatusResponseMessage(&pb.StatusResponse{
		View:         pb.ShellView_HOME,
		OutputWidth:  1080,
		OutputHeight: 2340,
	}), nil
}

func (m *MockHandler) HandleViewCommand(cmd *pb.ViewCommand) (*pb.IPCMessage, error) {
	m.viewCalled = true
	m.lastView = cmd.View
	if m.viewError != nil {
		return nil, m.viewError
	}
	return NewStatusResponseMessage(&pb.StatusResponse{View: cmd.View}), nil
}

func startTestServer(t *testing.T, handler MessageHandler) *SocketServer {
	t.Helper()
	server := NewSocketServerAt(filepath.Join(t.TempDir(), "test.sock"), handler)
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(server.Stop)
	return server
}

func TestSocketServerStartStop(t *testing.T) {
	server := NewSocketServerAt(filepath.Join(t.TempDir(), "test.sock"), &MockHandler{})

	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := os.Stat(server.SocketPath()); os.IsNotExist(err) {
		t.Error("Socket file was not created")
	}

	// Starting again should not error
	if err := server.Start(); err != nil {
		t.Errorf("Start() on running server error = %v", err)
	}

	server.Stop()

	if _, err := os.Stat(server.SocketPath()); !os.IsNotExist(err) {
		t.Error("Socket file was not cleaned up")
	}

	// Stopping again should not panic
	server.Stop()
}

func TestSocketServerCleanupExistingSocket(t *testing.T) {
	server := NewSocketServerAt(filepath.Join(t.TempDir(), "test.sock"), &MockHandler{})

	file, err := os.Create(server.SocketPath())
	if err != nil {
		t.Fatalf("Failed to create dummy socket file: %v", err)
	}
	file.Close()

	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	server.Stop()
}

func TestStatusRoundTrip(t *testing.T) {
	handler := &MockHandler{}
	server := startTestServer(t, handler)

	client := NewClientAt(server.SocketPath())
	resp, err := client.SendStatus()
	if err != nil {
		t.Fatalf("SendStatus() error = %v", err)
	}

	if !handler.statusCalled {
		t.Error("Status handler was not invoked")
	}
	if resp.View != pb.ShellView_HOME {
		t.Errorf("View = %v, want HOME", resp.View)
	}
	if resp.OutputWidth != 1080 || resp.OutputHeight != 2340 {
		t.Errorf("Output size = %dx%d, want 1080x2340", resp.OutputWidth, resp.OutputHeight)
	}
}

func TestViewCommandRoundTrip(t *testing.T) {
	handler := &MockHandler{}
	server := startTestServer(t, handler)

	client := NewClientAt(server.SocketPath())
	resp, err := client.SendView(pb.ShellView_QUICK_SETTINGS)
	if err != nil {
		t.Fatalf("SendView() error = %v", err)
	}

	if !handler.viewCalled {
		t.Error("View handler was not invoked")
	}
	if handler.lastView != pb.ShellView_QUICK_SETTINGS {
		t.Errorf("Handler saw view %v, want QUICK_SETTINGS", handler.lastView)
	}
	if resp.View != pb.ShellView_QUICK_SETTINGS {
		t.Errorf("Response view = %v, want QUICK_SETTINGS", resp.View)
	}
}

func TestHandlerErrorBecomesErrorResponse(t *testing.T) {
	handler := &MockHandler{viewError: fmt.Errorf("cannot leave lock screen")}
	server := startTestServer(t, handler)

	client := NewClientAt(server.SocketPath())
	_, err := client.SendView(pb.ShellView_HOME)
	if err == nil {
		t.Fatal("SendView() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "cannot leave lock screen") {
		t.Errorf("Error %q should carry the handler message", err)
	}
}

func TestClientAgainstStoppedServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.sock")
	client := NewClientAt(path)
	client.timeout = 200 * time.Millisecond

	if _, err := client.SendStatus(); err == nil {
		t.Error("SendStatus() against missing socket should fail")
	}
	if client.IsRunning() {
		t.Error("IsRunning() should be false with no server")
	}
}

func TestGetSocketPath(t *testing.T) {
	t.Run("runtime dir", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
		path, err := GetSocketPath()
		if err != nil {
			t.Fatalf("GetSocketPath() error = %v", err)
		}
		if path != "/run/user/1000/flick-ipc.sock" {
			t.Errorf("path = %s", path)
		}
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv("XDG_RUNTIME_DIR", "")
		path, err := GetSocketPath()
		if err != nil {
			t.Fatalf("GetSocketPath() error = %v", err)
		}
		want := fmt.Sprintf("/tmp/flick-%d/ipc.sock", os.Getuid())
		if path != want {
			t.Errorf("path = %s, want %s", path, want)
		}
	})
}

func TestSocketServerContextCancellation(t *testing.T) {
	server := NewSocketServerAt(filepath.Join(t.TempDir(), "test.sock"), &MockHandler{})
	if err := server.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		server.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Error("Stop() took too long")
	}
}
