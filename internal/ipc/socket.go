// Package ipc implements the compositor's control socket: a Unix socket
// carrying length-prefixed protobuf messages for status queries and
// view commands.
package ipc

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/flickwm/flick/internal/logger"
	pb "github.com/flickwm/flick/internal/proto"
	"google.golang.org/protobuf/proto"
)

// SocketServer handles incoming IPC connections
type SocketServer struct {
	mu         sync.Mutex
	listener   net.Listener
	socketPath string
	handler    MessageHandler
	wg         sync.WaitGroup
	cancel     context.CancelFunc
	running    bool
}

// MessageHandler defines the interface for handling IPC messages
type MessageHandler interface {
	HandleStatusQuery(query *pb.StatusQuery) (*pb.IPCMessage, error)
	HandleViewCommand(cmd *pb.ViewCommand) (*pb.IPCMessage, error)
}

// NewSocketServer creates a new socket server
func NewSocketServer(handler MessageHandler) (*SocketServer, error) {
	socketPath, err := getSocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}

	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// NewSocketServerAt creates a socket server on an explicit path
func NewSocketServerAt(socketPath string, handler MessageHandler) *SocketServer {
	return &SocketServer{
		socketPath: socketPath,
		handler:    handler,
	}
}

// SocketPath returns the path the server listens on
func (s *SocketServer) SocketPath() string {
	return s.socketPath
}

// Start starts the socket server
func (s *SocketServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	// Remove existing socket file if it exists
	if err := os.RemoveAll(s.socketPath); err != nil {
		return fmt.Errorf("failed to remove existing socket: %w", err)
	}

	// Create socket directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	// User-only access
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.listener = listener
	s.running = true

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go s.acceptConnections(ctx)

	logger.Infof("IPC socket server started at %s", s.socketPath)
	return nil
}

// Stop stops the socket server
func (s *SocketServer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	if s.cancel != nil {
		s.cancel()
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.wg.Wait()

	os.RemoveAll(s.socketPath)

	logger.Info("IPC socket server stopped")
}

// acceptConnections accepts and handles incoming connections
func (s *SocketServer) acceptConnections(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					logger.Errorf("Failed to accept connection: %v", err)
					continue
				}
			}

			s.wg.Add(1)
			go s.handleConnection(ctx, conn)
		}
	}
}

// handleConnection handles a single client connection
func (s *SocketServer) handleConnection(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	logger.Debug("New IPC connection established")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := readMessage(conn)
			if err != nil {
				logger.Debugf("Connection closed or read error: %v", err)
				return
			}

			response := s.handleMessage(msg)
			if err := writeMessage(conn, response); err != nil {
				logger.Errorf("Failed to send response: %v", err)
				return
			}
		}
	}
}

// handleMessage processes a single message and returns a response
func (s *SocketServer) handleMessage(msg *pb.IPCMessage) *pb.IPCMessage {
	switch msg.Type {
	case pb.MessageType_STATUS:
		query, err := GetStatusQuery(msg)
		if err != nil {
			return NewErrorMessage(fmt.Sprintf("Invalid status query: %v", err))
		}

		response, err := s.handler.HandleStatusQuery(query)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	case pb.MessageType_VIEW:
		cmd, err := GetViewCommand(msg)
		if err != nil {
			return NewErrorMessage(fmt.Sprintf("Invalid view command: %v", err))
		}

		response, err := s.handler.HandleViewCommand(cmd)
		if err != nil {
			return NewErrorMessage(err.Error())
		}
		return response

	default:
		return NewErrorMessage(fmt.Sprintf("Unknown message type: %s", msg.Type))
	}
}

// readMessage reads a length-prefixed protobuf message from the connection
func readMessage(conn net.Conn) (*pb.IPCMessage, error) {
	// Message length, 4 bytes big endian
	var length uint32
	if err := binary.Read(conn, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("failed to read message length: %w", err)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(conn, data); err != nil {
		return nil, fmt.Errorf("failed to read message data: %w", err)
	}

	var msg pb.IPCMessage
	if err := proto.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

// writeMessage writes a length-prefixed protobuf message to the connection
func writeMessage(conn net.Conn, msg *pb.IPCMessage) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	length := uint32(len(data)) //nolint:gosec // message length within uint32 range
	if err := binary.Write(conn, binary.BigEndian, length); err != nil {
		return fmt.Errorf("failed to write message length: %w", err)
	}

	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("failed to write message data: %w", err)
	}

	return nil
}

// getSocketPath returns the path for the Unix socket
func getSocketPath() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return filepath.Join(runtimeDir, "flick-ipc.sock"), nil
	}

	// No runtime dir, use a per-user tmp directory
	return filepath.Join("/tmp", fmt.Sprintf("flick-%d", os.Getuid()), "ipc.sock"), nil
}

// GetSocketPath returns the socket path (for use by clients)
func GetSocketPath() (string, error) {
	return getSocketPath()
}
