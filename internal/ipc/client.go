package ipc

import (
	"fmt"
	"net"
	"time"

	"github.com/flickwm/flick/internal/logger"
	pb "github.com/flickwm/flick/internal/proto"
)

// Client handles IPC communication with a running compositor instance
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() (*Client, error) {
	socketPath, err := GetSocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get socket path: %w", err)
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}, nil
}

// NewClientWithTimeout creates a new IPC client with custom timeout
func NewClientWithTimeout(timeout time.Duration) (*Client, error) {
	client, err := NewClient()
	if err != nil {
		return nil, err
	}
	client.timeout = timeout
	return client, nil
}

// NewClientAt creates an IPC client for an explicit socket path
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// SendStatus sends a status query to the running compositor
func (c *Client) SendStatus() (*pb.StatusResponse, error) {
	response, err := c.sendMessage(NewStatusMessage())
	if err != nil {
		return nil, err
	}

	switch response.Type {
	case pb.MessageType_STATUS_RESPONSE:
		return GetStatusResponse(response)
	case pb.MessageType_ERROR:
		errResp, _ := GetErrorResponse(response)
		return nil, fmt.Errorf("server error: %s", errResp.Error)
	default:
		return nil, fmt.Errorf("unexpected response type: %s", response.Type)
	}
}

// SendView asks the shell to switch to a view
func (c *Client) SendView(view pb.ShellView) (*pb.StatusResponse, error) {
	response, err := c.sendMessage(NewViewMessage(view))
	if err != nil {
		return nil, err
	}

	switch response.Type {
	case pb.MessageType_STATUS_RESPONSE:
		return GetStatusResponse(response)
	case pb.MessageType_ERROR:
		errResp, _ := GetErrorResponse(response)
		return nil, fmt.Errorf("server error: %s", errResp.Error)
	default:
		return nil, fmt.Errorf("unexpected response type: %s", response.Type)
	}
}

// IsRunning checks if a compositor instance is currently listening
func (c *Client) IsRunning() bool {
	_, err := c.SendStatus()
	return err == nil
}

// sendMessage sends a message and returns the response
func (c *Client) sendMessage(msg *pb.IPCMessage) (*pb.IPCMessage, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		if isConnectionRefused(err) {
			return nil, fmt.Errorf("compositor is not running")
		}
		return nil, fmt.Errorf("failed to connect to compositor: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close IPC connection: %v", err)
		}
	}()

	if err := conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		logger.Warnf("Failed to set connection deadline: %v", err)
	}

	if err := writeMessage(conn, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	response, err := readMessage(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return response, nil
}

// isConnectionRefused checks if the error is a connection refused error
func isConnectionRefused(err error) bool {
	if netErr, ok := err.(*net.OpError); ok {
		if netErr.Op == "dial" {
			return true
		}
	}
	return false
}
