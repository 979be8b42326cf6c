package ipc

import (
	"fmt"

	pb "github.com/flickwm/flick/internal/proto"
)

// NewStatusMessage creates a new status query message
func NewStatusMessage() *pb.IPCMessage {
	return &pb.IPCMessage{
		Type:        pb.MessageType_STATUS,
		StatusQuery: &pb.StatusQuery{},
	}
}

// NewStatusResponseMessage creates a new status response message
func NewStatusResponseMessage(resp *pb.StatusResponse) *pb.IPCMessage {
	return &pb.IPCMessage{
		Type:           pb.MessageType_STATUS_RESPONSE,
		StatusResponse: resp,
	}
}

// NewViewMessage creates a message asking the shell to switch views
func NewViewMessage(view pb.ShellView) *pb.IPCMessage {
	return &pb.IPCMessage{
		Type:        pb.MessageType_VIEW,
		ViewCommand: &pb.ViewCommand{View: view},
	}
}

// NewErrorMessage creates a new error message
func NewErrorMessage(errMsg string) *pb.IPCMessage {
	return &pb.IPCMessage{
		Type:          pb.MessageType_ERROR,
		ErrorResponse: &pb.ErrorResponse{Error: errMsg},
	}
}

// GetStatusQuery extracts the status query from a message
func GetStatusQuery(msg *pb.IPCMessage) (*pb.StatusQuery, error) {
	if msg.Type != pb.MessageType_STATUS {
		return nil, fmt.Errorf("message is not a status query")
	}
	if msg.StatusQuery == nil {
		return nil, fmt.Errorf("status query payload missing")
	}
	return msg.StatusQuery, nil
}

// GetStatusResponse extracts the status response from a message
func GetStatusResponse(msg *pb.IPCMessage) (*pb.StatusResponse, error) {
	if msg.Type != pb.MessageType_STATUS_RESPONSE {
		return nil, fmt.Errorf("message is not a status response")
	}
	if msg.StatusResponse == nil {
		return nil, fmt.Errorf("status response payload missing")
	}
	return msg.StatusResponse, nil
}

// GetViewCommand extracts the view command from a message
func GetViewCommand(msg *pb.IPCMessage) (*pb.ViewCommand, error) {
	if msg.Type != pb.MessageType_VIEW {
		return nil, fmt.Errorf("message is not a view command")
	}
	if msg.ViewCommand == nil {
		return nil, fmt.Errorf("view command payload missing")
	}
	return msg.ViewCommand, nil
}

// GetErrorResponse extracts the error response from a message
func GetErrorResponse(msg *pb.IPCMessage) (*pb.ErrorResponse, error) {
	if msg.Type != pb.MessageType_ERROR {
		return nil, fmt.Errorf("message is not an error response")
	}
	if msg.ErrorResponse == nil {
		return nil, fmt.Errorf("error response payload missing")
	}
	return msg.ErrorResponse, nil
}
