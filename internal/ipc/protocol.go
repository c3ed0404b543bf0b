package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/oneko/internal/geometry"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandGetDisplays CommandType = "GET_DISPLAYS"
	CommandSetMode     CommandType = "SET_MODE"
	CommandSetVariant  CommandType = "SET_VARIANT"
	CommandSetInverted CommandType = "SET_INVERTED"
	CommandToggleSleep CommandType = "TOGGLE_SLEEP"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS and by every
// mutating command.
type StatusData struct {
	Mode          string         `json:"mode"`
	LastNonSleep  string         `json:"last_non_sleep_mode"`
	Variant       string         `json:"variant"`
	Inverted      bool           `json:"inverted"`
	Position      geometry.Point `json:"position"`
	Target        geometry.Point `json:"target"`
	Animation     string         `json:"animation"`
	Sprite        string         `json:"sprite"`
	Grabbing      bool           `json:"grabbing"`
	RoamEdge      string         `json:"roam_edge,omitempty"`
	DisplayID     int            `json:"display_id"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	DaemonRunning bool           `json:"daemon_running"`
}

// DisplayInfo represents a single display with its taskbar geometry.
type DisplayInfo struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Primary     bool           `json:"primary"`
	Bounds      geometry.Rect  `json:"bounds"`
	WorkArea    geometry.Rect  `json:"work_area"`
	TaskbarEdge string         `json:"taskbar_edge"`
	SleepTarget geometry.Point `json:"sleep_target"`
}

// DisplaysData represents the data returned by GET_DISPLAYS
type DisplaysData struct {
	Displays []DisplayInfo `json:"displays"`
}

type SetModePayload struct {
	Mode string `json:"mode"`
}

type SetVariantPayload struct {
	Variant string `json:"variant"`
}

// SetInvertedPayload sets inversion; a nil Inverted toggles it.
type SetInvertedPayload struct {
	Inverted *bool `json:"inverted,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
