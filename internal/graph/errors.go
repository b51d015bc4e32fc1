package graph

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error is returned when a Graph call does not succeed: the transport failed,
// the API answered with a non-2xx status, or the body could not be decoded.
type Error struct {
	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int
	// Body is the raw response body.
	Body string
	// Message is the Graph error message when present, otherwise a short reason.
	Message string

	cause error
}

// apiError mirrors the Graph error payload {"error":{"message":...}}.
type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func newStatusError(status int, body []byte) *Error {
	e := &Error{
		StatusCode: status,
		Body:       string(body),
		Message:    http.StatusText(status),
	}
	var payload apiError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Message != "" {
		e.Message = payload.Error.Message
	}
	return e
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		if e.cause != nil {
			return fmt.Sprintf("graph api: %s: %v", e.Message, e.cause)
		}
		return "graph api: " + e.Message
	}
	return fmt.Sprintf("graph api: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}
