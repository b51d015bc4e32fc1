package tools

import (
	"encoding/json"
)

// Result is the outcome of one invocation: either a success carrying the
// handler's value or a failure carrying a message and its kind.
type Result struct {
	Success bool
	Data    any
	Error   string
	Kind    FailureKind

	err error
}

// Succeeded wraps a handler value.
func Succeeded(data any) Result {
	return Result{Success: true, Data: data}
}

// Failed wraps err as a failure of the given kind.
func Failed(kind FailureKind, err error) Result {
	return Result{Kind: kind, Error: err.Error(), err: err}
}

// Err returns the underlying error of a failure, nil on success.
func (r Result) Err() error {
	return r.err
}

type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

type failureEnvelope struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Kind    FailureKind `json:"kind"`
}

// MarshalJSON encodes {success, data} or {success, error, kind}.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Success {
		return json.Marshal(successEnvelope{Success: true, Data: r.Data})
	}
	return json.Marshal(failureEnvelope{Error: r.Error, Kind: r.Kind})
}
