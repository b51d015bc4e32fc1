package tools

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnknownTool is returned when the requested tool is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrDuplicateTool is returned when a tool name is registered twice.
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrInvalidTool is returned when a definition has no name or no handler.
	ErrInvalidTool = errors.New("invalid tool definition")
	// ErrInvalidArguments is returned when strict validation rejects the arguments.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrHandler marks faults raised while a handler runs.
	ErrHandler = errors.New("tool handler failed")
)

// FailureKind classifies a failed invocation.
type FailureKind string

const (
	KindUnknownTool      FailureKind = "UnknownToolError"
	KindInvalidArguments FailureKind = "InvalidArgumentsError"
	KindHandler          FailureKind = "HandlerError"
)
