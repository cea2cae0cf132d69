package tool

import "errors"

// Domain errors for the tool system.
var (
	// ErrEmptyName indicates a tool was created with an empty name.
	ErrEmptyName = errors.New("tool name cannot be empty")

	// ErrNoHandler indicates a tool was created without a handler.
	ErrNoHandler = errors.New("tool has no handler")

	// ErrToolNotFound indicates the requested tool was not found.
	ErrToolNotFound = errors.New("tool not found")

	// ErrToolBlocked indicates the tool is in the blocked set.
	ErrToolBlocked = errors.New("tool is blocked")

	// ErrUnsupportedOperation indicates an unknown sub-operation of a
	// multi-operation tool.
	ErrUnsupportedOperation = errors.New("unsupported operation")

	// ErrSecurityRejection indicates execution was refused by a safety
	// check before any side effect occurred.
	ErrSecurityRejection = errors.New("rejected by security policy")

	// ErrApprovalDenied indicates a configured approver refused execution.
	ErrApprovalDenied = errors.New("approval denied for tool execution")

	// ErrExecutionTimeout indicates the tool execution timed out.
	ErrExecutionTimeout = errors.New("tool execution timed out")
)
