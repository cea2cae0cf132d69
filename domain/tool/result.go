package tool

import "time"

// Result contains the outcome of a tool execution. It is an immutable value
// object: every tool returns one, and the dispatcher never lets an internal
// failure escape as anything else.
type Result struct {
	// Success reports whether the execution achieved its effect.
	Success bool `json:"success"`

	// Output is the primary result text.
	Output string `json:"output"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// Metadata carries tool-specific details (exit codes, sizes, flags).
	Metadata map[string]any `json:"metadata,omitempty"`

	// Timestamp is when the result was created.
	Timestamp time.Time `json:"timestamp"`
}

// NewResult creates a successful result with the given output.
func NewResult(output string) Result {
	return Result{
		Success:   true,
		Output:    output,
		Timestamp: time.Now(),
	}
}

// NewResultWithMetadata creates a successful result carrying metadata.
func NewResultWithMetadata(output string, metadata map[string]any) Result {
	return Result{
		Success:   true,
		Output:    output,
		Metadata:  metadata,
		Timestamp: time.Now(),
	}
}

// NewErrorResult creates a failed result from an error.
func NewErrorResult(err error) Result {
	return Result{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now(),
	}
}

// NewErrorResultf creates a failed result with a message.
func NewErrorResultf(message string) Result {
	return Result{
		Success:   false,
		Error:     message,
		Timestamp: time.Now(),
	}
}

// Preview returns the output truncated to max characters, with an ellipsis
// marker when truncated.
func (r Result) Preview(max int) string {
	if len(r.Output) <= max {
		return r.Output
	}
	return r.Output[:max] + "..."
}
