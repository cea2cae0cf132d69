// Package planner provides the text-generation backend abstraction and its
// implementations.
package planner

import (
	"context"
	"fmt"
)

// Provider is the opaque text-generation backend: submit a prompt, receive
// text. Implementations must be safe for sequential reuse across turns.
type Provider interface {
	// Generate sends a request and returns the generated text.
	Generate(ctx context.Context, req Request) (Response, error)

	// Name returns the provider name for logging.
	Name() string
}

// Message is one turn of conversation history forwarded to the backend.
type Message struct {
	Role    string `json:"role"` // user or assistant
	Content string `json:"content"`
}

// Request is a single generation request. History is empty for one-shot,
// non-history-affecting prompts such as the routing prompt.
type Request struct {
	Prompt      string    `json:"prompt"`
	History     []Message `json:"history,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Usage carries token accounting reported by the backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the backend's reply.
type Response struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// APIError is a structured error returned by the backend API.
type APIError struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: %s (%d)", e.Status, e.Message, e.Code)
	}
	return e.Status + ": " + e.Message
}
