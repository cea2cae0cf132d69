package planner

import (
	"context"
	"errors"
	"sync"
)

// ScriptedProvider returns a predefined sequence of replies for
// deterministic testing of the routing protocol.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []string
	index   int

	// Requests records every request received, in order.
	Requests []Request
}

// NewScriptedProvider creates a provider that replays the given replies.
func NewScriptedProvider(replies ...string) *ScriptedProvider {
	return &ScriptedProvider{replies: replies}
}

// Name returns the provider name.
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Generate returns the next scripted reply.
func (p *ScriptedProvider) Generate(_ context.Context, req Request) (Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	if p.index >= len(p.replies) {
		return Response{}, errors.New("script exhausted")
	}
	text := p.replies[p.index]
	p.index++

	return Response{
		Text: text,
		Usage: Usage{
			PromptTokens:     len(req.Prompt) / 4,
			CompletionTokens: len(text) / 4,
			TotalTokens:      (len(req.Prompt) + len(text)) / 4,
		},
	}, nil
}
