// Package session provides the conversation session model.
package session

import (
	"sync"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// FileMeta describes an uploaded file attached to the session.
type FileMeta struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// Session holds the append-only turn history, cumulative token counters and
// uploaded-file metadata for one conversation. History is cleared only by an
// explicit Clear, never auto-pruned, and grows in user/assistant pairs.
type Session struct {
	id string

	mu           sync.Mutex
	history      []Turn
	inputTokens  int
	outputTokens int
	files        map[string]FileMeta
}

// New creates an empty session.
func New() *Session {
	return &Session{
		id:    uuid.NewString(),
		files: make(map[string]FileMeta),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// AppendExchange records one user/assistant pair, keeping history length even.
func (s *Session) AppendExchange(userText, assistantText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		Turn{Role: RoleUser, Text: userText},
		Turn{Role: RoleAssistant, Text: assistantText},
	)
}

// History returns a copy of the conversation history.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Clear drops the conversation history and resets token counters.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.inputTokens = 0
	s.outputTokens = 0
}

// AddTokens accumulates token usage for one backend call.
func (s *Session) AddTokens(input, output int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputTokens += input
	s.outputTokens += output
}

// Tokens returns cumulative input and output token counts.
func (s *Session) Tokens() (input, output int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputTokens, s.outputTokens
}

// AttachFile records uploaded-file metadata under its name.
func (s *Session) AttachFile(meta FileMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[meta.Name] = meta
}

// Files returns a copy of the uploaded-file metadata map.
func (s *Session) Files() map[string]FileMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]FileMeta, len(s.files))
	for k, v := range s.files {
		out[k] = v
	}
	return out
}

// EstimateTokens gives a rough token count for prompt text. Four characters
// per token matches the estimate the backend reports for English text.
func EstimateTokens(text string) int {
	return len(text) / 4
}
