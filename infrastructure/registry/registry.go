// Package registry provides the in-memory tool registry and the dispatcher
// that executes tool calls under the safety policy.
package registry

import (
	"sort"
	"sync"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

// InMemory is a map-backed tool registry. Tool names are unique; registering
// an existing name overwrites the previous tool.
type InMemory struct {
	mu    sync.RWMutex
	tools map[string]tool.Tool
}

// NewInMemory creates an empty registry.
func NewInMemory() *InMemory {
	return &InMemory{tools: make(map[string]tool.Tool)}
}

// Register adds a tool to the registry.
func (r *InMemory) Register(t tool.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get retrieves a tool by name.
func (r *InMemory) Get(name string) (tool.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List returns all registered tools ordered by name.
func (r *InMemory) List() []tool.Tool {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]tool.Tool, 0, len(names))
	for _, name := range names {
		out = append(out, r.tools[name])
	}
	return out
}

// Names returns all registered tool names in sorted order.
func (r *InMemory) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a tool is registered.
func (r *InMemory) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

var _ tool.Registry = (*InMemory)(nil)
