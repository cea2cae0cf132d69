package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/zkhudr/gemini-agent/domain/middleware"
	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/infrastructure/logging"
)

// Dispatcher executes one tool call under the safety policy. It never
// returns an error: every failure is converted into a failed tool.Result so
// the conversation can react to it on the next turn.
type Dispatcher struct {
	registry  tool.Registry
	chain     middleware.Middleware
	sessionID string

	mu          sync.RWMutex
	autoApprove map[string]struct{}
	blocked     map[string]struct{}
}

// Option configures the dispatcher.
type Option func(*Dispatcher)

// WithMiddleware sets the middleware chain applied around tool execution.
func WithMiddleware(chain middleware.Middleware) Option {
	return func(d *Dispatcher) {
		d.chain = chain
	}
}

// WithSessionID tags dispatches with the owning session.
func WithSessionID(id string) Option {
	return func(d *Dispatcher) {
		d.sessionID = id
	}
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(reg tool.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:    reg,
		chain:       middleware.Noop(),
		autoApprove: make(map[string]struct{}),
		blocked:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetAutoApprove adds tools to the auto-approve set.
func (d *Dispatcher) SetAutoApprove(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range names {
		d.autoApprove[name] = struct{}{}
	}
}

// ClearAutoApprove empties the auto-approve set.
func (d *Dispatcher) ClearAutoApprove() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.autoApprove = make(map[string]struct{})
}

// Block adds tools to the blocked set. A blocked tool can never execute,
// regardless of auto-approve membership.
func (d *Dispatcher) Block(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range names {
		d.blocked[name] = struct{}{}
	}
}

// Unblock removes tools from the blocked set.
func (d *Dispatcher) Unblock(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range names {
		delete(d.blocked, name)
	}
}

// IsAutoApproved reports auto-approve membership.
func (d *Dispatcher) IsAutoApproved(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.autoApprove[name]
	return ok
}

// IsBlocked reports blocked-set membership.
func (d *Dispatcher) IsBlocked(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.blocked[name]
	return ok
}

// Registry returns the underlying tool registry.
func (d *Dispatcher) Registry() tool.Registry {
	return d.registry
}

// Execute runs one tool call. The blocked check runs before anything else;
// block always wins over auto-approve.
func (d *Dispatcher) Execute(ctx context.Context, name string, params json.RawMessage) tool.Result {
	t, ok := d.registry.Get(name)
	if !ok {
		return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrToolNotFound, name))
	}

	if d.IsBlocked(name) {
		return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrToolBlocked, name))
	}

	if len(params) == 0 {
		params = json.RawMessage(`{}`)
	}

	execCtx := &middleware.ExecutionContext{
		SessionID:    d.sessionID,
		Tool:         t,
		Params:       params,
		AutoApproved: d.IsAutoApproved(name),
	}

	handler := d.chain(func(ctx context.Context, execCtx *middleware.ExecutionContext) (tool.Result, error) {
		return execCtx.Tool.Execute(ctx, execCtx.Params)
	})

	result, err := d.run(ctx, handler, execCtx)
	if err != nil {
		return tool.NewErrorResult(err)
	}
	return result
}

// run invokes the handler, converting panics into failed results so a
// misbehaving tool cannot take down the turn.
func (d *Dispatcher) run(ctx context.Context, handler middleware.Handler, execCtx *middleware.ExecutionContext) (result tool.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("tool", execCtx.Tool.Name()).
				Str("panic", fmt.Sprint(r)).
				Msg("tool panicked")
			result = tool.Result{}
			err = fmt.Errorf("tool %s panicked: %v", execCtx.Tool.Name(), r)
		}
	}()
	return handler(ctx, execCtx)
}
