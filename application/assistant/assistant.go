// Package assistant orchestrates one conversation: context enrichment,
// workflow templates, the routing protocol and tool dispatch.
package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/zkhudr/gemini-agent/domain/memory"
	"github.com/zkhudr/gemini-agent/domain/session"
	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/domain/workflow"
	"github.com/zkhudr/gemini-agent/infrastructure/planner"
	"github.com/zkhudr/gemini-agent/infrastructure/project"
	"github.com/zkhudr/gemini-agent/infrastructure/registry"
)

// Reply status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Tokens carries the cumulative session token counters.
type Tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Reply is the structured outcome of one turn.
type Reply struct {
	Status      string        `json:"status"`
	Response    string        `json:"response"`
	ToolResults []tool.Result `json:"tool_results,omitempty"`
	Tokens      Tokens        `json:"tokens"`
}

// Assistant processes messages one at a time: each turn runs end to end
// before the next is accepted.
type Assistant struct {
	session    *session.Session
	provider   planner.Provider
	dispatcher *registry.Dispatcher
	aggregator *project.Aggregator
	memory     memory.Store
	workflows  *workflow.Registry
	maxTokens  int

	ctxMu     sync.Mutex
	ctxCache  string
	ctxLoaded bool
}

// Option configures the assistant.
type Option func(*Assistant)

// WithMaxTokens bounds each backend call.
func WithMaxTokens(max int) Option {
	return func(a *Assistant) {
		a.maxTokens = max
	}
}

// WithWorkflows overrides the workflow template registry.
func WithWorkflows(r *workflow.Registry) Option {
	return func(a *Assistant) {
		a.workflows = r
	}
}

// New creates an assistant with a fresh session.
func New(provider planner.Provider, dispatcher *registry.Dispatcher, aggregator *project.Aggregator, store memory.Store, opts ...Option) *Assistant {
	a := &Assistant{
		session:    session.New(),
		provider:   provider,
		dispatcher: dispatcher,
		aggregator: aggregator,
		memory:     store,
		workflows:  workflow.NewRegistry(),
		maxTokens:  8192,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Session returns the conversation session.
func (a *Assistant) Session() *session.Session {
	return a.session
}

// Workflows returns the workflow template registry.
func (a *Assistant) Workflows() *workflow.Registry {
	return a.workflows
}

// InvalidateContext drops the cached project context so the next turn
// reloads it. Wired to the filesystem watcher.
func (a *Assistant) InvalidateContext() {
	a.ctxMu.Lock()
	defer a.ctxMu.Unlock()
	a.ctxLoaded = false
	a.ctxCache = ""
}

// projectContext returns the aggregated project context, reloading only
// when the cache has been invalidated.
func (a *Assistant) projectContext(ctx context.Context) string {
	a.ctxMu.Lock()
	defer a.ctxMu.Unlock()
	if !a.ctxLoaded {
		a.ctxCache = a.aggregator.Load(ctx)
		a.ctxLoaded = true
	}
	return a.ctxCache
}

// SendMessage processes one user turn. With useTools it runs the routing
// protocol; otherwise the message goes straight to conversational mode. A
// workflow template, when named, rewrites the request and the tool policy
// before routing.
func (a *Assistant) SendMessage(ctx context.Context, text string, useTools bool, workflowTemplate string) Reply {
	if a.session == nil {
		return errorReply("Session not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errorReply("Empty message")
	}

	if reply, handled := a.handleCommand(ctx, text); handled {
		return reply
	}

	// request is the routing-prompt form; message is what a conversational
	// re-ask sends when the router passes. Context enrichment applies to the
	// former only.
	request, message := text, text
	if workflowTemplate != "" {
		composed, err := a.ApplyWorkflow(ctx, workflowTemplate, text)
		if err != nil {
			return errorReply(err.Error())
		}
		request, message = composed, composed
	} else {
		request = a.enrich(ctx, text)
	}

	if !useTools {
		return a.converse(ctx, text, request)
	}
	return a.route(ctx, text, request, message)
}

// ExecuteToolDirectly bypasses the routing protocol and dispatches one tool
// call hand-constructed by the caller.
func (a *Assistant) ExecuteToolDirectly(ctx context.Context, name string, params json.RawMessage) tool.Result {
	return a.dispatcher.Execute(ctx, name, params)
}

// contextKeywords trigger project-context enrichment of a request.
var contextKeywords = []string{
	"project", "file", "code", "directory", "repository", "structure",
	"readme", "dependencies", "config",
}

// enrich prepends the aggregated project context when the request looks
// project-related.
func (a *Assistant) enrich(ctx context.Context, text string) string {
	lowered := strings.ToLower(text)
	for _, kw := range contextKeywords {
		if strings.Contains(lowered, kw) {
			if pc := a.projectContext(ctx); pc != "" {
				return pc + "\n\n" + text
			}
			break
		}
	}
	return text
}

func (a *Assistant) finalReply(response string, results []tool.Result) Reply {
	input, output := a.session.Tokens()
	return Reply{
		Status:      StatusSuccess,
		Response:    response,
		ToolResults: results,
		Tokens:      Tokens{Input: input, Output: output},
	}
}

func errorReply(message string) Reply {
	return Reply{
		Status:   StatusError,
		Response: message,
	}
}
