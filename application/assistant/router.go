package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zkhudr/gemini-agent/domain/session"
	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/infrastructure/logging"
	"github.com/zkhudr/gemini-agent/infrastructure/planner"
)

const routingHeader = `You are a routing assistant. Decide whether the user's request requires
one of the available tools. Current time: %s

Respond with EXACTLY ONE of the following:
1. A tool call, as a single line starting with TOOL_USE: followed by one JSON object:
   TOOL_USE: { "tool": "<tool_name>", "parameters": { ... } }
2. The literal word PASS if the request is conversational and needs no tool.

Examples of correct responses:

User: "List the files in the current directory"
Response: TOOL_USE: {"tool": "file_operations", "parameters": {"operation": "list_directory", "path": "."}}

User: "What's the difference between a list and a tuple?"
Response: PASS

Available tools:

`

// buildRoutingPrompt assembles the one-shot routing prompt: timestamp,
// worked examples, the tool usage catalog and the enriched request.
func (a *Assistant) buildRoutingPrompt(request string) string {
	var b strings.Builder
	fmt.Fprintf(&b, routingHeader, time.Now().Format(time.RFC1123))

	for _, t := range a.dispatcher.Registry().List() {
		b.WriteString("### " + t.Name() + " (" + t.Safety().String() + ")\n")
		b.WriteString(t.Usage())
		b.WriteString("\n\n")
	}

	b.WriteString("User request:\n")
	b.WriteString(request)
	return b.String()
}

// route runs one turn of the routing protocol. The routing prompt is a
// one-shot request that never enters the stored history; only the original
// user message and the final visible reply do. request carries the
// context-enriched form used inside the routing prompt; message is what gets
// re-asked conversationally when the router passes, without the enrichment.
func (a *Assistant) route(ctx context.Context, userText, request, message string) Reply {
	resp, err := a.provider.Generate(ctx, planner.Request{
		Prompt:    a.buildRoutingPrompt(request),
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return errorReply("Routing failed: " + err.Error())
	}
	a.session.AddTokens(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	switch {
	case strings.Contains(resp.Text, "TOOL_USE"):
		return a.handleToolReply(ctx, userText, resp.Text)
	case strings.EqualFold(strings.TrimSpace(resp.Text), "PASS"):
		logging.Debug().Str("session", a.session.ID()).Msg("router passed")
		return a.converse(ctx, userText, message)
	default:
		// The reply itself is the answer.
		a.session.AppendExchange(userText, resp.Text)
		return a.finalReply(resp.Text, nil)
	}
}

// handleToolReply extracts the first tool call from the routing reply,
// dispatches it and splices the outcome back into the visible text.
func (a *Assistant) handleToolReply(ctx context.Context, userText, replyText string) Reply {
	normalized, ex, found := extractToolCall(replyText)
	if !found {
		// Marker present but no brace-delimited object; treat as free text.
		a.session.AppendExchange(userText, normalized)
		return a.finalReply(normalized, nil)
	}

	if ex.parseErr != nil {
		final := normalized[:ex.start] + spliceMalformed(ex.parseErr) + normalized[ex.end:]
		a.session.AppendExchange(userText, final)
		return a.finalReply(final, nil)
	}

	logging.Info().
		Str("session", a.session.ID()).
		Str("tool", ex.invocation.Tool).
		Msg("dispatching tool call")

	result := a.dispatcher.Execute(ctx, ex.invocation.Tool, ex.invocation.Parameters)

	final := normalized[:ex.start] + spliceResult(ex.invocation.Tool, result) + normalized[ex.end:]
	a.session.AppendExchange(userText, final)
	return a.finalReply(final, []tool.Result{result})
}

// converse sends the request in normal history-affecting mode.
func (a *Assistant) converse(ctx context.Context, userText, request string) Reply {
	history := a.session.History()
	messages := make([]planner.Message, 0, len(history))
	for _, turn := range history {
		messages = append(messages, planner.Message{
			Role:    string(turn.Role),
			Content: turn.Text,
		})
	}

	resp, err := a.provider.Generate(ctx, planner.Request{
		Prompt:    request,
		History:   messages,
		MaxTokens: a.maxTokens,
	})
	if err != nil {
		return errorReply("Generation failed: " + err.Error())
	}

	input := resp.Usage.PromptTokens
	if input == 0 {
		input = session.EstimateTokens(request)
	}
	output := resp.Usage.CompletionTokens
	if output == 0 {
		output = session.EstimateTokens(resp.Text)
	}
	a.session.AddTokens(input, output)

	a.session.AppendExchange(userText, resp.Text)
	return a.finalReply(resp.Text, nil)
}
