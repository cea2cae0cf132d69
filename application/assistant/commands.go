package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zkhudr/gemini-agent/domain/memory"
)

// handleCommand intercepts assistant commands before routing. Commands never
// touch the backend or the conversation history.
func (a *Assistant) handleCommand(ctx context.Context, text string) (Reply, bool) {
	switch {
	case strings.HasPrefix(text, "#remember"):
		return a.rememberCommand(ctx, strings.TrimPrefix(text, "#remember")), true
	case text == "/tools":
		return a.toolsCommand(), true
	case text == "/memory":
		return a.memoryListCommand(ctx), true
	case strings.HasPrefix(text, "/memory search"):
		return a.memorySearchCommand(ctx, strings.TrimPrefix(text, "/memory search")), true
	case text == "/context":
		return a.contextCommand(ctx), true
	case text == "/workflows":
		return a.workflowsCommand(), true
	case text == "/auto on":
		a.dispatcher.SetAutoApprove(a.dispatcher.Registry().Names()...)
		return Reply{Status: StatusSuccess, Response: "Auto-approve enabled for all tools"}, true
	case text == "/auto off":
		a.dispatcher.ClearAutoApprove()
		return Reply{Status: StatusSuccess, Response: "Auto-approve disabled"}, true
	}

	// Anything else with a command prefix is a command, not a message.
	if strings.HasPrefix(text, "/") || strings.HasPrefix(text, "#") {
		word, _, _ := strings.Cut(text, " ")
		return errorReply(fmt.Sprintf(
			"Unknown command %q (available: #remember, /tools, /memory, /memory search, /context, /workflows, /auto on|off)", word)), true
	}
	return Reply{}, false
}

// rememberCommand stores a fact. Syntax:
//
//	#remember [@scope] key: content
//
// The scope defaults to project.
func (a *Assistant) rememberCommand(ctx context.Context, args string) Reply {
	scope := memory.ScopeProject
	args = strings.TrimSpace(args)
	if strings.HasPrefix(args, "@") {
		fields := strings.SplitN(args, " ", 2)
		if len(fields) != 2 {
			return errorReply("Usage: #remember [@scope] key: content")
		}
		scope = memory.Scope(strings.TrimPrefix(fields[0], "@"))
		if !scope.Valid() {
			return errorReply(fmt.Sprintf("Unknown scope %q (session, project, user, global)", fields[0][1:]))
		}
		args = fields[1]
	}

	key, content, found := strings.Cut(args, ":")
	if !found || strings.TrimSpace(key) == "" || strings.TrimSpace(content) == "" {
		return errorReply("Usage: #remember [@scope] key: content")
	}
	key = strings.TrimSpace(key)
	content = strings.TrimSpace(content)

	if err := a.memory.Remember(ctx, key, content, scope); err != nil {
		return errorReply("Failed to remember: " + err.Error())
	}
	a.InvalidateContext()
	return Reply{
		Status:   StatusSuccess,
		Response: fmt.Sprintf("Remembered %q in %s scope", key, scope),
	}
}

func (a *Assistant) toolsCommand() Reply {
	var b strings.Builder
	b.WriteString("Available tools:\n")
	for _, t := range a.dispatcher.Registry().List() {
		fmt.Fprintf(&b, "- %s (%s): %s\n", t.Name(), t.Safety(), t.Description())
	}
	return Reply{Status: StatusSuccess, Response: b.String()}
}

func (a *Assistant) memoryListCommand(ctx context.Context) Reply {
	all, err := a.memory.All(ctx)
	if err != nil {
		return errorReply("Failed to list memory: " + err.Error())
	}

	var b strings.Builder
	empty := true
	for _, scope := range memory.SearchOrder() {
		records := all[scope]
		if len(records) == 0 {
			continue
		}
		empty = false
		keys := make([]string, 0, len(records))
		for k := range records {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintf(&b, "[%s]\n", scope)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, memory.TruncateContent(records[k].Content))
		}
	}
	if empty {
		return Reply{Status: StatusSuccess, Response: "Memory is empty"}
	}
	return Reply{Status: StatusSuccess, Response: b.String()}
}

func (a *Assistant) memorySearchCommand(ctx context.Context, query string) Reply {
	query = strings.TrimSpace(query)
	if query == "" {
		return errorReply("Usage: /memory search <query>")
	}

	hits, err := a.memory.Search(ctx, query)
	if err != nil {
		return errorReply("Search failed: " + err.Error())
	}
	if len(hits) == 0 {
		return Reply{Status: StatusSuccess, Response: fmt.Sprintf("No memory entries match %q", query)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d entries:\n", len(hits))
	for _, hit := range hits {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", hit.Scope, hit.Key, hit.Content)
	}
	return Reply{Status: StatusSuccess, Response: b.String()}
}

func (a *Assistant) contextCommand(ctx context.Context) Reply {
	summary := a.aggregator.Summarize(ctx)
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errorReply(err.Error())
	}
	return Reply{Status: StatusSuccess, Response: string(data)}
}

func (a *Assistant) workflowsCommand() Reply {
	var b strings.Builder
	b.WriteString("Available workflows:\n")
	for _, name := range a.workflows.Names() {
		t, err := a.workflows.Get(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "- %s (tools: %s)\n", name, strings.Join(t.Tools, ", "))
	}
	return Reply{Status: StatusSuccess, Response: b.String()}
}
