package assistant_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zkhudr/gemini-agent/application/assistant"
	"github.com/zkhudr/gemini-agent/domain/memory"
	"github.com/zkhudr/gemini-agent/domain/tool"
	infmem "github.com/zkhudr/gemini-agent/infrastructure/memory"
	"github.com/zkhudr/gemini-agent/infrastructure/planner"
	"github.com/zkhudr/gemini-agent/infrastructure/project"
	"github.com/zkhudr/gemini-agent/infrastructure/registry"
)

// fixture wires an assistant over a scripted provider and a capturing tool.
type fixture struct {
	assistant  *assistant.Assistant
	provider   *planner.ScriptedProvider
	dispatcher *registry.Dispatcher
	store      memory.Store
	projectDir string

	calls  int
	params json.RawMessage
}

func newFixture(t *testing.T, replies ...string) *fixture {
	t.Helper()

	f := &fixture{
		provider: planner.NewScriptedProvider(replies...),
		store:    infmem.NewFileStore(t.TempDir(), t.TempDir()),
	}

	reg := registry.NewInMemory()
	reg.Register(tool.NewBuilder("file_operations").
		WithDescription("file operations").
		WithUsage("file_operations: read/write/list files").
		Moderate().
		WithHandler(func(_ context.Context, params json.RawMessage) (tool.Result, error) {
			f.calls++
			f.params = params
			return tool.NewResult("main.go\nREADME.md"), nil
		}).
		MustBuild())

	f.dispatcher = registry.NewDispatcher(reg)
	f.projectDir = t.TempDir()
	aggregator := project.NewAggregator(f.projectDir, project.WithMemory(f.store))
	f.assistant = assistant.New(f.provider, f.dispatcher, aggregator, f.store)
	return f
}

func TestSendMessageToolUse(t *testing.T) {
	t.Parallel()

	t.Run("well-formed tool call is dispatched and spliced", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t,
			`TOOL_USE: {"tool":"file_operations","parameters":{"operation":"list_directory","path":"."}}`)

		reply := f.assistant.SendMessage(context.Background(), "list my files please", true, "")

		if reply.Status != assistant.StatusSuccess {
			t.Fatalf("Status = %q: %s", reply.Status, reply.Response)
		}
		if f.calls != 1 {
			t.Fatalf("tool executed %d times, want 1", f.calls)
		}

		var got map[string]any
		if err := json.Unmarshal(f.params, &got); err != nil {
			t.Fatalf("params not JSON: %v", err)
		}
		want := map[string]any{"operation": "list_directory", "path": "."}
		if got["operation"] != want["operation"] || got["path"] != want["path"] || len(got) != 2 {
			t.Errorf("params = %v, want %v", got, want)
		}

		if len(reply.ToolResults) != 1 || !reply.ToolResults[0].Success {
			t.Fatalf("ToolResults = %+v", reply.ToolResults)
		}
		if !strings.Contains(reply.Response, "[Tool: file_operations]") {
			t.Errorf("Response missing tool block: %q", reply.Response)
		}
		if !strings.Contains(reply.Response, "✅ Success:") {
			t.Errorf("Response missing success marker: %q", reply.Response)
		}
		if !strings.Contains(reply.Response, "main.go") {
			t.Errorf("Response missing tool output: %q", reply.Response)
		}
		if strings.Contains(reply.Response, "TOOL_USE") {
			t.Errorf("matched span not replaced: %q", reply.Response)
		}

		history := f.assistant.Session().History()
		if len(history) != 2 {
			t.Errorf("history length = %d, want 2", len(history))
		}
	})

	t.Run("text around the block is preserved", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t,
			"Let me check.\nTOOL_USE: {\"tool\":\"file_operations\",\"parameters\":{\"operation\":\"read\"}}\nDone.")

		reply := f.assistant.SendMessage(context.Background(), "read the file", true, "")
		if !strings.HasPrefix(reply.Response, "Let me check.") {
			t.Errorf("prefix lost: %q", reply.Response)
		}
		if !strings.HasSuffix(reply.Response, "Done.") {
			t.Errorf("suffix lost: %q", reply.Response)
		}
	})

	t.Run("fenced block with nbsp is parsed", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t,
			"TOOL_USE: ```json\n{\"tool\":\u00a0\"file_operations\", \"parameters\": {\"operation\": \"read\"}}\n```")

		reply := f.assistant.SendMessage(context.Background(), "read a file", true, "")
		if f.calls != 1 {
			t.Fatalf("tool executed %d times, want 1: %s", f.calls, reply.Response)
		}
	})

	t.Run("malformed json annotates without executing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, `TOOL_USE: {"tool": file_operations}`)

		reply := f.assistant.SendMessage(context.Background(), "do something", true, "")
		if f.calls != 0 {
			t.Fatal("tool executed despite malformed JSON")
		}
		if !strings.Contains(reply.Response, "[Tool Error: Malformed JSON]") {
			t.Errorf("missing malformed marker: %q", reply.Response)
		}
		if reply.Status != assistant.StatusSuccess {
			t.Errorf("Status = %q, conversation must not abort", reply.Status)
		}
	})

	t.Run("unknown tool becomes failure block", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, `TOOL_USE: {"tool":"nope","parameters":{}}`)

		reply := f.assistant.SendMessage(context.Background(), "run it", true, "")
		if len(reply.ToolResults) != 1 || reply.ToolResults[0].Success {
			t.Fatalf("ToolResults = %+v", reply.ToolResults)
		}
		if !strings.Contains(reply.Response, "❌ Error:") {
			t.Errorf("missing failure marker: %q", reply.Response)
		}
	})
}

func TestSendMessagePass(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "PASS", "Lists are mutable, tuples are not.")

	reply := f.assistant.SendMessage(context.Background(), "difference between list and tuple?", true, "")
	if reply.Status != assistant.StatusSuccess {
		t.Fatalf("Status = %q: %s", reply.Status, reply.Response)
	}
	if reply.Response != "Lists are mutable, tuples are not." {
		t.Errorf("Response = %q", reply.Response)
	}
	if len(f.provider.Requests) != 2 {
		t.Fatalf("backend called %d times, want 2", len(f.provider.Requests))
	}
	// the routing prompt must not enter history; the final exchange must
	if len(f.assistant.Session().History()) != 2 {
		t.Errorf("history length = %d, want 2", len(f.assistant.Session().History()))
	}
}

func TestPassReasksWithOriginalMessage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "PASS", "It is a Go project.")
	if err := os.WriteFile(filepath.Join(f.projectDir, "gemini.md"), []byte("internal build notes"), 0o644); err != nil {
		t.Fatal(err)
	}

	reply := f.assistant.SendMessage(context.Background(), "tell me about this project", true, "")
	if reply.Status != assistant.StatusSuccess {
		t.Fatalf("Status = %q: %s", reply.Status, reply.Response)
	}
	if len(f.provider.Requests) != 2 {
		t.Fatalf("backend called %d times, want 2", len(f.provider.Requests))
	}

	// enrichment belongs to the routing prompt only
	if !strings.Contains(f.provider.Requests[0].Prompt, "internal build notes") {
		t.Error("routing prompt not context-enriched")
	}
	if got := f.provider.Requests[1].Prompt; got != "tell me about this project" {
		t.Errorf("re-ask prompt = %q, want the bare user message", got)
	}
}

func TestSendMessageFreeText(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "Here is the answer directly.")

	reply := f.assistant.SendMessage(context.Background(), "just answer", true, "")
	if reply.Response != "Here is the answer directly." {
		t.Errorf("Response = %q", reply.Response)
	}
	if len(f.provider.Requests) != 1 {
		t.Errorf("backend called %d times, want 1", len(f.provider.Requests))
	}
	if len(f.assistant.Session().History()) != 2 {
		t.Errorf("history length = %d", len(f.assistant.Session().History()))
	}
}

func TestSendMessageNoTools(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "conversational reply")

	reply := f.assistant.SendMessage(context.Background(), "hello there", false, "")
	if reply.Response != "conversational reply" {
		t.Errorf("Response = %q", reply.Response)
	}
	// no routing prompt: straight to conversational mode
	if len(f.provider.Requests) != 1 {
		t.Errorf("backend called %d times, want 1", len(f.provider.Requests))
	}
	if strings.Contains(f.provider.Requests[0].Prompt, "TOOL_USE") {
		t.Error("routing prompt used in no-tools mode")
	}
}

func TestSendMessageEmpty(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	reply := f.assistant.SendMessage(context.Background(), "   ", true, "")
	if reply.Status != assistant.StatusError {
		t.Errorf("Status = %q, want error", reply.Status)
	}
}

func TestRoutingPromptContents(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "PASS", "ok")
	f.assistant.SendMessage(context.Background(), "anything at all", true, "")

	prompt := f.provider.Requests[0].Prompt
	for _, fragment := range []string{
		"TOOL_USE:", "PASS", "file_operations", "read/write/list files",
		"anything at all",
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("routing prompt missing %q", fragment)
		}
	}
}

func TestCommands(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("remember stores and recalls", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		reply := f.assistant.SendMessage(ctx, "#remember api_base: https://example.com", true, "")
		if reply.Status != assistant.StatusSuccess {
			t.Fatalf("Status = %q: %s", reply.Status, reply.Response)
		}

		rec, ok, err := f.store.Recall(ctx, "api_base", memory.ScopeProject)
		if err != nil || !ok {
			t.Fatalf("Recall() = %v, %v", ok, err)
		}
		if rec.Content != "https://example.com" {
			t.Errorf("Content = %q", rec.Content)
		}
		// commands never reach the backend
		if len(f.provider.Requests) != 0 {
			t.Error("command hit the backend")
		}
	})

	t.Run("remember with explicit scope", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.assistant.SendMessage(ctx, "#remember @user editor: vim", true, "")
		_, ok, _ := f.store.Recall(ctx, "editor", memory.ScopeUser)
		if !ok {
			t.Error("key not stored in user scope")
		}
	})

	t.Run("tools command lists registry", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		reply := f.assistant.SendMessage(ctx, "/tools", true, "")
		if !strings.Contains(reply.Response, "file_operations") {
			t.Errorf("Response = %q", reply.Response)
		}
	})

	t.Run("memory search command", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.Remember(ctx, "api_base", "https://example.com", memory.ScopeProject)
		reply := f.assistant.SendMessage(ctx, "/memory search example", true, "")
		if !strings.Contains(reply.Response, "api_base") {
			t.Errorf("Response = %q", reply.Response)
		}
	})

	t.Run("unknown command prefix is rejected without routing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		reply := f.assistant.SendMessage(ctx, "/frobnicate now", true, "")
		if reply.Status != assistant.StatusError {
			t.Errorf("Status = %q, want error", reply.Status)
		}
		if !strings.Contains(reply.Response, "/frobnicate") {
			t.Errorf("Response = %q, want the offending command named", reply.Response)
		}
		if len(f.provider.Requests) != 0 {
			t.Error("unknown command reached the backend")
		}
	})

	t.Run("hash prefix without a known command is rejected", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		reply := f.assistant.SendMessage(ctx, "#forget everything", true, "")
		if reply.Status != assistant.StatusError {
			t.Errorf("Status = %q, want error", reply.Status)
		}
		if len(f.provider.Requests) != 0 {
			t.Error("unknown command reached the backend")
		}
	})

	t.Run("auto toggles the dispatcher", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.assistant.SendMessage(ctx, "/auto on", true, "")
		if !f.dispatcher.IsAutoApproved("file_operations") {
			t.Error("auto on did not approve tools")
		}
		f.assistant.SendMessage(ctx, "/auto off", true, "")
		if f.dispatcher.IsAutoApproved("file_operations") {
			t.Error("auto off left tools approved")
		}
	})
}

func TestApplyWorkflow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown template fails", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		reply := f.assistant.SendMessage(ctx, "do a thing", true, "no_such_workflow")
		if reply.Status != assistant.StatusError {
			t.Errorf("Status = %q, want error", reply.Status)
		}
	})

	t.Run("template rewrites prompt and tool policy", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t, "PASS", "review done")
		reply := f.assistant.SendMessage(ctx, "look at the parser", true, "code_review")
		if reply.Status != assistant.StatusSuccess {
			t.Fatalf("Status = %q: %s", reply.Status, reply.Response)
		}

		prompt := f.provider.Requests[0].Prompt
		if !strings.Contains(prompt, "review this code") {
			t.Errorf("routing prompt missing template text")
		}
		if !strings.Contains(prompt, "look at the parser") {
			t.Errorf("routing prompt missing custom text")
		}
		if !f.dispatcher.IsAutoApproved("file_operations") {
			t.Error("template auto-approve not applied")
		}
	})
}

func TestExecuteToolDirectly(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	result := f.assistant.ExecuteToolDirectly(context.Background(), "file_operations",
		json.RawMessage(`{"operation":"list_directory","path":"."}`))
	if !result.Success {
		t.Fatalf("result = %+v", result)
	}
	if f.calls != 1 {
		t.Errorf("tool executed %d times", f.calls)
	}
}
