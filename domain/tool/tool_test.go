package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

func TestBuilder(t *testing.T) {
	t.Parallel()

	t.Run("builds a complete tool", func(t *testing.T) {
		t.Parallel()

		built, err := tool.NewBuilder("echo").
			WithDescription("echoes input").
			WithUsage("echo: returns its parameters").
			Dangerous().
			WithHandler(func(_ context.Context, params json.RawMessage) (tool.Result, error) {
				return tool.NewResult(string(params)), nil
			}).
			Build()
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}

		if built.Name() != "echo" {
			t.Errorf("Name() = %q, want %q", built.Name(), "echo")
		}
		if built.Safety() != tool.SafetyDangerous {
			t.Errorf("Safety() = %v, want dangerous", built.Safety())
		}

		result, err := built.Execute(context.Background(), json.RawMessage(`{"a":1}`))
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !result.Success || result.Output != `{"a":1}` {
			t.Errorf("Execute() result = %+v", result)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()

		_, err := tool.NewBuilder("").
			WithHandler(func(context.Context, json.RawMessage) (tool.Result, error) {
				return tool.Result{}, nil
			}).
			Build()
		if !errors.Is(err, tool.ErrEmptyName) {
			t.Errorf("Build() error = %v, want ErrEmptyName", err)
		}
	})

	t.Run("rejects missing handler", func(t *testing.T) {
		t.Parallel()

		_, err := tool.NewBuilder("nohandler").Build()
		if !errors.Is(err, tool.ErrNoHandler) {
			t.Errorf("Build() error = %v, want ErrNoHandler", err)
		}
	})

	t.Run("defaults to safe", func(t *testing.T) {
		t.Parallel()

		built := tool.NewBuilder("noop").
			WithHandler(func(context.Context, json.RawMessage) (tool.Result, error) {
				return tool.NewResult("ok"), nil
			}).
			MustBuild()
		if built.Safety() != tool.SafetySafe {
			t.Errorf("Safety() = %v, want safe", built.Safety())
		}
	})
}

func TestSafetyLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level         tool.SafetyLevel
		str           string
		needsApproval bool
	}{
		{tool.SafetySafe, "safe", false},
		{tool.SafetyModerate, "moderate", true},
		{tool.SafetyDangerous, "dangerous", true},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.str {
			t.Errorf("String() = %q, want %q", got, tt.str)
		}
		if got := tt.level.NeedsApproval(); got != tt.needsApproval {
			t.Errorf("%v.NeedsApproval() = %v, want %v", tt.level, got, tt.needsApproval)
		}
	}
}

func TestResultPreview(t *testing.T) {
	t.Parallel()

	t.Run("short output untouched", func(t *testing.T) {
		t.Parallel()

		r := tool.NewResult("hello")
		if got := r.Preview(500); got != "hello" {
			t.Errorf("Preview() = %q", got)
		}
	})

	t.Run("long output truncated with ellipsis", func(t *testing.T) {
		t.Parallel()

		r := tool.NewResult(strings.Repeat("x", 600))
		got := r.Preview(500)
		if len(got) != 503 || !strings.HasSuffix(got, "...") {
			t.Errorf("Preview() length = %d, suffix ok = %v", len(got), strings.HasSuffix(got, "..."))
		}
	})
}
