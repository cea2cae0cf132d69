package workflow_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/zkhudr/gemini-agent/domain/workflow"
)

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("unknown name fails", func(t *testing.T) {
		t.Parallel()

		r := workflow.NewRegistry()
		_, err := r.Get("nonexistent")
		if !errors.Is(err, workflow.ErrTemplateNotFound) {
			t.Errorf("Get() error = %v, want ErrTemplateNotFound", err)
		}
	})

	t.Run("builtins are registered", func(t *testing.T) {
		t.Parallel()

		r := workflow.NewRegistry()
		for _, name := range []string{
			"code_review", "feature_implementation", "debug_assistance",
			"refactoring", "documentation",
		} {
			tpl, err := r.Get(name)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", name, err)
			}
			if tpl.Prompt == "" || len(tpl.Tools) == 0 {
				t.Errorf("template %q incomplete: %+v", name, tpl)
			}
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()

		r := workflow.NewRegistry()
		names := r.Names()
		for i := 1; i < len(names); i++ {
			if names[i-1] > names[i] {
				t.Errorf("Names() not sorted: %v", names)
			}
		}
	})

	t.Run("register overrides", func(t *testing.T) {
		t.Parallel()

		r := workflow.NewRegistry()
		r.Register(workflow.Template{Name: "code_review", Prompt: "custom"})
		tpl, err := r.Get("code_review")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if tpl.Prompt != "custom" {
			t.Errorf("Prompt = %q, want %q", tpl.Prompt, "custom")
		}
	})
}

func TestCompose(t *testing.T) {
	t.Parallel()

	tpl := workflow.Template{Name: "x", Prompt: "Do the thing."}

	if got := tpl.Compose(""); got != "Do the thing." {
		t.Errorf("Compose(\"\") = %q", got)
	}

	got := tpl.Compose("focus on errors")
	if !strings.HasPrefix(got, "Do the thing.") {
		t.Errorf("Compose() missing prompt prefix: %q", got)
	}
	if !strings.Contains(got, "Specific requirements:\nfocus on errors") {
		t.Errorf("Compose() missing requirements section: %q", got)
	}
}
