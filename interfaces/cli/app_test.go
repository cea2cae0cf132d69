package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/zkhudr/gemini-agent/interfaces/cli"
)

func TestVersionCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := cli.New().WithOutput(&stdout, &stderr)

	if err := app.ExecuteWithArgs(context.Background(), []string{"version"}); err != nil {
		t.Fatalf("ExecuteWithArgs() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "gemini-agent version") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestWorkflowsCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := cli.New().WithOutput(&stdout, &stderr)

	if err := app.ExecuteWithArgs(context.Background(), []string{"workflows"}); err != nil {
		t.Fatalf("ExecuteWithArgs() error = %v", err)
	}
	for _, name := range []string{"code_review", "debug_assistance", "documentation"} {
		if !strings.Contains(stdout.String(), name) {
			t.Errorf("output missing %q:\n%s", name, stdout.String())
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	app := cli.New().WithOutput(&stdout, &stderr)

	if err := app.ExecuteWithArgs(context.Background(), []string{"frobnicate"}); err == nil {
		t.Error("unknown command accepted")
	}
}
