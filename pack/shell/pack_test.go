package shell_test

import (
	"context"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/zkhudr/gemini-agent/domain/tool"
	"github.com/zkhudr/gemini-agent/pack/shell"
)

func exec(t *testing.T, params string, opts ...shell.Option) tool.Result {
	t.Helper()
	result, err := shell.New(opts...).Execute(context.Background(), json.RawMessage(params))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	return result
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		blocked bool
	}{
		{"ls -la", false},
		{"git status", false},
		{"rm -rf /", true},
		{"echo hi && RM -RF /tmp/x", true}, // case-insensitive
		{"sudo apt install", true},
		{"chmod 777 /etc", true},
		{"make build", false},
	}
	for _, tt := range tests {
		blocked, _ := shell.CheckCommand(tt.command)
		if blocked != tt.blocked {
			t.Errorf("CheckCommand(%q) blocked = %v, want %v", tt.command, blocked, tt.blocked)
		}
	}
}

func TestShellExecute(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	t.Parallel()

	t.Run("blocked command never spawns", func(t *testing.T) {
		t.Parallel()

		result := exec(t, `{"command":"rm -rf /tmp/whatever"}`)
		if result.Success {
			t.Fatal("blocked command succeeded")
		}
		if !strings.Contains(result.Error, tool.ErrSecurityRejection.Error()) {
			t.Errorf("Error = %q, want security rejection", result.Error)
		}
	})

	t.Run("captures stdout and exit code", func(t *testing.T) {
		t.Parallel()

		result := exec(t, `{"command":"echo hello"}`)
		if !result.Success {
			t.Fatalf("result = %+v", result)
		}
		if !strings.Contains(result.Output, "hello") {
			t.Errorf("Output = %q", result.Output)
		}
		if rc, ok := result.Metadata["return_code"].(int); !ok || rc != 0 {
			t.Errorf("return_code = %v", result.Metadata["return_code"])
		}
	})

	t.Run("nonzero exit is failure with output kept", func(t *testing.T) {
		t.Parallel()

		result := exec(t, `{"command":"echo oops >&2; exit 3"}`)
		if result.Success {
			t.Fatal("nonzero exit reported success")
		}
		if !strings.Contains(result.Output, "oops") {
			t.Errorf("stderr missing from output: %q", result.Output)
		}
		if !strings.Contains(result.Error, "exited with code 3") {
			t.Errorf("Error = %q", result.Error)
		}
	})

	t.Run("timeout terminates the command", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		result := exec(t, `{"command":"sleep 5"}`, shell.WithTimeout(100*time.Millisecond))
		if result.Success {
			t.Fatal("timed-out command succeeded")
		}
		if !strings.Contains(result.Error, tool.ErrExecutionTimeout.Error()) {
			t.Errorf("Error = %q, want timeout", result.Error)
		}
		if time.Since(start) > 3*time.Second {
			t.Error("timeout not enforced")
		}
	})

	t.Run("timeout bounds commands whose children hold the pipes", func(t *testing.T) {
		t.Parallel()

		// The forked sleep inherits stdout/stderr and outlives the shell.
		start := time.Now()
		result := exec(t, `{"command":"sleep 30 & wait"}`, shell.WithTimeout(100*time.Millisecond))
		if result.Success {
			t.Fatal("timed-out command succeeded")
		}
		if !strings.Contains(result.Error, tool.ErrExecutionTimeout.Error()) {
			t.Errorf("Error = %q, want timeout", result.Error)
		}
		if time.Since(start) > 3*time.Second {
			t.Error("run blocked on an orphaned child")
		}
	})

	t.Run("empty command fails", func(t *testing.T) {
		t.Parallel()

		if result := exec(t, `{"command":"  "}`); result.Success {
			t.Error("empty command succeeded")
		}
	})

	t.Run("working directory override", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		result := exec(t, `{"command":"pwd","working_dir":"`+dir+`"}`)
		if !result.Success || !strings.Contains(result.Output, dir) {
			t.Errorf("result = %+v", result)
		}
	})
}
