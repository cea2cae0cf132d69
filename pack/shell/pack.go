// Package shell provides the bash_commands tool with a two-tier safety
// check.
package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/zkhudr/gemini-agent/domain/tool"
)

const usage = `Bash Commands Tool:
Execute bash commands with safety checks.

Parameters:
- command: The bash command to execute
- working_dir: Working directory (optional)
- timeout: Command timeout in seconds (default: 30)

Safety Features:
- Blocked dangerous commands
- Safe command whitelist
- Timeout protection`

// DefaultTimeout bounds command execution when no timeout is given.
const DefaultTimeout = 30 * time.Second

// blockedPatterns refuse execution on any case-insensitive substring match,
// before a process is spawned.
var blockedPatterns = []string{
	"rm -rf", "sudo", "chmod 777", "dd", "mkfs", "fdisk", "kill -9",
}

// safeCommands is informational: known-safe commands by exact string or
// first token. Everything else still runs but is flagged as requiring
// approval.
var safeCommands = map[string]bool{
	"ls": true, "pwd": true, "echo": true, "cat": true, "head": true,
	"tail": true, "wc": true, "grep": true, "find": true,
	"git status": true, "git log": true, "git diff": true,
	"npm list": true, "pip list": true,
}

// Config configures the shell tool.
type Config struct {
	// Timeout bounds command execution.
	Timeout time.Duration

	// Shell is the shell binary used to run commands.
	Shell string
}

// Option configures the shell tool.
type Option func(*Config)

// WithTimeout sets the default command timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithShell sets the shell binary.
func WithShell(shell string) Option {
	return func(c *Config) {
		c.Shell = shell
	}
}

type params struct {
	Command    string `json:"command"`
	WorkingDir string `json:"working_dir,omitempty"`
	Timeout    int    `json:"timeout,omitempty"` // seconds
}

// New creates the bash_commands tool.
func New(opts ...Option) tool.Tool {
	cfg := Config{
		Timeout: DefaultTimeout,
		Shell:   "/bin/sh",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return tool.NewBuilder("bash_commands").
		WithDescription("Execute shell commands with safety checks").
		WithUsage(usage).
		Dangerous().
		WithHandler(func(ctx context.Context, raw json.RawMessage) (tool.Result, error) {
			var in params
			if err := json.Unmarshal(raw, &in); err != nil {
				return tool.NewErrorResult(err), nil
			}
			return run(ctx, &cfg, in), nil
		}).
		MustBuild()
}

// CheckCommand applies the two-tier safety check. A blocked verdict refuses
// execution; the advisory verdict only annotates the result metadata.
func CheckCommand(command string) (blocked bool, verdict string) {
	lowered := strings.ToLower(command)
	for _, pattern := range blockedPatterns {
		if strings.Contains(lowered, pattern) {
			return true, "Contains blocked pattern: " + pattern
		}
	}

	first := ""
	if fields := strings.Fields(command); len(fields) > 0 {
		first = fields[0]
	}
	if safeCommands[command] || safeCommands[first] {
		return false, "Safe command"
	}
	return false, "Requires approval"
}

func run(ctx context.Context, cfg *Config, in params) tool.Result {
	command := strings.TrimSpace(in.Command)
	if command == "" {
		return tool.NewErrorResultf("No command provided")
	}

	blocked, verdict := CheckCommand(command)
	if blocked {
		return tool.NewErrorResult(fmt.Errorf("%w: %s", tool.ErrSecurityRejection, verdict))
	}

	timeout := cfg.Timeout
	if in.Timeout > 0 {
		timeout = time.Duration(in.Timeout) * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Shell, "-c", command) // #nosec G204 -- checked against blocked patterns above
	// Killing the shell does not reap grandchildren, and a forked child
	// inherits the output pipes; without a wait delay Run would block until
	// every pipe holder exits.
	cmd.WaitDelay = time.Second
	if in.WorkingDir != "" {
		cmd.Dir = in.WorkingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return tool.NewErrorResult(fmt.Errorf("%w: command timed out after %s", tool.ErrExecutionTimeout, timeout))
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return tool.NewErrorResult(err)
		}
	}

	// Output is stdout and stderr concatenated, like an interactive shell.
	output := stdout.String() + stderr.String()
	metadata := map[string]any{
		"return_code": exitCode,
		"working_dir": in.WorkingDir,
		"verdict":     verdict,
	}

	if exitCode != 0 {
		return tool.Result{
			Success:   false,
			Output:    output,
			Error:     fmt.Sprintf("Command exited with code %d", exitCode),
			Metadata:  metadata,
			Timestamp: time.Now(),
		}
	}
	return tool.NewResultWithMetadata(output, metadata)
}
