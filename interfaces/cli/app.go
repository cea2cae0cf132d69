// Package cli provides the command-line interface for the assistant.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zkhudr/gemini-agent/application/assistant"
	"github.com/zkhudr/gemini-agent/domain/memory"
	"github.com/zkhudr/gemini-agent/domain/middleware"
	"github.com/zkhudr/gemini-agent/infrastructure/config"
	"github.com/zkhudr/gemini-agent/infrastructure/logging"
	infmem "github.com/zkhudr/gemini-agent/infrastructure/memory"
	infmw "github.com/zkhudr/gemini-agent/infrastructure/middleware"
	"github.com/zkhudr/gemini-agent/infrastructure/planner"
	"github.com/zkhudr/gemini-agent/infrastructure/project"
	"github.com/zkhudr/gemini-agent/infrastructure/registry"
	"github.com/zkhudr/gemini-agent/pack/fileops"
	"github.com/zkhudr/gemini-agent/pack/gitops"
	"github.com/zkhudr/gemini-agent/pack/shell"
	"github.com/zkhudr/gemini-agent/pack/web"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer

	configPath string
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "gemini-agent",
		Short: "Conversational assistant with local tools",
		Long: `gemini-agent mediates between a text-generation backend and a set of
local tools (files, shell, git, web). Per turn it decides whether a tool
should run, executes it under a safety policy, and folds the result back
into the conversation, enriched with project context and scoped memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to configuration file")

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newChatCmd(),
		app.newAskCmd(),
		app.newToolCmd(),
		app.newMemoryCmd(),
		app.newContextCmd(),
		app.newWorkflowsCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "gemini-agent version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// runtime bundles the wired components behind one config load.
type runtime struct {
	settings   config.Settings
	assistant  *assistant.Assistant
	aggregator *project.Aggregator
	store      memory.Store
}

// buildRuntime loads configuration and wires the assistant stack.
func (a *App) buildRuntime() (*runtime, error) {
	settings, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  settings.Logging.Level,
		Format: settings.Logging.Format,
		Output: a.stderr,
	})

	store, err := buildStore(settings)
	if err != nil {
		return nil, err
	}

	reg := registry.NewInMemory()
	reg.Register(fileops.New())
	reg.Register(shell.New(shell.WithTimeout(settings.Shell.Timeout)))
	reg.Register(gitops.New(settings.ProjectPath))
	reg.Register(web.New(web.WithCredentials(settings.Search.APIKey, settings.Search.CSEID)))

	aggregator := project.NewAggregator(settings.ProjectPath, project.WithMemory(store))

	dispatcher := registry.NewDispatcher(reg,
		registry.WithMiddleware(middleware.Chain(
			infmw.Logging(),
			infmw.Approval(infmw.ApprovalConfig{}),
		)),
	)

	provider := planner.NewGeminiProvider(planner.GeminiConfig{
		APIKey:  settings.Gemini.APIKey,
		BaseURL: settings.Gemini.BaseURL,
		Model:   settings.Gemini.Model,
	})

	asst := assistant.New(provider, dispatcher, aggregator, store,
		assistant.WithMaxTokens(settings.Gemini.MaxTokens),
	)

	return &runtime{
		settings:   settings,
		assistant:  asst,
		aggregator: aggregator,
		store:      store,
	}, nil
}

// buildStore selects the memory backend from settings.
func buildStore(settings config.Settings) (memory.Store, error) {
	switch settings.Memory.Backend {
	case "", "file":
		return infmem.NewFileStore(settings.ProjectPath, settings.Memory.HomeDir), nil
	case "redis":
		return infmem.NewRedisStore(infmem.RedisConfig{
			Address:   settings.Memory.Redis.Address,
			Password:  settings.Memory.Redis.Password,
			DB:        settings.Memory.Redis.DB,
			KeyPrefix: settings.Memory.Redis.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown memory backend %q", settings.Memory.Backend)
	}
}

// printReply renders one assistant reply for the terminal.
func (a *App) printReply(reply assistant.Reply) {
	if reply.Status != assistant.StatusSuccess {
		fmt.Fprintf(a.stderr, "Error: %s\n", reply.Response)
		return
	}
	fmt.Fprintln(a.stdout, reply.Response)
}
