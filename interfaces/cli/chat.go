package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zkhudr/gemini-agent/infrastructure/logging"
	"github.com/zkhudr/gemini-agent/infrastructure/project"
)

// chatOptions holds options for the chat command.
type chatOptions struct {
	workflow string
	noTools  bool
}

// newChatCmd creates the interactive chat command.
func (a *App) newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive conversation. Each message is routed through the
tool-dispatch protocol unless --no-tools is given.

In-session commands:
  #remember [@scope] key: content   store a fact in memory
  /tools /memory /context /workflows  inspect state
  /auto on|off                      toggle auto-approve
  exit                              leave the session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.workflow, "workflow", "w", "", "Workflow template to apply")
	cmd.Flags().BoolVar(&opts.noTools, "no-tools", false, "Disable tool routing")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command, opts *chatOptions) error {
	rt, err := a.buildRuntime()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Invalidate the cached project context when a source file changes.
	watcher, err := project.NewWatcher(rt.aggregator, func(string) {
		rt.assistant.InvalidateContext()
	})
	if err != nil {
		logging.Warn().Err(err).Msg("context watcher unavailable")
	} else {
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	fmt.Fprintf(a.stdout, "gemini-agent %s — session %s\n", Version, rt.assistant.Session().ID())
	fmt.Fprintln(a.stdout, `Type "exit" to quit.`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(a.stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			input, output := rt.assistant.Session().Tokens()
			fmt.Fprintf(a.stdout, "Session ended (tokens: %d in / %d out)\n", input, output)
			return nil
		}

		reply := rt.assistant.SendMessage(ctx, line, !opts.noTools, opts.workflow)
		// A workflow template applies once, to the first message.
		opts.workflow = ""
		a.printReply(reply)
	}
}
