package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newToolCmd creates the tool command group.
func (a *App) newToolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tool",
		Short: "Inspect and run tools directly",
	}

	cmd.AddCommand(a.newToolListCmd(), a.newToolRunCmd())
	return cmd
}

func (a *App) newToolListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}
			reply := rt.assistant.SendMessage(cmd.Context(), "/tools", false, "")
			a.printReply(reply)
			return nil
		},
	}
}

// toolRunOptions holds options for the tool run command.
type toolRunOptions struct {
	params string
}

func (a *App) newToolRunCmd() *cobra.Command {
	opts := &toolRunOptions{}

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Execute a tool directly, bypassing the routing protocol",
		Long: `Execute a tool with hand-constructed parameters.

Examples:
  gemini-agent tool run file_operations --params '{"operation":"list_directory","path":"."}'
  gemini-agent tool run bash_commands --params '{"command":"git status"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			params := json.RawMessage(opts.params)
			if opts.params == "" {
				params = json.RawMessage(`{}`)
			} else if !json.Valid(params) {
				return fmt.Errorf("invalid JSON in --params")
			}

			result := rt.assistant.ExecuteToolDirectly(cmd.Context(), args[0], params)

			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("tool execution failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.params, "params", "p", "", "Tool parameters as a JSON object")
	return cmd
}
