package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// askOptions holds options for the ask command.
type askOptions struct {
	workflow   string
	noTools    bool
	jsonOutput bool
}

// newAskCmd creates the one-shot ask command.
func (a *App) newAskCmd() *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send a single message and print the reply",
		Long: `Send one message through the assistant and print the reply.

Examples:
  gemini-agent ask "List the files in the current directory"
  gemini-agent ask --workflow code_review "Review the parser"
  gemini-agent ask --json "What's in the README?"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			reply := rt.assistant.SendMessage(cmd.Context(), args[0], !opts.noTools, opts.workflow)

			if opts.jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(reply)
			}

			a.printReply(reply)
			if reply.Status != "success" {
				return fmt.Errorf("request failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.workflow, "workflow", "w", "", "Workflow template to apply")
	cmd.Flags().BoolVar(&opts.noTools, "no-tools", false, "Disable tool routing")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output the reply as JSON")

	return cmd
}
