package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newContextCmd creates the context command.
func (a *App) newContextCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the aggregated project context",
		Long: `Show a summary of the aggregated project context: size, memory entry
count, and which sources are present. With --full, print the context
string exactly as it is injected into prompts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			if full {
				fmt.Fprintln(a.stdout, rt.aggregator.Load(cmd.Context()))
				return nil
			}

			summary := rt.aggregator.Summarize(cmd.Context())
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summary)
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print the full context string")
	return cmd
}
