package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newWorkflowsCmd creates the workflows command.
func (a *App) newWorkflowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List available workflow templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			workflows := rt.assistant.Workflows()
			for _, name := range workflows.Names() {
				t, err := workflows.Get(name)
				if err != nil {
					continue
				}
				fmt.Fprintf(a.stdout, "%s\n", name)
				fmt.Fprintf(a.stdout, "  tools: %s\n", strings.Join(t.Tools, ", "))
				fmt.Fprintf(a.stdout, "  auto-approve: %s\n", strings.Join(t.AutoApprove, ", "))
			}
			return nil
		},
	}
}
