package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zkhudr/gemini-agent/domain/memory"
)

// newMemoryCmd creates the memory command group.
func (a *App) newMemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Inspect and manage scoped memory",
	}

	cmd.AddCommand(
		a.newMemoryListCmd(),
		a.newMemorySearchCmd(),
		a.newMemoryRememberCmd(),
		a.newMemoryClearCmd(),
	)
	return cmd
}

func (a *App) newMemoryListCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memory entries, optionally for one scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			var scopes []memory.Scope
			if scope != "" {
				s := memory.Scope(scope)
				if !s.Valid() {
					return fmt.Errorf("unknown scope %q", scope)
				}
				scopes = append(scopes, s)
			}

			all, err := rt.store.All(cmd.Context(), scopes...)
			if err != nil {
				return err
			}

			empty := true
			for _, s := range memory.SearchOrder() {
				records := all[s]
				if len(records) == 0 {
					continue
				}
				empty = false
				keys := make([]string, 0, len(records))
				for k := range records {
					keys = append(keys, k)
				}
				sort.Strings(keys)

				fmt.Fprintf(a.stdout, "[%s]\n", s)
				for _, k := range keys {
					fmt.Fprintf(a.stdout, "  %s: %s\n", k, memory.TruncateContent(records[k].Content))
				}
			}
			if empty {
				fmt.Fprintln(a.stdout, "Memory is empty")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "s", "", "Limit to one scope (session, project, user, global)")
	return cmd
}

func (a *App) newMemorySearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search memory content and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			hits, err := rt.store.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintf(a.stdout, "No memory entries match %q\n", args[0])
				return nil
			}
			for _, hit := range hits {
				line := fmt.Sprintf("[%s] %s: %s", hit.Scope, hit.Key, hit.Content)
				if len(hit.Tags) > 0 {
					line += " (tags: " + strings.Join(hit.Tags, ", ") + ")"
				}
				fmt.Fprintln(a.stdout, line)
			}
			return nil
		},
	}
}

func (a *App) newMemoryRememberCmd() *cobra.Command {
	var (
		scope string
		tags  []string
	)

	cmd := &cobra.Command{
		Use:   "remember <key> <content>",
		Short: "Store a memory entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			s := memory.Scope(scope)
			if !s.Valid() {
				return fmt.Errorf("unknown scope %q", scope)
			}
			if err := rt.store.Remember(cmd.Context(), args[0], args[1], s, tags...); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Remembered %q in %s scope\n", args[0], s)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "s", "project", "Target scope")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tags for the entry")
	return cmd
}

func (a *App) newMemoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <scope>",
		Short: "Empty exactly one memory scope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.buildRuntime()
			if err != nil {
				return err
			}

			s := memory.Scope(args[0])
			if !s.Valid() {
				return fmt.Errorf("unknown scope %q", args[0])
			}
			if err := rt.store.Clear(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Cleared %s scope\n", s)
			return nil
		},
	}
}
