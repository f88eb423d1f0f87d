package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"titleshop/internal/ui"
)

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks with progress and rewards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.eng.RefreshTasks(ctx); err != nil {
				return err
			}
			st := a.eng.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Tasks"))
			if len(st.Tasks) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no tasks)"))
				return nil
			}
			for _, t := range st.Tasks {
				fmt.Fprintf(out, "- %s %s %d/%d %s %s\n",
					t.Name,
					ui.ProgressBar(t.Ratio(), 10),
					t.Progress, t.MaxProgress,
					ui.Delta(t.Reward),
					ui.TaskStatus(t.Completed),
				)
				if t.Description != "" {
					fmt.Fprintf(out, "  %s\n", ui.Dim.Render(t.Description))
				}
			}
			return nil
		},
	}

	return cmd
}
