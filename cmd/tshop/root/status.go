package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"titleshop/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the profile, balance and progress summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := a.eng.Refresh(ctx)
			if err != nil {
				return err
			}
			if err := a.eng.Load(ctx); err != nil {
				return err
			}
			st := a.eng.Snapshot()

			owned := 0
			for _, t := range st.Titles {
				if t.Owned {
					owned++
				}
			}
			done := 0
			for _, t := range st.Tasks {
				if t.Completed {
					done++
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShop, "Player Status"))
			fmt.Fprintln(out, ui.LabelValue("User", ui.UserBadge(st.User.Username, st.User.IsGuest, st.User.IsAdmin)))
			fmt.Fprintln(out, ui.LabelValue("Coins", ui.Coins(st.Balance)))
			fmt.Fprintln(out, ui.LabelValue("Time played", fmt.Sprintf("%d min", p.TimeSpent)))
			fmt.Fprintln(out, ui.LabelValue("Titles", fmt.Sprintf("%d/%d owned", owned, len(st.Titles))))
			fmt.Fprintln(out, ui.LabelValue("Tasks", fmt.Sprintf("%d/%d completed", done, len(st.Tasks))))
			fmt.Fprintln(out, ui.LabelValue("Chat", fmt.Sprintf("%d recent messages", len(st.Messages))))
			return nil
		},
	}

	return cmd
}
