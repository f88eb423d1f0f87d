package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"titleshop/internal/engine"
	"titleshop/internal/logging"
	"titleshop/internal/ui"
)

func newTitlesCmd() *cobra.Command {
	var ownedOnly bool

	cmd := &cobra.Command{
		Use:   "titles",
		Short: "List titles with prices and ownership",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.eng.RefreshTitles(ctx); err != nil {
				return err
			}
			a.eng.SetObserver(printObserver{w: cmd.OutOrStdout()})
			if err := a.eng.RecordAction(ctx, engine.ActionVisitShop, 1); err != nil {
				a.logs.Logger(logging.CLI).Debugf("visit_shop: %v", err)
			}

			st := a.eng.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", ui.Heading(ui.IconShop, "Titles"), ui.Coins(st.Balance))
			for _, t := range st.Titles {
				if ownedOnly && !t.Owned {
					continue
				}
				price := ui.Price(t.Price, st.Balance)
				if t.Owned {
					price = ui.BadgeOwned
				}
				fmt.Fprintf(out, "- %s %s %s\n", ui.Muted.Render(fmt.Sprintf("#%d", t.ID)), t.Name, price)
				if t.Description != "" {
					fmt.Fprintf(out, "  %s\n", ui.Dim.Render(t.Description))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ownedOnly, "owned", false, "Only list owned titles")
	return cmd
}
