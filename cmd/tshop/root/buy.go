package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"titleshop/internal/engine"
	"titleshop/internal/logging"
	"titleshop/internal/ui"
)

func newBuyCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "buy <title_id>",
		Short: "Buy a title",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("title_id is required")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return errors.New("title_id must be an integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, _ := strconv.ParseInt(args[0], 10, 64)
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			a.eng.SetObserver(printObserver{w: out})
			if _, err := a.eng.Refresh(ctx); err != nil {
				return err
			}
			if err := a.eng.RefreshTitles(ctx); err != nil {
				return err
			}
			if err := a.eng.RecordAction(ctx, engine.ActionViewTitle, 1); err != nil {
				a.logs.Logger(logging.CLI).Debugf("view_title: %v", err)
			}

			p, err := a.eng.Propose(id)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Heading(ui.IconCrown, p.Name))
			fmt.Fprintln(out, ui.LabelValue("Price", ui.Coins(p.Price)))
			fmt.Fprintln(out, ui.LabelValue("Balance", ui.Coins(p.Balance)))
			if !p.CanAfford {
				return engine.AffordabilityError{Price: p.Price, Balance: p.Balance}
			}
			fmt.Fprintln(out, ui.LabelValue("After", ui.Coins(p.BalanceAfter)))

			if !yes {
				fmt.Fprint(out, ui.Key.Render("Confirm purchase? [y/N] "))
				answer, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read answer: %w", err)
				}
				if ans := strings.ToLower(strings.TrimSpace(answer)); ans != "y" && ans != "yes" {
					fmt.Fprintln(out, ui.Muted.Render("Cancelled."))
					return nil
				}
			}

			res, err := a.eng.Confirm(ctx)
			if err != nil {
				return err
			}
			msg := res.Message
			if msg == "" {
				msg = "Bought " + res.Name
			}
			fmt.Fprintf(out, "%s %s\n", ui.Good.Render(ui.IconCrown+" "+msg), ui.Coins(res.Coins))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
