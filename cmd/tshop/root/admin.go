package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"titleshop/internal/ui"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrator tools (the admin service checks privileges)",
	}
	cmd.AddCommand(
		newAdminOnlineCmd(),
		newAdminGiveCmd(),
		newAdminStatsCmd(),
		newAdminTransactionsCmd(),
	)
	return cmd
}

func parseIDArgs(names ...string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != len(names) {
			return fmt.Errorf("expected %d argument(s): %v", len(names), names)
		}
		for i, a := range args {
			if _, err := strconv.ParseInt(a, 10, 64); err != nil {
				return fmt.Errorf("%s must be an integer", names[i])
			}
		}
		return nil
	}
}

func newAdminOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "List users online now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			users, err := a.eng.OnlineUsers(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShield, fmt.Sprintf("Online (%d)", len(users))))
			for _, u := range users {
				fmt.Fprintf(out, "- %s %s %s\n", ui.Muted.Render(fmt.Sprintf("#%d", u.ID)), ui.UserBadge(u.Username, u.IsGuest, false), ui.Coins(u.Coins))
			}
			return nil
		},
	}
}

func newAdminGiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "give <user_id> <amount>",
		Short: "Grant coins to a user",
		Args:  parseIDArgs("user_id", "amount"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target, _ := strconv.ParseInt(args[0], 10, 64)
			amount, _ := strconv.Atoi(args[1])
			if amount <= 0 {
				return errors.New("amount must be positive")
			}
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			a.eng.SetObserver(printObserver{w: cmd.OutOrStdout()})
			g, err := a.eng.GiveCoins(ctx, target, amount)
			if err != nil {
				return err
			}
			msg := g.Message
			if msg == "" {
				msg = fmt.Sprintf("Granted %d coins to %s", amount, g.Username)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Good.Render(ui.IconCoin+" "+msg), ui.LabelValue("New balance", g.NewCoins))
			return nil
		},
	}
}

func newAdminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show game statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := a.eng.Stats(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconShield, "Stats"))
			fmt.Fprintln(out, ui.LabelValue("Users", st.TotalUsers))
			fmt.Fprintln(out, ui.LabelValue("Online", st.OnlineUsers))
			fmt.Fprintln(out, ui.LabelValue("Messages", st.TotalMessages))
			fmt.Fprintln(out, ui.LabelValue("Purchases", st.TotalPurchases))
			if len(st.TopUsers) > 0 {
				fmt.Fprintln(out, "")
				fmt.Fprintln(out, ui.H2.Render("Top users"))
				for i, u := range st.TopUsers {
					fmt.Fprintf(out, "%d. %s %s\n", i+1, u.Username, ui.Coins(u.Coins))
				}
			}
			return nil
		},
	}
}

func newAdminTransactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions <user_id>",
		Short: "Show a user's coin history",
		Args:  parseIDArgs("user_id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			target, _ := strconv.ParseInt(args[0], 10, 64)
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txs, err := a.eng.Transactions(ctx, target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCoin, fmt.Sprintf("Transactions for #%d", target)))
			if len(txs) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(none)"))
			}
			for _, tx := range txs {
				fmt.Fprintf(out, "- %s %s %s %s\n", ui.Dim.Render(tx.CreatedAt), ui.Delta(tx.Amount), ui.Muted.Render(tx.Type), tx.Description)
			}
			return nil
		},
	}
}
