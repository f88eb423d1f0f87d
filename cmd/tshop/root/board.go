package root

import (
	"context"

	"github.com/spf13/cobra"

	"titleshop/internal/logging"
	"titleshop/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, a.eng, cmd.OutOrStdout(), a.logs.Logger(logging.TUI))
		},
	}

	return cmd
}
