package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"titleshop/internal/ui"
)

func newChatCmd() *cobra.Command {
	var send string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Show recent chat messages, or send one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openSession(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			a.eng.SetObserver(printObserver{w: out})
			if err := a.eng.PollChat(ctx); err != nil {
				return err
			}
			if send != "" {
				if _, err := a.eng.SendMessage(ctx, send); err != nil {
					return err
				}
			}

			st := a.eng.Snapshot()
			fmt.Fprintln(out, ui.Heading(ui.IconChat, "Chat"))
			if len(st.Messages) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("(no messages yet)"))
			}
			for _, m := range st.Messages {
				ts := ""
				if t, ok := m.Created(); ok {
					ts = ui.Dim.Render(t.Local().Format("01-02 15:04")) + " "
				}
				fmt.Fprintf(out, "%s%s: %s\n", ts, ui.UserBadge(m.Username, false, m.IsAdmin), m.Body)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&send, "send", "s", "", "Send a message before listing")
	return cmd
}
