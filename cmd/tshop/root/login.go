package root

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"titleshop/internal/engine"
	"titleshop/internal/ui"
)

func newLoginCmd() *cobra.Command {
	return newAuthCmd("login", "Log in with a username and password", (*engine.Engine).Login)
}

func newRegisterCmd() *cobra.Command {
	return newAuthCmd("register", "Create an account and log in", (*engine.Engine).Register)
}

type authFunc func(e *engine.Engine, ctx context.Context, username, password string) (engine.User, error)

func newAuthCmd(use, short string, auth authFunc) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("username is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if password == "" {
				pw, err := readLine(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read password: %w", err)
				}
				password = pw
			}
			if password == "" {
				return errors.New("password is required (--password or one line on stdin)")
			}

			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := auth(a.eng, ctx, strings.TrimSpace(args[0]), password)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), u)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (read from stdin when omitted)")
	return cmd
}

func newGuestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guest",
		Short: "Start a guest session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			u, err := a.eng.GuestLogin(ctx)
			if err != nil {
				return err
			}
			printWelcome(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.eng.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Logged out."))
			return nil
		},
	}
}

func printWelcome(w io.Writer, u engine.User) {
	fmt.Fprintf(w, "%s %s\n", ui.Good.Render(ui.IconSparkle+" Welcome,"), ui.UserBadge(u.Username, u.IsGuest, u.IsAdmin))
	fmt.Fprintln(w, ui.LabelValue("Coins", ui.Coins(u.Coins)))
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
