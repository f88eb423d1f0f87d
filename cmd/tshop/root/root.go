package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"titleshop/internal/ui"
)

const Version = "0.1.0"

var (
	configPath string
	dbPath     string
)

var rootCmd = &cobra.Command{
	Use:           "tshop",
	Short:         "Title shop client: earn coins, buy titles, chat",
	Long:          "tshop is a terminal client for the title shop game. Progress, coins and chat live on the game services; this client keeps a local session.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.titleshop/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Session database path (default ~/.titleshop/session.db)")

	rootCmd.AddCommand(
		newLoginCmd(),
		newRegisterCmd(),
		newGuestCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newTitlesCmd(),
		newBuyCmd(),
		newTasksCmd(),
		newChatCmd(),
		newAdminCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+describe(err)))
		os.Exit(1)
	}
}
