package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dealscope/internal/server"
	"dealscope/internal/utils"
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the dealscope dashboard",
	Long: `Starts the dashboard web server. Persisted snapshots are loaded at
startup so cached data shows immediately; the page's refresh button pulls
the live feeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, db, err := newManager(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := manager.RestoreAll(context.Background()); err != nil {
			utils.Log.Warnf("restoring snapshots: %v", err)
		}

		addr, _ := cmd.Flags().GetString("bind")
		if addr == "" {
			addr = viper.GetString("web.bind")
		}
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = viper.GetString("web.password")
		}

		return server.New(manager, password).Start(addr)
	},
}

func init() {
	rootCmd.AddCommand(webCmd)

	webCmd.Flags().StringP("bind", "b", "", "Address to bind the server to (default :9999)")
	webCmd.Flags().StringP("password", "p", "", "Dashboard password (optional; empty disables the login gate)")
}
