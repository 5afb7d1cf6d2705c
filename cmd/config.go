package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Prints the resolved configuration.",
	Long:  "Prints the config file in use, the database path, and the resolved feed definitions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
		fmt.Printf("Database:    %s\n\n", dbPath(cmd))

		cfgs, err := loadFeeds()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FEED\tLABEL\tFORMAT\tURL\t")
		for _, cfg := range cfgs {
			format := cfg.Format
			if format == "" {
				format = "csv"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", cfg.Key, cfg.Label, format, cfg.URL)
		}
		w.Flush()

		fmt.Println("\nResolved columns:")
		for _, cfg := range cfgs {
			s := cfg.Schema
			fmt.Printf("  %s: associate=%q date=%q associate_error=%q team_error=%q error_type=%q duration=%q item_name=%q\n",
				cfg.Key, s.Associate, s.Date, s.AssociateError, s.TeamError, s.ErrorType, s.Duration, s.ItemName)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
