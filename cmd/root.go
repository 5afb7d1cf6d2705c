package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dealscope/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `     _            _
  __| | ___  __ _| |___  ___ ___  _ __   ___
 / _` + "`" + ` |/ _ \/ _` + "`" + ` | / __|/ __/ _ \| '_ \ / _ \
| (_| |  __/ (_| | \__ \ (_| (_) | |_) |  __/
 \__,_|\___|\__,_|_|___/\___\___/| .__/ \___|
                                 |_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dealscope",
	Short: "Weekly error and completion-time analytics for deal processing logs.",
	Long: LOGO + `dealscope pulls the deal and CLO processing logs from their published
spreadsheet feeds, normalizes them into weekly buckets, and serves the
error-rate, error-type, and completion-time charts over a local dashboard.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.dealscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("dbpath", "d", "", "Path to the SQLite snapshot database (default is dealscope.sqlite)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".dealscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.dealscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("database.path", "dealscope.sqlite")
	viper.SetDefault("http.timeout", 30)
	viper.SetDefault("web.bind", ":9999")
	viper.SetDefault("web.password", "")
	viper.SetDefault("feeds.deal.url", "")
	viper.SetDefault("feeds.deal.label", "Deal Processing")
	viper.SetDefault("feeds.deal.format", "csv")
	viper.SetDefault("feeds.clo.url", "")
	viper.SetDefault("feeds.clo.label", "CLO Processing")
	viper.SetDefault("feeds.clo.format", "csv")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}
