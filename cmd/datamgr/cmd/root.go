package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datamgr",
	Short: "datamgr manages versioned datasets in R2",
	Long: `datamgr tracks logical datasets (SQLite files) through an append-only
version history recorded in a manifest document, while the binary payloads are
stored in Cloudflare R2.

Local operations stage a payload and record a pending manifest entry; once the
manifest change is merged, automation finalizes it against the production
bucket (see the publish command).
`,
	SilenceUsage: true,
}

var config *Config

// used to patch over calls to os.Exit() during test
var logFatalln = log.Fatalln
var osExit = os.Exit

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	addYesFlag(rootCmd)
	addLogLevelFlag(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("manifest", "manifest.json")
	viper.SetDefault("max_diff_lines", 500)
	viper.SetDefault("loglevel", "info")

	if os.Getenv("DATAMGR_CONFIG") != "" {
		viper.SetConfigFile(os.Getenv("DATAMGR_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.datamgr")
		viper.AddConfigPath("/etc/datamgr")
		viper.SetConfigName("datamgr")
	}

	for _, envVar := range []string{
		"r2_account_id",
		"r2_access_key_id",
		"r2_secret_access_key",
		"r2_production_bucket",
		"r2_staging_bucket",
	} {
		_ = viper.BindEnv(envVar)
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
}
