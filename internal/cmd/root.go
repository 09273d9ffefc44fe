// Package cmd implements the maars command-line interface.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maars-dev/maars/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "maars",
	Short: "Research-plan execution engine",
	Long: `Maars takes a hierarchically decomposed research plan, resolves its
dependency graph down to atomic tasks, batches the tasks into parallel
stages, and drives them through bounded executor and validator pools.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/maars/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", ".maars", "directory holding plan.json and execution.json")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("paths.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/maars")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MAARS")
	// Replace dots with underscores for nested keys in env vars
	// e.g., MAARS_EXECUTION_MAX_FAILURES for execution.max_failures
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
