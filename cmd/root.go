// Package cmd provides the rsc command-line interface.
//
// Configuration sources, highest priority first:
//
//  1. Command-line flags (--port, --host, --hot-reload, --log-level)
//  2. Environment variables with the RSC_ prefix (RSC_SERVER_PORT, ...),
//     including values from a .env file in the working directory
//  3. The config file: --config, then RSC_CONFIG_FILE, then .rsc.yml
//  4. Built-in defaults
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/rsc/internal/config"
	"github.com/conneroisu/rsc/internal/errors"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rsc",
	Short: "Serve pages inside a shared server-rendered document shell",
	Long: `rsc renders every page inside the root layout: an html document with a
fixed head and a body holding a single style-registry boundary.

Quick Start:
  rsc serve                 Start the server
  rsc render about          Print the rendered about page
  rsc check ./components    Check the server/client component graph
  rsc config                Show the effective configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .rsc.yml, can also use RSC_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires the config file and environment into viper.
func initConfig() {
	// A missing .env is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("RSC_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rsc")
	}

	viper.SetEnvPrefix("RSC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads the effective configuration as a structured config error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.WithSuggestions(
			errors.WrapConfig(err, "failed to load configuration"),
			errors.ConfigSuggestions(err),
		)
	}
	return cfg, nil
}
