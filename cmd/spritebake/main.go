// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the spritebake CLI.
// Implements: prd001-export, prd002-watch, prd003-history (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the spritebake CLI.
var rootCmd = &cobra.Command{
	Use:   "spritebake",
	Short: "Batch-export Aseprite sprites to PNG",
	Long: `spritebake drives the Aseprite editor's command-line batch mode to flatten
sprite sources (.ase, .aseprite) into PNG files. Outputs are written next to
their sources with the same base name.

The export command converts a directory once; watch keeps converting as
sprites change; history inspects the optional run ledger. The editor binary
is resolved on PATH (aseprite, then libresprite) and is the only external
dependency.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./spritebake.yaml or ~/.config/spritebake/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("spritebake")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "spritebake"))
		}
	}

	viper.SetEnvPrefix("SPRITEBAKE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
