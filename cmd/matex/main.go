// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the matex CLI.
// Implements: prd001-ingestion, prd002-normalization, prd003-tables,
// prd004-export, prd005-interpretation, prd006-store (CLI surface).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/matex/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the matex CLI.
var rootCmd = &cobra.Command{
	Use:   "matex",
	Short: "Extract and normalize materials data from scientific papers",
	Long: `matex turns scientific-paper PDFs into normalized, queryable materials
data. A GROBID service recovers document structure, an optional LLM pass
interprets the science, and a deterministic engine converts every
measurement to SI units and every name to controlled vocabulary.

Each pipeline stage is a subcommand: extract (PDF to result), normalize
(raw JSON to result), export, store, and query.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./matex.yaml or ~/.config/matex/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("matex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "matex"))
		}
	}

	viper.SetEnvPrefix("MATEX")
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
