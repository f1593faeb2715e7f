// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/matex/internal/store"
	"github.com/pdiddy/matex/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store [result.json...]",
	Short: "Ingest result files into the local results database",
	Long: `Store ingests result JSON files into a SQLite database under
--dir/index/matex.db. A result with a DOI (or, lacking one, a title)
already in the store replaces the earlier version. With --status, store
prints row counts instead of ingesting.`,
	RunE: runStore,
}

func init() {
	storeCmd.Flags().String("dir", "results", "base directory for the results store")
	storeCmd.Flags().Bool("status", false, "print store row counts and exit")

	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	s, err := store.Open(storeConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()

	if status, _ := cmd.Flags().GetBool("status"); status {
		sum, err := s.Summarize(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("extractions: %d\nmeasurements: %d\ntables: %d\n",
			sum.Extractions, sum.Measurements, sum.Tables)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("no result files given (or use --status)")
	}

	failed := 0
	for _, path := range args {
		result, err := readResult(path)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", path, err)
			failed++
			continue
		}

		id, updated, err := s.Ingest(ctx, result)
		if err != nil {
			fmt.Fprintf(os.Stdout, "failed  %s: %v\n", path, err)
			failed++
			continue
		}
		if updated {
			fmt.Fprintf(os.Stdout, "updated %s (%s)\n", path, id)
		} else {
			fmt.Fprintf(os.Stdout, "stored  %s (%s)\n", path, id)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d file(s) failed ingestion", failed)
	}
	return nil
}

func storeConfigFromFlags(cmd *cobra.Command) types.StoreConfig {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		dir = viper.GetString("store.dir")
	}
	if dir == "" {
		dir = "results"
	}
	return types.StoreConfig{
		Dir:        dir,
		MaxResults: viper.GetInt("store.max_results"),
	}
}
