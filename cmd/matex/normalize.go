// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/matex/internal/export"
	"github.com/pdiddy/matex/internal/normalize"
	"github.com/pdiddy/matex/pkg/types"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <raw.json>",
	Short: "Normalize a raw extraction without calling GROBID",
	Long: `Normalize runs the deterministic engine over a raw extraction JSON
file, as produced by a prior run or an external structure-extraction
service. No network services are contacted.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringP("output", "o", "", "write result JSON to file instead of stdout")
	normalizeCmd.Flags().Int("workers", 0, "normalization worker count (default 4)")

	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var raw types.RawExtraction
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	workers, _ := cmd.Flags().GetInt("workers")
	n, err := normalize.Normalize(context.Background(), &raw, normalize.Options{Workers: workers})
	if err != nil {
		return err
	}

	return writeResult(cmd, export.NewResult(&raw, n))
}
