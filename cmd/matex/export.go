// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/matex/internal/export"
	"github.com/pdiddy/matex/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <result.json>",
	Short: "Export a result as CSV views",
	Long: `Export reads a result JSON file and writes flat CSV views of its
measurements and tables for spreadsheet analysis. The JSON file remains
the lossless record; the CSVs are projections.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("measurements", "", "write measurement CSV to this path")
	exportCmd.Flags().String("tables", "", "write table CSV to this path")
	exportCmd.Flags().String("yaml", "", "write the full result as YAML to this path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	result, err := readResult(args[0])
	if err != nil {
		return err
	}

	measurementsPath, _ := cmd.Flags().GetString("measurements")
	tablesPath, _ := cmd.Flags().GetString("tables")
	yamlPath, _ := cmd.Flags().GetString("yaml")
	if measurementsPath == "" && tablesPath == "" && yamlPath == "" {
		return fmt.Errorf("nothing to do: provide --measurements, --tables, and/or --yaml")
	}

	if measurementsPath != "" {
		if err := writeCSV(measurementsPath, result, export.WriteMeasurementsCSV); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d measurements)\n", measurementsPath, len(result.Normalized.Measurements))
	}
	if tablesPath != "" {
		if err := writeCSV(tablesPath, result, export.WriteTablesCSV); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d tables)\n", tablesPath, len(result.Normalized.Tables))
	}
	if yamlPath != "" {
		f, err := os.Create(yamlPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", yamlPath, err)
		}
		defer f.Close()
		if err := export.WriteYAML(f, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", yamlPath)
	}
	return nil
}

func readResult(path string) (*types.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var result types.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &result, nil
}

func writeCSV(path string, result *types.Result, write func(w io.Writer, n *types.NormalizedExtraction) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return write(f, &result.Normalized)
}
