// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/matex/internal/store"
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query stored measurements",
	Long: `Query searches the results store. Free text matches paper titles,
abstracts, journals, and keywords via FTS5; structured flags filter the
measurement rows themselves. Text and flags combine with AND semantics.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("dir", "results", "base directory for the results store")
	queryCmd.Flags().String("property", "", "filter by canonical property name")
	queryCmd.Flags().String("category", "", "filter by property category (mechanical, thermal, electrical, physical)")
	queryCmd.Flags().String("material", "", "filter by material name")
	queryCmd.Flags().Float64("min-confidence", 0, "drop measurements below this confidence")
	queryCmd.Flags().Int("max-results", 0, "maximum number of rows (default 20)")
	queryCmd.Flags().Bool("json", false, "emit results as JSON")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --property, --category, --material, or --min-confidence")
	}

	s, err := store.Open(storeConfigFromFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	property, _ := cmd.Flags().GetString("property")
	category, _ := cmd.Flags().GetString("category")
	material, _ := cmd.Flags().GetString("material")
	minConfidence, _ := cmd.Flags().GetFloat64("min-confidence")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return store.QueryOptions{
		Text:          strings.Join(args, " "),
		Property:      property,
		Category:      category,
		Material:      material,
		MinConfidence: minConfidence,
		MaxResults:    maxResults,
	}
}

func formatQueryOutput(results []store.QueryRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-20s  %-22s  %-12s  %12s  %-8s  %-40s\n",
		"Rank", "Material", "Property", "Category", "SI value", "Unit", "Paper")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 130))

	for i, r := range results {
		material := r.Material
		if len(material) > 20 {
			material = material[:17] + "..."
		}
		property := r.Property
		if len(property) > 22 {
			property = property[:19] + "..."
		}
		paper := r.PaperTitle
		if len(paper) > 40 {
			paper = paper[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-20s  %-22s  %-12s  %12.4g  %-8s  %-40s\n",
			i+1, material, property, r.Category, r.SIValue, r.SIUnit, paper)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}
