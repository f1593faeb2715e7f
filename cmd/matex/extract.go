// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/matex/internal/export"
	"github.com/pdiddy/matex/internal/grobid"
	"github.com/pdiddy/matex/internal/interpret"
	"github.com/pdiddy/matex/internal/normalize"
	"github.com/pdiddy/matex/internal/secrets"
	"github.com/pdiddy/matex/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <paper.pdf>",
	Short: "Run the full pipeline on a PDF",
	Long: `Extract sends a PDF through GROBID for structure recovery, optionally
through the LLM interpretation pass, and always through the deterministic
normalization engine. The result (raw + normalized) is written as JSON to
stdout or --output.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "write result JSON to file instead of stdout")
	extractCmd.Flags().String("grobid-url", "", "GROBID service root (default http://localhost:8070)")
	extractCmd.Flags().Bool("interpret", false, "enable the LLM interpretation pass")
	extractCmd.Flags().String("model", "", "LLM model identifier for interpretation")
	extractCmd.Flags().Int("workers", 0, "normalization worker count (default 4)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	gcfg := grobidConfigFromFlags(cmd)
	client := grobid.New(gcfg)

	raw, grobidVersion, err := client.ProcessFulltext(ctx, args[0])
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	icfg := interpretConfigFromFlags(cmd)

	n, err := normalize.Normalize(ctx, raw, normalize.Options{
		Workers:       workers,
		GrobidVersion: grobidVersion,
		LLMModel:      llmModelWhenEnabled(icfg),
	})
	if err != nil {
		return err
	}

	if icfg.Enabled {
		backend := interpret.NewOpenAIBackend(icfg.AIConfig)
		if _, err := interpret.Run(ctx, backend, raw, n, icfg); err != nil {
			// The deterministic result stands on its own; interpretation
			// failure degrades, it does not abort.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			n.Metadata.Warnings = append(n.Metadata.Warnings, fmt.Sprintf("interpretation failed: %v", err))
		}
	}

	return writeResult(cmd, export.NewResult(raw, n))
}

func writeResult(cmd *cobra.Command, result *types.Result) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		return export.WriteJSON(os.Stdout, result)
	}
	if err := export.WriteJSONFile(output, result); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", output)
	return nil
}

func grobidConfigFromFlags(cmd *cobra.Command) types.GrobidConfig {
	baseURL, _ := cmd.Flags().GetString("grobid-url")
	if baseURL == "" {
		baseURL = viper.GetString("grobid.base_url")
	}
	if baseURL == "" {
		baseURL = secrets.Lookup(loadedSecrets, "grobid-url", "MATEX_GROBID_URL")
	}

	cfg := types.GrobidConfig{
		BaseURL:    baseURL,
		MaxRetries: viper.GetInt("grobid.max_retries"),
		Version:    viper.GetString("grobid.version"),
	}
	cfg.UserAgent = "matex/" + version
	if cfg.Version == "" {
		cfg.Version = "0.8.0"
	}
	return cfg
}

func interpretConfigFromFlags(cmd *cobra.Command) types.InterpretConfig {
	enabled, _ := cmd.Flags().GetBool("interpret")
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = viper.GetString("interpret.model")
	}

	cfg := types.InterpretConfig{
		Enabled:                enabled || viper.GetBool("interpret.enabled"),
		TableFallbackThreshold: viper.GetFloat64("interpret.table_fallback_threshold"),
	}
	cfg.Model = model
	cfg.APIKey = secrets.Lookup(loadedSecrets, "llm-api-key", "MATEX_LLM_API_KEY")
	cfg.BaseURL = secrets.Lookup(loadedSecrets, "llm-base-url", "MATEX_LLM_BASE_URL")
	cfg.MaxRetries = viper.GetInt("interpret.max_retries")
	return cfg
}

func llmModelWhenEnabled(cfg types.InterpretConfig) string {
	if cfg.Enabled {
		return cfg.Model
	}
	return ""
}
