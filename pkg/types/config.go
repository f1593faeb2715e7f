// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "matex/0.1"). Per prd001-ingestion R4.2.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GrobidConfig holds settings for the structure-extraction stage.
// Per prd001-ingestion R4.1-R4.4.
type GrobidConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the GROBID service root (e.g. "http://localhost:8070").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// MaxRetries is the retry budget for 429/503 responses (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Version is the service version recorded in result metadata when
	// the service does not report one (default "0.8.0").
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gpt-4o-mini").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint for OpenAI-compatible gateways.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// InterpretConfig holds settings for the semantic-interpretation stage.
// Per prd005-interpretation R5.1-R5.3.
type InterpretConfig struct {
	AIConfig `yaml:",inline"`

	// Enabled controls whether the interpretation layer runs at all.
	// When false the deterministic normalizer output is returned as-is.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// TableFallbackThreshold is the structured-table confidence below
	// which interpreted tables may replace structurer output (default 0.5).
	TableFallbackThreshold float64 `json:"table_fallback_threshold" yaml:"table_fallback_threshold"`
}

// NormalizeConfig holds settings for the normalization engine.
// Per prd002-normalization R5.1.
type NormalizeConfig struct {
	// Workers bounds the fan-out over tables and measurements (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// StoreConfig holds settings for the results store.
// Per prd006-store R1.1.
type StoreConfig struct {
	// Dir is the base directory for the store (contains index/).
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Grobid    GrobidConfig    `json:"grobid" yaml:"grobid"`
	Interpret InterpretConfig `json:"interpret" yaml:"interpret"`
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize"`
	Store     StoreConfig     `json:"store" yaml:"store"`
}
