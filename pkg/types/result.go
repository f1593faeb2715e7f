// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Result is the externally visible payload returned to any caller (CLI,
// batch job): the raw extraction, its normalized form, and the export
// timestamp (RFC 3339 UTC). Per prd004-export R1.1.
type Result struct {
	Raw        RawExtraction        `json:"raw" yaml:"raw"`
	Normalized NormalizedExtraction `json:"normalized" yaml:"normalized"`
	ExportedAt string               `json:"exportedAt" yaml:"exported_at"`
}
