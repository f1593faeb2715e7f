// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/matex/internal/ontology"
	"github.com/pdiddy/matex/pkg/types"
)

// Material confidence: the deterministic layer cannot verify a material
// name, so a formula is the only corroborating signal. The
// interpretation layer may upgrade this later.
const (
	materialConfidenceWithFormula = 0.9
	materialConfidenceNameOnly    = 0.6
)

// Material normalizes one raw material mention. The name passes through
// trimmed; listed property names resolve through the ontology; chemical
// class and synonyms stay empty until the interpretation layer fills
// them (R4.2).
func Material(raw types.RawMaterial) types.NormalizedMaterial {
	m := types.NormalizedMaterial{
		CanonicalName: strings.TrimSpace(raw.Name),
		Synonyms:      []string{},
		Properties:    []types.NormalizedProperty{},
		Confidence:    materialConfidenceNameOnly,
	}
	if raw.Formula != "" {
		v := raw.Formula
		m.Formula = &v
		m.Confidence = materialConfidenceWithFormula
	}
	for _, p := range raw.Properties {
		res := ontology.Resolve(p)
		m.Properties = append(m.Properties, types.NormalizedProperty{
			Name:         res.CanonicalName,
			OriginalName: p,
			Category:     res.Category,
		})
	}
	return m
}
