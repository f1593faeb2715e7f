// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/matex/internal/ontology"
	"github.com/pdiddy/matex/internal/units"
	"github.com/pdiddy/matex/pkg/types"
)

// Confidence weights for measurement normalization. The weighted sum of
// property-match, unit-resolution, and value-parse scores is capped by
// the hard ceilings below. Chosen policy per prd002-normalization R3.6;
// rationale in DESIGN.md.
const (
	weightProperty = 0.40
	weightUnit     = 0.35
	weightValue    = 0.25

	scoreExact = 1.0
	scoreFuzzy = 0.6
	scoreNone  = 0.2

	capUnknownUnit   = 0.4
	capNoProperty    = 0.5
	capUnparsedValue = 0.3

	rangePenalty = 0.15
)

// Measurement normalizes one raw (property, value, unit) triple:
// property via the ontology, value via numeric-token parsing, unit via
// the conversion table with the affine SI transform. Degradations never
// fail; they lower confidence and emit a warning (R3.1-R3.6).
func Measurement(raw types.RawMeasurement) (types.NormalizedMeasurement, []string) {
	var warnings []string

	prop := ontology.Resolve(raw.Property)

	value, isRange, parsed := parseValue(raw.Value)
	if !parsed {
		warnings = append(warnings, fmt.Sprintf("measurement %q: could not parse value %q", raw.Property, raw.Value))
	}
	if isRange {
		warnings = append(warnings, fmt.Sprintf("measurement %q: range %q collapsed to midpoint", raw.Property, raw.Value))
	}

	unit, known := resolveUnit(raw.Unit, value)
	if !known && raw.Unit != "" {
		warnings = append(warnings, fmt.Sprintf("measurement %q: unknown unit %q", raw.Property, raw.Unit))
	}

	m := types.NormalizedMeasurement{
		Property: types.NormalizedProperty{
			Name:         prop.CanonicalName,
			OriginalName: raw.Property,
			Category:     prop.Category,
		},
		Value:      value,
		Unit:       unit,
		Confidence: measurementConfidence(prop.Quality, known, parsed, isRange),
	}

	if raw.Material != "" {
		mat := raw.Material
		m.Material = &mat
	}
	if raw.Conditions != "" {
		m.Conditions = parseConditions(raw.Conditions)
	}

	return m, warnings
}

// resolveUnit resolves a unit symbol and computes the SI value. Unknown
// symbols echo the original as canonical with factor 1 (R3.5).
func resolveUnit(symbol string, value float64) (types.NormalizedUnit, bool) {
	if c, ok := units.Resolve(symbol); ok {
		return types.NormalizedUnit{
			CanonicalUnit:    c.SI,
			OriginalUnit:     symbol,
			ConversionFactor: c.Factor,
			SIValue:          c.ToSI(value),
		}, true
	}
	return types.NormalizedUnit{
		CanonicalUnit:    symbol,
		OriginalUnit:     symbol,
		ConversionFactor: 1,
		SIValue:          value,
	}, false
}

// measurementConfidence combines the three resolution scores and applies
// the degradation ceilings.
func measurementConfidence(quality ontology.MatchQuality, unitKnown, valueParsed, isRange bool) float64 {
	propScore := scoreNone
	switch quality {
	case ontology.MatchExact:
		propScore = scoreExact
	case ontology.MatchFuzzy:
		propScore = scoreFuzzy
	}

	unitScore := scoreNone
	if unitKnown {
		unitScore = 1.0
	}

	valueScore := 0.0
	if valueParsed {
		valueScore = 1.0
	}

	c := weightProperty*propScore + weightUnit*unitScore + weightValue*valueScore

	if !unitKnown {
		c = min(c, capUnknownUnit)
	}
	if quality == ontology.MatchNone {
		c = min(c, capNoProperty)
	}
	if !valueParsed {
		c = min(c, capUnparsedValue)
	}
	if isRange {
		c -= rangePenalty
	}

	return clamp01(c)
}

// conditionRe matches "at <number> <token>" fragments inside a free-text
// conditions string, e.g. "measured at 300 K and 1 bar".
var conditionRe = regexp.MustCompile(`(?i)\bat\s+([±+\-]?\d+(?:\.\d+)?(?:[eE][+\-]?\d+)?)\s*([^\s,;]+)`)

// parseConditions extracts temperature/pressure/humidity conditions.
// A fragment is classified by its unit: temperature when the unit
// converts to K, pressure when it converts to Pa, humidity for percent.
// Unmatched fragments are dropped, never retained as "other" (R3.7).
// Returns nil when nothing was recognized.
func parseConditions(raw string) *types.MeasurementConditions {
	var cond types.MeasurementConditions
	found := false

	for _, m := range conditionRe.FindAllStringSubmatch(raw, -1) {
		value, ok := parseNumber(m[1])
		if !ok {
			continue
		}
		symbol := strings.Trim(m[2], "().")

		if symbol == "%" || strings.EqualFold(symbol, "%RH") {
			if cond.Humidity == nil {
				cond.Humidity = &types.ConditionValue{Value: value, Unit: symbol}
				found = true
			}
			continue
		}

		c, ok := units.Resolve(symbol)
		if !ok {
			continue
		}
		switch c.SI {
		case "K":
			if cond.Temperature == nil {
				cond.Temperature = &types.ConditionValue{Value: value, Unit: symbol}
				found = true
			}
		case "Pa":
			if cond.Pressure == nil {
				cond.Pressure = &types.ConditionValue{Value: value, Unit: symbol}
				found = true
			}
		}
	}

	if !found {
		return nil
	}
	return &cond
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
