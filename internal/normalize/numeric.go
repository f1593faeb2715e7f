// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw extraction output into the canonical,
// confidence-scored model: measurement normalization, table
// structuring, author/journal/reference canonicalization, and the
// aggregate orchestrator.
// Implements: prd002-normalization, prd003-tables;
//
//	docs/ARCHITECTURE § Normalization Engine.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/matex/internal/units"
)

// Numeric token patterns. A token is an optional sign (including ±),
// digits, optional decimal part, optional exponent.
var (
	numberRe = regexp.MustCompile(`[±+\-]?\d+(?:\.\d+)?(?:[eE][+\-]?\d+)?`)

	// rangeRe matches "a–b" ranges (en dash, em dash, hyphen, or "to").
	// The second bound is unsigned so exponents like 1e-5 never split.
	rangeRe = regexp.MustCompile(`([+\-]?\d+(?:\.\d+)?(?:[eE][+\-]?\d+)?)\s*(?:–|—|-|to)\s*(\d+(?:\.\d+)?(?:[eE][+\-]?\d+)?)`)
)

// parseNumber parses one numeric token, tolerating a leading ± sign.
func parseNumber(token string) (float64, bool) {
	token = strings.TrimPrefix(token, "±")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseValue extracts the first numeric token from a raw value string.
// A range "a–b" collapses to its midpoint and isRange is true so the
// caller can apply the confidence penalty (R3.3).
func parseValue(raw string) (value float64, isRange, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, false
	}

	if m := rangeRe.FindStringSubmatch(s); m != nil {
		lo, okLo := parseNumber(m[1])
		hi, okHi := parseNumber(m[2])
		if okLo && okHi {
			return (lo + hi) / 2, true, true
		}
	}

	token := numberRe.FindString(s)
	if token == "" {
		return 0, false, false
	}
	v, ok := parseNumber(token)
	return v, false, ok
}

// scanValueUnit scans a cell for a numeric token followed by a trailing
// unit symbol registered in the conversion table. Both returns are nil
// when no numeric token is found; unit is nil when the trailing token is
// not a registered symbol (R2.3).
func scanValueUnit(cell string) (*float64, *string) {
	s := strings.TrimSpace(cell)
	loc := numberRe.FindStringIndex(s)
	if loc == nil {
		return nil, nil
	}

	v, ok := parseNumber(s[loc[0]:loc[1]])
	if !ok {
		return nil, nil
	}

	rest := strings.TrimSpace(s[loc[1]:])
	rest = strings.Trim(rest, "()")
	if rest != "" && units.Known(rest) {
		return &v, &rest
	}
	return &v, nil
}
