// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ontology resolves free-form property names against a
// controlled vocabulary of materials-science properties.
// Implements: prd002-normalization (R2);
//
//	docs/ARCHITECTURE § Property Ontology.
package ontology

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// MatchQuality grades how a property name was resolved (R2.3).
type MatchQuality string

const (
	// MatchExact: the input equals a canonical key, canonical name, or
	// registered synonym (case-insensitive).
	MatchExact MatchQuality = "exact"

	// MatchFuzzy: the input matched by substring or token overlap.
	MatchFuzzy MatchQuality = "fuzzy"

	// MatchNone: no match; the input passes through verbatim with
	// category "unclassified".
	MatchNone MatchQuality = "none"
)

// Entry is one controlled-vocabulary property.
type Entry struct {
	Canonical string
	Category  string
	Synonyms  []string
}

// Resolution is the outcome of resolving one raw property name.
type Resolution struct {
	CanonicalName string
	Category      string
	Quality       MatchQuality
}

// CategoryUnclassified is assigned when no ontology entry matches.
const CategoryUnclassified = "unclassified"

// vocabulary is the fixed property ontology. Read-only after init;
// shared without locking (R2.1).
var vocabulary = map[string]Entry{
	// Mechanical
	"tensile_strength":   {Canonical: "Tensile Strength", Category: "mechanical", Synonyms: []string{"ultimate tensile strength", "UTS", "breaking strength"}},
	"yield_strength":     {Canonical: "Yield Strength", Category: "mechanical", Synonyms: []string{"yield stress", "σy", "0.2% proof stress"}},
	"elastic_modulus":    {Canonical: "Elastic Modulus", Category: "mechanical", Synonyms: []string{"Young's modulus", "E", "modulus of elasticity", "stiffness"}},
	"hardness":           {Canonical: "Hardness", Category: "mechanical", Synonyms: []string{"Vickers hardness", "HV", "Rockwell hardness", "Brinell hardness"}},
	"elongation":         {Canonical: "Elongation", Category: "mechanical", Synonyms: []string{"strain at break", "ductility", "% elongation"}},
	"fracture_toughness": {Canonical: "Fracture Toughness", Category: "mechanical", Synonyms: []string{"KIC", "K1C", "critical stress intensity factor"}},

	// Thermal
	"thermal_conductivity": {Canonical: "Thermal Conductivity", Category: "thermal", Synonyms: []string{"k", "λ", "heat conductivity"}},
	"melting_point":        {Canonical: "Melting Point", Category: "thermal", Synonyms: []string{"Tm", "melting temperature", "liquidus temperature"}},
	"glass_transition":     {Canonical: "Glass Transition Temperature", Category: "thermal", Synonyms: []string{"Tg", "glass transition point"}},
	"thermal_expansion":    {Canonical: "Coefficient of Thermal Expansion", Category: "thermal", Synonyms: []string{"CTE", "α", "linear expansion coefficient"}},

	// Electrical
	"electrical_conductivity": {Canonical: "Electrical Conductivity", Category: "electrical", Synonyms: []string{"σ", "conductance", "specific conductance"}},
	"resistivity":             {Canonical: "Electrical Resistivity", Category: "electrical", Synonyms: []string{"ρ", "specific resistance"}},
	"dielectric_constant":     {Canonical: "Dielectric Constant", Category: "electrical", Synonyms: []string{"εr", "relative permittivity", "dielectric permittivity"}},
	"bandgap":                 {Canonical: "Band Gap", Category: "electrical", Synonyms: []string{"Eg", "energy gap", "band gap energy"}},

	// Physical
	"density":  {Canonical: "Density", Category: "physical", Synonyms: []string{"ρ", "specific gravity", "mass density"}},
	"porosity": {Canonical: "Porosity", Category: "physical", Synonyms: []string{"void fraction", "pore volume fraction"}},
}

// sortedKeys holds the vocabulary keys in sorted order so ambiguous
// inputs (e.g. "ρ" is a synonym of both density and resistivity)
// resolve deterministically.
var sortedKeys = func() []string {
	keys := make([]string, 0, len(vocabulary))
	for k := range vocabulary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}()

// Resolve matches a raw property name against the ontology. Matching
// order (R2.2): exact case-insensitive match against key, canonical
// name, or synonym; then substring/token-overlap fuzzy match; otherwise
// passthrough with category "unclassified".
func Resolve(raw string) Resolution {
	needle := normalize(raw)
	if needle == "" {
		return Resolution{CanonicalName: raw, Category: CategoryUnclassified, Quality: MatchNone}
	}

	for _, key := range sortedKeys {
		e := vocabulary[key]
		if needle == normalize(key) || needle == normalize(e.Canonical) {
			return Resolution{CanonicalName: e.Canonical, Category: e.Category, Quality: MatchExact}
		}
		for _, syn := range e.Synonyms {
			if needle == normalize(syn) {
				return Resolution{CanonicalName: e.Canonical, Category: e.Category, Quality: MatchExact}
			}
		}
	}

	for _, key := range sortedKeys {
		e := vocabulary[key]
		if fuzzyMatch(needle, normalize(e.Canonical)) {
			return Resolution{CanonicalName: e.Canonical, Category: e.Category, Quality: MatchFuzzy}
		}
		for _, syn := range e.Synonyms {
			if fuzzyMatch(needle, normalize(syn)) {
				return Resolution{CanonicalName: e.Canonical, Category: e.Category, Quality: MatchFuzzy}
			}
		}
	}

	return Resolution{CanonicalName: raw, Category: CategoryUnclassified, Quality: MatchNone}
}

// Keys returns the canonical vocabulary keys in sorted order.
func Keys() []string {
	out := make([]string, len(sortedKeys))
	copy(out, sortedKeys)
	return out
}

// Lookup returns the vocabulary entry for a canonical key.
func Lookup(key string) (Entry, bool) {
	e, ok := vocabulary[key]
	return e, ok
}

// IsPropertyName reports whether raw resolves exactly or fuzzily. Used
// by the table structurer to recognize property columns.
func IsPropertyName(raw string) bool {
	return Resolve(raw).Quality != MatchNone
}

// normalize lowercases and collapses underscores to spaces for
// comparison.
func normalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.ReplaceAll(s, "_", " ")
}

// fuzzyMatch reports a heuristic match between a normalized needle and
// a normalized candidate: substring in either direction, or the shorter
// token set fully contained in the longer one. Candidates of a single
// rune (symbols like "k" or "ρ") only match exactly, which the caller
// has already ruled out.
func fuzzyMatch(needle, candidate string) bool {
	if utf8.RuneCountInString(candidate) < 2 || utf8.RuneCountInString(needle) < 2 {
		return false
	}
	if strings.Contains(needle, candidate) || strings.Contains(candidate, needle) {
		return true
	}

	nt := strings.Fields(needle)
	ct := strings.Fields(candidate)
	if len(nt) == 0 || len(ct) == 0 {
		return false
	}
	shorter, longer := nt, ct
	if len(ct) < len(nt) {
		shorter, longer = ct, nt
	}
	set := make(map[string]bool, len(longer))
	for _, tok := range longer {
		set[tok] = true
	}
	for _, tok := range shorter {
		if !set[tok] {
			return false
		}
	}
	return true
}
