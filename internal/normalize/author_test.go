// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/pdiddy/matex/pkg/types"
)

func TestAuthorCanonicalization(t *testing.T) {
	tests := []struct {
		name          string
		raw           types.RawAuthor
		canonical     string
		minConfidence float64
		maxConfidence float64
	}{
		{
			name:          "full name with email",
			raw:           types.RawAuthor{FullName: "Jane Q. Public", Email: "jane@x.edu"},
			canonical:     "Public, Jane Q.",
			minConfidence: 0.7,
			maxConfidence: 1.0,
		},
		{
			name:          "pre-split with affiliation",
			raw:           types.RawAuthor{FullName: "Ada Lovelace", GivenName: "Ada", Surname: "Lovelace", Affiliation: "Analytical Engines Ltd"},
			canonical:     "Lovelace, Ada",
			minConfidence: 1.0,
			maxConfidence: 1.0,
		},
		{
			name:          "split name no contact",
			raw:           types.RawAuthor{FullName: "Kenji Tanaka"},
			canonical:     "Tanaka, Kenji",
			minConfidence: 0.7,
			maxConfidence: 0.7,
		},
		{
			name:          "single token",
			raw:           types.RawAuthor{FullName: "Aristotle"},
			canonical:     "Aristotle",
			minConfidence: 0.0,
			maxConfidence: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Author(tt.raw)
			if a.CanonicalName != tt.canonical {
				t.Errorf("CanonicalName = %q, want %q", a.CanonicalName, tt.canonical)
			}
			if a.Confidence < tt.minConfidence || a.Confidence > tt.maxConfidence {
				t.Errorf("Confidence = %v, want in [%v, %v]", a.Confidence, tt.minConfidence, tt.maxConfidence)
			}
		})
	}
}

// Incomplete name resolution never scores above 0.5.
func TestAuthorIncompleteNameCap(t *testing.T) {
	a := Author(types.RawAuthor{FullName: "Cher", Email: "cher@x.org"})
	if a.Confidence > 0.5 {
		t.Errorf("Confidence = %v, want <= 0.5 for missing given name", a.Confidence)
	}
	if a.GivenName != "" || a.Surname != "Cher" {
		t.Errorf("split = (%q, %q)", a.GivenName, a.Surname)
	}
}

func TestJournalAbbreviationLookup(t *testing.T) {
	name := "Acta Materialia"
	vol := "212"
	j := Journal(&name, &vol, nil, nil)

	if j.Name != "Acta Materialia" {
		t.Errorf("Name = %q", j.Name)
	}
	if j.Abbreviation == nil || *j.Abbreviation != "Acta Mater." {
		t.Errorf("Abbreviation = %v", j.Abbreviation)
	}
	if j.Volume == nil || *j.Volume != "212" {
		t.Errorf("Volume = %v", j.Volume)
	}

	unknown := "Obscure Regional Bulletin"
	j = Journal(&unknown, nil, nil, nil)
	if j.Abbreviation != nil || j.ISSN != nil {
		t.Error("unknown journal should leave abbreviation and ISSN nil")
	}
}

func TestReferenceYearParsing(t *testing.T) {
	tests := []struct {
		year string
		want *int
	}{
		{"2020", intPtr(2020)},
		{"c. 1998", intPtr(1998)},
		{"unknown", nil},
		{"", nil},
		{"123", nil},
	}

	for _, tt := range tests {
		r := Reference(types.RawReference{Title: "T", Year: tt.year})
		if (r.Year == nil) != (tt.want == nil) {
			t.Errorf("Reference(year=%q).Year = %v, want %v", tt.year, r.Year, tt.want)
			continue
		}
		if r.Year != nil && *r.Year != *tt.want {
			t.Errorf("Reference(year=%q).Year = %d, want %d", tt.year, *r.Year, *tt.want)
		}
		if r.Confidence != 0.7 {
			t.Errorf("Confidence = %v, want fixed 0.7", r.Confidence)
		}
	}
}

func TestReferenceDefaults(t *testing.T) {
	r := Reference(types.RawReference{})
	if r.Title != "Unknown" {
		t.Errorf("Title = %q, want Unknown", r.Title)
	}
	if r.Authors == nil {
		t.Error("Authors should be an empty slice, not nil")
	}
}

func TestMaterialNormalization(t *testing.T) {
	m := Material(types.RawMaterial{
		Name:       "  Ti-6Al-4V ",
		Formula:    "Ti6Al4V",
		Properties: []string{"yield strength", "unobtainium factor"},
	})

	if m.CanonicalName != "Ti-6Al-4V" {
		t.Errorf("CanonicalName = %q", m.CanonicalName)
	}
	if m.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want 0.9 with formula", m.Confidence)
	}
	if len(m.Properties) != 2 {
		t.Fatalf("Properties = %v", m.Properties)
	}
	if m.Properties[0].Name != "Yield Strength" {
		t.Errorf("property 0 = %q", m.Properties[0].Name)
	}
	if m.Properties[1].Category != "unclassified" {
		t.Errorf("property 1 category = %q", m.Properties[1].Category)
	}

	bare := Material(types.RawMaterial{Name: "mystery goo"})
	if bare.Confidence != 0.6 {
		t.Errorf("Confidence = %v, want 0.6 without formula", bare.Confidence)
	}
}

func intPtr(v int) *int { return &v }
