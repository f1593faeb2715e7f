// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/matex/pkg/types"
)

func sampleRaw() *types.RawExtraction {
	title := "Mechanical behaviour of additively manufactured Ti alloys"
	abstract := "We report yield strength of Ti-6Al-4V at elevated temperature."
	journal := "Acta Materialia"
	caption := "Table 1. Tensile results"

	return &types.RawExtraction{
		Title:    &title,
		Abstract: &abstract,
		Journal:  &journal,
		Keywords: []string{"titanium", "additive manufacturing"},
		Authors: []types.RawAuthor{
			{FullName: "Jane Q. Public", Email: "jane@x.edu"},
			{FullName: "Kenji Tanaka"},
		},
		References: []types.RawReference{
			{Title: "Prior art", Year: "2019"},
		},
		Materials: []types.RawMaterial{
			{Name: "Al", Formula: "Al"},
			{Name: "Ti"},
		},
		Measurements: []types.RawMeasurement{
			{Property: "σy", Value: "250", Unit: "MPa", Material: "Ti"},
			{Property: "flibbertigibbet", Value: "abc", Unit: "xyz"},
		},
		Tables: []types.RawTable{
			{PageNumber: 3, Caption: &caption, RawContent: "Material\tStrength(MPa)\nAl\t310\nTi\t880"},
			{PageNumber: 4, RawContent: ""},
		},
	}
}

func TestNormalizeEndToEnd(t *testing.T) {
	out, err := Normalize(context.Background(), sampleRaw(), Options{GrobidVersion: "0.8.0", LLMModel: "test-model"})
	if err != nil {
		t.Fatal(err)
	}

	if out.Title == "" || out.Abstract == "" {
		t.Error("title/abstract should pass through")
	}
	if len(out.Authors) != 2 || len(out.Measurements) != 2 || len(out.Tables) != 2 {
		t.Fatalf("unexpected shape: %d authors, %d measurements, %d tables",
			len(out.Authors), len(out.Measurements), len(out.Tables))
	}

	if out.Authors[0].CanonicalName != "Public, Jane Q." {
		t.Errorf("author 0 = %q", out.Authors[0].CanonicalName)
	}
	if out.Journal.Abbreviation == nil || *out.Journal.Abbreviation != "Acta Mater." {
		t.Errorf("journal abbreviation = %v", out.Journal.Abbreviation)
	}
	if out.Measurements[0].Unit.SIValue != 250e6 {
		t.Errorf("measurement 0 SI = %v", out.Measurements[0].Unit.SIValue)
	}
	if out.Tables[0].DataType != types.TableProperties {
		t.Errorf("table 0 type = %q", out.Tables[0].DataType)
	}
	if got := out.Tables[0].RelatedMaterials; len(got) != 2 {
		t.Errorf("table 0 related materials = %v", got)
	}
	if out.Tables[1].Confidence != 0 {
		t.Errorf("empty table confidence = %v", out.Tables[1].Confidence)
	}

	// The empty table and the unparsable measurement both warn.
	joined := strings.Join(out.Metadata.Warnings, "\n")
	if !strings.Contains(joined, "empty or unparsable") {
		t.Errorf("warnings missing empty-table entry: %v", out.Metadata.Warnings)
	}
	if !strings.Contains(joined, "could not parse value") {
		t.Errorf("warnings missing value-parse entry: %v", out.Metadata.Warnings)
	}

	if out.Metadata.GrobidVersion == nil || *out.Metadata.GrobidVersion != "0.8.0" {
		t.Errorf("grobid version = %v", out.Metadata.GrobidVersion)
	}
	if out.Metadata.LLMModel != "test-model" {
		t.Errorf("llm model = %q", out.Metadata.LLMModel)
	}
}

// Every confidence anywhere in the output lies in [0,1].
func TestNormalizeConfidenceBounds(t *testing.T) {
	out, err := Normalize(context.Background(), sampleRaw(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	check := func(what string, c float64) {
		if c < 0 || c > 1 {
			t.Errorf("%s confidence %v out of [0,1]", what, c)
		}
	}
	for _, a := range out.Authors {
		check("author", a.Confidence)
	}
	for _, r := range out.References {
		check("reference", r.Confidence)
	}
	for _, m := range out.Materials {
		check("material", m.Confidence)
	}
	for _, m := range out.Measurements {
		check("measurement", m.Confidence)
	}
	for _, tbl := range out.Tables {
		check("table", tbl.Confidence)
	}
	check("overall", out.Metadata.OverallConfidence)
}

// Warning order is deterministic across runs despite parallel fan-out.
func TestNormalizeDeterministicWarnings(t *testing.T) {
	first, err := Normalize(context.Background(), sampleRaw(), Options{Workers: 8})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		next, err := Normalize(context.Background(), sampleRaw(), Options{Workers: 8})
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(next.Metadata.Warnings, "|") != strings.Join(first.Metadata.Warnings, "|") {
			t.Fatalf("warning order changed:\n%v\nvs\n%v", first.Metadata.Warnings, next.Metadata.Warnings)
		}
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	_, err := Normalize(context.Background(), &types.RawExtraction{}, Options{})
	if !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("err = %v, want ErrEmptyExtraction", err)
	}

	// A single present field is enough to proceed.
	title := "Lone title"
	out, err := Normalize(context.Background(), &types.RawExtraction{Title: &title}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if out.Title != "Lone title" {
		t.Errorf("Title = %q", out.Title)
	}
}

func TestNormalizeCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := Normalize(ctx, sampleRaw(), Options{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if out != nil {
		t.Error("partial results must be discarded on cancellation")
	}
}

func TestOverallConfidenceExcludesEmptyCategories(t *testing.T) {
	n := &types.NormalizedExtraction{
		Authors: []types.NormalizedAuthor{{Confidence: 0.8}, {Confidence: 0.6}},
	}
	if got := OverallConfidence(n); got != 0.7 {
		t.Errorf("OverallConfidence = %v, want 0.7", got)
	}

	if got := OverallConfidence(&types.NormalizedExtraction{}); got != 0 {
		t.Errorf("OverallConfidence(empty) = %v, want 0", got)
	}
}
