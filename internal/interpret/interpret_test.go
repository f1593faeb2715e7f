// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package interpret

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/matex/pkg/types"
)

func init() {
	backoffBase = 1 * time.Millisecond
}

// mockBackend fails a fixed number of times, then returns its response.
type mockBackend struct {
	resp     Response
	failures int
	calls    int
}

func (m *mockBackend) Interpret(_ context.Context, _ Document) (Response, error) {
	m.calls++
	if m.calls <= m.failures {
		return Response{}, errors.New("transient")
	}
	return m.resp, nil
}

func strPtr(s string) *string { return &s }

func baseline() *types.NormalizedExtraction {
	return &types.NormalizedExtraction{
		Title: "T",
		Journal: types.NormalizedJournal{
			Name: "Obscure Regional Bulletin",
		},
		Materials: []types.NormalizedMaterial{
			{CanonicalName: "Ti-6Al-4V", Confidence: 0.9},
		},
		Measurements: []types.NormalizedMeasurement{
			{
				Property:   types.NormalizedProperty{Name: "Yield Strength"},
				Value:      250,
				Unit:       types.NormalizedUnit{OriginalUnit: "MPa", CanonicalUnit: "Pa", ConversionFactor: 1e6, SIValue: 250e6},
				Confidence: 0.9,
			},
		},
		Tables: []types.ExtractedTable{
			{
				TableID:    "tbl-aaaaaaaaaaaa",
				PageNumber: 2,
				DataType:   types.TableOther,
				Confidence: 0.2,
			},
		},
	}
}

func TestValidateClampsConfidences(t *testing.T) {
	resp := Response{
		Materials:    []ResponseMaterial{{Name: "Cu", Confidence: 1.7}},
		Measurements: []ResponseMeasurement{{Property: "density", Value: "8.96", Unit: "g/cm³", Confidence: -0.2}},
	}

	warnings := Validate(&resp)

	if resp.Materials[0].Confidence != 1.0 {
		t.Errorf("material confidence = %v, want clamped 1.0", resp.Materials[0].Confidence)
	}
	if resp.Measurements[0].Confidence != 0 {
		t.Errorf("measurement confidence = %v, want clamped 0", resp.Measurements[0].Confidence)
	}
	if len(warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", warnings)
	}
	if !strings.Contains(warnings[0], "Cu") || !strings.Contains(warnings[1], "density") {
		t.Errorf("warnings should name the fields: %v", warnings)
	}
}

func TestValidateDropsInvalidEntities(t *testing.T) {
	resp := Response{
		Materials:    []ResponseMaterial{{Name: "  ", Confidence: 0.9}, {Name: "Cu", Confidence: 0.9}},
		Measurements: []ResponseMeasurement{{Property: "", Confidence: 0.9}},
		Tables:       []ResponseTable{{TableIndex: -1, Confidence: 0.9}, {TableIndex: 0, DataType: "nonsense", Confidence: 0.9}},
	}

	warnings := Validate(&resp)

	if len(resp.Materials) != 1 || resp.Materials[0].Name != "Cu" {
		t.Errorf("Materials = %v", resp.Materials)
	}
	if len(resp.Measurements) != 0 {
		t.Errorf("Measurements = %v", resp.Measurements)
	}
	if len(resp.Tables) != 1 {
		t.Fatalf("Tables = %v", resp.Tables)
	}
	if resp.Tables[0].DataType != string(types.TableOther) {
		t.Errorf("DataType = %q, want reset to other", resp.Tables[0].DataType)
	}
	if len(warnings) != 4 {
		t.Errorf("warnings = %v, want 4", warnings)
	}
}

func TestMergeEnrichesExistingMaterial(t *testing.T) {
	n := baseline()
	resp := Response{
		Materials: []ResponseMaterial{{
			Name:          "ti-6al-4v",
			ChemicalClass: "alloy",
			Synonyms:      []string{"Grade 5 titanium"},
			Confidence:    0.8,
		}},
	}

	Merge(n, &resp, 0.5, []string{"Ti-6Al-4V"})

	if len(n.Materials) != 1 {
		t.Fatalf("materials = %d, want enrichment not append", len(n.Materials))
	}
	m := n.Materials[0]
	if m.ChemicalClass == nil || *m.ChemicalClass != "alloy" {
		t.Errorf("ChemicalClass = %v", m.ChemicalClass)
	}
	if len(m.Synonyms) != 1 || m.Synonyms[0] != "Grade 5 titanium" {
		t.Errorf("Synonyms = %v", m.Synonyms)
	}
	if m.Confidence != 0.9 {
		t.Errorf("Confidence = %v, deterministic value must win", m.Confidence)
	}
}

func TestMergeAppendsNewMaterial(t *testing.T) {
	n := baseline()
	resp := Response{
		Materials: []ResponseMaterial{{Name: "AlSi10Mg", Formula: "AlSi10Mg", ChemicalClass: "alloy", Confidence: 0.7}},
	}

	Merge(n, &resp, 0.5, []string{"Ti-6Al-4V"})

	if len(n.Materials) != 2 {
		t.Fatalf("materials = %d, want 2", len(n.Materials))
	}
	added := n.Materials[1]
	if added.CanonicalName != "AlSi10Mg" {
		t.Errorf("CanonicalName = %q", added.CanonicalName)
	}
	// Model confidence caps the normalizer's 0.9-with-formula score.
	if added.Confidence != 0.7 {
		t.Errorf("Confidence = %v, want 0.7", added.Confidence)
	}
}

func TestMergeMeasurementsDeduplicatesAndNormalizes(t *testing.T) {
	n := baseline()
	resp := Response{
		Measurements: []ResponseMeasurement{
			// Duplicate of the existing yield strength entry.
			{Property: "yield strength", Value: "250", Unit: "MPa", Confidence: 0.9},
			// New: prose measurement the structurer could not see.
			{Property: "melting point", Value: "1660", Unit: "°C", Material: "Ti-6Al-4V", Confidence: 0.8},
		},
	}

	Merge(n, &resp, 0.5, nil)

	if len(n.Measurements) != 2 {
		t.Fatalf("measurements = %d, want 2 (dedup)", len(n.Measurements))
	}
	added := n.Measurements[1]
	if added.Property.Name != "Melting Point" {
		t.Errorf("Property = %q, want ontology-resolved Melting Point", added.Property.Name)
	}
	if added.Unit.CanonicalUnit != "K" || added.Unit.SIValue != 1660+273.15 {
		t.Errorf("unit = %+v, want Kelvin conversion", added.Unit)
	}
	if added.Confidence > 0.8 {
		t.Errorf("Confidence = %v, want capped at model's 0.8", added.Confidence)
	}
}

func TestMergeJournalAbbreviationFillsGapOnly(t *testing.T) {
	n := baseline()
	Merge(n, &Response{JournalAbbreviation: "Obsc. Reg. Bull."}, 0.5, nil)
	if n.Journal.Abbreviation == nil || *n.Journal.Abbreviation != "Obsc. Reg. Bull." {
		t.Fatalf("Abbreviation = %v", n.Journal.Abbreviation)
	}

	// A second pass must not overwrite it.
	Merge(n, &Response{JournalAbbreviation: "Wrong"}, 0.5, nil)
	if *n.Journal.Abbreviation != "Obsc. Reg. Bull." {
		t.Errorf("Abbreviation overwritten to %q", *n.Journal.Abbreviation)
	}
}

func TestMergeTableFallback(t *testing.T) {
	n := baseline()
	resp := Response{
		Tables: []ResponseTable{{
			TableIndex: 0,
			Headers:    []string{"Material", "Density (g/cm³)"},
			Rows:       [][]string{{"Ti-6Al-4V", "4.43"}},
			DataType:   "properties",
			Confidence: 0.9,
		}},
	}

	Merge(n, &resp, 0.5, []string{"Ti-6Al-4V"})

	tbl := n.Tables[0]
	if tbl.TableID != "tbl-aaaaaaaaaaaa" {
		t.Errorf("TableID = %q, identity must be preserved", tbl.TableID)
	}
	if len(tbl.Headers) != 2 || len(tbl.Rows) != 1 {
		t.Fatalf("rebuilt shape: headers %v rows %d", tbl.Headers, len(tbl.Rows))
	}
	if tbl.DataType != types.TableProperties {
		t.Errorf("DataType = %q", tbl.DataType)
	}
	if tbl.Confidence <= 0.2 {
		t.Errorf("Confidence = %v, want improved", tbl.Confidence)
	}
}

func TestMergeTableFallbackSkipsConfidentTables(t *testing.T) {
	n := baseline()
	n.Tables[0].Confidence = 0.8

	Merge(n, &Response{Tables: []ResponseTable{{
		TableIndex: 0,
		Headers:    []string{"X"},
		Rows:       [][]string{{"1"}},
		Confidence: 0.95,
	}}}, 0.5, nil)

	if len(n.Tables[0].Headers) != 0 {
		t.Error("confident structured table must not be replaced")
	}
}

func TestRunDisabled(t *testing.T) {
	backend := &mockBackend{}
	n := baseline()
	warnings, err := Run(context.Background(), backend, &types.RawExtraction{}, n, types.InterpretConfig{})
	if err != nil || warnings != nil {
		t.Fatalf("disabled run: warnings=%v err=%v", warnings, err)
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times, want 0", backend.calls)
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	backend := &mockBackend{
		failures: 2,
		resp: Response{
			Materials: []ResponseMaterial{{Name: "Cu", Confidence: 0.9}},
		},
	}
	n := baseline()
	cfg := types.InterpretConfig{Enabled: true}
	cfg.Model = "test-model"
	cfg.MaxRetries = 3

	_, err := Run(context.Background(), backend, &types.RawExtraction{}, n, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
	if n.Metadata.LLMModel != "test-model" {
		t.Errorf("LLMModel = %q", n.Metadata.LLMModel)
	}
	if len(n.Materials) != 2 {
		t.Errorf("materials = %d, want merged Cu", len(n.Materials))
	}
}

func TestRunExhaustsRetries(t *testing.T) {
	backend := &mockBackend{failures: 10}
	cfg := types.InterpretConfig{Enabled: true}
	cfg.MaxRetries = 2

	_, err := Run(context.Background(), backend, &types.RawExtraction{}, baseline(), cfg)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestBuildDocument(t *testing.T) {
	doc := BuildDocument(&types.RawExtraction{
		Title:    strPtr("T"),
		Abstract: strPtr("A"),
		Journal:  strPtr("J"),
		Tables: []types.RawTable{
			{Caption: strPtr("Table 1"), RawContent: "a\tb"},
			{RawContent: "c\td"},
		},
	})

	if doc.Title != "T" || doc.Abstract != "A" || doc.Journal != "J" {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Tables) != 2 || doc.Tables[0] != "Table 1\na\tb" || doc.Tables[1] != "c\td" {
		t.Errorf("Tables = %v", doc.Tables)
	}
}

func TestRenderPromptMentionsTool(t *testing.T) {
	prompt, err := renderPrompt(Document{Title: "T", Abstract: "A", Tables: []string{"x\ty"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(prompt, toolName) {
		t.Error("prompt should reference the tool name")
	}
	if !strings.Contains(prompt, "Table 0:") {
		t.Error("prompt should enumerate tables")
	}
}
