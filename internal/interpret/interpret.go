// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package interpret runs the semantic-interpretation layer: an LLM reads
// the raw document text and contributes what deterministic normalization
// cannot derive (material identities, chemical classes, measurements
// buried in prose). Its output only ever augments or refines the
// deterministic result, never bypasses validation.
// Implements: prd005-interpretation (R1-R5).
package interpret

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/matex/internal/normalize"
	"github.com/pdiddy/matex/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// Each implementation handles one document and returns the structured
// response. Per Strategy pattern (prd005-interpretation R1.2).
type Backend interface {
	Interpret(ctx context.Context, doc Document) (Response, error)
}

// Document is the condensed document view sent to the backend.
type Document struct {
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
	Journal  string   `json:"journal"`
	Tables   []string `json:"tables"`
}

// Response is the structured response from the backend for one document.
type Response struct {
	Materials           []ResponseMaterial    `json:"materials"`
	Measurements        []ResponseMeasurement `json:"measurements"`
	JournalAbbreviation string                `json:"journalAbbreviation"`
	Tables              []ResponseTable       `json:"tables"`
}

// ResponseMaterial is one material as identified by the model.
type ResponseMaterial struct {
	Name          string   `json:"name"`
	Formula       string   `json:"formula"`
	ChemicalClass string   `json:"chemicalClass"`
	Synonyms      []string `json:"synonyms"`
	Properties    []string `json:"properties"`
	Confidence    float64  `json:"confidence"`
}

// ResponseMeasurement is one measurement as read out of prose or tables.
// Value and unit stay as strings; the deterministic engine parses them.
type ResponseMeasurement struct {
	Property   string  `json:"property"`
	Value      string  `json:"value"`
	Unit       string  `json:"unit"`
	Material   string  `json:"material"`
	Conditions string  `json:"conditions"`
	Confidence float64 `json:"confidence"`
}

// ResponseTable is a re-read of one table blob, addressed by its index in
// the document's table list.
type ResponseTable struct {
	TableIndex int        `json:"tableIndex"`
	Headers    []string   `json:"headers"`
	Rows       [][]string `json:"rows"`
	DataType   string     `json:"dataType"`
	Confidence float64    `json:"confidence"`
}

// BuildDocument condenses a raw extraction for the backend.
func BuildDocument(raw *types.RawExtraction) Document {
	doc := Document{}
	if raw.Title != nil {
		doc.Title = *raw.Title
	}
	if raw.Abstract != nil {
		doc.Abstract = *raw.Abstract
	}
	if raw.Journal != nil {
		doc.Journal = *raw.Journal
	}
	for _, t := range raw.Tables {
		blob := t.RawContent
		if t.Caption != nil {
			blob = *t.Caption + "\n" + blob
		}
		doc.Tables = append(doc.Tables, blob)
	}
	return doc
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff (R1.4).
func callWithRetry(ctx context.Context, backend Backend, doc Document, maxRetries int) (Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return Response{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := backend.Interpret(ctx, doc)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return Response{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

var validDataTypes = map[types.TableDataType]bool{
	types.TableExperimental: true,
	types.TableComparative:  true,
	types.TableProperties:   true,
	types.TableParameters:   true,
	types.TableOther:        true,
}

// Validate sanitizes a backend response in place. Confidences are
// clamped to [0,1], entities without an identifying field are dropped,
// and unknown table data types fall back to "other". Every correction
// produces a warning naming the field (R2.1-R2.3).
func Validate(resp *Response) []string {
	var warnings []string

	clamp := func(c *float64, what string) {
		if *c < 0 || *c > 1 {
			warnings = append(warnings, fmt.Sprintf("interpretation: %s confidence %g clamped to [0,1]", what, *c))
			*c = math.Min(1, math.Max(0, *c))
		}
	}

	materials := resp.Materials[:0]
	for i, m := range resp.Materials {
		if strings.TrimSpace(m.Name) == "" {
			warnings = append(warnings, fmt.Sprintf("interpretation: material %d dropped (empty name)", i))
			continue
		}
		clamp(&m.Confidence, fmt.Sprintf("material %q", m.Name))
		materials = append(materials, m)
	}
	resp.Materials = materials

	measurements := resp.Measurements[:0]
	for i, m := range resp.Measurements {
		if strings.TrimSpace(m.Property) == "" {
			warnings = append(warnings, fmt.Sprintf("interpretation: measurement %d dropped (empty property)", i))
			continue
		}
		clamp(&m.Confidence, fmt.Sprintf("measurement %q", m.Property))
		measurements = append(measurements, m)
	}
	resp.Measurements = measurements

	tables := resp.Tables[:0]
	for _, t := range resp.Tables {
		if t.TableIndex < 0 {
			warnings = append(warnings, fmt.Sprintf("interpretation: table index %d dropped", t.TableIndex))
			continue
		}
		if !validDataTypes[types.TableDataType(t.DataType)] {
			warnings = append(warnings, fmt.Sprintf("interpretation: table %d data type %q reset to other", t.TableIndex, t.DataType))
			t.DataType = string(types.TableOther)
		}
		clamp(&t.Confidence, fmt.Sprintf("table %d", t.TableIndex))
		tables = append(tables, t)
	}
	resp.Tables = tables

	return warnings
}

// Merge folds a validated response into the deterministic result. The
// deterministic output always wins on conflicts; interpretation fills
// gaps (R3.1-R3.5):
//
//   - materials matched by name gain chemical class and synonyms;
//     unmatched materials are normalized and appended
//   - measurements not already present are normalized and appended, with
//     confidence capped by the model's own confidence
//   - the journal abbreviation fills in only when the lookup left it nil
//   - a re-read table replaces the structured one only when the
//     structurer scored below threshold and the re-read scores higher
//
// Merge returns the warnings accumulated while normalizing model output.
func Merge(n *types.NormalizedExtraction, resp *Response, threshold float64, materialNames []string) []string {
	var warnings []string

	for _, rm := range resp.Materials {
		if existing := findMaterial(n.Materials, rm.Name); existing != nil {
			if existing.ChemicalClass == nil && rm.ChemicalClass != "" {
				cc := rm.ChemicalClass
				existing.ChemicalClass = &cc
			}
			existing.Synonyms = mergeSynonyms(existing.Synonyms, rm.Synonyms)
			continue
		}

		mat := normalize.Material(types.RawMaterial{
			Name:       rm.Name,
			Formula:    rm.Formula,
			Properties: rm.Properties,
		})
		if rm.ChemicalClass != "" {
			cc := rm.ChemicalClass
			mat.ChemicalClass = &cc
		}
		mat.Synonyms = mergeSynonyms(mat.Synonyms, rm.Synonyms)
		if rm.Confidence < mat.Confidence {
			mat.Confidence = rm.Confidence
		}
		n.Materials = append(n.Materials, mat)
		materialNames = append(materialNames, rm.Name)
	}

	for _, rm := range resp.Measurements {
		m, w := normalize.Measurement(types.RawMeasurement{
			Property:   rm.Property,
			Value:      rm.Value,
			Unit:       rm.Unit,
			Material:   rm.Material,
			Conditions: rm.Conditions,
		})
		if hasMeasurement(n.Measurements, m) {
			continue
		}
		if rm.Confidence < m.Confidence {
			m.Confidence = rm.Confidence
		}
		warnings = append(warnings, w...)
		n.Measurements = append(n.Measurements, m)
	}

	if n.Journal.Abbreviation == nil && resp.JournalAbbreviation != "" {
		abbr := resp.JournalAbbreviation
		n.Journal.Abbreviation = &abbr
	}

	for _, rt := range resp.Tables {
		if rt.TableIndex >= len(n.Tables) {
			warnings = append(warnings, fmt.Sprintf("interpretation: table index %d out of range", rt.TableIndex))
			continue
		}
		existing := &n.Tables[rt.TableIndex]
		if existing.Confidence >= threshold {
			continue
		}

		rebuilt, w := rebuildTable(*existing, rt, materialNames)
		if rebuilt.Confidence <= existing.Confidence {
			continue
		}
		warnings = append(warnings, w...)
		*existing = rebuilt
	}

	n.Metadata.OverallConfidence = normalize.OverallConfidence(n)
	return warnings
}

// rebuildTable re-runs the structurer over the model's re-read of a low
// confidence table, keeping the original identity and page.
func rebuildTable(orig types.ExtractedTable, rt ResponseTable, materialNames []string) (types.ExtractedTable, []string) {
	lines := []string{strings.Join(rt.Headers, "\t")}
	for _, row := range rt.Rows {
		lines = append(lines, strings.Join(row, "\t"))
	}

	rebuilt, warnings := normalize.Table(types.RawTable{
		PageNumber: orig.PageNumber,
		Caption:    orig.Caption,
		RawContent: strings.Join(lines, "\n"),
	}, rt.TableIndex, materialNames)

	rebuilt.TableID = orig.TableID
	if rt.Confidence < rebuilt.Confidence {
		rebuilt.Confidence = rt.Confidence
	}
	return rebuilt, warnings
}

func findMaterial(materials []types.NormalizedMaterial, name string) *types.NormalizedMaterial {
	for i := range materials {
		if strings.EqualFold(materials[i].CanonicalName, strings.TrimSpace(name)) {
			return &materials[i]
		}
	}
	return nil
}

func mergeSynonyms(existing, extra []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(s)] = true
	}
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		existing = append(existing, s)
	}
	return existing
}

func hasMeasurement(ms []types.NormalizedMeasurement, m types.NormalizedMeasurement) bool {
	for _, existing := range ms {
		if existing.Property.Name == m.Property.Name &&
			existing.Value == m.Value &&
			existing.Unit.OriginalUnit == m.Unit.OriginalUnit {
			return true
		}
	}
	return false
}

// Run executes the full interpretation pass: condense, call, validate,
// merge. A disabled config is a no-op. Backend failure after retries is
// returned to the caller, who decides whether to keep the deterministic
// result (R5.2).
func Run(ctx context.Context, backend Backend, raw *types.RawExtraction, n *types.NormalizedExtraction, cfg types.InterpretConfig) ([]string, error) {
	if !cfg.Enabled || backend == nil {
		return nil, nil
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	threshold := cfg.TableFallbackThreshold
	if threshold <= 0 {
		threshold = 0.5
	}

	resp, err := callWithRetry(ctx, backend, BuildDocument(raw), maxRetries)
	if err != nil {
		return nil, fmt.Errorf("interpretation: %w", err)
	}

	warnings := Validate(&resp)

	materialNames := make([]string, 0, len(n.Materials))
	for _, m := range n.Materials {
		materialNames = append(materialNames, m.CanonicalName)
	}
	warnings = append(warnings, Merge(n, &resp, threshold, materialNames)...)

	n.Metadata.LLMModel = cfg.Model
	n.Metadata.Warnings = append(n.Metadata.Warnings, warnings...)
	return warnings, nil
}
