// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes pipeline results for downstream consumers:
// lossless JSON of the full result, and flat CSVs of measurements and
// tables for spreadsheet work.
// Implements: prd004-export (R1-R3).
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/matex/pkg/types"
)

// NewResult wraps raw and normalized output with an export timestamp.
func NewResult(raw *types.RawExtraction, n *types.NormalizedExtraction) *types.Result {
	return &types.Result{
		Raw:        *raw,
		Normalized: *n,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// WriteJSON writes the full result as indented JSON. This is the
// lossless interchange format; the CSVs below are views.
func WriteJSON(w io.Writer, result *types.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// WriteJSONFile writes the result to a file path.
func WriteJSONFile(path string, result *types.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(f, result)
}

// WriteYAML writes the full result as YAML, for readers who review
// extractions by eye rather than by machine.
func WriteYAML(w io.Writer, result *types.Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing YAML: %w", err)
	}
	return nil
}

// measurementHeader is the fixed column order of the measurement CSV.
var measurementHeader = []string{
	"material", "property", "original_name", "category",
	"value", "unit", "si_value", "si_unit", "conversion_factor", "confidence",
}

// WriteMeasurementsCSV writes one row per normalized measurement.
func WriteMeasurementsCSV(w io.Writer, n *types.NormalizedExtraction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(measurementHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, m := range n.Measurements {
		material := ""
		if m.Material != nil {
			material = *m.Material
		}
		row := []string{
			material,
			m.Property.Name,
			m.Property.OriginalName,
			m.Property.Category,
			formatFloat(m.Value),
			m.Unit.OriginalUnit,
			formatFloat(m.Unit.SIValue),
			m.Unit.CanonicalUnit,
			formatFloat(m.Unit.ConversionFactor),
			formatFloat(m.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing measurement row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTablesCSV writes one section per table: a metadata line, the
// header row when present, then the raw cell values.
func WriteTablesCSV(w io.Writer, n *types.NormalizedExtraction) error {
	cw := csv.NewWriter(w)

	for i, t := range n.Tables {
		caption := ""
		if t.Caption != nil {
			caption = *t.Caption
		}
		meta := []string{
			"table", t.TableID,
			"page", strconv.Itoa(t.PageNumber),
			"caption", caption,
			"data_type", string(t.DataType),
			"confidence", formatFloat(t.Confidence),
		}
		if err := cw.Write(meta); err != nil {
			return fmt.Errorf("writing table %d metadata: %w", i, err)
		}

		if len(t.Headers) > 0 {
			if err := cw.Write(t.Headers); err != nil {
				return fmt.Errorf("writing table %d header: %w", i, err)
			}
		}
		for _, row := range t.Rows {
			cells := make([]string, len(row.Cells))
			for j, c := range row.Cells {
				cells[j] = c.Value
			}
			if err := cw.Write(cells); err != nil {
				return fmt.Errorf("writing table %d row: %w", i, err)
			}
		}

		// Blank record between tables keeps sections visually separate.
		if i < len(n.Tables)-1 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
