// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/matex/internal/ontology"
	"github.com/pdiddy/matex/pkg/types"
)

const (
	// tableConfidenceFloor bounds the accumulated per-cell penalty.
	tableConfidenceFloor = 0.3

	cellPenalty     = 0.1
	noHeaderPenalty = 0.2
)

// multiSpaceRe splits whitespace-run-delimited rows when the blob
// carries no tabs.
var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// Table structures one raw table blob into headers plus typed rows and
// classifies its data type (R1-R4 of prd003-tables). materials is the
// document-level material name list used for relation linking. ordinal
// is the zero-based position of the table in the document; it feeds the
// stable table ID.
//
// An empty or unparsable blob yields a zero-row table with confidence 0
// and a warning, never an error (R1.4).
func Table(raw types.RawTable, ordinal int, materials []string) (types.ExtractedTable, []string) {
	t := types.ExtractedTable{
		TableID:          tableID(raw, ordinal),
		PageNumber:       raw.PageNumber,
		Caption:          raw.Caption,
		Headers:          []string{},
		Rows:             []types.TableRow{},
		DataType:         types.TableOther,
		RelatedMaterials: []string{},
	}

	grid := splitGrid(raw.RawContent)
	if len(grid) == 0 {
		caption := ""
		if raw.Caption != nil {
			caption = *raw.Caption
		}
		warning := fmt.Sprintf("table %s (page %d, %q): empty or unparsable content", t.TableID, raw.PageNumber, caption)
		return t, []string{warning}
	}

	hasHeader := looksLikeHeaderRow(grid[0])
	dataRows := grid
	if hasHeader {
		t.Headers = grid[0]
		dataRows = grid[1:]
	}

	unparseable := 0
	for r, row := range dataRows {
		cells := make([]types.TableCell, len(row))
		for c, value := range row {
			num, unit := scanValueUnit(value)
			cells[c] = types.TableCell{
				Value:        value,
				NumericValue: num,
				Unit:         unit,
				ColumnIndex:  c,
				RowIndex:     r,
			}
		}
		t.Rows = append(t.Rows, types.TableRow{Cells: cells})
	}
	unparseable = countUnparseableNumericCells(t.Rows)

	t.DataType = classifyTable(t.Headers, t.Rows, materials)
	t.RelatedMaterials = relatedMaterials(raw.Caption, t.Headers, t.Rows, materials)

	c := 1.0 - cellPenalty*float64(unparseable)
	if c < tableConfidenceFloor {
		c = tableConfidenceFloor
	}
	if !hasHeader {
		c -= noHeaderPenalty
	}
	t.Confidence = clamp01(c)

	var warnings []string
	if !hasHeader {
		warnings = append(warnings, fmt.Sprintf("table %s: no header row distinguished from data", t.TableID))
	}
	if unparseable > 0 {
		warnings = append(warnings, fmt.Sprintf("table %s: %d numeric cell(s) failed to parse", t.TableID, unparseable))
	}
	return t, warnings
}

// tableID derives a stable identifier from the table's position and
// content: the first 12 hex characters of SHA-256 over page, ordinal,
// caption, and raw content.
func tableID(raw types.RawTable, ordinal int) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%d\x00", raw.PageNumber, ordinal)
	if raw.Caption != nil {
		h.Write([]byte(*raw.Caption))
	}
	h.Write([]byte{0})
	h.Write([]byte(raw.RawContent))
	return "tbl-" + fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// splitGrid splits a raw blob into a dense rectangular grid. Rows are
// newline-delimited; cells follow the serialization convention of the
// upstream service: tabs when present, otherwise whitespace runs,
// otherwise single-space fields (R2.1). Short rows are padded so every
// (row, column) pair in the grid exists (R2.4).
func splitGrid(blob string) [][]string {
	useTabs := strings.Contains(blob, "\t")

	var grid [][]string
	cols := 0
	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var cells []string
		switch {
		case useTabs:
			cells = strings.Split(line, "\t")
		case multiSpaceRe.MatchString(line):
			cells = multiSpaceRe.Split(line, -1)
		default:
			cells = strings.Fields(line)
		}

		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		grid = append(grid, cells)
		if len(cells) > cols {
			cols = len(cells)
		}
	}

	for i, row := range grid {
		for len(row) < cols {
			row = append(row, "")
		}
		grid[i] = row
	}
	return grid
}

// looksLikeHeaderRow reports whether row 0 should be treated as the
// header row: it is, unless at least half of its cells look numeric
// (R2.2).
func looksLikeHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	numeric := 0
	for _, cell := range row {
		if cellLooksNumeric(cell) {
			numeric++
		}
	}
	return numeric*2 < len(row)
}

// cellLooksNumeric reports whether a cell starts with a numeric token.
func cellLooksNumeric(cell string) bool {
	s := strings.TrimSpace(cell)
	loc := numberRe.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}

// countUnparseableNumericCells counts data cells that sit in a
// numeric-majority column but produced no numeric value themselves.
// These drive the table confidence penalty (R2.5).
func countUnparseableNumericCells(rows []types.TableRow) int {
	if len(rows) == 0 {
		return 0
	}
	cols := len(rows[0].Cells)

	count := 0
	for c := 0; c < cols; c++ {
		numeric, filled := 0, 0
		for _, row := range rows {
			if c >= len(row.Cells) {
				continue
			}
			if row.Cells[c].Value != "" {
				filled++
			}
			if row.Cells[c].NumericValue != nil {
				numeric++
			}
		}
		if filled == 0 || numeric*2 < filled {
			continue
		}
		for _, row := range rows {
			if c < len(row.Cells) && row.Cells[c].Value != "" && row.Cells[c].NumericValue == nil {
				count++
			}
		}
	}
	return count
}

// conditionWords mark condition-like header text (experimental tables).
var conditionWords = []string{"temperature", "temp", "time", "pressure", "duration", "atmosphere", "humidity"}

// processWords mark process-parameter header text.
var processWords = []string{"rate", "speed", "power", "voltage", "current", "load", "cycle", "step", "process", "treatment"}

// classifyTable applies the fixed data-type rule set (R4.1): condition
// headers ⇒ experimental; multiple material columns sharing property
// columns ⇒ comparative; property headers ⇒ properties; process or
// condition headers alone ⇒ parameters; otherwise other.
func classifyTable(headers []string, rows []types.TableRow, materials []string) types.TableDataType {
	condition := 0
	property := 0
	process := 0
	materialCols := 0

	for _, h := range headers {
		lower := strings.ToLower(h)
		switch {
		case containsAny(lower, conditionWords):
			condition++
		case ontology.IsPropertyName(stripHeaderUnit(h)):
			property++
		case containsAny(lower, processWords):
			process++
		}
		for _, m := range materials {
			if materialMention(h, m) {
				materialCols++
				break
			}
		}
	}

	// Material-name columns: a column whose data cells are document
	// material names also counts toward the comparative rule.
	materialCols += materialValueColumns(rows, materials)

	switch {
	case condition > 0 && property > 0:
		return types.TableExperimental
	case materialCols > 1 && property > 0:
		return types.TableComparative
	case property > 0:
		return types.TableProperties
	case (condition > 0 || process > 0) && property == 0 && materialCols == 0:
		return types.TableParameters
	default:
		return types.TableOther
	}
}

// materialValueColumns counts columns in which every non-empty data
// cell is a document-level material name.
func materialValueColumns(rows []types.TableRow, materials []string) int {
	if len(rows) == 0 || len(materials) == 0 {
		return 0
	}
	lower := make(map[string]bool, len(materials))
	for _, m := range materials {
		lower[strings.ToLower(m)] = true
	}

	cols := len(rows[0].Cells)
	count := 0
	for c := 0; c < cols; c++ {
		filled, matched := 0, 0
		for _, row := range rows {
			if c >= len(row.Cells) || row.Cells[c].Value == "" {
				continue
			}
			filled++
			if lower[strings.ToLower(row.Cells[c].Value)] {
				matched++
			}
		}
		if filled > 0 && matched == filled {
			count++
		}
	}
	return count
}

// stripHeaderUnit removes a parenthesized or comma-separated unit from
// header text: "Strength (MPa)" and "Strength, MPa" both become
// "Strength".
func stripHeaderUnit(h string) string {
	if i := strings.IndexByte(h, '('); i >= 0 {
		h = h[:i]
	}
	if i := strings.IndexByte(h, ','); i >= 0 {
		h = h[:i]
	}
	return strings.TrimSpace(h)
}

// relatedMaterials collects every document material appearing in the
// caption, a header, or a cell (case-insensitive substring), preserving
// order of first appearance and deduplicating (R3.1).
func relatedMaterials(caption *string, headers []string, rows []types.TableRow, materials []string) []string {
	if len(materials) == 0 {
		return []string{}
	}

	var haystacks []string
	if caption != nil {
		haystacks = append(haystacks, *caption)
	}
	haystacks = append(haystacks, headers...)
	for _, row := range rows {
		for _, cell := range row.Cells {
			haystacks = append(haystacks, cell.Value)
		}
	}

	seen := make(map[string]bool, len(materials))
	var out []string
	for _, hay := range haystacks {
		for _, m := range materials {
			if m == "" || seen[strings.ToLower(m)] {
				continue
			}
			if materialMention(hay, m) {
				seen[strings.ToLower(m)] = true
				out = append(out, m)
			}
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// materialMention reports whether text mentions a material name on a
// word boundary, case-insensitively. Plain substring matching is too
// loose here: "Material" contains "Al".
func materialMention(text, material string) bool {
	material = strings.TrimSpace(material)
	if material == "" {
		return false
	}
	re, err := regexp.Compile(`(?i)(^|[^\p{L}\p{N}])` + regexp.QuoteMeta(material) + `($|[^\p{L}\p{N}])`)
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
