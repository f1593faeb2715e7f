// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NormalizedExtraction is the canonical output of the normalization
// engine (Layer 2). Every entity carries a confidence in [0,1]; values
// are converted to SI units and names to controlled vocabulary.
// Per prd002-normalization R1.1.
type NormalizedExtraction struct {
	Title           string                  `json:"title" yaml:"title"`
	Authors         []NormalizedAuthor      `json:"authors" yaml:"authors"`
	Abstract        string                  `json:"abstract" yaml:"abstract"`
	Keywords        []string                `json:"keywords" yaml:"keywords"`
	DOI             *string                 `json:"doi" yaml:"doi"`
	PublicationDate *string                 `json:"publicationDate" yaml:"publication_date"`
	Journal         NormalizedJournal       `json:"journal" yaml:"journal"`
	References      []NormalizedReference   `json:"references" yaml:"references"`
	Materials       []NormalizedMaterial    `json:"materials" yaml:"materials"`
	Measurements    []NormalizedMeasurement `json:"measurements" yaml:"measurements"`
	Tables          []ExtractedTable        `json:"tables" yaml:"tables"`
	Metadata        ExtractionMetadata      `json:"metadata" yaml:"metadata"`
}

// NormalizedAuthor is an author with canonical "Surname, Given Name"
// form. CanonicalName is always derivable from GivenName and Surname;
// when either part is empty the confidence is at most 0.5.
type NormalizedAuthor struct {
	CanonicalName string  `json:"canonicalName" yaml:"canonical_name"`
	GivenName     string  `json:"givenName" yaml:"given_name"`
	Surname       string  `json:"surname" yaml:"surname"`
	Email         *string `json:"email" yaml:"email"`
	Affiliation   *string `json:"affiliation" yaml:"affiliation"`
	ORCID         *string `json:"orcid" yaml:"orcid"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
}

// NormalizedJournal carries the journal name plus optional abbreviation
// and ISSN. Volume, issue, and pages pass through verbatim.
type NormalizedJournal struct {
	Name         string  `json:"name" yaml:"name"`
	Abbreviation *string `json:"abbreviation" yaml:"abbreviation"`
	ISSN         *string `json:"issn" yaml:"issn"`
	Volume       *string `json:"volume" yaml:"volume"`
	Issue        *string `json:"issue" yaml:"issue"`
	Pages        *string `json:"pages" yaml:"pages"`
}

// NormalizedReference is a bibliography entry with the year parsed to an
// integer where a 4-digit token was present.
type NormalizedReference struct {
	Title      string   `json:"title" yaml:"title"`
	Authors    []string `json:"authors" yaml:"authors"`
	Journal    *string  `json:"journal" yaml:"journal"`
	Year       *int     `json:"year" yaml:"year"`
	DOI        *string  `json:"doi" yaml:"doi"`
	Confidence float64  `json:"confidence" yaml:"confidence"`
}

// NormalizedMaterial is a material with canonical name, optional formula
// and chemical class (e.g. "polymer", "alloy", "ceramic"), and its
// properties resolved through the ontology.
type NormalizedMaterial struct {
	CanonicalName string               `json:"canonicalName" yaml:"canonical_name"`
	Formula       *string              `json:"formula" yaml:"formula"`
	ChemicalClass *string              `json:"chemicalClass" yaml:"chemical_class"`
	Synonyms      []string             `json:"synonyms" yaml:"synonyms"`
	Properties    []NormalizedProperty `json:"properties" yaml:"properties"`
	Confidence    float64              `json:"confidence" yaml:"confidence"`
}

// NormalizedProperty is a property name resolved through the ontology.
type NormalizedProperty struct {
	Name         string `json:"name" yaml:"name"`
	OriginalName string `json:"originalName" yaml:"original_name"`
	Category     string `json:"category" yaml:"category"`
}

// NormalizedMeasurement is one measurement with its property resolved,
// its value parsed, and its unit converted to SI. Material is a name
// back-reference, never an owned object.
//
// Invariant: Unit.SIValue == Value*Unit.ConversionFactor (+ offset for
// temperature units). Per prd002-normalization R3.4.
type NormalizedMeasurement struct {
	Property   NormalizedProperty     `json:"property" yaml:"property"`
	Value      float64                `json:"value" yaml:"value"`
	Unit       NormalizedUnit         `json:"unit" yaml:"unit"`
	Material   *string                `json:"material" yaml:"material"`
	Conditions *MeasurementConditions `json:"conditions" yaml:"conditions"`
	Confidence float64                `json:"confidence" yaml:"confidence"`
}

// NormalizedUnit records the unit resolution for one measurement. For an
// unknown unit CanonicalUnit echoes OriginalUnit with factor 1.
type NormalizedUnit struct {
	CanonicalUnit    string  `json:"canonicalUnit" yaml:"canonical_unit"`
	OriginalUnit     string  `json:"originalUnit" yaml:"original_unit"`
	ConversionFactor float64 `json:"conversionFactor" yaml:"conversion_factor"`
	SIValue          float64 `json:"siValue" yaml:"si_value"`
}

// ConditionValue is a measurement condition as a value plus unit string.
type ConditionValue struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit" yaml:"unit"`
}

// MeasurementConditions holds recognized measurement conditions.
// Fragments that match none of the three kinds are dropped.
type MeasurementConditions struct {
	Temperature *ConditionValue `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Pressure    *ConditionValue `json:"pressure,omitempty" yaml:"pressure,omitempty"`
	Humidity    *ConditionValue `json:"humidity,omitempty" yaml:"humidity,omitempty"`
}

// TableDataType classifies what an extracted table contains.
// Per prd003-tables R4.1.
type TableDataType string

const (
	TableExperimental TableDataType = "experimental"
	TableComparative  TableDataType = "comparative"
	TableProperties   TableDataType = "properties"
	TableParameters   TableDataType = "parameters"
	TableOther        TableDataType = "other"
)

// ExtractedTable is one table structured into headers and typed rows.
//
// Invariant: cell (RowIndex, ColumnIndex) pairs are unique and dense over
// [0, rows) x [0, columns). Per prd003-tables R2.4.
type ExtractedTable struct {
	TableID          string        `json:"tableId" yaml:"table_id"`
	PageNumber       int           `json:"pageNumber" yaml:"page_number"`
	Caption          *string       `json:"caption" yaml:"caption"`
	Headers          []string      `json:"headers" yaml:"headers"`
	Rows             []TableRow    `json:"rows" yaml:"rows"`
	DataType         TableDataType `json:"dataType" yaml:"data_type"`
	RelatedMaterials []string      `json:"relatedMaterials" yaml:"related_materials"`
	Confidence       float64       `json:"confidence" yaml:"confidence"`
}

// TableRow is one ordered row of cells.
type TableRow struct {
	Cells []TableCell `json:"cells" yaml:"cells"`
}

// TableCell is one cell: the raw string plus an optional parsed numeric
// value and unit symbol.
//
// IsHeader is part of the wire schema for consumers that inline header
// rows as cells. The structurer keeps headers in ExtractedTable.Headers
// and Rows holds data cells only, so it never sets the flag itself.
type TableCell struct {
	Value        string   `json:"value" yaml:"value"`
	NumericValue *float64 `json:"numericValue" yaml:"numeric_value"`
	Unit         *string  `json:"unit" yaml:"unit"`
	IsHeader     bool     `json:"isHeader" yaml:"is_header"`
	ColumnIndex  int      `json:"columnIndex" yaml:"column_index"`
	RowIndex     int      `json:"rowIndex" yaml:"row_index"`
}

// ExtractionMetadata records provenance for one normalization run.
type ExtractionMetadata struct {
	// ExtractionTimestamp is the run completion time, RFC 3339 UTC.
	ExtractionTimestamp string `json:"extractionTimestamp" yaml:"extraction_timestamp"`

	// GrobidVersion is the structure-extraction service version, or nil
	// when the service did not report one.
	GrobidVersion *string `json:"grobidVersion" yaml:"grobid_version"`

	// LLMModel is the interpretation model identifier ("" when the
	// interpretation layer was skipped).
	LLMModel string `json:"llmModel" yaml:"llm_model"`

	// ProcessingTimeMs is the total wall-clock latency of the run.
	ProcessingTimeMs int64 `json:"processingTimeMs" yaml:"processing_time_ms"`

	// OverallConfidence is the arithmetic mean of item confidences
	// across authors, materials, measurements, and tables. Empty
	// categories are excluded from the mean.
	OverallConfidence float64 `json:"overallConfidence" yaml:"overall_confidence"`

	// Warnings lists every degradation encountered, in processing order.
	Warnings []string `json:"warnings" yaml:"warnings"`
}
