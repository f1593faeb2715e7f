// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures exchanged between
// pipeline stages: the raw document model produced by structure
// extraction, the normalized model produced by the engine, and the
// per-stage configuration structs.
package types

// RawExtraction is the structured text of one document as produced by
// the structure-extraction service (Layer 1). It is immutable once
// received; the normalizer only reads it. Per prd001-ingestion R2.1.
type RawExtraction struct {
	// Title is the main document title, or nil when absent.
	Title *string `json:"title" yaml:"title"`

	// Authors lists the raw authors in document order.
	Authors []RawAuthor `json:"authors" yaml:"authors"`

	// Abstract is the abstract text, or nil when absent.
	Abstract *string `json:"abstract" yaml:"abstract"`

	// Keywords lists author-supplied keywords in document order.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// DOI is the document DOI, or nil when absent.
	DOI *string `json:"doi" yaml:"doi"`

	// PublicationDate is the raw date string (usually ISO 8601), or nil.
	PublicationDate *string `json:"publicationDate" yaml:"publication_date"`

	// Journal is the journal title, or nil.
	Journal *string `json:"journal" yaml:"journal"`

	Volume *string `json:"volume" yaml:"volume"`
	Issue  *string `json:"issue" yaml:"issue"`
	Pages  *string `json:"pages" yaml:"pages"`

	// References lists the bibliography entries in document order.
	References []RawReference `json:"references" yaml:"references"`

	// Materials lists material mentions supplied by the caller or a
	// downstream interpretation pass. Structure extraction leaves this empty.
	Materials []RawMaterial `json:"materials" yaml:"materials"`

	// Measurements lists raw (property, value, unit) mentions.
	Measurements []RawMeasurement `json:"measurements" yaml:"measurements"`

	// Affiliations lists raw affiliation strings in document order.
	Affiliations []string `json:"affiliations" yaml:"affiliations"`

	// Tables lists the raw table blobs in document order.
	Tables []RawTable `json:"tables" yaml:"tables"`
}

// RawAuthor is one author as emitted by structure extraction. FullName is
// always present; the split name parts and contact fields are optional.
type RawAuthor struct {
	FullName    string `json:"fullName" yaml:"full_name"`
	GivenName   string `json:"givenName,omitempty" yaml:"given_name,omitempty"`
	Surname     string `json:"surname,omitempty" yaml:"surname,omitempty"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// RawReference is one bibliography entry. All fields are optional; the
// extraction service emits whatever it can identify.
type RawReference struct {
	Title   string   `json:"title,omitempty" yaml:"title,omitempty"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal string   `json:"journal,omitempty" yaml:"journal,omitempty"`
	Year    string   `json:"year,omitempty" yaml:"year,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
}

// RawMaterial is a material mention: a name plus optional formula and
// free-text property names.
type RawMaterial struct {
	Name       string   `json:"name" yaml:"name"`
	Formula    string   `json:"formula,omitempty" yaml:"formula,omitempty"`
	Properties []string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// RawMeasurement is a raw (property, value, unit) triple, with optional
// material back-reference and free-text conditions ("at 300 K").
type RawMeasurement struct {
	Property   string `json:"property" yaml:"property"`
	Value      string `json:"value" yaml:"value"`
	Unit       string `json:"unit" yaml:"unit"`
	Material   string `json:"material,omitempty" yaml:"material,omitempty"`
	Conditions string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// RawTable is one table as a free-text blob: the upstream service strips
// markup and serializes cells tab-delimited, one row per line.
type RawTable struct {
	PageNumber int     `json:"pageNumber" yaml:"page_number"`
	Caption    *string `json:"caption" yaml:"caption"`
	RawContent string  `json:"rawContent" yaml:"raw_content"`
}

// IsEmpty reports whether the extraction carries no usable content:
// no title, no authors, and no abstract. Per prd002-normalization R1.2
// such input is rejected outright.
func (r *RawExtraction) IsEmpty() bool {
	hasTitle := r.Title != nil && *r.Title != ""
	hasAbstract := r.Abstract != nil && *r.Abstract != ""
	return !hasTitle && len(r.Authors) == 0 && !hasAbstract
}
