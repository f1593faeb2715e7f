// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package grobid

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/matex/pkg/types"
)

// Parse converts a GROBID TEI document into the raw extraction model.
// It returns the service version from the TEI header when present.
//
// Only structure is extracted here: materials and measurements stay
// empty until the interpretation layer fills them in (R2.3).
func Parse(data []byte) (*types.RawExtraction, string, error) {
	var doc tei
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, "", fmt.Errorf("invalid TEI: %w", err)
	}

	raw := &types.RawExtraction{
		Keywords:     []string{},
		Authors:      []types.RawAuthor{},
		References:   []types.RawReference{},
		Materials:    []types.RawMaterial{},
		Measurements: []types.RawMeasurement{},
		Affiliations: []string{},
		Tables:       []types.RawTable{},
	}

	fd := doc.Header.FileDesc
	if t := string(fd.TitleStmt.Title); t != "" {
		raw.Title = &t
	}
	if a := string(doc.Header.ProfileDesc.Abstract); a != "" {
		raw.Abstract = &a
	}
	for _, term := range doc.Header.ProfileDesc.TextClass.Keywords.Terms {
		if term = strings.TrimSpace(term); term != "" {
			raw.Keywords = append(raw.Keywords, term)
		}
	}

	bibl := fd.SourceDesc.BiblStruct
	seenAff := map[string]bool{}
	for _, a := range bibl.Analytic.Authors {
		author, aff := convertAuthor(a)
		if author.FullName == "" {
			continue
		}
		raw.Authors = append(raw.Authors, author)
		if aff != "" && !seenAff[aff] {
			seenAff[aff] = true
			raw.Affiliations = append(raw.Affiliations, aff)
		}
	}

	if doi := findIDNO(append(bibl.Analytic.IDNOs, bibl.IDNOs...), "DOI"); doi != "" {
		raw.DOI = &doi
	}
	if j := string(bibl.Monogr.Title); j != "" {
		raw.Journal = &j
	}
	for _, bs := range bibl.Monogr.Imprint.BiblScopes {
		setBiblScope(bs, &raw.Volume, &raw.Issue, &raw.Pages)
	}
	if when := publicationDate(bibl.Monogr.Imprint.Dates); when != "" {
		raw.PublicationDate = &when
	}

	for _, ref := range doc.Text.Back.Bibls {
		raw.References = append(raw.References, convertReference(ref))
	}

	for i, fig := range collectTableFigures(doc.Text.Body) {
		raw.Tables = append(raw.Tables, convertFigure(fig, i))
	}

	return raw, doc.Header.Encoding.AppInfo.Application.Version, nil
}

func convertAuthor(a teiAuthor) (types.RawAuthor, string) {
	given := strings.Join(a.PersName.Forenames, " ")
	full := strings.TrimSpace(strings.TrimSpace(given) + " " + a.PersName.Surname)

	var affParts []string
	for _, org := range a.Affiliation.OrgNames {
		if org = strings.TrimSpace(org); org != "" {
			affParts = append(affParts, org)
		}
	}
	aff := strings.Join(affParts, ", ")

	return types.RawAuthor{
		FullName:    full,
		GivenName:   strings.TrimSpace(given),
		Surname:     a.PersName.Surname,
		Email:       strings.TrimSpace(a.Email),
		Affiliation: aff,
		ORCID:       findIDNO(a.IDNOs, "ORCID"),
	}, aff
}

func convertReference(b teiBiblStruct) types.RawReference {
	ref := types.RawReference{
		Title:   string(b.Analytic.Title),
		Journal: string(b.Monogr.Title),
		DOI:     findIDNO(append(b.Analytic.IDNOs, b.IDNOs...), "DOI"),
		Year:    publicationDate(b.Monogr.Imprint.Dates),
	}
	// Monograph-only entries (books, reports) carry the title on monogr.
	if ref.Title == "" {
		ref.Title = ref.Journal
		ref.Journal = ""
	}
	for _, a := range b.Analytic.Authors {
		author, _ := convertAuthor(a)
		if author.FullName != "" {
			ref.Authors = append(ref.Authors, author.FullName)
		}
	}
	return ref
}

func convertFigure(fig teiFigure, ordinal int) types.RawTable {
	var lines []string
	for _, row := range fig.Table.Rows {
		cells := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			cells[i] = string(c)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}

	// Coordinates are only present when requested; without them the page
	// falls back to 1-based document order.
	page := coordsPage(fig.Coords)
	if page == 0 {
		page = ordinal + 1
	}

	t := types.RawTable{
		PageNumber: page,
		RawContent: strings.Join(lines, "\n"),
	}
	if head := string(fig.Head); head != "" {
		t.Caption = &head
	}
	return t
}

// collectTableFigures gathers table figures from the body, whether they
// sit directly under <body> or inside section divs.
func collectTableFigures(body teiBody) []teiFigure {
	var out []teiFigure
	keep := func(figs []teiFigure) {
		for _, f := range figs {
			if f.Type == "table" {
				out = append(out, f)
			}
		}
	}
	keep(body.Figures)
	for _, div := range body.Divs {
		keep(div.Figures)
	}
	return out
}

// coordsPage extracts the page number from a TEI coords attribute, which
// is "page,x,y,w,h" groups separated by semicolons.
func coordsPage(coords string) int {
	first, _, _ := strings.Cut(coords, ";")
	page, _, found := strings.Cut(first, ",")
	if !found {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		return 0
	}
	return n
}

func findIDNO(idnos []teiIDNO, typ string) string {
	for _, id := range idnos {
		if strings.EqualFold(id.Type, typ) {
			return strings.TrimSpace(id.Value)
		}
	}
	return ""
}

func setBiblScope(bs teiBiblScope, volume, issue, pages **string) {
	switch bs.Unit {
	case "volume":
		if v := strings.TrimSpace(bs.Value); v != "" {
			*volume = &v
		}
	case "issue":
		if v := strings.TrimSpace(bs.Value); v != "" {
			*issue = &v
		}
	case "page":
		v := strings.TrimSpace(bs.Value)
		if v == "" && bs.From != "" {
			v = bs.From
			if bs.To != "" {
				v = bs.From + "-" + bs.To
			}
		}
		if v != "" {
			*pages = &v
		}
	}
}

// publicationDate prefers the published date's when attribute, falling
// back to element text.
func publicationDate(dates []teiDate) string {
	for _, d := range dates {
		if d.Type != "" && d.Type != "published" {
			continue
		}
		if d.When != "" {
			return d.When
		}
		if v := strings.TrimSpace(d.Value); v != "" {
			return v
		}
	}
	return ""
}

// TEI document skeleton. Only the elements the pipeline reads are
// declared; everything else is skipped by the decoder.

type tei struct {
	XMLName xml.Name  `xml:"TEI"`
	Header  teiHeader `xml:"teiHeader"`
	Text    teiText   `xml:"text"`
}

type teiHeader struct {
	FileDesc struct {
		TitleStmt struct {
			Title flatText `xml:"title"`
		} `xml:"titleStmt"`
		SourceDesc struct {
			BiblStruct teiBiblStruct `xml:"biblStruct"`
		} `xml:"sourceDesc"`
	} `xml:"fileDesc"`
	Encoding struct {
		AppInfo struct {
			Application struct {
				Version string `xml:"version,attr"`
			} `xml:"application"`
		} `xml:"appInfo"`
	} `xml:"encodingDesc"`
	ProfileDesc struct {
		Abstract  flatText `xml:"abstract"`
		TextClass struct {
			Keywords struct {
				Terms []string `xml:"term"`
			} `xml:"keywords"`
		} `xml:"textClass"`
	} `xml:"profileDesc"`
}

type teiBiblStruct struct {
	Analytic struct {
		Title   flatText    `xml:"title"`
		Authors []teiAuthor `xml:"author"`
		IDNOs   []teiIDNO   `xml:"idno"`
	} `xml:"analytic"`
	Monogr struct {
		Title   flatText `xml:"title"`
		Imprint struct {
			BiblScopes []teiBiblScope `xml:"biblScope"`
			Dates      []teiDate      `xml:"date"`
		} `xml:"imprint"`
	} `xml:"monogr"`
	IDNOs []teiIDNO `xml:"idno"`
}

type teiAuthor struct {
	PersName struct {
		Forenames []string `xml:"forename"`
		Surname   string   `xml:"surname"`
	} `xml:"persName"`
	Email       string `xml:"email"`
	Affiliation struct {
		OrgNames []string `xml:"orgName"`
	} `xml:"affiliation"`
	IDNOs []teiIDNO `xml:"idno"`
}

type teiIDNO struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type teiBiblScope struct {
	Unit  string `xml:"unit,attr"`
	From  string `xml:"from,attr"`
	To    string `xml:"to,attr"`
	Value string `xml:",chardata"`
}

type teiDate struct {
	Type  string `xml:"type,attr"`
	When  string `xml:"when,attr"`
	Value string `xml:",chardata"`
}

type teiText struct {
	Body teiBody `xml:"body"`
	Back struct {
		Bibls []teiBiblStruct `xml:"div>listBibl>biblStruct"`
	} `xml:"back"`
}

type teiBody struct {
	Figures []teiFigure `xml:"figure"`
	Divs    []struct {
		Figures []teiFigure `xml:"figure"`
	} `xml:"div"`
}

type teiFigure struct {
	Type   string   `xml:"type,attr"`
	Coords string   `xml:"coords,attr"`
	Head   flatText `xml:"head"`
	Table  struct {
		Rows []struct {
			Cells []flatText `xml:"cell"`
		} `xml:"row"`
	} `xml:"table"`
}

// flatText collects all character data under an element, collapsing
// markup and whitespace. GROBID nests <hi>, <ref>, <p> and friends
// inside titles and abstracts.
type flatText string

func (t *flatText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch v := tok.(type) {
		case xml.CharData:
			b.Write(v)
			b.WriteByte(' ')
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				*t = flatText(strings.Join(strings.Fields(b.String()), " "))
				return nil
			}
			depth--
		}
	}
}
