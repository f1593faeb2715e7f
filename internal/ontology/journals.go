// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import "strings"

// Journal is one known-journal record. The lookup is deliberately
// small: absence from it is not an error, the abbreviation and ISSN
// simply stay unset. Per prd002-normalization R4.3.
type Journal struct {
	Abbreviation string
	ISSN         string
}

// knownJournals maps lowercase journal titles to abbreviation and ISSN.
var knownJournals = map[string]Journal{
	"acta materialia":                         {Abbreviation: "Acta Mater.", ISSN: "1359-6454"},
	"scripta materialia":                      {Abbreviation: "Scr. Mater.", ISSN: "1359-6462"},
	"journal of applied physics":              {Abbreviation: "J. Appl. Phys.", ISSN: "0021-8979"},
	"applied physics letters":                 {Abbreviation: "Appl. Phys. Lett.", ISSN: "0003-6951"},
	"nature materials":                        {Abbreviation: "Nat. Mater.", ISSN: "1476-1122"},
	"advanced materials":                      {Abbreviation: "Adv. Mater.", ISSN: "0935-9648"},
	"journal of the american ceramic society": {Abbreviation: "J. Am. Ceram. Soc.", ISSN: "0002-7820"},
	"materials science and engineering: a":    {Abbreviation: "Mater. Sci. Eng. A", ISSN: "0921-5093"},
	"journal of alloys and compounds":         {Abbreviation: "J. Alloys Compd.", ISSN: "0925-8388"},
	"composites science and technology":       {Abbreviation: "Compos. Sci. Technol.", ISSN: "0266-3538"},
	"international journal of plasticity":     {Abbreviation: "Int. J. Plast.", ISSN: "0749-6419"},
	"journal of materials science":            {Abbreviation: "J. Mater. Sci.", ISSN: "0022-2461"},
}

// ResolveJournal looks up a journal title case-insensitively. The second
// return is false when the journal is not known.
func ResolveJournal(name string) (Journal, bool) {
	j, ok := knownJournals[strings.ToLower(strings.TrimSpace(name))]
	return j, ok
}
