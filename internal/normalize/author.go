// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/matex/internal/ontology"
	"github.com/pdiddy/matex/pkg/types"
)

// Author confidence tiers (prd002-normalization R4.1): full name split
// plus contact info, split but no contact, or an unsplittable full name.
const (
	authorConfidenceFull      = 1.0
	authorConfidenceNoContact = 0.7
	authorConfidenceNameOnly  = 0.4

	// authorConfidenceIncompleteCap applies whenever the given name or
	// surname is empty; the orchestrator relies on this ceiling.
	authorConfidenceIncompleteCap = 0.5
)

// referenceConfidence is fixed: references pass through without deep
// normalization (R4.4).
const referenceConfidence = 0.7

// Author canonicalizes one raw author into "Surname, Given Name" form.
// When the raw extraction did not already split the name, the rightmost
// token of the full name is taken as the surname (R4.1).
func Author(raw types.RawAuthor) types.NormalizedAuthor {
	given := strings.TrimSpace(raw.GivenName)
	surname := strings.TrimSpace(raw.Surname)
	split := given != "" && surname != ""

	if !split {
		g, s := splitFullName(raw.FullName)
		if given == "" {
			given = g
		}
		if surname == "" {
			surname = s
		}
	}

	a := types.NormalizedAuthor{
		CanonicalName: canonicalName(given, surname),
		GivenName:     given,
		Surname:       surname,
	}
	if raw.Email != "" {
		v := raw.Email
		a.Email = &v
	}
	if raw.Affiliation != "" {
		v := raw.Affiliation
		a.Affiliation = &v
	}
	if raw.ORCID != "" {
		v := raw.ORCID
		a.ORCID = &v
	}

	hasContact := raw.Email != "" || raw.Affiliation != ""
	switch {
	case given != "" && surname != "" && hasContact:
		a.Confidence = authorConfidenceFull
	case given != "" && surname != "":
		a.Confidence = authorConfidenceNoContact
	default:
		a.Confidence = authorConfidenceNameOnly
	}
	if given == "" || surname == "" {
		a.Confidence = min(a.Confidence, authorConfidenceIncompleteCap)
	}
	return a
}

// splitFullName separates a full name into given name and surname using
// the rightmost token as the surname.
func splitFullName(full string) (given, surname string) {
	tokens := strings.Fields(strings.TrimSpace(full))
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}

// canonicalName formats "Surname, Given Name", trimmed. It degrades to
// whichever part exists.
func canonicalName(given, surname string) string {
	switch {
	case surname != "" && given != "":
		return surname + ", " + given
	case surname != "":
		return surname
	default:
		return given
	}
}

// Journal normalizes the journal block. Name, volume, issue, and pages
// pass through verbatim; abbreviation and ISSN come from the small
// known-journal lookup, and absence there is not an error (R4.3).
func Journal(name, volume, issue, pages *string) types.NormalizedJournal {
	j := types.NormalizedJournal{
		Volume: volume,
		Issue:  issue,
		Pages:  pages,
	}
	if name != nil {
		j.Name = *name
	}
	if j.Name == "" {
		return j
	}
	if known, ok := ontology.ResolveJournal(j.Name); ok {
		abbr, issn := known.Abbreviation, known.ISSN
		j.Abbreviation = &abbr
		j.ISSN = &issn
	}
	return j
}

// yearRe matches a 4-digit year token.
var yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

// Reference normalizes one bibliography entry: the year is parsed to an
// integer when a 4-digit token is present, everything else passes
// through, and the confidence is the fixed reference constant (R4.4).
func Reference(raw types.RawReference) types.NormalizedReference {
	r := types.NormalizedReference{
		Title:      raw.Title,
		Authors:    raw.Authors,
		Confidence: referenceConfidence,
	}
	if r.Title == "" {
		r.Title = "Unknown"
	}
	if r.Authors == nil {
		r.Authors = []string{}
	}
	if raw.Journal != "" {
		v := raw.Journal
		r.Journal = &v
	}
	if raw.DOI != "" {
		v := raw.DOI
		r.DOI = &v
	}
	if m := yearRe.FindStringSubmatch(raw.Year); m != nil {
		y := 0
		for _, d := range m[1] {
			y = y*10 + int(d-'0')
		}
		r.Year = &y
	}
	return r
}
