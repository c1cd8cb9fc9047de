// Package fields finds blank-to-fill markers in extracted, page-bannered
// document text for contract and form workflows.
package fields

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Type is the closed set of suggested field types.
type Type string

const (
	TypeCompany   Type = "company"
	TypeAddress   Type = "address"
	TypeDate      Type = "date"
	TypeName      Type = "name"
	TypeTitle     Type = "title"
	TypeSignature Type = "signature"
	TypeGeneric   Type = "generic"
)

// Field is one detected fill-in marker. Page and Line are 0-based; IDs
// increment strictly across the whole document, never resetting per page.
type Field struct {
	ID    int    `json:"id"`
	Type  Type   `json:"type"`
	Label string `json:"label"`
	Page  int    `json:"page"`
	Line  int    `json:"line"`
	Match string `json:"match"`
}

// pattern pairs a marker regex with the field type it suggests. The table is
// ordered most-specific-first; within a line the first pattern to claim a
// span wins, later patterns may still match distinct substrings.
type pattern struct {
	re    *regexp.Regexp
	typ   Type
	label string // fixed label when the regex has no capture group
}

var patternTable = []pattern{
	{re: regexp.MustCompile(`(?i)\[(Company(?: Name)?)\]`), typ: TypeCompany},
	{re: regexp.MustCompile(`(?i)\[(Address)\]`), typ: TypeAddress},
	{re: regexp.MustCompile(`(?i)\[(Date)\]`), typ: TypeDate},
	{re: regexp.MustCompile(`(?i)\[(Name)\]`), typ: TypeName},
	{re: regexp.MustCompile(`(?i)\[(Title)\]`), typ: TypeTitle},
	{re: regexp.MustCompile(`(?i)\[(Signature)\]`), typ: TypeSignature},
	{re: regexp.MustCompile(`(?i)\[Insert ([^\]]+)\]`), typ: TypeGeneric},
	{re: regexp.MustCompile(`\[_+\]`), typ: TypeGeneric, label: "Blank"},
	{re: regexp.MustCompile(`\[\s*\]`), typ: TypeGeneric, label: "Blank"},
	{re: regexp.MustCompile(`_{5,}`), typ: TypeGeneric, label: "Blank"},
}

// Matches both extraction banners "--- Page 3 (612x792) ---" and the
// dimension-less OCR form "--- Page 3 ---".
var bannerRe = regexp.MustCompile(`^--- Page (\d+)(?: \([^)]*\))? ---$`)

// Detect scans banner-separated text for fill-in markers. Pure function:
// output order is document order, page then line then table order.
func Detect(text string) []Field {
	var out []Field
	page, line := 0, 0
	nextID := 1

	for _, raw := range strings.Split(text, "\n") {
		if m := bannerRe.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				page = n - 1
			}
			line = 0
			continue
		}

		for _, f := range detectLine(raw) {
			f.ID = nextID
			f.Page = page
			f.Line = line
			nextID++
			out = append(out, f)
		}
		line++
	}
	return out
}

// detectLine applies the pattern table to one line. Earlier patterns claim
// their character spans; later patterns only register on unclaimed text.
// Hits are returned in table order, left to right within a single pattern.
func detectLine(line string) []Field {
	type hit struct {
		rank, start, end int
		field            Field
	}
	var hits []hit

	overlaps := func(start, end int) bool {
		for _, h := range hits {
			if start < h.end && end > h.start {
				return true
			}
		}
		return false
	}

	for rank, p := range patternTable {
		for _, loc := range p.re.FindAllStringSubmatchIndex(line, -1) {
			if overlaps(loc[0], loc[1]) {
				continue
			}
			label := p.label
			if len(loc) >= 4 && loc[2] >= 0 {
				label = line[loc[2]:loc[3]]
			}
			hits = append(hits, hit{
				rank:  rank,
				start: loc[0],
				end:   loc[1],
				field: Field{Type: p.typ, Label: label, Match: line[loc[0]:loc[1]]},
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].rank != hits[j].rank {
			return hits[i].rank < hits[j].rank
		}
		return hits[i].start < hits[j].start
	})

	out := make([]Field, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.field)
	}
	return out
}
