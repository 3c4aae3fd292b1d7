package parser

import (
	"strings"
	"unicode"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// Heading is a recognized canonical section heading.
type Heading struct {
	Section models.Section
	Start   int // offset of the heading line
	End     int // offset just past the heading text
}

// LocateHeadings returns the canonical headings of depth 2-6 in text, in order.
// Headings whose first word is not a canonical section name are skipped and
// do not end the preceding section.
func (g *Grammar) LocateHeadings(text string) []Heading {
	var out []Heading
	for _, m := range g.heading.FindAllStringSubmatchIndex(text, -1) {
		sec, ok := g.CanonicalSection(text[m[2]:m[3]])
		if !ok {
			continue
		}
		out = append(out, Heading{Section: sec, Start: m[0], End: m[1]})
	}
	return out
}

// CanonicalSection maps heading text such as "SUMMARY -" or "Actions:" to its
// canonical section.
func (g *Grammar) CanonicalSection(raw string) (models.Section, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", false
	}
	word := strings.TrimRightFunc(fields[0], unicode.IsPunct)
	sec, ok := g.sections[strings.ToLower(word)]
	return sec, ok
}

// SliceSections returns the trimmed body under each heading. A body runs to
// the next recognized heading or the end of text. When a section name
// repeats, the first body is kept.
func (g *Grammar) SliceSections(text string, headings []Heading) map[models.Section]string {
	out := make(map[models.Section]string, len(headings))
	for i, h := range headings {
		if _, seen := out[h.Section]; seen {
			continue
		}
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].Start
		}
		out[h.Section] = strings.TrimSpace(text[h.End:end])
	}
	return out
}
