// Package parser turns one hand-written daily log into a models.DayDocument.
//
// Every pattern the pipeline relies on lives in Grammar, which is built once
// and shared read-only by the normalizer, heading locator, section slicer,
// bullet extractor and action classifier.
package parser

import (
	"regexp"
	"strings"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// mojibakePrefix is the common lead of every sequence in the repair table.
const mojibakePrefix = "\u00e2\u20ac"

// mojibakeFixes maps UTF-8 punctuation that was decoded as Windows-1252 back
// to the intended characters.
var mojibakeFixes = []string{
	"\u00e2\u20ac\u201c", "\u2013", // en dash
	"\u00e2\u20ac\u201d", "\u2014", // em dash
	"\u00e2\u20ac\u02dc", "\u2018",
	"\u00e2\u20ac\u2122", "\u2019",
	"\u00e2\u20ac\u0153", "\u201c",
	"\u00e2\u20ac\u009d", "\u201d",
	"\u00e2\u20ac\u00a2", "\u2022", // bullet
}

// bulletGlyphs are the unicode bullets and dashes accepted as list markers.
const bulletGlyphs = `\x{2022}\x{2023}\x{2043}\x{2219}\x{25AA}\x{25AB}\x{25CF}\x{25E6}\x{2013}\x{2014}`

// Grammar is the immutable definition of the log format.
type Grammar struct {
	sections map[string]models.Section
	tags     map[string]string

	mojibake      *strings.Replacer
	lineBreaks    *regexp.Regexp
	escapedBullet *regexp.Regexp

	heading  *regexp.Regexp
	bullet   *regexp.Regexp
	priority *regexp.Regexp

	ownerBeforeTo   *regexp.Regexp
	ownerBeforeDash *regexp.Regexp
	ownerAnnotation *regexp.Regexp
	capitalizedName *regexp.Regexp
}

// NewGrammar compiles the canonical grammar.
func NewGrammar() *Grammar {
	sections := make(map[string]models.Section, len(models.SectionOrder))
	for _, s := range models.SectionOrder {
		sections[strings.ToLower(string(s))] = s
	}

	return &Grammar{
		sections: sections,
		tags: map[string]string{
			"high":   models.PriorityHigh,
			"medium": models.PriorityMedium,
			"low":    models.PriorityLow,
			"p0":     models.PriorityHigh,
			"p1":     models.PriorityMedium,
			"p2":     models.PriorityLow,
		},

		mojibake:      strings.NewReplacer(mojibakeFixes...),
		lineBreaks:    regexp.MustCompile(`\r+\n`),
		escapedBullet: regexp.MustCompile(`(?m)^([ \t]*)\\+([-*+])`),

		heading: regexp.MustCompile(`(?m)^[ \t]*#{2,6}[ \t]*([A-Za-z][^\n]*)$`),
		bullet: regexp.MustCompile(`^[\s\x{00A0}]*\\*(?:[-*+]|\d+[.)]|\[[ xX\-]\]|[` + bulletGlyphs + `])` +
			`[\s\x{00A0}]+(?:\[[ xX\-]\][\s\x{00A0}]+)?`),
		priority: regexp.MustCompile(`(?i)\[(high|medium|low|p0|p1|p2)\]`),

		ownerBeforeTo:   regexp.MustCompile(`\]\s*([A-Z][\w.\-]*(?:\s+[A-Z][\w.\-]*)?)\s+to\b`),
		ownerBeforeDash: regexp.MustCompile(`\]\s*([A-Z][\w.]*(?:\s+[A-Z][\w.]*)?)\s+[\x{2014}\x{2013}-]\s+`),
		ownerAnnotation: regexp.MustCompile(`(?i)\(owner:\s*([^)]+?)\s*\)`),
		capitalizedName: regexp.MustCompile(`\b([A-Z][a-zA-Z.\-]+(?:\s+[A-Z][a-zA-Z.\-]+)?)\b`),
	}
}

// HasPriorityTag reports whether line carries a bracketed priority tag.
func (g *Grammar) HasPriorityTag(line string) bool {
	return g.priority.MatchString(line)
}

// PriorityTags returns the lower-cased tags found in line, in order.
func (g *Grammar) PriorityTags(line string) []string {
	matches := g.priority.FindAllStringSubmatch(line, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.ToLower(m[1]))
	}
	return out
}
