package parser

import (
	"regexp"
	"strings"
	"time"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// Classify derives priority, owner and cleaned text from one marker-stripped
// action line.
func (g *Grammar) Classify(line string, date time.Time) models.ActionItem {
	line = strings.TrimSpace(line)
	label, cleaned := g.splitPriority(line)
	owner := g.inferOwner(line, cleaned)

	return models.ActionItem{
		RawText:       line,
		CleanedText:   cleaned,
		PriorityLabel: label,
		PriorityRank:  models.PriorityRank(label),
		Owner:         owner,
		OwnerKey:      strings.ToLower(owner),
		SourceDate:    date,
	}
}

// splitPriority returns the label of the first priority tag in line and the
// line with that tag removed.
func (g *Grammar) splitPriority(line string) (string, string) {
	loc := g.priority.FindStringSubmatchIndex(line)
	if loc == nil {
		return models.PriorityOther, line
	}
	label := g.tags[strings.ToLower(line[loc[2]:loc[3]])]
	before := strings.TrimRight(line[:loc[0]], " \t")
	after := strings.TrimLeft(line[loc[1]:], " \t")
	if before == "" || after == "" {
		return label, strings.TrimSpace(before + after)
	}
	return label, before + " " + after
}

// inferOwner is best effort. The bracket patterns need the tag still in place,
// the capitalized-word fallback runs on cleaned text so "[HIGH]" is not taken
// for a name.
func (g *Grammar) inferOwner(line, cleaned string) string {
	candidates := []struct {
		pattern *regexp.Regexp
		input   string
	}{
		{g.ownerBeforeTo, line},
		{g.ownerBeforeDash, line},
		{g.ownerAnnotation, line},
		{g.capitalizedName, cleaned},
	}
	for _, c := range candidates {
		if m := c.pattern.FindStringSubmatch(c.input); m != nil {
			if owner := strings.TrimSpace(m[1]); owner != "" {
				return owner
			}
		}
	}
	return ""
}
