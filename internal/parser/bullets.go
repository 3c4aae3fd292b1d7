package parser

import "strings"

// ExtractBullets returns the marker-stripped content of every bullet line in
// body, in order. Lines without a recognized marker are dropped.
func (g *Grammar) ExtractBullets(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if item, ok := g.stripMarker(line); ok {
			out = append(out, item)
		}
	}
	return out
}

// ExtractActionLines is ExtractBullets for the Actions section. If body has no
// bullets but some line carries a priority tag, every non-empty line counts
// as an action so malformed logs do not lose work items.
func (g *Grammar) ExtractActionLines(body string) []string {
	bullets := g.ExtractBullets(body)
	if len(bullets) > 0 {
		return bullets
	}
	lines := nonEmptyLines(body)
	for _, line := range lines {
		if g.HasPriorityTag(line) {
			return lines
		}
	}
	return nil
}

// ContentLines returns every non-empty line of a narrative body, with bullet
// markers stripped where present.
func (g *Grammar) ContentLines(body string) []string {
	var out []string
	for _, line := range nonEmptyLines(body) {
		if item, ok := g.stripMarker(line); ok {
			out = append(out, item)
			continue
		}
		out = append(out, line)
	}
	return out
}

func (g *Grammar) stripMarker(line string) (string, bool) {
	line = strings.TrimRight(line, " \t\r")
	loc := g.bullet.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	item := strings.TrimSpace(strings.TrimLeft(line[loc[1]:], `\`))
	if item == "" {
		return "", false
	}
	return item, true
}

func nonEmptyLines(body string) []string {
	var out []string
	for _, line := range strings.Split(body, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}
