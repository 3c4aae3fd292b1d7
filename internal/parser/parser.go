package parser

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// Result holds the sliced, normalized text of one log file.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Headings    []Heading
	Sections    map[models.Section]string
}

// Parse decodes, normalizes and slices raw log bytes. It never fails: text it
// cannot structure simply yields no sections.
func (g *Grammar) Parse(data []byte) *Result {
	text := g.Normalize(DecodeText(data))
	fm, body := splitFrontmatter(text)

	headings := g.LocateHeadings(body)
	sections := g.SliceSections(body, headings)
	for name, s := range sections {
		sections[name] = strings.TrimSpace(g.Normalize(s))
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Headings:    headings,
		Sections:    sections,
	}
}

// ParseDay builds the DayDocument for one log file.
func (g *Grammar) ParseDay(path string, date time.Time, data []byte) models.DayDocument {
	res := g.Parse(data)
	doc := models.DayDocument{
		Date:       date,
		SourcePath: path,
		Sections:   make(map[models.Section][]string),
		Blocks:     make(map[models.Section]string),
	}

	for _, sec := range models.SectionOrder {
		body, ok := res.Sections[sec]
		if !ok || body == "" {
			continue
		}
		if sec == models.SectionActions {
			for _, line := range g.ExtractActionLines(body) {
				item := g.Classify(line, date)
				// A bare tag carries no work item.
				if item.CleanedText == "" {
					continue
				}
				doc.Sections[sec] = append(doc.Sections[sec], line)
				doc.Actions = append(doc.Actions, item)
			}
			continue
		}
		if lines := g.ContentLines(body); len(lines) > 0 {
			doc.Sections[sec] = lines
			doc.Blocks[sec] = body
		}
	}
	return doc
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Without valid frontmatter the whole text is body.
func splitFrontmatter(text string) (map[string]interface{}, string) {
	const delim = "---"
	trimmed := strings.TrimLeft(text, "\n")

	if !strings.HasPrefix(trimmed, delim+"\n") {
		return nil, text
	}

	rest := trimmed[len(delim):]
	idx := strings.Index(rest, "\n"+delim)
	if idx < 0 {
		return nil, text
	}

	var fm map[string]interface{}
	if err := yaml.Unmarshal([]byte(rest[:idx]), &fm); err != nil || fm == nil {
		return nil, text
	}

	// Body starts after the closing delimiter line.
	body := rest[idx+1+len(delim):]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && strings.TrimSpace(body[:nl]) == "" {
		body = body[nl+1:]
	}
	return fm, body
}
