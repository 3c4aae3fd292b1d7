package digest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// RenderOptions controls presentation only; the result is never changed.
type RenderOptions struct {
	// Title overrides the default "Team Digest (start - end)" heading.
	Title string
}

// Title returns the default digest title for a window.
func Title(res *models.AggregateResult) string {
	start, end := res.Start.Format(DateLayout), res.End.Format(DateLayout)
	if start == end {
		return fmt.Sprintf("Team Digest (%s)", start)
	}
	return fmt.Sprintf("Team Digest (%s - %s)", start, end)
}

// RenderMarkdown serializes res. Sections without content are omitted and the
// output ends with exactly one newline.
func RenderMarkdown(res *models.AggregateResult, opts RenderOptions) string {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = Title(res)
	}
	start, end := res.Start.Format(DateLayout), res.End.Format(DateLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_Range: %s → %s | Source: %s | Days matched: %d | Actions: %d_\n\n",
		start, end, res.Source, len(res.Days), len(res.Actions))

	if len(res.Days) == 0 {
		if res.KPIs != nil {
			writeKPIs(&b, res.KPIs)
		}
		window := start
		if start != end {
			window = start + " → " + end
		}
		fmt.Fprintf(&b, "_No logs for %s in %s_\n", window, res.Source)
		return finish(&b)
	}

	if res.KPIs != nil {
		writeKPIs(&b, res.KPIs)
	}

	for _, sec := range models.SectionOrder {
		if sec == models.SectionActions {
			writeActions(&b, res)
			continue
		}
		blocks := res.Blocks[sec]
		if len(blocks) == 0 {
			continue
		}
		// Each day's block is kept as written so sub-headings, fences and
		// nested lists survive.
		fmt.Fprintf(&b, "## %s\n", sec)
		for _, block := range blocks {
			b.WriteString(block)
			b.WriteString("\n\n")
		}
	}
	return finish(&b)
}

func writeKPIs(b *strings.Builder, k *models.KPIs) {
	b.WriteString("## Executive KPIs\n")
	fmt.Fprintf(b, "- **Actions:** %d (High: %d, Medium: %d, Low: %d, Other: %d)\n",
		k.TotalActions,
		k.ByPriority[models.PriorityHigh],
		k.ByPriority[models.PriorityMedium],
		k.ByPriority[models.PriorityLow],
		k.ByPriority[models.PriorityOther],
	)
	fmt.Fprintf(b, "- **Decisions:** %d   ·   **Risks:** %d\n", k.Decisions, k.Risks)
	fmt.Fprintf(b, "- **Owners:** %d   ·   **Days with notes:** %d\n\n", k.Owners, k.DaysWithNotes)

	if len(k.OwnerBreakdown) == 0 {
		return
	}
	b.WriteString("#### Owner breakdown (top)\n")
	b.WriteString("| Owner | High | Medium | Low | Total |\n")
	b.WriteString("|:------|----:|------:|---:|-----:|\n")
	for _, r := range k.OwnerBreakdown {
		fmt.Fprintf(b, "| %s | %d | %d | %d | **%d** |\n", escapeCell(r.Owner), r.High, r.Medium, r.Low, r.Total)
	}
	b.WriteString("\n")
}

func writeActions(b *strings.Builder, res *models.AggregateResult) {
	if len(res.Groups) == 0 {
		return
	}
	mode := Mode(res.Mode)
	b.WriteString("## Actions\n")
	for _, g := range res.Groups {
		if g.Title != "" {
			fmt.Fprintf(b, "### %s\n", g.Title)
		}
		for _, it := range g.Items {
			b.WriteString(actionLine(it, mode))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func actionLine(it models.ActionItem, mode Mode) string {
	if !mode.Tagged() {
		return strings.TrimRight("- "+it.CleanedText, " ")
	}
	return strings.TrimRight(fmt.Sprintf("- [%s] %s", it.PriorityLabel, it.CleanedText), " ")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func finish(b *strings.Builder) string {
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// RenderHTML converts a rendered Markdown digest to HTML with GFM tables.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("digest: render html: %w", err)
	}
	return buf.String(), nil
}
