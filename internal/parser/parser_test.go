package parser

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/anurajdeol90/team-digest/internal/models"
)

var grammar = NewGrammar()

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSliceSections_HeadingVariants(t *testing.T) {
	const trailing = "\n- first item\n- second item\n"
	want := grammar.SliceSections("## Summary"+trailing, grammar.LocateHeadings("## Summary"+trailing))[models.SectionSummary]
	if want != "- first item\n- second item" {
		t.Fatalf("baseline body = %q", want)
	}

	for _, heading := range []string{
		"### Summary:",
		"## SUMMARY -",
		"## Summary — notes",
		"###### summary",
		"  ## Summary",
		"## Summary ##",
	} {
		text := heading + trailing
		got := grammar.SliceSections(text, grammar.LocateHeadings(text))
		if got[models.SectionSummary] != want {
			t.Errorf("%q: body = %q, want %q", heading, got[models.SectionSummary], want)
		}
	}
}

func TestLocateHeadings_IgnoresOtherHeadings(t *testing.T) {
	text := "# Daily log\n## Summary\nok\n## Misc\nstill summary\n####### Notes\n## Notes\nn\n"
	hs := grammar.LocateHeadings(text)
	if len(hs) != 2 {
		t.Fatalf("len(headings) = %d, want 2: %+v", len(hs), hs)
	}
	if hs[0].Section != models.SectionSummary || hs[1].Section != models.SectionNotes {
		t.Errorf("headings = %+v", hs)
	}
	secs := grammar.SliceSections(text, hs)
	if !strings.Contains(secs[models.SectionSummary], "still summary") {
		t.Errorf("non-canonical heading should not end Summary: %q", secs[models.SectionSummary])
	}
}

func TestLocateHeadings_NoHeadings(t *testing.T) {
	if hs := grammar.LocateHeadings("just text\n- bullet\n"); len(hs) != 0 {
		t.Errorf("expected no headings, got %+v", hs)
	}
}

func TestSliceSections_FirstWins(t *testing.T) {
	text := "## Risks\n- first\n## Notes\n- n\n## Risks\n- second\n"
	secs := grammar.SliceSections(text, grammar.LocateHeadings(text))
	if secs[models.SectionRisks] != "- first" {
		t.Errorf("risks = %q, want first occurrence", secs[models.SectionRisks])
	}
	if secs[models.SectionNotes] != "- n" {
		t.Errorf("notes = %q; duplicate heading must still end Notes", secs[models.SectionNotes])
	}
}

func TestExtractBullets_MarkerStyles(t *testing.T) {
	const content = "[high] Alex to ship X"
	for _, marker := range []string{
		"-", "*", "+", "1.", "12)", "[ ]", "[x]", "[X]", "[-]",
		"•", "‣", "⁃", "∙", "▪", "▫", "●", "◦", "–", "—",
		`\-`, `\*`, "- [ ]", "1. [x]",
	} {
		for _, indent := range []string{"", "  ", " "} {
			got := grammar.ExtractBullets(indent + marker + " " + content)
			if len(got) != 1 || got[0] != content {
				t.Errorf("marker %q indent %q: got %q", marker, indent, got)
			}
		}
	}
}

func TestExtractBullets_RequiresWhitespace(t *testing.T) {
	for _, line := range []string{"-no space", "**bold** text", "1.5 million", "---", "plain text", "-"} {
		if got := grammar.ExtractBullets(line); len(got) != 0 {
			t.Errorf("%q should not be a bullet, got %q", line, got)
		}
	}
}

func TestExtractActionLines_Fallback(t *testing.T) {
	body := "[high] Alex to ship X\nPriya review Y [low]\n\nfollow up later"
	got := grammar.ExtractActionLines(body)
	want := []string{"[high] Alex to ship X", "Priya review Y [low]", "follow up later"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fallback = %q, want %q", got, want)
	}
}

func TestExtractActionLines_NoTagsNoFallback(t *testing.T) {
	if got := grammar.ExtractActionLines("ship things\nreview things"); len(got) != 0 {
		t.Errorf("untagged unmarked lines should not become actions: %q", got)
	}
}

func TestExtractActionLines_BulletsWin(t *testing.T) {
	got := grammar.ExtractActionLines("- [low] a\n[high] b")
	if !reflect.DeepEqual(got, []string{"[low] a"}) {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_Repairs(t *testing.T) {
	in := "a\r\nb \u00e2\u20ac\u201c c \u00e2\u20ac\u201d d \u00e2\u20ac\u02dcq\u00e2\u20ac\u2122 " +
		"\u00e2\u20ac\u0153x\u00e2\u20ac\u009d \u00e2\u20ac\u00a2 e\r\n  \\- escaped\n\\\\* double"
	want := "a\nb \u2013 c \u2014 d \u2018q\u2019 \u201cx\u201d \u2022 e\n  - escaped\n* double"
	if got := grammar.Normalize(in); got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range []string{
		"",
		"plain",
		"\u00e2\u20ac\u00e2\u20ac\u0153 nested",
		"\r\r\n\r\n",
		"\\\\\\- many",
		"\u00a0\\- nbsp then escaped",
		"x\\- not at start",
		"\u00e2\u20ac",
		"\u00e2\u20ac\u00e2\u20ac\u00e2\u20ac\u0153\u0153",
		"## Notes\r\n- \u00e2\u20ac\u201c dash\r\n",
	} {
		once := grammar.Normalize(in)
		if twice := grammar.Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: once %q, twice %q", in, once, twice)
		}
	}
}

func TestDecodeText_Windows1252(t *testing.T) {
	// 0x96 is an en dash in Windows-1252.
	got := DecodeText([]byte("a \x96 b"))
	if got != "a \u2013 b" {
		t.Errorf("DecodeText = %q", got)
	}
	if got := DecodeText([]byte("\xEF\xBB\xBF## Notes")); got != "## Notes" {
		t.Errorf("BOM not stripped: %q", got)
	}
}

func TestClassify_Priority(t *testing.T) {
	d := day(t, "2025-10-13")
	cases := []struct {
		line  string
		label string
		rank  int
	}{
		{"[high] a", models.PriorityHigh, 0},
		{"[P0] a", models.PriorityHigh, 0},
		{"[Medium] a", models.PriorityMedium, 1},
		{"[p1] a", models.PriorityMedium, 1},
		{"[low] a", models.PriorityLow, 2},
		{"a [p2]", models.PriorityLow, 2},
		{"a", models.PriorityOther, 3},
		{"[urgent] a", models.PriorityOther, 3},
		{"[low] a [high]", models.PriorityLow, 2},
	}
	for _, c := range cases {
		got := grammar.Classify(c.line, d)
		if got.PriorityLabel != c.label || got.PriorityRank != c.rank {
			t.Errorf("%q: got %s/%d, want %s/%d", c.line, got.PriorityLabel, got.PriorityRank, c.label, c.rank)
		}
	}
}

func TestClassify_PriorityRoundTrip(t *testing.T) {
	d := day(t, "2025-10-13")
	p0 := grammar.Classify("[p0] Alex to ship X", d)
	high := grammar.Classify("[high] Alex to ship X", d)
	if p0.PriorityLabel != high.PriorityLabel || p0.PriorityRank != high.PriorityRank {
		t.Fatalf("[p0] = %s/%d, [high] = %s/%d", p0.PriorityLabel, p0.PriorityRank, high.PriorityLabel, high.PriorityRank)
	}
	if p0.CleanedText != "Alex to ship X" {
		t.Errorf("cleaned = %q", p0.CleanedText)
	}
	again := grammar.Classify("["+p0.PriorityLabel+"] "+p0.CleanedText, d)
	if again.PriorityLabel != p0.PriorityLabel || again.CleanedText != p0.CleanedText {
		t.Errorf("re-tagged = %+v", again)
	}
}

func TestClassify_CleanedText(t *testing.T) {
	d := day(t, "2025-10-13")
	cases := map[string]string{
		"[high] Alex to ship X":    "Alex to ship X",
		"Alex to ship X [HIGH]":    "Alex to ship X",
		"Alex [low] to ship X":     "Alex to ship X",
		"No tag Here":              "No tag Here",
		"[p2]   spaced  out  text": "spaced  out  text",
	}
	for in, want := range cases {
		if got := grammar.Classify(in, d).CleanedText; got != want {
			t.Errorf("%q: cleaned = %q, want %q", in, got, want)
		}
	}
}

func TestClassify_Owner(t *testing.T) {
	d := day(t, "2025-10-13")
	cases := []struct {
		line, owner string
	}{
		{"[high] Alex to ship X", "Alex"},
		{"[medium] Anuraj Deol to retest the build", "Anuraj Deol"},
		{"[low] Priya - review Y", "Priya"},
		{"[p1] Priya \u2014 review Y", "Priya"},
		{"[low] review the Q3 plan (owner: Sam Lee)", "Sam Lee"},
		{"[HIGH] fix the flaky test for Jordan", "Jordan"},
		{"ship it by friday", ""},
		{"[x] nothing capitalized here", ""},
	}
	for _, c := range cases {
		got := grammar.Classify(c.line, d)
		if got.Owner != c.owner {
			t.Errorf("%q: owner = %q, want %q", c.line, got.Owner, c.owner)
		}
		if got.OwnerKey != strings.ToLower(c.owner) {
			t.Errorf("%q: owner key = %q", c.line, got.OwnerKey)
		}
	}
}

func TestParseDay_Sections(t *testing.T) {
	d := day(t, "2025-10-13")
	data := []byte("---\nauthor: team\n---\n# Log 2025-10-13\n\n## Summary\nAll quiet.\n\n## Actions\n- [high] Alex to ship X\n- [low] Priya - review Y\n\n## Notes\n- \u00e2\u20ac\u201c note\n")
	doc := grammar.ParseDay("notes-2025-10-13.md", d, data)

	if !reflect.DeepEqual(doc.Sections[models.SectionSummary], []string{"All quiet."}) {
		t.Errorf("summary = %q", doc.Sections[models.SectionSummary])
	}
	if !reflect.DeepEqual(doc.Sections[models.SectionNotes], []string{"\u2013 note"}) {
		t.Errorf("notes = %q", doc.Sections[models.SectionNotes])
	}
	if got := doc.Blocks[models.SectionNotes]; got != "- \u2013 note" {
		t.Errorf("notes block = %q", got)
	}
	if len(doc.Actions) != 2 {
		t.Fatalf("len(actions) = %d, want 2", len(doc.Actions))
	}
	if doc.Actions[0].OwnerKey != "alex" || doc.Actions[1].OwnerKey != "priya" {
		t.Errorf("owners = %q, %q", doc.Actions[0].OwnerKey, doc.Actions[1].OwnerKey)
	}
	if !doc.Actions[0].SourceDate.Equal(d) {
		t.Errorf("source date = %v", doc.Actions[0].SourceDate)
	}
	if _, ok := doc.Sections[models.SectionRisks]; ok {
		t.Error("missing section should be absent")
	}
}

func TestParseDay_BareTagIsNotAnAction(t *testing.T) {
	doc := grammar.ParseDay("notes-2025-10-13.md", day(t, "2025-10-13"),
		[]byte("## Actions\n- [high]\n- [low] Priya - review Y\n"))

	if len(doc.Actions) != 1 || doc.Actions[0].CleanedText != "Priya - review Y" {
		t.Fatalf("actions = %+v", doc.Actions)
	}
	if got := doc.Sections[models.SectionActions]; len(got) != 1 {
		t.Errorf("action lines = %q", got)
	}
}

func TestParseDay_NarrativeBlockKeepsStructure(t *testing.T) {
	body := "Intro para\n### Retro\n- went well\n  - nested detail\n\n```\ncode\n```"
	doc := grammar.ParseDay("notes-2025-10-13.md", day(t, "2025-10-13"), []byte("## Notes\n"+body+"\n"))

	if got := doc.Blocks[models.SectionNotes]; got != body {
		t.Errorf("block = %q, want %q", got, body)
	}
}

func TestParse_FrontmatterStripped(t *testing.T) {
	res := grammar.Parse([]byte("---\ntitle: Day\n---\n## Summary\nok\n"))
	if res.Frontmatter["title"] != "Day" {
		t.Errorf("frontmatter = %v", res.Frontmatter)
	}
	if res.Sections[models.SectionSummary] != "ok" {
		t.Errorf("summary = %q", res.Sections[models.SectionSummary])
	}
}

func TestParse_InvalidFrontmatterKeepsText(t *testing.T) {
	res := grammar.Parse([]byte("---\nkey: [unclosed\n---\n## Notes\nn\n"))
	if res.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	if res.Sections[models.SectionNotes] != "n" {
		t.Errorf("notes = %q", res.Sections[models.SectionNotes])
	}
}

func TestParse_CRLFAndEscapedBullets(t *testing.T) {
	d := day(t, "2025-10-13")
	doc := grammar.ParseDay("x.md", d, []byte("## Actions\r\n\\- [p0] Sam to fix Z\r\n"))
	if len(doc.Actions) != 1 {
		t.Fatalf("len(actions) = %d", len(doc.Actions))
	}
	a := doc.Actions[0]
	if a.CleanedText != "Sam to fix Z" || a.PriorityLabel != models.PriorityHigh || a.OwnerKey != "sam" {
		t.Errorf("action = %+v", a)
	}
}
