package digestservice

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/parser"
	"github.com/anurajdeol90/team-digest/internal/testutil"
	"github.com/anurajdeol90/team-digest/internal/window"
)

func testService(t *testing.T, files map[string]string) *Service {
	t.Helper()
	_, store := testutil.TestLogs(t, files)
	agg := digest.NewAggregator(parser.NewGrammar(), store, "", "logs", testutil.Logger())
	return NewService(agg, store, testutil.Logger())
}

func week(t *testing.T) window.Range {
	t.Helper()
	r, err := window.New(time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC), time.Date(2025, 10, 19, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

var logs = map[string]string{
	"notes-2025-10-13.md": "---\nauthor: ops\n---\n## Summary\nShipped.\n## Actions\n- [high] Alex to ship X\n- [p1] Priya - review Y [low]\n",
	"notes-2025-10-15.md": "## Actions\n[high] Sam to fix Z\n",
}

func TestBuild_Markdown(t *testing.T) {
	svc := testService(t, logs)
	d, err := svc.Build(context.Background(), week(t), Options{Mode: digest.ModeGroupByPriority})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.ContentType != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", d.ContentType)
	}
	if string(d.Body) != d.Markdown || !strings.Contains(d.Markdown, "### High priority") {
		t.Errorf("body:\n%s", d.Body)
	}
}

func TestBuild_JSON(t *testing.T) {
	svc := testService(t, logs)
	d, err := svc.Build(context.Background(), week(t), Options{Format: FormatJSON, EmitKPIs: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var got struct {
		Digest string `json:"digest"`
		Result struct {
			Actions []json.RawMessage `json:"actions"`
			KPIs    struct {
				TotalActions int `json:"total_actions"`
			} `json:"kpis"`
		} `json:"result"`
	}
	if err := json.Unmarshal(d.Body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Digest != d.Markdown {
		t.Error("digest field differs from markdown")
	}
	if len(got.Result.Actions) != 3 || got.Result.KPIs.TotalActions != 3 {
		t.Errorf("actions = %d, kpis total = %d", len(got.Result.Actions), got.Result.KPIs.TotalActions)
	}
}

func TestBuild_HTML(t *testing.T) {
	svc := testService(t, logs)
	d, err := svc.Build(context.Background(), week(t), Options{Format: FormatHTML, Title: "Week 42"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(string(d.Body), "<h1>Week 42</h1>") {
		t.Errorf("html:\n%s", d.Body)
	}
}

func TestBuild_UnknownFormat(t *testing.T) {
	svc := testService(t, logs)
	if _, err := svc.Build(context.Background(), week(t), Options{Format: "pdf"}); !errors.Is(err, apperr.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestBuild_NoFiles(t *testing.T) {
	svc := testService(t, nil)

	d, err := svc.Build(context.Background(), week(t), Options{AllowMissing: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !strings.Contains(d.Markdown, "_No logs for") {
		t.Errorf("markdown:\n%s", d.Markdown)
	}

	if _, err := svc.Build(context.Background(), week(t), Options{}); !errors.Is(err, apperr.ErrNoFilesInRange) {
		t.Errorf("err = %v, want ErrNoFilesInRange", err)
	}
}

func TestDiagnose(t *testing.T) {
	svc := testService(t, logs)
	diags, err := svc.Diagnose(context.Background(), week(t))
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("len = %d, want 2", len(diags))
	}

	first, second := diags[0], diags[1]
	if !first.Frontmatter || first.Bullets != 2 || first.Actions != 2 || first.FallbackUsed {
		t.Errorf("first = %+v", first)
	}
	if len(first.Sections) != 2 || first.Sections[0] != "Summary" || first.Sections[1] != "Actions" {
		t.Errorf("sections = %v", first.Sections)
	}
	if first.TagCounts["high"] != 1 || first.TagCounts["p1"] != 1 || first.TagCounts["low"] != 1 {
		t.Errorf("tags = %v", first.TagCounts)
	}
	if first.Checksum == "" {
		t.Error("checksum missing")
	}
	if !second.FallbackUsed || second.Actions != 1 || second.Bullets != 0 {
		t.Errorf("second = %+v", second)
	}

	report := FormatDiagnosis(week(t), diags)
	for _, want := range []string{
		"Range: 2025-10-13..2025-10-19 | Files matched: 2",
		"2025-10-13  notes-2025-10-13.md",
		"sections: Summary, Actions",
		"fallback: true",
		"tags: high=1 medium=0 low=1 p0=0 p1=1 p2=0",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "digest.md")
	if err := WriteFile(path, []byte("# Team Digest\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "# Team Digest\n" {
		t.Errorf("content = %q", got)
	}
}
