// Package digestservice coordinates aggregation, rendering and output for
// the CLI, HTTP and MCP surfaces.
package digestservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/checksum"
	"github.com/anurajdeol90/team-digest/internal/digest"
	"github.com/anurajdeol90/team-digest/internal/models"
	"github.com/anurajdeol90/team-digest/internal/storage"
	"github.com/anurajdeol90/team-digest/internal/window"
)

// Output formats.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatHTML     = "html"
)

// Options are the per-request aggregation and rendering policies.
type Options struct {
	Mode           digest.Mode
	EmitKPIs       bool
	OwnerBreakdown bool
	AllowMissing   bool
	Title          string
	Format         string
}

// Digest is one rendered digest.
type Digest struct {
	Markdown    string                  `json:"digest"`
	Result      *models.AggregateResult `json:"result"`
	Body        []byte                  `json:"-"`
	ContentType string                  `json:"-"`
}

// Service builds digests from one logs directory.
type Service struct {
	agg   *digest.Aggregator
	store storage.Provider
	log   *slog.Logger
}

// NewService creates a new digest service.
func NewService(agg *digest.Aggregator, store storage.Provider, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{agg: agg, store: store, log: log}
}

// Build aggregates r and renders it in opts.Format. An empty window is an
// explanatory digest unless opts.AllowMissing is false, in which case the
// error wraps apperr.ErrNoFilesInRange.
func (s *Service) Build(ctx context.Context, r window.Range, opts Options) (*Digest, error) {
	res, err := s.agg.Aggregate(ctx, digest.Request{
		Start:          r.Start,
		End:            r.End,
		Mode:           opts.Mode,
		EmitKPIs:       opts.EmitKPIs,
		OwnerBreakdown: opts.OwnerBreakdown,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Days) == 0 {
		if !opts.AllowMissing {
			return nil, fmt.Errorf("digestservice: %s in %s: %w", r, res.Source, apperr.ErrNoFilesInRange)
		}
		s.log.Info("digest: no logs in range", slog.String("range", r.String()), slog.String("source", res.Source))
	}

	d := &Digest{
		Result:   res,
		Markdown: digest.RenderMarkdown(res, digest.RenderOptions{Title: opts.Title}),
	}
	if err := d.encode(opts.Format); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Digest) encode(format string) error {
	switch strings.ToLower(format) {
	case "", FormatMarkdown:
		d.Body, d.ContentType = []byte(d.Markdown), "text/markdown; charset=utf-8"
	case FormatJSON:
		body, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("digestservice: encode json: %w", err)
		}
		d.Body, d.ContentType = append(body, '\n'), "application/json"
	case FormatHTML:
		html, err := digest.RenderHTML(d.Markdown)
		if err != nil {
			return err
		}
		d.Body, d.ContentType = []byte(html), "text/html; charset=utf-8"
	default:
		return fmt.Errorf("digestservice: unknown format %q: %w", format, apperr.ErrInvalidConfig)
	}
	return nil
}

// Diagnose scans every log in r without aggregating. Read failures are
// reported per file.
func (s *Service) Diagnose(ctx context.Context, r window.Range) ([]models.FileDiagnosis, error) {
	logs, err := s.agg.Match(r.Start, r.End)
	if err != nil {
		return nil, err
	}
	g := s.agg.Grammar()

	out := make([]models.FileDiagnosis, 0, len(logs))
	for _, l := range logs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		diag := models.FileDiagnosis{
			Date:      l.Date,
			Path:      l.Path,
			Sections:  []models.Section{},
			TagCounts: map[string]int{},
		}
		data, err := s.store.Read(l.Path)
		if err != nil {
			diag.Error = fmt.Errorf("%w: %v", apperr.ErrUnreadableFile, err).Error()
			out = append(out, diag)
			continue
		}
		diag.Checksum = checksum.Sum(data)

		parsed := g.Parse(data)
		diag.Frontmatter = parsed.Frontmatter != nil
		for _, sec := range models.SectionOrder {
			body, ok := parsed.Sections[sec]
			if !ok {
				continue
			}
			diag.Sections = append(diag.Sections, sec)
			bullets := g.ExtractBullets(body)
			diag.Bullets += len(bullets)
			if sec == models.SectionActions {
				actions := g.ExtractActionLines(body)
				diag.Actions = len(actions)
				diag.FallbackUsed = len(bullets) == 0 && len(actions) > 0
			}
		}
		for _, line := range strings.Split(parsed.Body, "\n") {
			for _, tag := range g.PriorityTags(line) {
				diag.TagCounts[tag]++
			}
		}
		out = append(out, diag)
	}
	return out, nil
}

// FormatDiagnosis renders a plain-text report, one block per file.
func FormatDiagnosis(r window.Range, diags []models.FileDiagnosis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Range: %s | Files matched: %d\n", r, len(diags))
	for _, d := range diags {
		fmt.Fprintf(&b, "\n%s  %s\n", d.Date.Format(digest.DateLayout), d.Path)
		if d.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", d.Error)
			continue
		}
		names := make([]string, len(d.Sections))
		for i, s := range d.Sections {
			names[i] = string(s)
		}
		if len(names) == 0 {
			names = []string{"(none)"}
		}
		fmt.Fprintf(&b, "  sections: %s\n", strings.Join(names, ", "))
		fmt.Fprintf(&b, "  bullets: %d  actions: %d  fallback: %t  frontmatter: %t\n",
			d.Bullets, d.Actions, d.FallbackUsed, d.Frontmatter)
		fmt.Fprintf(&b, "  tags: high=%d medium=%d low=%d p0=%d p1=%d p2=%d\n",
			d.TagCounts["high"], d.TagCounts["medium"], d.TagCounts["low"],
			d.TagCounts["p0"], d.TagCounts["p1"], d.TagCounts["p2"])
	}
	return b.String()
}

// WriteFile atomically writes body to path, creating parent directories.
func WriteFile(path string, body []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("digestservice: resolve %s: %w", path, err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("digestservice: mkdir: %w", err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return err
	}
	return fs.Write(filepath.Base(abs), body)
}
