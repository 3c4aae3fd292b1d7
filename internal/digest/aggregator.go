// Package digest merges a window of daily logs into one AggregateResult and
// renders it.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"sort"
	"time"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/models"
	"github.com/anurajdeol90/team-digest/internal/parser"
	"github.com/anurajdeol90/team-digest/internal/storage"
)

// DateLayout is the date format used in log filenames and rendered ranges.
const DateLayout = "2006-01-02"

var logName = regexp.MustCompile(`^notes-(\d{4}-\d{2}-\d{2})\.md$`)

// Request selects the window and rendering policies for one aggregation.
type Request struct {
	Start          time.Time
	End            time.Time
	Mode           Mode
	EmitKPIs       bool
	OwnerBreakdown bool
}

// DatedLog is a log file whose name carries a valid date.
type DatedLog struct {
	Date time.Time
	Path string
}

// Aggregator reads logs from one directory of a storage.Provider.
type Aggregator struct {
	grammar *parser.Grammar
	store   storage.Provider
	dir     string
	source  string
	log     *slog.Logger
}

// NewAggregator creates an aggregator over dir (relative to the store root).
// source is the label shown in the rendered metadata line.
func NewAggregator(g *parser.Grammar, store storage.Provider, dir, source string, log *slog.Logger) *Aggregator {
	if source == "" {
		source = dir
	}
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{grammar: g, store: store, dir: dir, source: source, log: log}
}

// Source returns the label used in the metadata line.
func (a *Aggregator) Source() string { return a.source }

// Grammar returns the grammar used to parse logs.
func (a *Aggregator) Grammar() *parser.Grammar { return a.grammar }

// ParseLogName returns the date encoded in a notes-YYYY-MM-DD.md filename.
func ParseLogName(name string) (time.Time, bool) {
	m := logName.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateRange rejects windows whose start is after their end.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("digest: missing range bound: %w", apperr.ErrInvalidRange)
	}
	if Day(start).After(Day(end)) {
		return fmt.Errorf("digest: start %s after end %s: %w",
			start.Format(DateLayout), end.Format(DateLayout), apperr.ErrInvalidRange)
	}
	return nil
}

// Match lists the logs in the window in ascending date order. Names without
// a valid date and dates outside [start, end] are ignored.
func (a *Aggregator) Match(start, end time.Time) ([]DatedLog, error) {
	start, end = Day(start), Day(end)
	return a.list(func(d time.Time) bool { return !d.Before(start) && !d.After(end) })
}

// Logs lists every dated log in the directory in ascending date order.
func (a *Aggregator) Logs() ([]DatedLog, error) {
	return a.list(func(time.Time) bool { return true })
}

func (a *Aggregator) list(keep func(time.Time) bool) ([]DatedLog, error) {
	files, err := a.store.List(a.dir)
	if err != nil {
		return nil, fmt.Errorf("digest: list %s: %w", a.dir, err)
	}

	var out []DatedLog
	for _, f := range files {
		d, ok := ParseLogName(f.Name)
		if !ok || !keep(d) {
			continue
		}
		out = append(out, DatedLog{Date: d, Path: path.Join(a.dir, f.Name)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Aggregate parses every log in the window and merges them. A file that
// cannot be read is logged, recorded in Skipped and left out; the rest of the
// window still counts. An empty window is not an error.
func (a *Aggregator) Aggregate(ctx context.Context, req Request) (*models.AggregateResult, error) {
	if err := ValidateRange(req.Start, req.End); err != nil {
		return nil, err
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeGroupByPriority
	}

	logs, err := a.Match(req.Start, req.End)
	if err != nil {
		return nil, err
	}

	res := &models.AggregateResult{
		Start:    Day(req.Start),
		End:      Day(req.End),
		Source:   a.source,
		Mode:     string(mode),
		Sections: make(map[models.Section][]string),
		Blocks:   make(map[models.Section][]string),
	}

	for _, l := range logs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := a.store.Read(l.Path)
		if err != nil {
			a.log.Warn("aggregate: read failed",
				slog.String("path", l.Path),
				slog.String("error", err.Error()),
			)
			res.Skipped = append(res.Skipped, models.SkippedFile{
				Path:   l.Path,
				Reason: fmt.Errorf("%w: %v", apperr.ErrUnreadableFile, err).Error(),
			})
			continue
		}
		res.Days = append(res.Days, a.grammar.ParseDay(l.Path, l.Date, data))
	}

	merge(res)
	res.Groups = GroupActions(res.Actions, mode)
	if req.EmitKPIs {
		res.KPIs = ComputeKPIs(res, req.OwnerBreakdown)
	}

	a.log.Debug("aggregate: done",
		slog.String("start", res.Start.Format(DateLayout)),
		slog.String("end", res.End.Format(DateLayout)),
		slog.Int("days", len(res.Days)),
		slog.Int("actions", len(res.Actions)),
		slog.Int("skipped", len(res.Skipped)),
	)
	return res, nil
}

// merge concatenates narrative sections and actions in day order.
func merge(res *models.AggregateResult) {
	for _, day := range res.Days {
		for _, sec := range models.NarrativeSections {
			if lines := day.Sections[sec]; len(lines) > 0 {
				res.Sections[sec] = append(res.Sections[sec], lines...)
			}
			if block := day.Blocks[sec]; block != "" {
				res.Blocks[sec] = append(res.Blocks[sec], block)
			}
		}
		res.Actions = append(res.Actions, day.Actions...)
	}
}
