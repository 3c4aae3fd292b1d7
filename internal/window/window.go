// Package window resolves the inclusive date windows used by the daily,
// weekly and monthly digests.
package window

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/anurajdeol90/team-digest/internal/apperr"
)

const layout = "2006-01-02"

// Range is an inclusive window of calendar days.
type Range struct {
	Start time.Time
	End   time.Time
}

// String formats the range as "start..end".
func (r Range) String() string {
	return r.Start.Format(layout) + ".." + r.End.Format(layout)
}

// Days returns the number of calendar days in the range.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

var (
	parser  = newParser()
	isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD, "today", or an English expression such as
// "yesterday" or "last monday" resolved relative to now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("window: empty date: %w", apperr.ErrInvalidRange)
	}
	if isoDate.MatchString(s) {
		d, err := time.Parse(layout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("window: %w: %v", apperr.ErrInvalidRange, err)
		}
		return d, nil
	}
	if strings.EqualFold(s, "today") {
		return Date(now), nil
	}
	r, err := parser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("window: parse %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("window: unrecognized date %q: %w", s, apperr.ErrInvalidRange)
	}
	return Date(r.Time), nil
}

// New validates and builds a range.
func New(start, end time.Time) (Range, error) {
	start, end = Date(start), Date(end)
	if start.After(end) {
		return Range{}, fmt.Errorf("window: start %s after end %s: %w",
			start.Format(layout), end.Format(layout), apperr.ErrInvalidRange)
	}
	return Range{Start: start, End: end}, nil
}

// Daily is the single-day window for d.
func Daily(d time.Time) Range {
	d = Date(d)
	return Range{Start: d, End: d}
}

// Weekly returns [start, end] when both are set. A missing end defaults to
// today, a missing start to six days before the end.
func Weekly(start, end, today time.Time) (Range, error) {
	if end.IsZero() {
		end = today
	}
	if start.IsZero() {
		start = Date(end).AddDate(0, 0, -6)
	}
	return New(start, end)
}

// Resolve turns optional start and end expressions into a range. A lone
// start is a single day; otherwise missing bounds default as in Weekly.
func Resolve(start, end string, now time.Time) (Range, error) {
	var s, e time.Time
	var err error
	if start != "" {
		if s, err = ParseDate(start, now); err != nil {
			return Range{}, err
		}
	}
	if end != "" {
		if e, err = ParseDate(end, now); err != nil {
			return Range{}, err
		}
	}
	if !s.IsZero() && e.IsZero() {
		e = s
	}
	return Weekly(s, e, Date(now))
}

// LastWeek is the Monday..Sunday week before the one containing today.
func LastWeek(today time.Time) Range {
	today = Date(today)
	offset := (int(today.Weekday()) + 6) % 7 // days since Monday
	thisMonday := today.AddDate(0, 0, -offset)
	return Range{Start: thisMonday.AddDate(0, 0, -7), End: thisMonday.AddDate(0, 0, -1)}
}

// Monthly is the calendar month containing (year, month). With
// latestWithData set and the month being the current one, the window ends
// today instead of on the last day of the month.
func Monthly(year int, month time.Month, latestWithData bool, today time.Time) (Range, error) {
	if month < time.January || month > time.December {
		return Range{}, fmt.Errorf("window: month %d out of range: %w", month, apperr.ErrInvalidRange)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	today = Date(today)
	if latestWithData && today.Year() == year && today.Month() == month {
		end = today
	}
	return Range{Start: start, End: end}, nil
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("window: month %q: %w", s, apperr.ErrInvalidRange)
	}
	return t.Year(), t.Month(), nil
}
