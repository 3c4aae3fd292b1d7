package digest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anurajdeol90/team-digest/internal/apperr"
	"github.com/anurajdeol90/team-digest/internal/models"
)

// Mode selects how actions are ordered and grouped for rendering.
type Mode string

const (
	ModeFlatLegacy      Mode = "flat-legacy"
	ModeGroupByPriority Mode = "group-by-priority"
	ModeFlatByOwner     Mode = "flat-by-owner"
)

// Modes lists the accepted grouping modes.
var Modes = []Mode{ModeFlatLegacy, ModeGroupByPriority, ModeFlatByOwner}

// ParseMode accepts a mode name or one of the short aliases "flat", "group"
// and "by-owner".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "group", "grouped", string(ModeGroupByPriority):
		return ModeGroupByPriority, nil
	case "flat", "legacy", string(ModeFlatLegacy):
		return ModeFlatLegacy, nil
	case "by-owner", "flat-by-name", string(ModeFlatByOwner):
		return ModeFlatByOwner, nil
	}
	return "", fmt.Errorf("digest: unknown mode %q: %w", s, apperr.ErrInvalidConfig)
}

// Tagged reports whether the mode renders a standardized [label] per line.
func (m Mode) Tagged() bool { return m != ModeGroupByPriority }

var bucketTitles = map[string]string{
	models.PriorityHigh:   "High priority",
	models.PriorityMedium: "Medium priority",
	models.PriorityLow:    "Low priority",
	models.PriorityOther:  "Other priority",
}

// GroupActions orders a copy of actions for rendering. The input slice is
// left untouched. Sorts are stable, so ties keep date-then-file order.
func GroupActions(actions []models.ActionItem, mode Mode) []models.ActionGroup {
	if len(actions) == 0 {
		return nil
	}
	items := append([]models.ActionItem(nil), actions...)

	switch mode {
	case ModeFlatByOwner:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.OwnerKey != b.OwnerKey {
				return a.OwnerKey < b.OwnerKey
			}
			if a.PriorityRank != b.PriorityRank {
				return a.PriorityRank < b.PriorityRank
			}
			return strings.ToLower(a.CleanedText) < strings.ToLower(b.CleanedText)
		})
		return []models.ActionGroup{{Items: items}}

	case ModeFlatLegacy:
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.PriorityRank != b.PriorityRank {
				return a.PriorityRank < b.PriorityRank
			}
			if a.OwnerKey != b.OwnerKey {
				return a.OwnerKey < b.OwnerKey
			}
			return strings.ToLower(a.CleanedText) < strings.ToLower(b.CleanedText)
		})
		return []models.ActionGroup{{Items: items}}
	}

	buckets := make(map[string][]models.ActionItem, len(models.PriorityLabels))
	for _, it := range items {
		buckets[it.PriorityLabel] = append(buckets[it.PriorityLabel], it)
	}
	var groups []models.ActionGroup
	for _, label := range models.PriorityLabels {
		b := buckets[label]
		if len(b) == 0 {
			continue
		}
		sort.SliceStable(b, func(i, j int) bool {
			if b[i].OwnerKey != b[j].OwnerKey {
				return b[i].OwnerKey < b[j].OwnerKey
			}
			return strings.ToLower(b[i].CleanedText) < strings.ToLower(b[j].CleanedText)
		})
		groups = append(groups, models.ActionGroup{Title: bucketTitles[label], Label: label, Items: b})
	}
	return groups
}
