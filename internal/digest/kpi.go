package digest

import (
	"sort"
	"strings"

	"github.com/anurajdeol90/team-digest/internal/models"
)

// ComputeKPIs counts actions, decisions, risks, owners and days. The owner
// breakdown is only built when requested and there is at least one action.
func ComputeKPIs(res *models.AggregateResult, ownerBreakdown bool) *models.KPIs {
	k := &models.KPIs{
		TotalActions:  len(res.Actions),
		ByPriority:    make(map[string]int, len(models.PriorityLabels)),
		Decisions:     len(res.Sections[models.SectionDecisions]),
		Risks:         len(res.Sections[models.SectionRisks]),
		DaysWithNotes: len(res.Days),
	}
	for _, label := range models.PriorityLabels {
		k.ByPriority[label] = 0
	}

	rows := make(map[string]*models.OwnerCount)
	var order []string
	for _, a := range res.Actions {
		k.ByPriority[a.PriorityLabel]++
		if a.OwnerKey == "" {
			continue
		}
		row, ok := rows[a.OwnerKey]
		if !ok {
			// First spelling seen is the display name.
			row = &models.OwnerCount{Owner: a.Owner}
			rows[a.OwnerKey] = row
			order = append(order, a.OwnerKey)
		}
		switch a.PriorityLabel {
		case models.PriorityHigh:
			row.High++
		case models.PriorityMedium:
			row.Medium++
		case models.PriorityLow:
			row.Low++
		}
		row.Total++
	}
	k.Owners = len(rows)

	if !ownerBreakdown || k.TotalActions == 0 {
		return k
	}
	k.OwnerBreakdown = make([]models.OwnerCount, 0, len(order))
	for _, key := range order {
		k.OwnerBreakdown = append(k.OwnerBreakdown, *rows[key])
	}
	sort.SliceStable(k.OwnerBreakdown, func(i, j int) bool {
		a, b := k.OwnerBreakdown[i], k.OwnerBreakdown[j]
		switch {
		case a.High != b.High:
			return a.High > b.High
		case a.Medium != b.Medium:
			return a.Medium > b.Medium
		case a.Low != b.Low:
			return a.Low > b.Low
		case a.Total != b.Total:
			return a.Total > b.Total
		}
		if ak, bk := strings.ToLower(a.Owner), strings.ToLower(b.Owner); ak != bk {
			return ak < bk
		}
		return a.Owner < b.Owner
	})
	return k
}
