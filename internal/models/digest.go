// Package models defines the domain types for team-digest.
package models

import "time"

// Section is one of the canonical log section names.
type Section string

// Canonical sections in emission order.
const (
	SectionSummary      Section = "Summary"
	SectionDecisions    Section = "Decisions"
	SectionActions      Section = "Actions"
	SectionRisks        Section = "Risks"
	SectionDependencies Section = "Dependencies"
	SectionNotes        Section = "Notes"
)

// SectionOrder is the fixed order in which sections are emitted.
var SectionOrder = []Section{
	SectionSummary,
	SectionDecisions,
	SectionActions,
	SectionRisks,
	SectionDependencies,
	SectionNotes,
}

// NarrativeSections are all canonical sections except Actions.
var NarrativeSections = []Section{
	SectionSummary,
	SectionDecisions,
	SectionRisks,
	SectionDependencies,
	SectionNotes,
}

// Priority labels.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
	PriorityOther  = "other"
)

// PriorityLabels lists labels by ascending rank.
var PriorityLabels = []string{PriorityHigh, PriorityMedium, PriorityLow, PriorityOther}

// PriorityRank maps a label to its rank; lower is more urgent.
func PriorityRank(label string) int {
	switch label {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ActionItem is one classified action line.
type ActionItem struct {
	RawText       string    `json:"raw_text"`
	CleanedText   string    `json:"cleaned_text"`
	PriorityLabel string    `json:"priority"`
	PriorityRank  int       `json:"priority_rank"`
	Owner         string    `json:"owner,omitempty"`
	OwnerKey      string    `json:"owner_key,omitempty"`
	SourceDate    time.Time `json:"source_date"`
}

// DayDocument holds one day's parsed sections and classified actions.
// Sections holds the counted items; Blocks holds each narrative section's
// normalized text as written.
type DayDocument struct {
	Date       time.Time            `json:"date"`
	SourcePath string               `json:"source_path"`
	Sections   map[Section][]string `json:"sections"`
	Blocks     map[Section]string   `json:"blocks,omitempty"`
	Actions    []ActionItem         `json:"actions"`
}

// SkippedFile records a log that matched the range but could not be read.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ActionGroup is one rendered block of actions. Title is empty for flat modes.
type ActionGroup struct {
	Title string       `json:"title,omitempty"`
	Label string       `json:"label,omitempty"`
	Items []ActionItem `json:"items"`
}

// OwnerCount is one row of the owner breakdown table.
type OwnerCount struct {
	Owner  string `json:"owner"`
	High   int    `json:"high"`
	Medium int    `json:"medium"`
	Low    int    `json:"low"`
	Total  int    `json:"total"`
}

// KPIs are the aggregate counts rendered in the executive block.
type KPIs struct {
	TotalActions   int            `json:"total_actions"`
	ByPriority     map[string]int `json:"by_priority"`
	Decisions      int            `json:"decisions"`
	Risks          int            `json:"risks"`
	Owners         int            `json:"owners"`
	DaysWithNotes  int            `json:"days_with_notes"`
	OwnerBreakdown []OwnerCount   `json:"owner_breakdown,omitempty"`
}

// AggregateResult is the merged view of every log in a date window.
type AggregateResult struct {
	Start    time.Time            `json:"start"`
	End      time.Time            `json:"end"`
	Source   string               `json:"source"`
	Mode     string               `json:"mode"`
	Days     []DayDocument        `json:"days"`
	Sections map[Section][]string `json:"sections"`
	Blocks   map[Section][]string `json:"blocks,omitempty"`
	Actions  []ActionItem         `json:"actions"`
	Groups   []ActionGroup        `json:"groups"`
	KPIs     *KPIs                `json:"kpis,omitempty"`
	Skipped  []SkippedFile        `json:"skipped,omitempty"`
}
