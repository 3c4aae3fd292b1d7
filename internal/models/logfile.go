package models

import "time"

// LogFile is a lightweight listing entry for one file in the logs directory.
type LogFile struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileDiagnosis is the per-file scan report produced by the diagnose command.
type FileDiagnosis struct {
	Date         time.Time      `json:"date"`
	Path         string         `json:"path"`
	Checksum     string         `json:"checksum,omitempty"`
	Sections     []Section      `json:"sections"`
	Bullets      int            `json:"bullets"`
	Actions      int            `json:"actions"`
	FallbackUsed bool           `json:"fallback_used"`
	TagCounts    map[string]int `json:"tag_counts"`
	Frontmatter  bool           `json:"frontmatter"`
	Error        string         `json:"error,omitempty"`
}
