package api

import (
	"github.com/anurajdeol90/team-digest/internal/models"
)

// DiagnoseResponse wraps the per-file scan of a window.
type DiagnoseResponse struct {
	Start string                 `json:"start" example:"2025-10-13" validate:"required"`
	End   string                 `json:"end" example:"2025-10-19" validate:"required"`
	Files []models.FileDiagnosis `json:"files" validate:"required"`
}
