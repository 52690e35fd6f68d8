package dto

import (
	"time"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// ExportRequest captures POST /exports. StartsOn anchors calendar exports on a date.
type ExportRequest struct {
	Format      string            `json:"format" validate:"required,oneof=csv pdf xlsx ics"`
	Scope       string            `json:"scope"`
	Mode        models.ExportMode `json:"mode" validate:"omitempty,oneof=admin personal"`
	TimetableID string            `json:"timetable_id"`
	StartsOn    string            `json:"starts_on" validate:"omitempty,datetime=2006-01-02"`
	Weeks       int               `json:"weeks" validate:"omitempty,min=1,max=52"`
}

// ExportJobResponse is returned after enqueueing an export.
type ExportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ExportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ExportStatusResponse exposes export progress.
type ExportStatusResponse struct {
	ID         string              `json:"id"`
	Format     string              `json:"format"`
	Status     models.ExportStatus `json:"status"`
	Progress   int                 `json:"progress"`
	ResultURL  string              `json:"result_url,omitempty"`
	Error      string              `json:"error,omitempty"`
	FinishedAt *time.Time          `json:"finished_at,omitempty"`
}
