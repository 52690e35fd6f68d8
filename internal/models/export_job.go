package models

import "time"

// ExportStatus captures the background export lifecycle.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportMode selects which projection an export renders.
type ExportMode string

const (
	ExportModeAdmin    ExportMode = "admin"
	ExportModePersonal ExportMode = "personal"
)

// ExportJob is an asynchronous grid export. Personal exports carry the viewer resolved
// when the job was created, so the worker never needs the caller's token.
type ExportJob struct {
	ID          string         `json:"id"`
	Format      string         `json:"format"`
	Scope       string         `json:"scope"`
	Mode        ExportMode     `json:"mode"`
	TimetableID string         `json:"timetable_id,omitempty"`
	Student     *StudentViewer `json:"student,omitempty"`
	Faculty     *FacultyViewer `json:"faculty,omitempty"`
	StartsOn    *time.Time     `json:"starts_on,omitempty"`
	Weeks       int            `json:"weeks,omitempty"`
	Status      ExportStatus   `json:"status"`
	Progress    int            `json:"progress"`
	Attempts    int            `json:"attempts"`
	ResultURL   string         `json:"result_url,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedBy   string         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	FinishedAt  *time.Time     `json:"finished_at,omitempty"`
}

// Viewer returns the viewer a personal export projects for, or nil for admin exports.
func (j *ExportJob) Viewer() Viewer {
	switch {
	case j == nil:
		return nil
	case j.Student != nil:
		return *j.Student
	case j.Faculty != nil:
		return *j.Faculty
	default:
		return nil
	}
}
