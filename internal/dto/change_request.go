package dto

import "github.com/thilinahansana/university-scheduler-console/internal/models"

// CreateChangeRequest captures POST /change-requests. Per-type fields are checked by the
// service: substitute needs substitute_id, roomChange needs new_room and timeChange needs
// new_day with new_periods.
type CreateChangeRequest struct {
	Type         models.ChangeRequestType `json:"type" validate:"required,oneof=substitute roomChange timeChange"`
	TimetableID  string                   `json:"timetable_id" validate:"required"`
	SessionID    string                   `json:"session_id" validate:"required"`
	Semester     string                   `json:"semester"`
	Reason       string                   `json:"reason" validate:"required,max=1000"`
	SubstituteID string                   `json:"substitute_id"`
	NewRoom      string                   `json:"new_room"`
	NewDay       string                   `json:"new_day"`
	NewPeriods   []string                 `json:"new_periods" validate:"omitempty,dive,required"`
}

// CellChangeRequest captures POST /me/timetable/cells/:period/:day/change-request. The
// session and timetable come from the selected cell.
type CellChangeRequest struct {
	Type         models.ChangeRequestType `json:"type" validate:"required,oneof=substitute roomChange timeChange"`
	Reason       string                   `json:"reason" validate:"required,max=1000"`
	SubstituteID string                   `json:"substitute_id"`
	NewRoom      string                   `json:"new_room"`
	NewDay       string                   `json:"new_day"`
	NewPeriods   []string                 `json:"new_periods" validate:"omitempty,dive,required"`
}

// ReviewChangeRequest captures PUT /change-requests/:id. Apply pushes an approved change
// to the timetable through the edit flow.
type ReviewChangeRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject approved rejected"`
	Note   string `json:"note" validate:"omitempty,max=1000"`
	Apply  bool   `json:"apply"`
}

// ReviewChangeRequestResponse reports the review outcome and, when applied, the edit.
type ReviewChangeRequestResponse struct {
	Request models.ChangeRequest `json:"request"`
	Applied *models.EditResult   `json:"applied,omitempty"`
}
