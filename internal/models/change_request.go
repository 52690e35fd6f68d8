package models

import "time"

// ChangeRequestType enumerates the changes a faculty member can ask for.
type ChangeRequestType string

const (
	ChangeRequestSubstitute ChangeRequestType = "substitute"
	ChangeRequestRoomChange ChangeRequestType = "roomChange"
	ChangeRequestTimeChange ChangeRequestType = "timeChange"
)

// ChangeRequestStatus captures the review lifecycle.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

// ChangeRequest is a faculty request to alter one published activity.
type ChangeRequest struct {
	ID           string              `json:"_id,omitempty"`
	Type         ChangeRequestType   `json:"type"`
	Status       ChangeRequestStatus `json:"status"`
	SessionID    string              `json:"session_id"`
	TimetableID  string              `json:"timetable_id"`
	Semester     string              `json:"semester,omitempty"`
	FacultyID    string              `json:"faculty_id,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	SubstituteID string              `json:"substitute_id,omitempty"`
	NewRoom      string              `json:"new_room,omitempty"`
	NewDay       string              `json:"new_day,omitempty"`
	NewPeriods   []string            `json:"new_periods,omitempty"`
	AdminNote    string              `json:"admin_response,omitempty"`
	CreatedAt    *time.Time          `json:"created_at,omitempty"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}
