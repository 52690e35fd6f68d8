package dto

import (
	"github.com/thilinahansana/university-scheduler-console/internal/models"
	"github.com/thilinahansana/university-scheduler-console/internal/projection"
)

// EditActivityRequest captures PATCH /timetables/:timetableId/activities/:sessionId. Day,
// periods and room are given by name and resolved against the snapshot taxonomy.
type EditActivityRequest struct {
	Scope            string   `json:"scope"`
	ActivityID       string   `json:"activity_id"`
	Subject          string   `json:"subject" validate:"required"`
	Teacher          string   `json:"teacher" validate:"required"`
	Room             string   `json:"room" validate:"required"`
	Day              string   `json:"day" validate:"required"`
	Periods          []string `json:"periods" validate:"required,min=1,dive,required"`
	Duration         int      `json:"duration" validate:"omitempty,min=1"`
	Subgroups        []string `json:"subgroups" validate:"omitempty,dive,required"`
	ActivityType     string   `json:"activity_type"`
	IsSubstitute     bool     `json:"is_substitute"`
	SubstituteReason string   `json:"substitute_reason" validate:"omitempty,max=500"`
}

// AdminGridsResponse lists one administrative grid per semester timetable.
type AdminGridsResponse struct {
	Scope     string                 `json:"scope"`
	Algorithm string                 `json:"algorithm"`
	Grids     []projection.AdminView `json:"grids"`
}

// PersonalTimetableResponse wraps a personal grid with the caller's clock context.
type PersonalTimetableResponse struct {
	Viewer        models.ViewerKind       `json:"viewer,omitempty"`
	Semester      string                  `json:"semester,omitempty"`
	View          projection.PersonalView `json:"timetable"`
	Today         *models.Day             `json:"today,omitempty"`
	CurrentPeriod *models.Period          `json:"current_period,omitempty"`
}

// CellSelectionResponse seeds the administrator's edit form.
type CellSelectionResponse struct {
	TimetableID     string            `json:"timetable_id"`
	Activity        models.Assignment `json:"activity"`
	AvailableSpaces []models.Space    `json:"available_spaces,omitempty"`
}

// ExplainResponse reports why an activity is or is not on a student's grid.
type ExplainResponse struct {
	SessionID string          `json:"session_id"`
	Matched   bool            `json:"matched"`
	Rule      projection.Rule `json:"rule"`
	Subgroups []string        `json:"subgroups"`
	YearGroup string          `json:"year_group"`
}

// ConflictResponse carries the backend's conflict list verbatim.
type ConflictResponse struct {
	Conflicts []models.Conflict `json:"conflicts"`
}
