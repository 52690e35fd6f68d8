package models

import "encoding/json"

// Conflict is one entry of the backend's conflict payload. The console displays these
// verbatim and never derives them itself.
type Conflict struct {
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Details     ConflictDetails `json:"details"`
}

// ConflictDetails locates a conflict in the week.
type ConflictDetails struct {
	Day        string             `json:"day"`
	Periods    []string           `json:"periods"`
	Activities []ConflictActivity `json:"activities"`
}

// ConflictActivity names an activity involved in a conflict.
type ConflictActivity struct {
	Subject    string `json:"subject"`
	ActivityID string `json:"activity_id"`
}

// ConflictError is returned when the backend rejects an edit with conflicts.
type ConflictError struct {
	Message   string          `json:"message"`
	Conflicts []Conflict      `json:"conflicts"`
	Raw       json.RawMessage `json:"-"`
}

// Error implements the error interface for conflict errors.
func (e *ConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	return "scheduling conflicts detected"
}
