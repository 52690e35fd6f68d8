package models

// ActivityUpdate is the payload the backend expects when an administrator edits one
// scheduled activity. Day, periods and room are sent as full taxonomy objects.
type ActivityUpdate struct {
	ActivityID       string   `json:"activity_id,omitempty"`
	SessionID        string   `json:"session_id"`
	Subject          string   `json:"subject"`
	Teacher          string   `json:"teacher"`
	Room             Room     `json:"room"`
	Day              Day      `json:"day"`
	Periods          []Period `json:"period"`
	Duration         int      `json:"duration"`
	Subgroups        []string `json:"subgroup"`
	ActivityType     string   `json:"activity_type,omitempty"`
	IsSubstitute     bool     `json:"is_substitute,omitempty"`
	SubstituteReason string   `json:"substitute_reason,omitempty"`
}

// EditResult is returned by the backend after a successful edit.
type EditResult struct {
	Message  string      `json:"message,omitempty"`
	Activity *Assignment `json:"activity,omitempty"`
}

// PublishedInfo describes which algorithm's timetable is currently published.
type PublishedInfo struct {
	Published bool   `json:"published"`
	Algorithm string `json:"algorithm"`
}
