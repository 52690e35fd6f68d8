package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Day is one column of the weekly grid as published by the generation backend.
type Day struct {
	Name     string `json:"name"`
	LongName string `json:"long_name,omitempty"`
	// Weekday is an optional explicit 1 (Monday) .. 7 (Sunday) index. When absent the
	// normalizer falls back to the weekday-name heuristic.
	Weekday *int `json:"weekday,omitempty"`
}

// UnmarshalJSON accepts either a day object or a bare day name.
func (d *Day) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = Day{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("decode day name: %w", err)
		}
		*d = Day{Name: name}
		return nil
	}
	type rawDay Day
	var raw rawDay
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode day: %w", err)
	}
	*d = Day(raw)
	return nil
}

// Label returns the long name when known, otherwise the short code.
func (d Day) Label() string {
	if d.LongName != "" {
		return d.LongName
	}
	return d.Name
}

// Period is one row of the weekly grid.
type Period struct {
	Name       string `json:"name"`
	LongName   string `json:"long_name,omitempty"`
	IsInterval bool   `json:"is_interval,omitempty"`
	Index      *int   `json:"index,omitempty"`
	Order      *int   `json:"order,omitempty"`
}

// Label returns the long name when known, otherwise the short code.
func (p Period) Label() string {
	if p.LongName != "" {
		return p.LongName
	}
	return p.Name
}

// Room is the space an activity is held in. The backend sends either the full
// space object or only its name.
type Room struct {
	Name     string `json:"name"`
	LongName string `json:"long_name,omitempty"`
	Code     string `json:"code,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
	Bare     bool   `json:"-"`
}

// UnmarshalJSON accepts either a space object or a bare room name.
func (r *Room) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Room{}
		return nil
	}
	if data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return fmt.Errorf("decode room name: %w", err)
		}
		*r = Room{Name: name, Bare: true}
		return nil
	}
	type rawRoom Room
	var raw rawRoom
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode room: %w", err)
	}
	*r = Room(raw)
	return nil
}

// MarshalJSON writes a bare room back as its name so cached snapshots round-trip.
func (r Room) MarshalJSON() ([]byte, error) {
	if r.Bare {
		return json.Marshal(r.Name)
	}
	type rawRoom Room
	return json.Marshal(rawRoom(r))
}

// TeacherRef references the faculty member teaching an activity. Most payloads carry
// just the id; edited activities come back with the expanded teacher object.
type TeacherRef struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Position  string `json:"position,omitempty"`
}

// UnmarshalJSON accepts either a teacher id or a teacher object.
func (t *TeacherRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TeacherRef{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decode teacher id: %w", err)
		}
		*t = TeacherRef{ID: id}
		return nil
	}
	type rawTeacher TeacherRef
	var raw rawTeacher
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode teacher: %w", err)
	}
	*t = TeacherRef(raw)
	return nil
}

// Subgroups is the normalized set of audience qualifiers an activity targets.
type Subgroups []string

// NewSubgroups builds a set from raw qualifiers dropping blanks and duplicates while
// keeping the first-seen order.
func NewSubgroups(values ...string) Subgroups {
	set := make(Subgroups, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		set = append(set, v)
	}
	return set
}

// UnmarshalJSON accepts a single qualifier string or a list of qualifiers.
func (s *Subgroups) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = Subgroups{}
		return nil
	}
	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return fmt.Errorf("decode subgroup: %w", err)
		}
		*s = NewSubgroups(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode subgroups: %w", err)
	}
	*s = NewSubgroups(list...)
	return nil
}

// Contains reports whether the set holds the qualifier verbatim.
func (s Subgroups) Contains(qualifier string) bool {
	for _, v := range s {
		if v == qualifier {
			return true
		}
	}
	return false
}

// String joins the qualifiers for display.
func (s Subgroups) String() string {
	return strings.Join(s, ", ")
}

// Assignment is one scheduled activity produced by the generation backend.
type Assignment struct {
	SessionID    string     `json:"session_id"`
	ActivityID   string     `json:"activity_id,omitempty"`
	TimetableID  string     `json:"timetable_id,omitempty"`
	Semester     string     `json:"semester,omitempty"`
	Algorithm    string     `json:"algorithm,omitempty"`
	Subject      string     `json:"subject"`
	Teacher      TeacherRef `json:"teacher"`
	Room         Room       `json:"room"`
	Day          Day        `json:"day"`
	Periods      []Period   `json:"period"`
	Duration     int        `json:"duration"`
	Subgroups    Subgroups  `json:"subgroup"`
	ActivityType string     `json:"activity_type,omitempty"`
}

// PeriodNames lists the period codes the assignment spans.
func (a Assignment) PeriodNames() []string {
	names := make([]string, 0, len(a.Periods))
	for _, p := range a.Periods {
		names = append(names, p.Name)
	}
	return names
}

// SemesterTimetable groups the assignments generated for one semester by one algorithm.
type SemesterTimetable struct {
	ID          string       `json:"_id"`
	Semester    string       `json:"semester"`
	Algorithm   string       `json:"algorithm"`
	Assignments []Assignment `json:"timetable"`
}

// TimetableSnapshot is everything a projection pass needs, fetched in one go.
type TimetableSnapshot struct {
	Scope      string              `json:"scope"`
	Algorithm  string              `json:"algorithm,omitempty"`
	Timetables []SemesterTimetable `json:"timetables"`
	Days       []Day               `json:"days"`
	Periods    []Period            `json:"periods"`
	References ReferenceTables     `json:"references"`
}

// Assignments flattens every semester timetable of the snapshot, stamping each entry with
// its timetable id, semester and algorithm when the backend left them blank.
func (s *TimetableSnapshot) Assignments() []Assignment {
	if s == nil {
		return nil
	}
	var out []Assignment
	for _, tt := range s.Timetables {
		for _, a := range tt.Assignments {
			if a.TimetableID == "" {
				a.TimetableID = tt.ID
			}
			if a.Semester == "" {
				a.Semester = tt.Semester
			}
			if a.Algorithm == "" {
				a.Algorithm = tt.Algorithm
			}
			out = append(out, a)
		}
	}
	return out
}

// Timetable returns the semester timetable with the given id.
func (s *TimetableSnapshot) Timetable(id string) (*SemesterTimetable, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Timetables {
		if s.Timetables[i].ID == id {
			return &s.Timetables[i], true
		}
	}
	return nil, false
}
