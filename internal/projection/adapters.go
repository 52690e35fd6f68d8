package projection

import (
	"errors"
	"sort"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

var (
	// ErrCellNotFound is returned when no cell exists at the requested period and day.
	ErrCellNotFound = errors.New("grid cell not found")
	// ErrEntryNotFound is returned when the cell holds no entry at the requested index.
	ErrEntryNotFound = errors.New("grid cell entry not found")
	// ErrChangeNotAllowed is returned when a non-faculty viewer requests a change.
	ErrChangeNotAllowed = errors.New("change requests are limited to faculty viewers")
)

// AdminView is the administrative projection of one semester timetable. Cells may hold
// several activities, each selectable for editing.
type AdminView struct {
	TimetableID string      `json:"timetable_id"`
	Semester    string      `json:"semester"`
	Algorithm   string      `json:"algorithm"`
	Grid        models.Grid `json:"grid"`
}

// NewAdminView projects every assignment of the timetable.
func NewAdminView(tt models.SemesterTimetable, days []models.Day, periods []models.Period, refs models.ReferenceTables, opts Options) AdminView {
	return AdminView{
		TimetableID: tt.ID,
		Semester:    tt.Semester,
		Algorithm:   tt.Algorithm,
		Grid:        Project(tt.Assignments, days, periods, nil, refs, opts),
	}
}

// Select returns the assignment behind the index-th chip of a cell. The result seeds the
// edit flow.
func (v AdminView) Select(period, day string, index int) (models.Assignment, error) {
	cell, ok := v.Grid.Cell(period, day)
	if !ok {
		return models.Assignment{}, ErrCellNotFound
	}
	if index < 0 || index >= len(cell.Entries) {
		return models.Assignment{}, ErrEntryNotFound
	}
	selected := cell.Entries[index].Assignment
	if selected.TimetableID == "" {
		selected.TimetableID = v.TimetableID
	}
	return selected, nil
}

// PersonalView is the single-activity projection for one student or faculty member.
type PersonalView struct {
	Viewer  models.Viewer `json:"-"`
	Grid    models.Grid   `json:"grid"`
	Message string        `json:"message,omitempty"`
}

// NewPersonalView projects the assignments matching the viewer.
func NewPersonalView(assignments []models.Assignment, days []models.Day, periods []models.Period, viewer models.Viewer, refs models.ReferenceTables, opts Options) PersonalView {
	if viewer == nil {
		return UnresolvedPersonalView(days, periods, "", opts)
	}
	return PersonalView{
		Viewer: viewer,
		Grid:   Project(assignments, days, periods, viewer, refs, opts),
	}
}

// UnresolvedPersonalView renders an empty personal grid carrying the caller's explanation,
// used when the viewer's identity could not be resolved.
func UnresolvedPersonalView(days []models.Day, periods []models.Period, message string, opts Options) PersonalView {
	return PersonalView{
		Grid:    build(models.GridModePersonal, nil, days, periods, ReferenceIndex{}, opts),
		Message: message,
	}
}

// RequestChange returns the faculty member's assignment at the cell. The result seeds a
// change request.
func (v PersonalView) RequestChange(period, day string) (models.Assignment, error) {
	switch v.Viewer.(type) {
	case models.FacultyViewer, *models.FacultyViewer:
	default:
		return models.Assignment{}, ErrChangeNotAllowed
	}
	cell, ok := v.Grid.Cell(period, day)
	if !ok {
		return models.Assignment{}, ErrCellNotFound
	}
	if cell.Empty() {
		return models.Assignment{}, ErrEntryNotFound
	}
	return cell.Entries[0].Assignment, nil
}

// AgendaDay groups a faculty member's entries taught on one day.
type AgendaDay struct {
	Day     models.Day         `json:"day"`
	Entries []models.CellEntry `json:"entries"`
}

// AgendaSubject groups a faculty member's entries for one subject.
type AgendaSubject struct {
	Subject     string             `json:"subject"`
	SubjectName string             `json:"subject_name"`
	Entries     []models.CellEntry `json:"entries"`
}

// FacultyAgenda is the weekly overview of a faculty member's teaching load.
type FacultyAgenda struct {
	FacultyID  string          `json:"faculty_id"`
	TotalHours int             `json:"total_hours"`
	ByDay      []AgendaDay     `json:"by_day"`
	BySubject  []AgendaSubject `json:"by_subject"`
}

// NewFacultyAgenda groups the faculty member's assignments by day and by subject. Days
// follow the taxonomy order and days outside the taxonomy come last in first-seen order.
func NewFacultyAgenda(assignments []models.Assignment, days []models.Day, periods []models.Period, viewer models.FacultyViewer, refs models.ReferenceTables, m Matcher) FacultyAgenda {
	agenda := FacultyAgenda{
		FacultyID: viewer.ID,
		ByDay:     []AgendaDay{},
		BySubject: []AgendaSubject{},
	}
	mine := m.Filter(assignments, viewer)
	if len(mine) == 0 {
		return agenda
	}

	periodRank := make(map[string]int, len(periods))
	for i, p := range SortPeriods(periods) {
		periodRank[p.Name] = i
	}
	firstPeriod := func(a models.Assignment) int {
		best := len(periodRank)
		for _, p := range a.Periods {
			if r, ok := periodRank[p.Name]; ok && r < best {
				best = r
			}
		}
		return best
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return firstPeriod(mine[i]) < firstPeriod(mine[j])
	})

	idx := NewReferenceIndex(refs)
	dayOrder := make([]models.Day, 0, len(days))
	dayPos := make(map[string]int)
	for _, d := range SortDays(days) {
		dayPos[d.Name] = len(dayOrder)
		dayOrder = append(dayOrder, d)
	}
	byDay := make(map[string][]models.CellEntry)
	subjectPos := make(map[string]int)

	for _, a := range mine {
		entry := idx.Resolve(a)
		agenda.TotalHours += a.Duration
		if _, ok := dayPos[a.Day.Name]; !ok {
			dayPos[a.Day.Name] = len(dayOrder)
			dayOrder = append(dayOrder, a.Day)
		}
		byDay[a.Day.Name] = append(byDay[a.Day.Name], entry)

		pos, ok := subjectPos[a.Subject]
		if !ok {
			pos = len(agenda.BySubject)
			subjectPos[a.Subject] = pos
			agenda.BySubject = append(agenda.BySubject, AgendaSubject{Subject: a.Subject, SubjectName: entry.SubjectName})
		}
		agenda.BySubject[pos].Entries = append(agenda.BySubject[pos].Entries, entry)
	}

	for _, d := range dayOrder {
		if entries := byDay[d.Name]; len(entries) > 0 {
			agenda.ByDay = append(agenda.ByDay, AgendaDay{Day: d, Entries: entries})
		}
	}
	sort.SliceStable(agenda.BySubject, func(i, j int) bool {
		return agenda.BySubject[i].Subject < agenda.BySubject[j].Subject
	})
	return agenda
}
