package projection

import (
	"fmt"
	"strings"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// Placeholder labels used when a reference cannot be resolved.
const (
	UnknownSubject  = "Unknown Subject"
	UnassignedRoom  = "Not assigned"
	UnassignedStaff = "Unassigned"
	DefaultActivity = "Class"
)

// Unresolved reference kinds reported on cell entries.
const (
	RefSubject = "subject"
	RefRoom    = "room"
	RefTeacher = "teacher"
)

// ReferenceIndex resolves subject, teacher and room references to display records.
type ReferenceIndex struct {
	subjects map[string]models.Subject
	teachers map[string]models.Teacher
	spaces   map[string]models.Space
}

// NewReferenceIndex indexes subjects by code, teachers by id and spaces by name.
func NewReferenceIndex(refs models.ReferenceTables) ReferenceIndex {
	idx := ReferenceIndex{
		subjects: make(map[string]models.Subject, len(refs.Subjects)),
		teachers: make(map[string]models.Teacher, len(refs.Teachers)),
		spaces:   make(map[string]models.Space, len(refs.Spaces)),
	}
	for _, s := range refs.Subjects {
		if s.Code != "" {
			idx.subjects[s.Code] = s
		}
	}
	for _, t := range refs.Teachers {
		if t.ID != "" {
			idx.teachers[t.ID] = t
		}
	}
	for _, sp := range refs.Spaces {
		if sp.Name != "" {
			idx.spaces[sp.Name] = sp
		}
	}
	return idx
}

// Resolve builds the display payload of an assignment. Missing references fall back to
// placeholders and are listed in CellEntry.Unresolved.
func (idx ReferenceIndex) Resolve(a models.Assignment) models.CellEntry {
	entry := models.CellEntry{
		SessionID:    a.SessionID,
		SubjectCode:  a.Subject,
		Duration:     a.Duration,
		ActivityType: a.ActivityType,
		Subgroup:     a.Subgroups.String(),
		PeriodNames:  a.PeriodNames(),
		Assignment:   cloneAssignment(a),
	}
	if entry.ActivityType == "" {
		entry.ActivityType = DefaultActivity
	}

	idx.resolveSubject(&entry, a.Subject)
	idx.resolveRoom(&entry, a.Room)
	idx.resolveTeacher(&entry, a.Teacher)

	subjectLabel := entry.SubjectCode
	if subjectLabel == "" {
		subjectLabel = entry.SubjectName
	}
	entry.Title = fmt.Sprintf("%s (%s)", subjectLabel, entry.RoomName)
	return entry
}

func (idx ReferenceIndex) resolveSubject(entry *models.CellEntry, code string) {
	if code == "" {
		entry.SubjectName = UnknownSubject
		entry.Unresolved = append(entry.Unresolved, RefSubject)
		return
	}
	subject, ok := idx.subjects[code]
	if !ok {
		entry.SubjectName = code
		entry.Unresolved = append(entry.Unresolved, RefSubject)
		return
	}
	entry.SubjectName = firstNonEmpty(subject.LongName, subject.Name, code)
}

func (idx ReferenceIndex) resolveRoom(entry *models.CellEntry, room models.Room) {
	if room.Name == "" {
		entry.RoomName = UnassignedRoom
		entry.Unresolved = append(entry.Unresolved, RefRoom)
		return
	}
	if space, ok := idx.spaces[room.Name]; ok {
		entry.RoomName = firstNonEmpty(space.LongName, space.Name)
		entry.RoomCode = firstNonEmpty(space.Code, room.Code)
		return
	}
	entry.RoomName = firstNonEmpty(room.LongName, room.Name)
	entry.RoomCode = room.Code
	if room.Bare {
		entry.Unresolved = append(entry.Unresolved, RefRoom)
	}
}

func (idx ReferenceIndex) resolveTeacher(entry *models.CellEntry, ref models.TeacherRef) {
	entry.TeacherID = ref.ID
	if ref.ID == "" {
		entry.TeacherName = UnassignedStaff
		entry.Unresolved = append(entry.Unresolved, RefTeacher)
		return
	}
	if teacher, ok := idx.teachers[ref.ID]; ok {
		entry.TeacherName = firstNonEmpty(teacher.FullName(), ref.ID)
		entry.TeacherPosition = teacher.Position
		return
	}
	name := strings.TrimSpace(ref.FirstName + " " + ref.LastName)
	if name != "" {
		entry.TeacherName = name
		entry.TeacherPosition = ref.Position
		return
	}
	entry.TeacherName = ref.ID
	entry.Unresolved = append(entry.Unresolved, RefTeacher)
}

func cloneAssignment(a models.Assignment) models.Assignment {
	out := a
	if a.Periods != nil {
		out.Periods = append([]models.Period(nil), a.Periods...)
	}
	if a.Subgroups != nil {
		out.Subgroups = append(models.Subgroups(nil), a.Subgroups...)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
