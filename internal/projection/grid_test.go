package projection

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

func fixtureTaxonomy() ([]models.Day, []models.Period) {
	days := []models.Day{{Name: "wed", LongName: "Wednesday"}, {Name: "mon", LongName: "Monday"}, {Name: "tue", LongName: "Tuesday"}}
	periods := []models.Period{{Name: "P10", LongName: "17:30"}, {Name: "P2", LongName: "09:30"}, {Name: "P1", LongName: "08:30"}}
	return days, periods
}

func fixtureRefs() models.ReferenceTables {
	return models.ReferenceTables{
		Subjects: []models.Subject{{Code: "IT1010", Name: "IP", LongName: "Introduction to Programming"}},
		Teachers: []models.Teacher{{ID: "FA0001", FirstName: "Nimal", LastName: "Perera", Position: "Lecturer"}},
		Spaces:   []models.Space{{Name: "A401", LongName: "Main Building A401", Code: "A401", Capacity: 120}},
	}
}

func fixtureAssignments() []models.Assignment {
	return []models.Assignment{
		{
			SessionID: "s1", Subject: "IT1010", Teacher: models.TeacherRef{ID: "FA0001"},
			Room: models.Room{Name: "A401", Bare: true}, Day: models.Day{Name: "mon"},
			Periods: []models.Period{{Name: "P1"}, {Name: "P2"}}, Duration: 2,
			Subgroups: models.NewSubgroups("Y1S1"), ActivityType: "Lecture",
		},
		{
			SessionID: "s2", Subject: "IT1020", Teacher: models.TeacherRef{ID: "FA0002"},
			Room: models.Room{Name: "B501", Bare: true}, Day: models.Day{Name: "mon"},
			Periods: []models.Period{{Name: "P1"}}, Duration: 1,
			Subgroups: models.NewSubgroups("Y1S1.SE.3"),
		},
		{
			SessionID: "s3", Subject: "IT1010", Teacher: models.TeacherRef{ID: "FA0001"},
			Day: models.Day{Name: "wed"}, Periods: []models.Period{{Name: "P10"}}, Duration: 1,
			Subgroups: models.NewSubgroups("Y1S1.SE.5"),
		},
	}
}

func TestProjectAdminKeepsEveryAssignment(t *testing.T) {
	days, periods := fixtureTaxonomy()
	grid := Project(fixtureAssignments(), days, periods, nil, fixtureRefs(), Options{})

	assert.Equal(t, models.GridModeAdmin, grid.Mode)
	assert.Equal(t, []string{"mon", "tue", "wed"}, dayNames(grid.Days))
	assert.Equal(t, []string{"P1", "P2", "P10"}, periodNames(grid.Periods))
	require.Len(t, grid.Rows, 3)
	assert.Equal(t, "08:30", grid.Rows[0].Label)

	cell, ok := grid.Cell("P1", "mon")
	require.True(t, ok)
	require.Len(t, cell.Entries, 2)
	assert.Equal(t, "s1", cell.Entries[0].SessionID)
	assert.Equal(t, "s2", cell.Entries[1].SessionID)
	assert.Equal(t, 4, grid.EntryCount())
}

func TestProjectResolvesReferences(t *testing.T) {
	days, periods := fixtureTaxonomy()
	grid := Project(fixtureAssignments(), days, periods, nil, fixtureRefs(), Options{})

	cell, _ := grid.Cell("P1", "mon")
	resolved := cell.Entries[0]
	assert.Equal(t, "Introduction to Programming", resolved.SubjectName)
	assert.Equal(t, "Main Building A401", resolved.RoomName)
	assert.Equal(t, "Nimal Perera", resolved.TeacherName)
	assert.Equal(t, "Lecturer", resolved.TeacherPosition)
	assert.Equal(t, "IT1010 (Main Building A401)", resolved.Title)
	assert.Equal(t, []string{"P1", "P2"}, resolved.PeriodNames)
	assert.Empty(t, resolved.Unresolved)

	missing := cell.Entries[1]
	assert.Equal(t, "IT1020", missing.SubjectName)
	assert.Equal(t, "B501", missing.RoomName)
	assert.Equal(t, "FA0002", missing.TeacherName)
	assert.Equal(t, DefaultActivity, missing.ActivityType)
	assert.Equal(t, []string{RefSubject, RefRoom, RefTeacher}, missing.Unresolved)

	wed, _ := grid.Cell("P10", "wed")
	require.Len(t, wed.Entries, 1)
	assert.Equal(t, UnassignedRoom, wed.Entries[0].RoomName)
}

func TestProjectPersonalKeepsFirstMatch(t *testing.T) {
	days, periods := fixtureTaxonomy()
	assignments := fixtureAssignments()
	assignments[1].Subgroups = models.NewSubgroups("Y1S1.SE")
	viewer := models.StudentViewer{YearGroup: "Y1S1.SE.5"}

	grid := Project(assignments, days, periods, viewer, fixtureRefs(), Options{Matcher: NewMatcher("")})

	assert.Equal(t, models.GridModePersonal, grid.Mode)
	cell, _ := grid.Cell("P1", "mon")
	require.Len(t, cell.Entries, 1)
	assert.Equal(t, "s1", cell.Entries[0].SessionID)
}

func TestProjectRoundTripForStudent(t *testing.T) {
	days, periods := fixtureTaxonomy()
	assignments := []models.Assignment{
		{SessionID: "a", Subject: "X", Day: models.Day{Name: "mon"}, Periods: []models.Period{{Name: "P1"}}, Duration: 1, Subgroups: models.NewSubgroups("Y1S1")},
		{SessionID: "b", Subject: "X", Day: models.Day{Name: "tue"}, Periods: []models.Period{{Name: "P2"}}, Duration: 1, Subgroups: models.NewSubgroups("Y1S1.SE")},
		{SessionID: "c", Subject: "X", Day: models.Day{Name: "wed"}, Periods: []models.Period{{Name: "P10"}}, Duration: 1, Subgroups: models.NewSubgroups("Y1S1.SE.5")},
		{SessionID: "d", Subject: "X", Day: models.Day{Name: "wed"}, Periods: []models.Period{{Name: "P1"}}, Duration: 1, Subgroups: models.NewSubgroups("Y1S1.SE.6")},
	}
	viewer := models.StudentViewer{YearGroup: "Y1S1.SE.5", Subjects: []string{"X"}}
	m := NewMatcher("")

	retained := m.Filter(assignments, viewer)
	grid := Project(assignments, days, periods, viewer, models.ReferenceTables{}, Options{Matcher: m})

	seen := map[string]int{}
	for _, row := range grid.Rows {
		for _, cell := range row.Cells {
			for _, e := range cell.Entries {
				seen[e.SessionID]++
			}
		}
	}
	require.Len(t, retained, 3)
	for _, a := range retained {
		assert.Equal(t, 1, seen[a.SessionID], a.SessionID)
	}
	assert.Zero(t, seen["d"])
}

func TestProjectIsIdempotent(t *testing.T) {
	days, periods := fixtureTaxonomy()
	viewer := models.StudentViewer{YearGroup: "Y1S1.SE.5"}
	opts := Options{Matcher: NewMatcher("")}

	first := Project(fixtureAssignments(), days, periods, viewer, fixtureRefs(), opts)
	second := Project(fixtureAssignments(), days, periods, viewer, fixtureRefs(), opts)
	assert.Equal(t, first, second)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestProjectDoesNotMutateInputs(t *testing.T) {
	days, periods := fixtureTaxonomy()
	assignments := fixtureAssignments()
	grid := Project(assignments, days, periods, nil, fixtureRefs(), Options{})

	cell, _ := grid.Cell("P1", "mon")
	cell.Entries[0].Assignment.Periods[0].Name = "changed"

	assert.Equal(t, "P1", assignments[0].Periods[0].Name)
	assert.Equal(t, []string{"wed", "mon", "tue"}, dayNames(days))
}

func TestProjectEmptyTaxonomy(t *testing.T) {
	grid := Project(fixtureAssignments(), nil, nil, nil, fixtureRefs(), Options{})
	assert.NotNil(t, grid.Rows)
	assert.Empty(t, grid.Rows)
	assert.Zero(t, grid.EntryCount())
}

func TestProjectLongNameFallback(t *testing.T) {
	days := []models.Day{{Name: "mon"}}
	periods := []models.Period{{LongName: "08:30"}}
	assignments := []models.Assignment{{SessionID: "x", Day: models.Day{Name: "mon"}, Periods: []models.Period{{Name: "P1", LongName: "08:30"}}}}

	grid := Project(assignments, days, periods, nil, models.ReferenceTables{}, Options{})
	require.Len(t, grid.Rows, 1)
	require.Len(t, grid.Rows[0].Cells[0].Entries, 1)
	assert.Equal(t, "x", grid.Rows[0].Cells[0].Entries[0].SessionID)
}

func TestProjectWeekdaysOnly(t *testing.T) {
	days := []models.Day{{Name: "sat"}, {Name: "mon"}}
	grid := Project(nil, days, []models.Period{{Name: "P1"}}, nil, models.ReferenceTables{}, Options{WeekdaysOnly: true})
	assert.Equal(t, []string{"mon"}, dayNames(grid.Days))
	require.Len(t, grid.Rows[0].Cells, 1)
}
