package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentDecodesLooseShapes(t *testing.T) {
	raw := `{"session_id":"s-1","subject":"IT1010","teacher":"FA0001","room":"A401","day":"MON","period":[{"name":"P1","long_name":"08:30 - 09:30"}],"duration":1,"subgroup":"Y1S1.SE.1"}`
	var a Assignment
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, "FA0001", a.Teacher.ID)
	assert.Equal(t, Room{Name: "A401", Bare: true}, a.Room)
	assert.Equal(t, "MON", a.Day.Name)
	assert.Equal(t, Subgroups{"Y1S1.SE.1"}, a.Subgroups)
	assert.Equal(t, []string{"P1"}, a.PeriodNames())

	rich := `{"session_id":"s-2","teacher":{"id":"FA0002","first_name":"Nimal"},"room":{"name":"B201","capacity":40},"day":{"name":"TUE","long_name":"Tuesday","weekday":2},"subgroup":[" Y1S1 ","Y1S1",""]}`
	var b Assignment
	require.NoError(t, json.Unmarshal([]byte(rich), &b))
	assert.Equal(t, "Nimal", b.Teacher.FirstName)
	assert.False(t, b.Room.Bare)
	assert.Equal(t, 40, b.Room.Capacity)
	require.NotNil(t, b.Day.Weekday)
	assert.Equal(t, 2, *b.Day.Weekday)
	assert.Equal(t, Subgroups{"Y1S1"}, b.Subgroups)
}

func TestRoomRoundTripKeepsBareness(t *testing.T) {
	out, err := json.Marshal(Room{Name: "A401", Bare: true})
	require.NoError(t, err)
	assert.JSONEq(t, `"A401"`, string(out))

	var back Room
	require.NoError(t, json.Unmarshal(out, &back))
	assert.True(t, back.Bare)

	out, err = json.Marshal(Room{Name: "B201", Capacity: 40})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"B201","capacity":40}`, string(out))
}

func TestSnapshotAssignmentsStampsTimetable(t *testing.T) {
	snap := &TimetableSnapshot{Timetables: []SemesterTimetable{{
		ID: "tt-1", Semester: "Y1S1", Algorithm: "GA",
		Assignments: []Assignment{{SessionID: "s-1"}, {SessionID: "s-2", Semester: "Y1S2"}},
	}}}
	all := snap.Assignments()
	require.Len(t, all, 2)
	assert.Equal(t, "tt-1", all[0].TimetableID)
	assert.Equal(t, "GA", all[0].Algorithm)
	assert.Equal(t, "Y1S2", all[1].Semester)
	assert.Empty(t, snap.Timetables[0].Assignments[0].TimetableID)

	tt, ok := snap.Timetable("tt-1")
	require.True(t, ok)
	assert.Equal(t, "Y1S1", tt.Semester)
	var nilSnap *TimetableSnapshot
	assert.Nil(t, nilSnap.Assignments())
}
