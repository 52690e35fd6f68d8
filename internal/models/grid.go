package models

// GridMode distinguishes the administrative and personalized projections.
type GridMode string

const (
	GridModeAdmin    GridMode = "admin"
	GridModePersonal GridMode = "personal"
)

// Grid is the day × period matrix produced by one projection pass.
type Grid struct {
	Mode    GridMode  `json:"mode"`
	Days    []Day     `json:"days"`
	Periods []Period  `json:"periods"`
	Rows    []GridRow `json:"rows"`
}

// GridRow holds the cells of one period, aligned with Grid.Days.
type GridRow struct {
	Period Period     `json:"period"`
	Label  string     `json:"label"`
	Cells  []GridCell `json:"cells"`
}

// GridCell holds the entries scheduled for one (period, day) pair. A personalized grid
// holds at most one entry per cell.
type GridCell struct {
	Day     string      `json:"day"`
	Entries []CellEntry `json:"entries"`
}

// Empty reports whether nothing is scheduled in the cell.
func (c GridCell) Empty() bool {
	return len(c.Entries) == 0
}

// CellEntry is the display payload of one assignment inside a cell.
type CellEntry struct {
	Title           string     `json:"title"`
	SessionID       string     `json:"session_id"`
	SubjectCode     string     `json:"subject"`
	SubjectName     string     `json:"subject_name"`
	RoomName        string     `json:"room"`
	RoomCode        string     `json:"room_code,omitempty"`
	TeacherID       string     `json:"teacher_id"`
	TeacherName     string     `json:"teacher"`
	TeacherPosition string     `json:"teacher_position,omitempty"`
	Duration        int        `json:"duration"`
	ActivityType    string     `json:"activity_type"`
	Subgroup        string     `json:"subgroup,omitempty"`
	PeriodNames     []string   `json:"periods"`
	Unresolved      []string   `json:"unresolved,omitempty"`
	Assignment      Assignment `json:"activity"`
}

// Cell returns the cell at (periodName, dayName).
func (g Grid) Cell(periodName, dayName string) (GridCell, bool) {
	for _, row := range g.Rows {
		if row.Period.Name != periodName {
			continue
		}
		for _, cell := range row.Cells {
			if cell.Day == dayName {
				return cell, true
			}
		}
	}
	return GridCell{}, false
}

// EntryCount counts entries over every cell.
func (g Grid) EntryCount() int {
	total := 0
	for _, row := range g.Rows {
		for _, cell := range row.Cells {
			total += len(cell.Entries)
		}
	}
	return total
}
