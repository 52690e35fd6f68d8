// Package projection turns flat timetable assignments into day × period grids and decides
// which assignments belong to a student or faculty viewer.
package projection

import "github.com/thilinahansana/university-scheduler-console/internal/models"

// Options tunes a projection pass.
type Options struct {
	Matcher Matcher
	// WeekdaysOnly drops Saturday, Sunday and unranked day columns.
	WeekdaysOnly bool
}

// Project builds the day × period grid. With a viewer the assignments are filtered through
// the matcher and each cell keeps its first match; without one every assignment is kept and
// cells may hold several entries. Inputs are never modified.
func Project(
	assignments []models.Assignment,
	days []models.Day,
	periods []models.Period,
	viewer models.Viewer,
	refs models.ReferenceTables,
	opts Options,
) models.Grid {
	mode := models.GridModeAdmin
	selected := assignments
	if viewer != nil {
		mode = models.GridModePersonal
		selected = opts.Matcher.Filter(assignments, viewer)
	}
	return build(mode, selected, days, periods, NewReferenceIndex(refs), opts)
}

func build(
	mode models.GridMode,
	assignments []models.Assignment,
	days []models.Day,
	periods []models.Period,
	idx ReferenceIndex,
	opts Options,
) models.Grid {
	sortedDays := SortDays(days)
	if opts.WeekdaysOnly {
		sortedDays = FilterWeekdays(sortedDays)
	}
	sortedPeriods := SortPeriods(periods)

	grid := models.Grid{
		Mode:    mode,
		Days:    sortedDays,
		Periods: sortedPeriods,
		Rows:    make([]models.GridRow, 0, len(sortedPeriods)),
	}
	if len(sortedDays) == 0 || len(sortedPeriods) == 0 {
		return grid
	}

	byDay := make(map[string][]int, len(sortedDays))
	for i, a := range assignments {
		byDay[a.Day.Name] = append(byDay[a.Day.Name], i)
	}

	for _, period := range sortedPeriods {
		row := models.GridRow{
			Period: period,
			Label:  period.Label(),
			Cells:  make([]models.GridCell, 0, len(sortedDays)),
		}
		for _, day := range sortedDays {
			cell := models.GridCell{Day: day.Name, Entries: []models.CellEntry{}}
			for _, i := range byDay[day.Name] {
				if !spansPeriod(assignments[i], period) {
					continue
				}
				cell.Entries = append(cell.Entries, idx.Resolve(assignments[i]))
				if mode == models.GridModePersonal {
					break
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

func spansPeriod(a models.Assignment, cell models.Period) bool {
	for _, p := range a.Periods {
		if samePeriod(cell, p) {
			return true
		}
	}
	return false
}

// samePeriod compares names when both carry one and falls back to long names otherwise.
func samePeriod(cell, candidate models.Period) bool {
	if cell.Name != "" && candidate.Name != "" {
		return cell.Name == candidate.Name
	}
	return cell.LongName != "" && cell.LongName == candidate.LongName
}
