package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

func intPtr(v int) *int { return &v }

func dayNames(days []models.Day) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Name)
	}
	return out
}

func periodNames(periods []models.Period) []string {
	out := make([]string, 0, len(periods))
	for _, p := range periods {
		out = append(out, p.Name)
	}
	return out
}

func TestSortDaysWeekdayHeuristic(t *testing.T) {
	input := []models.Day{{Name: "Wednesday"}, {Name: "mon"}, {Name: "Fri"}}
	sorted := SortDays(input)

	assert.Equal(t, []string{"mon", "Wednesday", "Fri"}, dayNames(sorted))
	assert.Equal(t, []string{"Wednesday", "mon", "Fri"}, dayNames(input), "input must not be reordered")
}

func TestSortDaysUnrankedKeepInputOrder(t *testing.T) {
	input := []models.Day{{Name: "extra"}, {Name: "sun"}, {Name: "monsat"}, {Name: "TUE"}, {Name: "holiday"}}
	sorted := SortDays(input)
	assert.Equal(t, []string{"TUE", "sun", "extra", "monsat", "holiday"}, dayNames(sorted))
}

func TestSortDaysExplicitWeekdayWins(t *testing.T) {
	input := []models.Day{
		{Name: "d1", Weekday: intPtr(3)},
		{Name: "friday"},
		{Name: "d2", Weekday: intPtr(1)},
		{Name: "bad", Weekday: intPtr(9)},
	}
	assert.Equal(t, []string{"d2", "d1", "friday", "bad"}, dayNames(SortDays(input)))
}

func TestSortPeriodsNumeric(t *testing.T) {
	input := []models.Period{{Name: "P2"}, {Name: "P10"}, {Name: "P1"}}
	assert.Equal(t, []string{"P1", "P2", "P10"}, periodNames(SortPeriods(input)))
}

func TestSortPeriodsFallbacks(t *testing.T) {
	byOrder := []models.Period{
		{Name: "lunch", Order: intPtr(2)},
		{Name: "morning", Order: intPtr(1)},
	}
	assert.Equal(t, []string{"morning", "lunch"}, periodNames(SortPeriods(byOrder)))

	byIndex := []models.Period{
		{Name: "b", Index: intPtr(2)},
		{Name: "c", Index: intPtr(1)},
	}
	assert.Equal(t, []string{"c", "b"}, periodNames(SortPeriods(byIndex)))

	lexical := []models.Period{{Name: "beta"}, {Name: "alpha"}}
	assert.Equal(t, []string{"alpha", "beta"}, periodNames(SortPeriods(lexical)))
}

func TestSortPeriodsMixedNamesIsOrderIndependent(t *testing.T) {
	want := []string{"C1", "A2", "B"}
	inputs := [][]models.Period{
		{{Name: "C1"}, {Name: "A2"}, {Name: "B"}},
		{{Name: "B"}, {Name: "C1"}, {Name: "A2"}},
		{{Name: "A2"}, {Name: "B"}, {Name: "C1"}},
		{{Name: "B"}, {Name: "A2"}, {Name: "C1"}},
	}
	for _, input := range inputs {
		assert.Equal(t, want, periodNames(SortPeriods(input)))
	}

	withOrder := []models.Period{{Name: "lunch"}, {Name: "break", Order: intPtr(1)}, {Name: "P3"}}
	assert.Equal(t, []string{"P3", "break", "lunch"}, periodNames(SortPeriods(withOrder)))
}

func TestSortEmptyInputs(t *testing.T) {
	days := SortDays(nil)
	periods := SortPeriods(nil)
	assert.NotNil(t, days)
	assert.NotNil(t, periods)
	assert.Empty(t, days)
	assert.Empty(t, periods)
}

func TestExtractTaxonomy(t *testing.T) {
	assignments := []models.Assignment{
		{Day: models.Day{Name: "tue"}, Periods: []models.Period{{Name: "P3"}, {Name: "P4"}}},
		{Day: models.Day{Name: "mon"}, Periods: []models.Period{{Name: "P3"}}},
		{Day: models.Day{Name: "tue"}, Periods: []models.Period{{Name: "P1"}}},
	}
	days, periods := ExtractTaxonomy(assignments)
	assert.Equal(t, []string{"tue", "mon"}, dayNames(days))
	assert.Equal(t, []string{"P3", "P4", "P1"}, periodNames(periods))
}

func TestFilterWeekdays(t *testing.T) {
	days := []models.Day{{Name: "mon"}, {Name: "sat"}, {Name: "fri"}, {Name: "sunday"}, {Name: "misc"}}
	assert.Equal(t, []string{"mon", "fri"}, dayNames(FilterWeekdays(days)))
}
