package projection

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

// unrankedDay places days that cannot be ranked after every weekday.
const unrankedDay = 100

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

var periodNumberPattern = regexp.MustCompile(`\d+`)

// DayRank returns the 1 (Monday) .. 7 (Sunday) position of a day. An explicit Weekday wins;
// otherwise the name must contain exactly one weekday prefix. Anything else ranks last.
func DayRank(day models.Day) int {
	if day.Weekday != nil && *day.Weekday >= 1 && *day.Weekday <= len(weekdayNames) {
		return *day.Weekday
	}
	name := strings.ToLower(day.Name)
	rank, hits := unrankedDay, 0
	for i, weekday := range weekdayNames {
		if strings.Contains(name, weekday[:3]) {
			rank = i + 1
			hits++
		}
	}
	if hits != 1 {
		return unrankedDay
	}
	return rank
}

// SortDays returns a new slice of days in weekday order. Unranked days keep their input
// order after the ranked ones.
func SortDays(days []models.Day) []models.Day {
	sorted := make([]models.Day, len(days))
	copy(sorted, days)
	sort.SliceStable(sorted, func(i, j int) bool {
		return DayRank(sorted[i]) < DayRank(sorted[j])
	})
	return sorted
}

// SortPeriods returns a new slice of periods ordered by the number embedded in the name,
// then Order, then Index, then the name itself. At each tier a period carrying the key
// sorts before one that lacks it, so mixed numeric and named periods order the same way
// regardless of input order.
func SortPeriods(periods []models.Period) []models.Period {
	sorted := make([]models.Period, len(periods))
	copy(sorted, periods)
	sort.SliceStable(sorted, func(i, j int) bool {
		return comparePeriods(sorted[i], sorted[j]) < 0
	})
	return sorted
}

func comparePeriods(a, b models.Period) int {
	na, aok := periodNumber(a.Name)
	nb, bok := periodNumber(b.Name)
	if c := compareOptional(na, aok, nb, bok); c != 0 {
		return c
	}
	if c := compareOptional(deref(a.Order), a.Order != nil, deref(b.Order), b.Order != nil); c != 0 {
		return c
	}
	if c := compareOptional(deref(a.Index), a.Index != nil, deref(b.Index), b.Index != nil); c != 0 {
		return c
	}
	return strings.Compare(a.Name, b.Name)
}

// compareOptional orders present values numerically and ahead of absent ones.
func compareOptional(a int, aok bool, b int, bok bool) int {
	switch {
	case aok && bok:
		return compareInts(a, b)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return 0
	}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func periodNumber(name string) (int, bool) {
	digits := periodNumberPattern.FindString(name)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ExtractTaxonomy collects the distinct days and periods referenced by the assignments in
// first-seen order. It backs projections when the backend taxonomy is unavailable.
func ExtractTaxonomy(assignments []models.Assignment) ([]models.Day, []models.Period) {
	days := make([]models.Day, 0)
	periods := make([]models.Period, 0)
	seenDays := make(map[string]struct{})
	seenPeriods := make(map[string]struct{})
	for _, a := range assignments {
		if a.Day.Name != "" {
			if _, ok := seenDays[a.Day.Name]; !ok {
				seenDays[a.Day.Name] = struct{}{}
				days = append(days, a.Day)
			}
		}
		for _, p := range a.Periods {
			key := p.Name
			if key == "" {
				key = p.LongName
			}
			if key == "" {
				continue
			}
			if _, ok := seenPeriods[key]; ok {
				continue
			}
			seenPeriods[key] = struct{}{}
			periods = append(periods, p)
		}
	}
	return days, periods
}

// FilterWeekdays keeps the Monday to Friday columns.
func FilterWeekdays(days []models.Day) []models.Day {
	out := make([]models.Day, 0, len(days))
	for _, d := range days {
		if rank := DayRank(d); rank >= 1 && rank <= 5 {
			out = append(out, d)
		}
	}
	return out
}
