package projection

import (
	"regexp"
	"strconv"
	"time"

	"github.com/thilinahansana/university-scheduler-console/internal/models"
)

var timeRangePattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\s*$`)

// PeriodTimeRange parses a period long name of the form "HH:mm - HH:mm" into offsets from
// midnight.
func PeriodTimeRange(p models.Period) (start, end time.Duration, ok bool) {
	m := timeRangePattern.FindStringSubmatch(p.LongName)
	if m == nil {
		return 0, 0, false
	}
	start, ok = clockOffset(m[1], m[2])
	if !ok {
		return 0, 0, false
	}
	end, ok = clockOffset(m[3], m[4])
	if !ok || end <= start {
		return 0, 0, false
	}
	return start, end, true
}

func clockOffset(hh, mm string) (time.Duration, bool) {
	h, err := strconv.Atoi(hh)
	if err != nil || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m > 59 {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, true
}

// CurrentPeriod returns the period whose time range contains now's wall-clock time.
// Intervals are skipped.
func CurrentPeriod(periods []models.Period, now time.Time) (models.Period, bool) {
	offset := time.Duration(now.Hour())*time.Hour + time.Duration(now.Minute())*time.Minute
	for _, p := range SortPeriods(periods) {
		if p.IsInterval {
			continue
		}
		start, end, ok := PeriodTimeRange(p)
		if ok && offset >= start && offset < end {
			return p, true
		}
	}
	return models.Period{}, false
}

// Today returns the taxonomy day matching now's weekday.
func Today(days []models.Day, now time.Time) (models.Day, bool) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	for _, d := range days {
		if DayRank(d) == weekday {
			return d, true
		}
	}
	return models.Day{}, false
}
