package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

// CalendarEvent is one weekly recurring activity.
type CalendarEvent struct {
	UID         string
	Summary     string
	Location    string
	Description string
	Start       time.Time
	End         time.Time
	// Weeks bounds the weekly recurrence. Zero or one yields a single event.
	Weeks int
}

// Calendar is the content of an iCalendar export.
type Calendar struct {
	Name   string
	Events []CalendarEvent
}

// ICSExporter renders personal timetables as iCalendar feeds.
type ICSExporter struct {
	now func() time.Time
}

// NewICSExporter constructs an iCalendar exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{now: time.Now}
}

// Render serializes the calendar.
func (e *ICSExporter) Render(data Calendar) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timetable-console//grid export//EN")
	if data.Name != "" {
		cal.SetName(data.Name)
		cal.SetXWRCalName(data.Name)
	}

	stamp := e.now().UTC()
	for _, ev := range data.Events {
		if ev.UID == "" {
			return nil, fmt.Errorf("calendar event requires a uid")
		}
		if !ev.End.After(ev.Start) {
			return nil, fmt.Errorf("calendar event %s ends before it starts", ev.UID)
		}
		event := cal.AddEvent(ev.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(ev.Start)
		event.SetEndAt(ev.End)
		event.SetSummary(ev.Summary)
		if ev.Location != "" {
			event.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			event.SetDescription(ev.Description)
		}
		if ev.Weeks > 1 {
			event.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", ev.Weeks))
		}
	}
	return []byte(cal.Serialize()), nil
}
