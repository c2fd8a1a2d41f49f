package export

import (
	"fmt"

	ical "github.com/arran4/golang-ical"
)

// ICSExporter renders a calendar week into an iCalendar feed that
// students can import into their own calendar apps.
type ICSExporter struct{}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

// Render produces an iCalendar document with one VEVENT per item.
// Items missing resolved timestamps are skipped rather than emitted
// with bogus dates.
func (e *ICSExporter) Render(week Week) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//Vistari//Revision Planner//EN")

	for i, item := range week.Items {
		if item.StartAt.IsZero() || item.EndAt.IsZero() {
			continue
		}
		uid := fmt.Sprintf("%s-%d@vistari.app", week.WeekOf, i)
		event := cal.AddEvent(uid)
		event.SetStartAt(item.StartAt)
		event.SetEndAt(item.EndAt)
		event.SetSummary(item.Title)
		if item.Subject != "" {
			event.SetDescription(fmt.Sprintf("%s (%s)", item.Subject, item.Type))
		}
	}

	return []byte(cal.Serialize()), nil
}
