// Package calendar renders a user's bookings as an iCalendar feed.
package calendar

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"ignitecall/internal/domain"
)

const productID = "-//ignitecall//bookings//EN"

// Export builds a VCALENDAR with one VEVENT per booking.
func Export(owner domain.User, bookings []domain.Scheduling) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(fmt.Sprintf("%s (@%s)", owner.Name, owner.Username))

	for _, b := range bookings {
		ev := cal.AddEvent(b.ID.String() + "@ignitecall")
		ev.SetCreatedTime(b.CreatedAt)
		ev.SetDtStampTime(b.CreatedAt)
		ev.SetStartAt(b.Date)
		ev.SetEndAt(b.End())
		ev.SetSummary("Call with " + b.Name)
		if b.Observations != "" {
			ev.SetDescription(b.Observations)
		}
		ev.AddAttendee(b.Email, ical.WithCN(b.Name))
	}

	return cal.Serialize()
}
