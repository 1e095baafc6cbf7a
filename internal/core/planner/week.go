package planner

import (
	"time"

	"cloud.google.com/go/civil"
)

// Today returns the calendar date of now in the given location.
func Today(now time.Time, loc *time.Location) civil.Date {
	if loc == nil {
		loc = time.UTC
	}

	return civil.DateOf(now.In(loc))
}

// CurrentWeekBounds returns the half-open interval [start, end) of the
// calendar week containing now. Weeks start on Monday.
func CurrentWeekBounds(now time.Time, loc *time.Location) (civil.Date, civil.Date) {
	today := Today(now, loc)

	// time.Weekday counts from Sunday = 0
	offset := (int(today.In(time.UTC).Weekday()) + 6) % 7

	start := today.AddDays(-offset)
	end := start.AddDays(7)

	return start, end
}

// InWeek reports whether date falls within [start, end).
func InWeek(date civil.Date, start, end civil.Date) bool {
	return !date.Before(start) && date.Before(end)
}
