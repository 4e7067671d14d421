// Package pricing holds the eligibility and price rules of a booking. Nothing in
// here touches the database; callers load what they need and pass it in.
package pricing

import (
	"time"

	"github.com/gdg-garage/convention-booking/internal/models"
)

const FullAgeYears = 18

// Age is a calendar difference, not a duration.
type Age struct {
	Years  int
	Months int
	Days   int
}

// AgeOn returns the age of someone born on dob at the date on. Only the
// calendar dates matter, time of day and location are ignored.
func AgeOn(dob, on time.Time) Age {
	y1, m1, d1 := dob.Date()
	y2, m2, d2 := on.Date()

	years := y2 - y1
	months := int(m2) - int(m1)
	days := d2 - d1

	if days < 0 {
		months--
		// borrow the length of the month preceding "on"
		days += daysIn(m2-1, y2)
	}
	if months < 0 {
		years--
		months += 12
	}
	return Age{Years: years, Months: months, Days: days}
}

// AgeAtEvent measures against the event's begin date, not the wall clock.
func AgeAtEvent(dob time.Time, event models.Event) Age {
	return AgeOn(dob, event.BeginDate)
}

func FullAge(age Age) bool {
	return age.Years >= FullAgeYears
}

func daysIn(m time.Month, year int) int {
	// time.Date normalises month 0 to December of the previous year
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
