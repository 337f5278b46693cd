package utils

import (
	"time"

	cal "github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// courtCalendar treats weekends and US federal holidays as non-working days.
var courtCalendar = newCourtCalendar()

func newCourtCalendar() *cal.BusinessCalendar {
	c := cal.NewBusinessCalendar()
	c.AddHoliday(
		us.NewYear, us.MlkDay, us.PresidentsDay, us.MemorialDay,
		us.Juneteenth, us.IndependenceDay, us.LaborDay, us.ColumbusDay,
		us.VeteransDay, us.ThanksgivingDay, us.ChristmasDay,
	)
	return c
}

func IsUSFedHoliday(t time.Time) bool {
	actual, observed, _ := courtCalendar.IsHoliday(t)
	return actual || observed
}

// IsCourtClosed reports whether t falls on a weekend or federal holiday.
// Notice deadlines are never shifted by it.
func IsCourtClosed(t time.Time) bool {
	return !courtCalendar.IsWorkday(t)
}
