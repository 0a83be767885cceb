// Package dateutil classifies calendar days against a term's holiday
// calendar and builds the month grid the schedule UI renders. All
// functions are pure; holiday data is passed in, never read from shared
// state.
package dateutil

import (
	"iter"
	"time"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
)

// IsClosureDate reports whether d is a day on which classes do not meet,
// i.e. it falls on (or within the range of) an entry whose name carries
// the "No Classes" marker. Informational entries overlapping d never
// close it.
func IsClosureDate(d time.Time, holidays []term.HolidayEntry) bool {
	for _, h := range holidays {
		if h.IsClosure() && h.Covers(d) {
			return true
		}
	}
	return false
}

// HolidaysInMonth returns every entry, closure or informational, whose
// date falls in the given month, or whose range overlaps any day of it.
// This is a display helper; exclusion logic goes through IsClosureDate.
func HolidaysInMonth(holidays []term.HolidayEntry, month time.Month, year int) []term.HolidayEntry {
	monthStart := term.NewDate(year, month, 1)
	monthEnd := monthStart.AddDate(0, 1, -1)

	out := make([]term.HolidayEntry, 0)
	for _, h := range holidays {
		if h.Ranged() {
			if !h.Start.After(monthEnd) && !h.End.Before(monthStart) {
				out = append(out, h)
			}
			continue
		}
		if h.Date.Year() == year && h.Date.Month() == month {
			out = append(out, h)
		}
	}
	return out
}

// Days yields every calendar day from first to last inclusive, as fresh
// midnight-UTC values. An inverted range yields nothing.
func Days(first, last time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		for d := term.DateOnly(first); !d.After(term.DateOnly(last)); d = d.AddDate(0, 0, 1) {
			if !yield(d) {
				return
			}
		}
	}
}

// DayCell is one cell of the rendered month grid.
type DayCell struct {
	Day   int        `json:"day"`
	Month time.Month `json:"month"`
	Year  int        `json:"year"`

	IsPrevMonth bool `json:"isPrevMonth"`
	IsNextMonth bool `json:"isNextMonth"`

	// IsGreyedOut marks weekends and closure dates. Cells borrowed from
	// adjacent months compute the flag against their own month and year.
	IsGreyedOut bool `json:"isGreyedOut"`
}

// MonthGrid builds the 7-column calendar grid for a month: trailing days
// of the previous month to fill the first row (Sunday-start weeks),
// every day of the month, then leading days of the next month padding
// the total to a multiple of 7.
func MonthGrid(month time.Month, year int, holidays []term.HolidayEntry) []DayCell {
	firstOfMonth := term.NewDate(year, month, 1)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)
	lead := int(firstOfMonth.Weekday()) // cells borrowed from the previous month
	nextMonthStart := firstOfMonth.AddDate(0, 1, 0)

	cells := make([]DayCell, 0, lead+lastOfMonth.Day()+6)

	for i := lead; i > 0; i-- {
		d := firstOfMonth.AddDate(0, 0, -i)
		cells = append(cells, newCell(d, holidays, true, false))
	}
	for d := range Days(firstOfMonth, lastOfMonth) {
		cells = append(cells, newCell(d, holidays, false, false))
	}
	for i := 0; len(cells)%7 != 0; i++ {
		d := nextMonthStart.AddDate(0, 0, i)
		cells = append(cells, newCell(d, holidays, false, true))
	}

	return cells
}

func newCell(d time.Time, holidays []term.HolidayEntry, prev, next bool) DayCell {
	wd := d.Weekday()
	return DayCell{
		Day:         d.Day(),
		Month:       d.Month(),
		Year:        d.Year(),
		IsPrevMonth: prev,
		IsNextMonth: next,
		IsGreyedOut: wd == time.Saturday || wd == time.Sunday || IsClosureDate(d, holidays),
	}
}
