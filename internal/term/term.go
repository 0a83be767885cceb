package term

import (
	"sort"
	"strings"
	"time"
)

// closureMarker is the substring in a holiday name that marks a day (or
// range of days) as one on which scheduled classes do not meet. Entries
// without the marker are informational only (e.g. "Commencement Weekend")
// and never suppress class meetings.
const closureMarker = "No Classes"

// NewDate constructs a calendar date at UTC midnight from its components.
//
// Dates in this codebase are always built from (year, month, day) rather
// than parsed through a timezone-aware parser; an ISO string run through
// such a parser can land on the previous or next day depending on the
// host timezone, which silently shifts every generated event.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" string by splitting it into components
// and delegating to NewDate. See NewDate for why this avoids time.Parse.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, &DateError{Value: s}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := atoiStrict(p)
		if err != nil {
			return time.Time{}, &DateError{Value: s}
		}
		nums[i] = n
	}
	y, m, d := nums[0], time.Month(nums[1]), nums[2]
	if y < 1 || m < time.January || m > time.December || d < 1 {
		return time.Time{}, &DateError{Value: s}
	}
	// time.Date normalizes overflow (Feb 31 becomes Mar 3); a date that
	// does not round-trip its components never existed in the month.
	t := NewDate(y, m, d)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, &DateError{Value: s}
	}
	return t, nil
}

// DateError reports a date string that could not be parsed.
type DateError struct {
	Value string
}

func (e *DateError) Error() string {
	return "invalid date: " + e.Value + " (want YYYY-MM-DD)"
}

func atoiStrict(s string) (int, error) {
	// Components are at most 4 digits (year), which also keeps the
	// accumulator far from overflow.
	if s == "" || len(s) > 4 {
		return 0, &DateError{Value: s}
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &DateError{Value: s}
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}

// DateOnly strips any time-of-day component, returning the calendar day
// at UTC midnight. Classification compares days, never instants.
func DateOnly(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// HolidayEntry is a single entry in a term's published academic calendar.
// Exactly one of the two forms is populated: a single Date, or an
// inclusive Start/End range.
type HolidayEntry struct {
	Name string

	// Single-day form. Zero when the entry is a range.
	Date time.Time

	// Range form, inclusive on both ends. Zero when single-day.
	Start time.Time
	End   time.Time
}

// Ranged reports whether the entry uses the Start/End range form.
func (h HolidayEntry) Ranged() bool {
	return !h.Start.IsZero()
}

// IsClosure reports whether this entry cancels class meetings, per the
// "No Classes" naming convention in the published calendar.
func (h HolidayEntry) IsClosure() bool {
	return strings.Contains(h.Name, closureMarker)
}

// Covers reports whether the given day falls on this entry's date, or
// inclusively within its range. Comparison is by calendar day only.
func (h HolidayEntry) Covers(d time.Time) bool {
	day := DateOnly(d)
	if h.Ranged() {
		return !day.Before(DateOnly(h.Start)) && !day.After(DateOnly(h.End))
	}
	return SameDay(day, h.Date)
}

// AcademicTerm is one academic session: its date range plus the holiday
// calendar published for it.
type AcademicTerm struct {
	Code     string
	Start    time.Time
	End      time.Time
	Holidays []HolidayEntry
}

// Calendar is an immutable lookup of academic terms by code. A nil
// *Calendar behaves as an empty one, so callers never need to guard.
type Calendar struct {
	terms map[string]AcademicTerm
}

// NewCalendar builds a Calendar from the given terms. Later duplicates
// of a code replace earlier ones.
func NewCalendar(terms ...AcademicTerm) *Calendar {
	c := &Calendar{terms: make(map[string]AcademicTerm, len(terms))}
	for _, t := range terms {
		c.terms[t.Code] = t
	}
	return c
}

// Lookup returns the term for the given code. An unknown code is not an
// error: generation simply proceeds with no holiday closures.
func (c *Calendar) Lookup(code string) (AcademicTerm, bool) {
	if c == nil {
		return AcademicTerm{}, false
	}
	t, ok := c.terms[code]
	return t, ok
}

// HolidaysFor returns the holiday list for a term code, or nil when the
// code is unknown.
func (c *Calendar) HolidaysFor(code string) []HolidayEntry {
	t, ok := c.Lookup(code)
	if !ok {
		return nil
	}
	return t.Holidays
}

// Terms returns all terms sorted by start date, then code.
func (c *Calendar) Terms() []AcademicTerm {
	if c == nil {
		return nil
	}
	out := make([]AcademicTerm, 0, len(c.terms))
	for _, t := range c.terms {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// WithTerm returns a new Calendar with the given term added or replaced.
// The receiver is left untouched.
func (c *Calendar) WithTerm(t AcademicTerm) *Calendar {
	merged := NewCalendar(c.Terms()...)
	merged.terms[t.Code] = t
	return merged
}

// WithHolidays returns a new Calendar in which the given entries are
// appended to the named term's holiday list. Unknown codes return the
// receiver unchanged.
func (c *Calendar) WithHolidays(code string, entries []HolidayEntry) *Calendar {
	t, ok := c.Lookup(code)
	if !ok || len(entries) == 0 {
		return c
	}
	t.Holidays = append(append([]HolidayEntry(nil), t.Holidays...), entries...)
	return c.WithTerm(t)
}
