// Package schedule expands a recurring course definition into the
// concrete class meetings between its first and last day, skipping
// published "No Classes" closures. Expansion is pure: the term calendar
// is injected, nothing is read from the clock or shared state, and the
// same input always yields the same events in the same order.
package schedule

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/dateutil"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
)

// ErrInvertedRange is returned when a course's first day is after its
// last day. The engine fails fast rather than silently generating
// nothing, since an inverted range is far more likely a typo than an
// intentionally empty schedule.
var ErrInvertedRange = errors.New("first day is after last day")

// Warning records a selected slot that had to be skipped. Generation
// never aborts for a malformed slot and never emits garbage times for
// one; the slot is excluded and reported here.
type Warning struct {
	Weekday string `json:"weekday"`
	Label   string `json:"label"`
	Reason  string `json:"reason"`
}

// Result is the outcome of one expansion.
type Result struct {
	Events   []model.ScheduleEvent `json:"events"`
	Warnings []Warning             `json:"warnings,omitempty"`
}

// Generate expands the course into dated events.
//
// Every calendar day from FirstDay through LastDay is visited in order.
// Days whose weekday has no selected slots contribute nothing; days
// covered by a "No Classes" holiday of the course's term are skipped
// entirely, all slots included. Each remaining (day, slot) pair yields
// one event. Within a day, slots are emitted in ascending start-time
// order regardless of the order they were selected in.
//
// cal may be nil; a nil calendar (like an unknown term code) means no
// holiday closures are known.
func Generate(course model.CourseDefinition, cal *term.Calendar) (Result, error) {
	var res Result

	first := term.DateOnly(course.FirstDay)
	last := term.DateOnly(course.LastDay)
	if first.After(last) {
		return res, fmt.Errorf("%w: %s > %s",
			ErrInvertedRange, first.Format("2006-01-02"), last.Format("2006-01-02"))
	}

	holidays := cal.HolidaysFor(course.AcademicTerm)
	slots, warnings := ParseSelected(course.SelectedTimeSlots)
	res.Warnings = warnings
	reminder := course.Reminder()

	for d := range dateutil.Days(first, last) {
		daySlots := slots[weekdayName(d.Weekday())]
		if len(daySlots) == 0 {
			continue
		}
		if dateutil.IsClosureDate(d, holidays) {
			continue
		}

		for _, s := range daySlots {
			res.Events = append(res.Events, model.ScheduleEvent{
				Start: time.Date(d.Year(), d.Month(), d.Day(),
					s.Start.Hour, s.Start.Minute, 0, 0, time.UTC),
				Duration:        s.Duration(),
				ClassName:       course.ClassName,
				InstructorName:  course.InstructorName,
				Location:        course.Location,
				Notes:           course.Notes,
				ReminderMinutes: reminder,
				SlotLabel:       s.Label,
			})
		}
	}

	return res, nil
}

// ParseSelected parses every selected slot label once, up front.
// Malformed labels are dropped and reported; valid slots are sorted by
// start time (then label) so output order never depends on how the form
// layer happened to order its selections.
func ParseSelected(selected map[string][]string) (map[string][]Slot, []Warning) {
	out := make(map[string][]Slot, len(selected))
	var warnings []Warning

	for weekday, labels := range selected {
		key := strings.ToLower(strings.TrimSpace(weekday))
		for _, label := range labels {
			s, err := ParseSlot(label)
			if err != nil {
				warnings = append(warnings, Warning{
					Weekday: key,
					Label:   label,
					Reason:  err.Error(),
				})
				continue
			}
			out[key] = append(out[key], s)
		}
	}

	for key := range out {
		daySlots := out[key]
		sort.SliceStable(daySlots, func(i, j int) bool {
			si, sj := daySlots[i].Start.minuteOfDay(), daySlots[j].Start.minuteOfDay()
			if si != sj {
				return si < sj
			}
			return daySlots[i].Label < daySlots[j].Label
		})
	}

	sortWarnings(warnings)
	return out, warnings
}

// sortWarnings orders warnings deterministically; map iteration order
// would otherwise leak into the response.
func sortWarnings(ws []Warning) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Weekday != ws[j].Weekday {
			return ws[i].Weekday < ws[j].Weekday
		}
		return ws[i].Label < ws[j].Label
	})
}

func weekdayName(wd time.Weekday) string {
	return strings.ToLower(wd.String())
}
