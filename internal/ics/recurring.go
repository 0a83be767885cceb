package ics

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/dateutil"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/schedule"
	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
)

// Recurring export: instead of one VEVENT per class meeting, emit one
// weekly RRULE VEVENT per (weekday, slot) with EXDATEs for the closure
// dates that actually fall on meeting days. The file is much smaller and
// clients render the series as a single editable recurring event. The
// expanded form (Serialize) remains the default because some clients
// handle EXDATE poorly.

var rruleWeekdays = map[time.Weekday]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

var byDayCodes = map[time.Weekday]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// BuildRecurring assembles the compact recurring calendar for a course.
// Malformed slots are reported the same way Generate reports them.
func BuildRecurring(course model.CourseDefinition, cal *term.Calendar, opts BuildOptions) (*ical.Calendar, []schedule.Warning, error) {
	first := term.DateOnly(course.FirstDay)
	last := term.DateOnly(course.LastDay)
	if first.After(last) {
		return nil, nil, fmt.Errorf("%w: %s > %s",
			schedule.ErrInvertedRange, first.Format("2006-01-02"), last.Format("2006-01-02"))
	}

	holidays := cal.HolidaysFor(course.AcademicTerm)
	slots, warnings := schedule.ParseSelected(course.SelectedTimeSlots)
	reminder := course.Reminder()

	out := ical.NewCalendar()
	out.SetMethod(ical.MethodPublish)
	out.SetProductId(productID)
	if opts.CalendarName != "" {
		out.SetXWRCalName(opts.CalendarName)
	}

	// Fixed Sunday..Saturday order keeps output independent of map
	// iteration.
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for _, s := range slots[strings.ToLower(wd.String())] {
			if err := addRecurringEvent(out, course, s, wd, first, last, holidays, reminder, opts.Timestamp); err != nil {
				return nil, nil, err
			}
		}
	}

	return out, warnings, nil
}

// SerializeRecurring renders the recurring form to bytes.
func SerializeRecurring(course model.CourseDefinition, cal *term.Calendar, opts BuildOptions) ([]byte, []schedule.Warning, error) {
	out, warnings, err := BuildRecurring(course, cal, opts)
	if err != nil {
		return nil, nil, err
	}
	data := out.Serialize(ical.WithNewLineWindows)
	if data == "" {
		return nil, nil, fmt.Errorf("ics: serialization produced no output")
	}
	return []byte(data), warnings, nil
}

func addRecurringEvent(out *ical.Calendar, course model.CourseDefinition, s schedule.Slot,
	wd time.Weekday, first, last time.Time, holidays []term.HolidayEntry,
	reminder int, stamp time.Time) error {

	// First meeting: the earliest day in range falling on this weekday.
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	firstMeeting := first.AddDate(0, 0, offset)
	if firstMeeting.After(last) {
		// No day in range matches this weekday; the series is empty.
		return nil
	}

	dtstart := time.Date(firstMeeting.Year(), firstMeeting.Month(), firstMeeting.Day(),
		s.Start.Hour, s.Start.Minute, 0, 0, time.UTC)
	until := time.Date(last.Year(), last.Month(), last.Day(),
		s.Start.Hour, s.Start.Minute, 0, 0, time.UTC)

	// rrule-go walks the identical series the RRULE line describes; its
	// occurrence list is what EXDATEs are intersected against, so only
	// closures that land on an actual meeting day are excluded.
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rruleWeekdays[wd]},
		Dtstart:   dtstart,
		Until:     until,
	})
	if err != nil {
		return fmt.Errorf("ics: building recurrence for %s %q: %w", wd, s.Label, err)
	}

	var exdates []time.Time
	for _, occ := range r.All() {
		if dateutil.IsClosureDate(occ, holidays) {
			exdates = append(exdates, occ)
		}
	}

	dur := s.Duration()
	ve := out.AddEvent(recurringUID(course.ClassName, wd, s.Label))
	ve.SetDtStampTime(stamp.UTC())
	ve.SetStartAt(dtstart)
	ve.SetEndAt(dtstart.Add(time.Duration(dur.Hours)*time.Hour + time.Duration(dur.Minutes)*time.Minute))
	ve.SetSummary(EscapeText(course.ClassName))
	ve.SetLocation(EscapeText(course.Location))
	ve.SetDescription(EscapeText(recurringDescription(course)))

	ve.AddProperty(ical.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;UNTIL=%s;BYDAY=%s",
		until.Format("20060102T150405Z"), byDayCodes[wd]))
	for _, ex := range exdates {
		ve.AddProperty(ical.ComponentPropertyExdate, ex.Format("20060102T150405Z"))
	}

	if reminder > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", reminder))
	}
	return nil
}

func recurringDescription(course model.CourseDefinition) string {
	if course.Notes == "" {
		return course.InstructorName
	}
	return course.InstructorName + "\n" + course.Notes
}

func recurringUID(className string, wd time.Weekday, label string) string {
	seed := strings.Join([]string{className, wd.String(), label}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(seed)).String() + "@coursecal"
}
