// Package ics serializes expanded schedule events into RFC 5545
// iCalendar documents.
//
// Event times in this system are naive local wall times; they are
// committed to UTC on the wire (DTSTART/DTEND in the ...Z form), so the
// bytes are deterministic and round-trip cleanly through conforming
// parsers. DTSTAMP comes from an injected timestamp, never the clock.
package ics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
)

const productID = "-//SSC CodeCrusaders//Course Calendar//EN"

// uidNamespace seeds the deterministic v5 UIDs. UIDs are derived from
// event content so identical input always serializes to identical bytes.
var uidNamespace = uuid.MustParse("5c3b9a52-64ae-4b80-9f2d-0d2f5c3a7e19")

// BuildOptions configures one serialization.
type BuildOptions struct {
	// CalendarName is the X-WR-CALNAME shown by calendar clients.
	CalendarName string

	// Timestamp becomes every VEVENT's DTSTAMP. Callers pass a fixed
	// value when byte-identical output matters (tests, content hashing).
	Timestamp time.Time
}

// Build assembles a VCALENDAR from the given events, one VEVENT each.
func Build(events []model.ScheduleEvent, opts BuildOptions) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for _, ev := range events {
		addEvent(cal, ev, opts.Timestamp)
	}
	return cal
}

// Serialize builds and renders the calendar. On any failure a single
// error is returned and no partial bytes are produced.
//
// Content lines are CRLF-delimited per RFC 5545; the library's default
// newline follows the build platform, which would make the bytes differ
// between hosts.
func Serialize(events []model.ScheduleEvent, opts BuildOptions) ([]byte, error) {
	out := Build(events, opts).Serialize(ical.WithNewLineWindows)
	if out == "" {
		return nil, errors.New("ics: serialization produced no output")
	}
	return []byte(out), nil
}

func addEvent(cal *ical.Calendar, ev model.ScheduleEvent, stamp time.Time) {
	ve := cal.AddEvent(EventUID(ev))
	ve.SetDtStampTime(stamp.UTC())
	ve.SetStartAt(ev.Start.UTC())
	ve.SetEndAt(ev.End().UTC())
	ve.SetSummary(EscapeText(ev.ClassName))
	ve.SetLocation(EscapeText(ev.Location))
	ve.SetDescription(EscapeText(description(ev)))

	if ev.ReminderMinutes > 0 {
		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.ReminderMinutes))
	}
}

// description joins the instructor name with optional notes,
// newline-separated. EscapeText turns the newline into the \n escape the
// format requires.
func description(ev model.ScheduleEvent) string {
	if ev.Notes == "" {
		return ev.InstructorName
	}
	return ev.InstructorName + "\n" + ev.Notes
}

// EventUID derives a stable UID from event content. Two runs over the
// same course always mint the same UIDs, which keeps re-imports from
// duplicating events in clients that merge by UID.
func EventUID(ev model.ScheduleEvent) string {
	seed := strings.Join([]string{
		ev.ClassName,
		ev.Start.UTC().Format("20060102T150405Z"),
		ev.SlotLabel,
	}, "|")
	return uuid.NewSHA1(uidNamespace, []byte(seed)).String() + "@coursecal"
}

// EscapeText escapes the characters RFC 5545 treats as structural inside
// TEXT values. A raw newline or comma inside SUMMARY or LOCATION
// corrupts the file for many clients; the library folds long lines but
// leaves TEXT escaping to the caller.
func EscapeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case ';':
			b.WriteString(`\;`)
		case ',':
			b.WriteString(`\,`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			// Bare CRs have no meaning in TEXT; drop them so CRLF pairs
			// collapse to a single escaped newline.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Filename produces the download filename for a class, falling back to a
// generic name when the class name is empty or unusable.
func Filename(className string) string {
	name := strings.TrimSpace(className)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return -1
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "schedule.ics"
	}
	return name + ".ics"
}
