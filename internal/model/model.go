package model

import (
	"encoding/json"
	"time"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/term"
)

// DefaultReminderMinutes is applied when a course does not specify its
// own reminder lead time.
const DefaultReminderMinutes = 30

// CourseDefinition is the validated course record handed to the
// expansion engine by the form layer. The engine does not re-validate
// required fields; it only enforces the date-range ordering it depends
// on.
type CourseDefinition struct {
	ClassName      string `json:"className"`
	InstructorName string `json:"instructorName"`
	Location       string `json:"location"`
	Notes          string `json:"notes,omitempty"`

	// AcademicTerm keys into the term calendar. Unknown codes mean "no
	// known holidays", not an error.
	AcademicTerm string `json:"academicTerm"`

	// FirstDay / LastDay are calendar dates (midnight UTC, no
	// time-of-day meaning).
	FirstDay time.Time `json:"-"`
	LastDay  time.Time `json:"-"`

	// SelectedTimeSlots maps lowercase weekday names ("monday".."friday";
	// weekend keys are accepted and honored) to slot labels such as
	// "8:00AM - 8:50AM". A weekday may carry several slots.
	SelectedTimeSlots map[string][]string `json:"selectedTimeSlots"`

	// ReminderMinutes is the alarm lead time; 0 means use the default.
	ReminderMinutes int `json:"reminderMinutes,omitempty"`
}

// courseJSON mirrors CourseDefinition on the wire, with date-only
// strings for the range bounds.
type courseJSON struct {
	ClassName         string              `json:"className"`
	InstructorName    string              `json:"instructorName"`
	Location          string              `json:"location"`
	Notes             string              `json:"notes,omitempty"`
	AcademicTerm      string              `json:"academicTerm"`
	FirstDay          string              `json:"firstDay"`
	LastDay           string              `json:"lastDay"`
	SelectedTimeSlots map[string][]string `json:"selectedTimeSlots"`
	ReminderMinutes   int                 `json:"reminderMinutes,omitempty"`
}

// UnmarshalJSON decodes a course with "YYYY-MM-DD" range bounds. The
// dates come in through term.ParseDate so no timezone conversion can
// shift them.
func (c *CourseDefinition) UnmarshalJSON(data []byte) error {
	var cj courseJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}

	first, err := term.ParseDate(cj.FirstDay)
	if err != nil {
		return err
	}
	last, err := term.ParseDate(cj.LastDay)
	if err != nil {
		return err
	}

	*c = CourseDefinition{
		ClassName:         cj.ClassName,
		InstructorName:    cj.InstructorName,
		Location:          cj.Location,
		Notes:             cj.Notes,
		AcademicTerm:      cj.AcademicTerm,
		FirstDay:          first,
		LastDay:           last,
		SelectedTimeSlots: cj.SelectedTimeSlots,
		ReminderMinutes:   cj.ReminderMinutes,
	}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON.
func (c CourseDefinition) MarshalJSON() ([]byte, error) {
	return json.Marshal(courseJSON{
		ClassName:         c.ClassName,
		InstructorName:    c.InstructorName,
		Location:          c.Location,
		Notes:             c.Notes,
		AcademicTerm:      c.AcademicTerm,
		FirstDay:          c.FirstDay.Format("2006-01-02"),
		LastDay:           c.LastDay.Format("2006-01-02"),
		SelectedTimeSlots: c.SelectedTimeSlots,
		ReminderMinutes:   c.ReminderMinutes,
	})
}

// Reminder returns the effective reminder lead time in minutes.
func (c CourseDefinition) Reminder() int {
	if c.ReminderMinutes <= 0 {
		return DefaultReminderMinutes
	}
	return c.ReminderMinutes
}

// Duration is an elapsed class-meeting length. Minutes is always in
// [0, 60) and Hours is never negative; a slot whose end clock time is
// numerically before its start wraps past midnight.
type Duration struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ScheduleEvent is one concrete class meeting produced by expansion.
// Values are immutable once built; the serializer consumes them as-is.
type ScheduleEvent struct {
	// Start is the meeting's date plus slot start time, as a naive local
	// wall time carried in UTC.
	Start    time.Time `json:"start"`
	Duration Duration  `json:"duration"`

	ClassName      string `json:"className"`
	InstructorName string `json:"instructorName"`
	Location       string `json:"location"`
	Notes          string `json:"notes,omitempty"`

	ReminderMinutes int `json:"reminderMinutes"`

	// SlotLabel is the originating weekly slot, e.g. "8:00AM - 8:50AM".
	SlotLabel string `json:"slotLabel"`
}

// End returns the meeting's end instant.
func (e ScheduleEvent) End() time.Time {
	return e.Start.Add(time.Duration(e.Duration.Hours)*time.Hour +
		time.Duration(e.Duration.Minutes)*time.Minute)
}
