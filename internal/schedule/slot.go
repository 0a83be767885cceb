package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
)

// TimeOfDay is a clock time with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Slot is a parsed weekly time slot.
type Slot struct {
	Label string
	Start TimeOfDay
	End   TimeOfDay
}

// Duration returns the slot's elapsed length, wrapping past midnight
// when the end clock time is numerically before the start.
func (s Slot) Duration() model.Duration {
	return durationBetween(s.Start, s.End)
}

// ParseClock parses a clock-time string in either the display form used
// by slot labels ("8:00AM") or 24-hour form ("08:00").
func ParseClock(s string) (TimeOfDay, error) {
	v := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	if v == "" {
		return TimeOfDay{}, fmt.Errorf("empty clock time")
	}

	layout := "15:04"
	if strings.HasSuffix(v, "AM") || strings.HasSuffix(v, "PM") {
		layout = "3:04PM"
	}

	t, err := time.Parse(layout, v)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid clock time %q", s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseSlot parses a slot label of the form "<start> - <end>", e.g.
// "8:00AM - 8:50AM".
func ParseSlot(label string) (Slot, error) {
	parts := strings.Split(label, "-")
	if len(parts) != 2 {
		return Slot{}, fmt.Errorf("invalid slot label %q (want \"start - end\")", label)
	}

	start, err := ParseClock(parts[0])
	if err != nil {
		return Slot{}, fmt.Errorf("slot %q: %w", label, err)
	}
	end, err := ParseClock(parts[1])
	if err != nil {
		return Slot{}, fmt.Errorf("slot %q: %w", label, err)
	}

	return Slot{Label: label, Start: start, End: end}, nil
}

// CalculateDuration parses two clock-time strings and returns the
// elapsed duration from start to end, wrapping past midnight when end is
// numerically earlier.
func CalculateDuration(start, end string) (model.Duration, error) {
	s, err := ParseClock(start)
	if err != nil {
		return model.Duration{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return model.Duration{}, err
	}
	return durationBetween(s, e), nil
}

func durationBetween(start, end TimeOfDay) model.Duration {
	minutes := end.minuteOfDay() - start.minuteOfDay()
	if minutes < 0 {
		minutes += 24 * 60
	}
	return model.Duration{Hours: minutes / 60, Minutes: minutes % 60}
}
