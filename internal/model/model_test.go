package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestCourseDefinitionJSON(t *testing.T) {
	in := []byte(`{
		"className": "Calculus II",
		"instructorName": "Dr. Vega",
		"academicTerm": "SP2025",
		"firstDay": "2025-01-21",
		"lastDay": "2025-05-17",
		"selectedTimeSlots": {"tuesday": ["9:00AM - 9:50AM"]}
	}`)

	var c CourseDefinition
	if err := json.Unmarshal(in, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.FirstDay.Year() != 2025 || c.FirstDay.Month() != time.January || c.FirstDay.Day() != 21 {
		t.Errorf("firstDay = %v", c.FirstDay)
	}
	if c.FirstDay.Location() != time.UTC || c.FirstDay.Hour() != 0 {
		t.Errorf("firstDay not midnight UTC: %v", c.FirstDay)
	}

	out, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back CourseDefinition
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if !back.FirstDay.Equal(c.FirstDay) || !back.LastDay.Equal(c.LastDay) {
		t.Errorf("round trip dates: %v %v", back.FirstDay, back.LastDay)
	}
}

func TestCourseDefinitionBadDates(t *testing.T) {
	for _, in := range []string{
		`{"firstDay": "01/21/2025", "lastDay": "2025-05-17"}`,
		`{"firstDay": "2025-01-21", "lastDay": ""}`,
		`{"firstDay": "2025-01-21"}`,
	} {
		var c CourseDefinition
		if err := json.Unmarshal([]byte(in), &c); err == nil {
			t.Errorf("unmarshal(%s) = nil error, want error", in)
		}
	}
}

func TestReminderDefault(t *testing.T) {
	var c CourseDefinition
	if got := c.Reminder(); got != DefaultReminderMinutes {
		t.Errorf("Reminder() = %d, want %d", got, DefaultReminderMinutes)
	}
	c.ReminderMinutes = 45
	if got := c.Reminder(); got != 45 {
		t.Errorf("Reminder() = %d, want 45", got)
	}
}

func TestScheduleEventEnd(t *testing.T) {
	ev := ScheduleEvent{
		Start:    time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC),
		Duration: Duration{Hours: 0, Minutes: 45},
	}
	want := time.Date(2025, time.March, 11, 0, 15, 0, 0, time.UTC)
	if got := ev.End(); !got.Equal(want) {
		t.Errorf("End() = %v, want %v", got, want)
	}
}
