package schedule

import (
	"testing"

	"github.com/SSC-CodeCrusaders/course-calendar-production-sub000/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOfDay
	}{
		{"8:00AM", TimeOfDay{8, 0}},
		{"08:00AM", TimeOfDay{8, 0}},
		{"8:50AM", TimeOfDay{8, 50}},
		{"12:00PM", TimeOfDay{12, 0}},
		{"12:00AM", TimeOfDay{0, 0}},
		{"2:15pm", TimeOfDay{14, 15}},
		{"08:00", TimeOfDay{8, 0}},
		{"8:00", TimeOfDay{8, 0}},
		{"23:30", TimeOfDay{23, 30}},
		{"00:15", TimeOfDay{0, 15}},
		{" 9:05 AM ", TimeOfDay{9, 5}},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if err != nil {
			t.Errorf("ParseClock(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, in := range []string{"", "noon", "25:00", "8:60AM", "8AM", "8:00XM"} {
		if _, err := ParseClock(in); err == nil {
			t.Errorf("ParseClock(%q) = nil error, want error", in)
		}
	}
}

func TestParseSlot(t *testing.T) {
	s, err := ParseSlot("8:00AM - 8:50AM")
	if err != nil {
		t.Fatalf("ParseSlot error: %v", err)
	}
	if s.Label != "8:00AM - 8:50AM" {
		t.Errorf("label = %q", s.Label)
	}
	if s.Start != (TimeOfDay{8, 0}) || s.End != (TimeOfDay{8, 50}) {
		t.Errorf("slot = %+v", s)
	}
	if d := s.Duration(); d != (model.Duration{Hours: 0, Minutes: 50}) {
		t.Errorf("duration = %+v, want 0h50m", d)
	}
}

func TestParseSlotInvalid(t *testing.T) {
	for _, in := range []string{"", "8:00AM", "8:00AM - 9:00AM - 10:00AM", "start - end", "8:00AM - bogus"} {
		if _, err := ParseSlot(in); err == nil {
			t.Errorf("ParseSlot(%q) = nil error, want error", in)
		}
	}
}

func TestCalculateDuration(t *testing.T) {
	tests := []struct {
		start, end string
		want       model.Duration
	}{
		{"08:00", "08:50", model.Duration{Hours: 0, Minutes: 50}},
		{"23:30", "00:15", model.Duration{Hours: 0, Minutes: 45}}, // wraps past midnight
		{"9:30AM", "10:45AM", model.Duration{Hours: 1, Minutes: 15}},
		{"1:00PM", "1:00PM", model.Duration{Hours: 0, Minutes: 0}},
		{"10:00PM", "1:30AM", model.Duration{Hours: 3, Minutes: 30}},
	}
	for _, tt := range tests {
		got, err := CalculateDuration(tt.start, tt.end)
		if err != nil {
			t.Errorf("CalculateDuration(%q, %q) error: %v", tt.start, tt.end, err)
			continue
		}
		if got != tt.want {
			t.Errorf("CalculateDuration(%q, %q) = %+v, want %+v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestCalculateDurationInvalid(t *testing.T) {
	if _, err := CalculateDuration("junk", "08:50"); err == nil {
		t.Error("invalid start should error")
	}
	if _, err := CalculateDuration("08:00", "junk"); err == nil {
		t.Error("invalid end should error")
	}
}
