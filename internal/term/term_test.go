package term

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-10")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.March || d.Day() != 10 {
		t.Errorf("ParseDate = %v, want 2025-03-10", d)
	}
	if d.Hour() != 0 || d.Location() != time.UTC {
		t.Errorf("ParseDate produced non-midnight-UTC value: %v", d)
	}

	// Leap day is a real date.
	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Errorf("ParseDate(2024-02-29) error: %v", err)
	}
}

func TestParseDateInvalid(t *testing.T) {
	bad := []string{
		"", "2025-03", "2025/03/10", "2025-13-01", "2025-00-10",
		"2025-01-32", "abcd-ef-gh", "2025-3-", "0000-01-01",
		// Days that overflow their month must not normalize into the next.
		"2025-02-29", "2025-02-31", "2025-04-31", "2025-06-31",
		// Digit runs long enough to overflow a naive accumulator.
		"99999999999999999999-01-01", "2025-01-99999999999999999999",
	}
	for _, in := range bad {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) = nil error, want error", in)
		}
	}
}

func TestIsClosure(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Spring Break - No Classes", true},
		{"No Classes", true},
		{"Commencement Weekend", false},
		{"Founders Day", false},
		{"no classes", false}, // marker is case-sensitive, matching the published calendar
	}
	for _, tt := range tests {
		h := HolidayEntry{Name: tt.name}
		if got := h.IsClosure(); got != tt.want {
			t.Errorf("IsClosure(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHolidayEntryCovers(t *testing.T) {
	single := HolidayEntry{Name: "Labor Day - No Classes", Date: NewDate(2025, time.September, 1)}
	ranged := HolidayEntry{
		Name:  "Spring Break - No Classes",
		Start: NewDate(2025, time.March, 17),
		End:   NewDate(2025, time.March, 21),
	}

	tests := []struct {
		entry HolidayEntry
		day   time.Time
		want  bool
	}{
		{single, NewDate(2025, time.September, 1), true},
		{single, NewDate(2025, time.September, 2), false},
		// Time-of-day must be stripped before comparison.
		{single, time.Date(2025, time.September, 1, 23, 59, 0, 0, time.UTC), true},
		{ranged, NewDate(2025, time.March, 16), false},
		{ranged, NewDate(2025, time.March, 17), true},
		{ranged, NewDate(2025, time.March, 19), true},
		{ranged, NewDate(2025, time.March, 21), true},
		{ranged, NewDate(2025, time.March, 22), false},
	}
	for _, tt := range tests {
		if got := tt.entry.Covers(tt.day); got != tt.want {
			t.Errorf("%q.Covers(%s) = %v, want %v",
				tt.entry.Name, tt.day.Format("2006-01-02"), got, tt.want)
		}
	}
}

func TestCalendarLookup(t *testing.T) {
	cal := NewCalendar(AcademicTerm{
		Code:  "SP2025",
		Start: NewDate(2025, time.January, 21),
		End:   NewDate(2025, time.May, 17),
	})

	if _, ok := cal.Lookup("SP2025"); !ok {
		t.Error("Lookup(SP2025) not found")
	}
	if _, ok := cal.Lookup("XX9999"); ok {
		t.Error("Lookup(XX9999) found, want not found")
	}
	if got := cal.HolidaysFor("XX9999"); got != nil {
		t.Errorf("HolidaysFor(XX9999) = %v, want nil", got)
	}
}

func TestNilCalendar(t *testing.T) {
	var cal *Calendar
	if _, ok := cal.Lookup("SP2025"); ok {
		t.Error("nil calendar Lookup returned ok")
	}
	if got := cal.Terms(); got != nil {
		t.Errorf("nil calendar Terms = %v, want nil", got)
	}
}

func TestWithTermAndHolidays(t *testing.T) {
	base := NewCalendar(AcademicTerm{
		Code:  "SP2025",
		Start: NewDate(2025, time.January, 21),
		End:   NewDate(2025, time.May, 17),
	})

	extra := []HolidayEntry{{Name: "Snow Day - No Classes", Date: NewDate(2025, time.February, 3)}}
	merged := base.WithHolidays("SP2025", extra)

	if got := len(merged.HolidaysFor("SP2025")); got != 1 {
		t.Errorf("merged holidays = %d, want 1", got)
	}
	// The original calendar must be untouched.
	if got := len(base.HolidaysFor("SP2025")); got != 0 {
		t.Errorf("base holidays mutated: %d entries", got)
	}

	// Unknown code: no-op.
	if got := merged.WithHolidays("XX9999", extra); got != merged {
		t.Error("WithHolidays on unknown code should return the receiver")
	}
}

func TestTermsSorted(t *testing.T) {
	cal := NewCalendar(
		AcademicTerm{Code: "FA2025", Start: NewDate(2025, time.August, 25)},
		AcademicTerm{Code: "SP2025", Start: NewDate(2025, time.January, 21)},
		AcademicTerm{Code: "SU2025", Start: NewDate(2025, time.June, 2)},
	)
	terms := cal.Terms()
	want := []string{"SP2025", "SU2025", "FA2025"}
	for i, code := range want {
		if terms[i].Code != code {
			t.Errorf("Terms()[%d] = %s, want %s", i, terms[i].Code, code)
		}
	}
}

func TestBuiltinCalendarSP2025(t *testing.T) {
	cal := BuiltinCalendar()
	sp, ok := cal.Lookup("SP2025")
	if !ok {
		t.Fatal("builtin calendar is missing SP2025")
	}
	if !sp.Start.Equal(NewDate(2025, time.January, 21)) || !sp.End.Equal(NewDate(2025, time.May, 17)) {
		t.Errorf("SP2025 range = %s..%s", sp.Start.Format("2006-01-02"), sp.End.Format("2006-01-02"))
	}

	// Spring break must be a closure covering 2025-03-17..21.
	covered := false
	for _, h := range sp.Holidays {
		if h.IsClosure() && h.Covers(NewDate(2025, time.March, 19)) {
			covered = true
		}
	}
	if !covered {
		t.Error("SP2025 spring break closure missing")
	}
}
