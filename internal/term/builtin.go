package term

import "time"

// BuiltinCalendar returns the compiled-in academic calendar. Deployments
// extend or override these terms via the terms file (see LoadFile) and
// registrar holiday feeds; the builtin set exists so a bare binary still
// generates correct schedules for the current academic year.
func BuiltinCalendar() *Calendar {
	return NewCalendar(
		AcademicTerm{
			Code:  "SP2025",
			Start: NewDate(2025, time.January, 21),
			End:   NewDate(2025, time.May, 17),
			Holidays: []HolidayEntry{
				{
					Name:  "Spring Break - No Classes",
					Start: NewDate(2025, time.March, 17),
					End:   NewDate(2025, time.March, 21),
				},
				{
					Name:  "Easter Break - No Classes",
					Start: NewDate(2025, time.April, 18),
					End:   NewDate(2025, time.April, 21),
				},
				{
					Name:  "Commencement Weekend",
					Start: NewDate(2025, time.May, 16),
					End:   NewDate(2025, time.May, 17),
				},
			},
		},
		AcademicTerm{
			Code:  "SU2025",
			Start: NewDate(2025, time.June, 2),
			End:   NewDate(2025, time.August, 8),
			Holidays: []HolidayEntry{
				{
					Name: "Juneteenth - No Classes",
					Date: NewDate(2025, time.June, 19),
				},
				{
					Name: "Independence Day - No Classes",
					Date: NewDate(2025, time.July, 4),
				},
			},
		},
		AcademicTerm{
			Code:  "FA2025",
			Start: NewDate(2025, time.August, 25),
			End:   NewDate(2025, time.December, 13),
			Holidays: []HolidayEntry{
				{
					Name: "Labor Day - No Classes",
					Date: NewDate(2025, time.September, 1),
				},
				{
					Name:  "Fall Break - No Classes",
					Start: NewDate(2025, time.October, 13),
					End:   NewDate(2025, time.October, 14),
				},
				{
					Name:  "Thanksgiving Break - No Classes",
					Start: NewDate(2025, time.November, 26),
					End:   NewDate(2025, time.November, 28),
				},
				{
					Name: "Founders Day",
					Date: NewDate(2025, time.October, 1),
				},
			},
		},
	)
}
