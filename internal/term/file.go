package term

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Terms file format:
//
//	terms:
//	  - code: SP2026
//	    start: 2026-01-20
//	    end: 2026-05-16
//	    holidays:
//	      - name: "Spring Break - No Classes"
//	        start: 2026-03-16
//	        end: 2026-03-20
//	      - name: "Commencement Weekend"
//	        date: 2026-05-15
//
// Dates are date-only strings; they are split into components and built
// with NewDate rather than handed to a timestamp parser (see NewDate).

type yamlDate struct {
	t time.Time
}

func (d *yamlDate) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

type holidayYAML struct {
	Name  string    `yaml:"name"`
	Date  *yamlDate `yaml:"date,omitempty"`
	Start *yamlDate `yaml:"start,omitempty"`
	End   *yamlDate `yaml:"end,omitempty"`
}

type termYAML struct {
	Code     string        `yaml:"code"`
	Start    yamlDate      `yaml:"start"`
	End      yamlDate      `yaml:"end"`
	Holidays []holidayYAML `yaml:"holidays"`
}

type termsFile struct {
	Terms []termYAML `yaml:"terms"`
}

// Parse decodes a terms file payload into a list of AcademicTerm.
func Parse(data []byte) ([]AcademicTerm, error) {
	var f termsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("terms file: %w", err)
	}

	terms := make([]AcademicTerm, 0, len(f.Terms))
	for _, ty := range f.Terms {
		t, err := ty.toTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

// LoadFile reads and parses a terms file. A missing file is not an
// error; it simply contributes no terms, so deployments without one fall
// back to the builtin calendar.
func LoadFile(path string) ([]AcademicTerm, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return Parse(data)
}

func (ty termYAML) toTerm() (AcademicTerm, error) {
	if ty.Code == "" {
		return AcademicTerm{}, errors.New("terms file: term with empty code")
	}
	if ty.Start.t.IsZero() || ty.End.t.IsZero() {
		return AcademicTerm{}, fmt.Errorf("terms file: term %s missing start or end", ty.Code)
	}
	if ty.Start.t.After(ty.End.t) {
		return AcademicTerm{}, fmt.Errorf("terms file: term %s starts after it ends", ty.Code)
	}

	t := AcademicTerm{
		Code:  ty.Code,
		Start: ty.Start.t,
		End:   ty.End.t,
	}

	for _, hy := range ty.Holidays {
		h, err := hy.toEntry(ty.Code)
		if err != nil {
			return AcademicTerm{}, err
		}
		t.Holidays = append(t.Holidays, h)
	}
	return t, nil
}

func (hy holidayYAML) toEntry(code string) (HolidayEntry, error) {
	if hy.Name == "" {
		return HolidayEntry{}, fmt.Errorf("terms file: term %s has a holiday with no name", code)
	}

	single := hy.Date != nil
	ranged := hy.Start != nil || hy.End != nil

	switch {
	case single && ranged:
		return HolidayEntry{}, fmt.Errorf("terms file: holiday %q has both date and range", hy.Name)
	case single:
		return HolidayEntry{Name: hy.Name, Date: hy.Date.t}, nil
	case hy.Start == nil || hy.End == nil:
		return HolidayEntry{}, fmt.Errorf("terms file: holiday %q is missing start or end", hy.Name)
	case hy.Start.t.After(hy.End.t):
		return HolidayEntry{}, fmt.Errorf("terms file: holiday %q starts after it ends", hy.Name)
	default:
		return HolidayEntry{Name: hy.Name, Start: hy.Start.t, End: hy.End.t}, nil
	}
}
