package model

import (
	"fmt"
	"strconv"
	"time"
)

// PeriodKind godoc
type PeriodKind string

const (
	PeriodKind_Year  PeriodKind = "year"
	PeriodKind_Month PeriodKind = "month"
	PeriodKind_Week  PeriodKind = "week"
)

// Period is a calendar reporting window. Accepted textual forms are
// "2024" (year), "2024-01" (month) and "2024-W05" (ISO week). Anything
// else is rejected with ErrPeriodInvalid, there is no silent fallback.
type Period struct {
	Kind  PeriodKind
	Year  int
	Month time.Month
	Week  int
}

// ParsePeriod parses the textual period format used by every entry point
func ParsePeriod(s string) (Period, error) {
	switch {
	case len(s) == 4:
		year, err := strconv.Atoi(s)
		if err != nil || year < 1970 || year > 9999 {
			return Period{}, ErrPeriodInvalid
		}
		return Period{Kind: PeriodKind_Year, Year: year}, nil

	case len(s) == 7 && s[4] == '-' && s[5] != 'W':
		year, err := strconv.Atoi(s[:4])
		if err != nil || year < 1970 || year > 9999 {
			return Period{}, ErrPeriodInvalid
		}
		month, err := strconv.Atoi(s[5:])
		if err != nil || month < 1 || month > 12 {
			return Period{}, ErrPeriodInvalid
		}
		return Period{Kind: PeriodKind_Month, Year: year, Month: time.Month(month)}, nil

	case len(s) == 8 && s[4] == '-' && s[5] == 'W':
		year, err := strconv.Atoi(s[:4])
		if err != nil || year < 1970 || year > 9999 {
			return Period{}, ErrPeriodInvalid
		}
		week, err := strconv.Atoi(s[6:])
		if err != nil || week < 1 || week > isoWeeksInYear(year) {
			return Period{}, ErrPeriodInvalid
		}
		return Period{Kind: PeriodKind_Week, Year: year, Week: week}, nil
	}
	return Period{}, ErrPeriodInvalid
}

// MonthOf returns the month period containing the given time
func MonthOf(t time.Time) Period {
	t = t.UTC()
	return Period{Kind: PeriodKind_Month, Year: t.Year(), Month: t.Month()}
}

// YearOf returns the year period containing the given time
func YearOf(t time.Time) Period {
	return Period{Kind: PeriodKind_Year, Year: t.UTC().Year()}
}

func (p Period) String() string {
	switch p.Kind {
	case PeriodKind_Month:
		return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
	case PeriodKind_Week:
		return fmt.Sprintf("%04d-W%02d", p.Year, p.Week)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}

func (p Period) IsZero() bool {
	return p.Kind == ""
}

// Window returns the UTC half open interval [start, end) covered by the period
func (p Period) Window() (time.Time, time.Time) {
	switch p.Kind {
	case PeriodKind_Month:
		start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	case PeriodKind_Week:
		start := isoWeekStart(p.Year, p.Week)
		return start, start.AddDate(0, 0, 7)
	default:
		start := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	}
}

// Prev returns the immediately preceding period of the same kind
func (p Period) Prev() Period {
	switch p.Kind {
	case PeriodKind_Month:
		start, _ := p.Window()
		return MonthOf(start.AddDate(0, 0, -1))
	case PeriodKind_Week:
		if p.Week > 1 {
			return Period{Kind: PeriodKind_Week, Year: p.Year, Week: p.Week - 1}
		}
		return Period{Kind: PeriodKind_Week, Year: p.Year - 1, Week: isoWeeksInYear(p.Year - 1)}
	default:
		return Period{Kind: PeriodKind_Year, Year: p.Year - 1}
	}
}

// isoWeekStart returns the Monday opening the given ISO week
func isoWeekStart(year, week int) time.Time {
	// Jan 4 always falls in ISO week 1
	ref := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(ref.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := ref.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (week-1)*7)
}

func isoWeeksInYear(year int) int {
	// Dec 28 always falls in the last ISO week of its year
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}
