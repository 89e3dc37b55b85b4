package occupancy

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// FiscalYearStartMonth is the first month of the Japanese fiscal year.
const FiscalYearStartMonth = time.April

var ErrInvalidPeriod = errors.New("invalid reporting period")

type PeriodKind string

const (
	PeriodMonth        PeriodKind = "month"
	PeriodFiscalYear   PeriodKind = "fiscal_year"
	PeriodCalendarYear PeriodKind = "calendar_year"
	PeriodRange        PeriodKind = "range"
)

// Period is a closed-open date range [Start, End).
type Period struct {
	Start time.Time
	End   time.Time
	Label string
	Kind  PeriodKind
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)).Hours() / 24)
}

func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

func NewPeriod(start, end time.Time, label string) (Period, error) {
	start, end = DateOf(start), DateOf(end)
	if !end.After(start) {
		return Period{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidPeriod, end.Format(DateLayout), start.Format(DateLayout))
	}
	if label == "" {
		label = start.Format(DateLayout) + ".." + end.AddDate(0, 0, -1).Format(DateLayout)
	}
	return Period{Start: start, End: end, Label: label, Kind: PeriodRange}, nil
}

// RangeInclusive builds the period covering first through last, both inclusive.
func RangeInclusive(first, last time.Time) (Period, error) {
	return NewPeriod(first, DateOf(last).AddDate(0, 0, 1), "")
}

func MonthPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(0, 1, 0),
		Label: start.Format("2006-01"),
		Kind:  PeriodMonth,
	}, nil
}

func CalendarYearPeriod(year int) Period {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(1, 0, 0),
		Label: fmt.Sprintf("%d", year),
		Kind:  PeriodCalendarYear,
	}
}

// FiscalYearPeriod covers April 1 of startYear through March 31 of the following year.
func FiscalYearPeriod(startYear int) Period {
	start := time.Date(startYear, FiscalYearStartMonth, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   start.AddDate(1, 0, 0),
		Label: fmt.Sprintf("FY%d", startYear),
		Kind:  PeriodFiscalYear,
	}
}

// FiscalYearFor returns the fiscal year containing date.
func FiscalYearFor(date time.Time) Period {
	year := date.Year()
	if date.Month() < FiscalYearStartMonth {
		year--
	}
	return FiscalYearPeriod(year)
}

// YearToDate covers January 1 of asOf's year through asOf inclusive.
func YearToDate(asOf time.Time) Period {
	asOf = DateOf(asOf)
	start := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Start: start,
		End:   asOf.AddDate(0, 0, 1),
		Label: fmt.Sprintf("%d-YTD-%s", asOf.Year(), asOf.Format(DateLayout)),
		Kind:  PeriodRange,
	}
}

func (p Period) Days() int {
	return DaysBetween(p.Start, p.End)
}

func (p Period) Contains(date time.Time) bool {
	date = DateOf(date)
	return !date.Before(p.Start) && date.Before(p.End)
}

// LastDay is the final date inside the period.
func (p Period) LastDay() time.Time {
	return p.End.AddDate(0, 0, -1)
}

// CalendarMonth reports the (year, month) when the period is exactly one calendar month.
func (p Period) CalendarMonth() (int, time.Month, bool) {
	if p.Start.Day() != 1 {
		return 0, 0, false
	}
	if !p.Start.AddDate(0, 1, 0).Equal(p.End) {
		return 0, 0, false
	}
	return p.Start.Year(), p.Start.Month(), true
}

// Months splits the period into calendar months, clipping the first and last.
func (p Period) Months() []Period {
	months := []Period{}
	for cursor := p.Start; cursor.Before(p.End); {
		monthStart := time.Date(cursor.Year(), cursor.Month(), 1, 0, 0, 0, 0, time.UTC)
		next := monthStart.AddDate(0, 1, 0)
		end := next
		if end.After(p.End) {
			end = p.End
		}
		kind, label := PeriodRange, ""
		if cursor.Equal(monthStart) && end.Equal(next) {
			kind, label = PeriodMonth, monthStart.Format("2006-01")
		} else {
			label = cursor.Format(DateLayout) + ".." + end.AddDate(0, 0, -1).Format(DateLayout)
		}
		months = append(months, Period{Start: cursor, End: end, Label: label, Kind: kind})
		cursor = end
	}
	return months
}
