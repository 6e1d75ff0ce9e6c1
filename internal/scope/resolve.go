package scope

import "time"

const (
	minYear = 1
	maxYear = 9999
)

// Resolve picks the scope for the requested components.
//
// Priority is year+month+day (ExactDay), year+month (Month), year (Year),
// then DefaultUpcoming anchored at today. A day without a month is treated
// as absent, as is a month without a year. Components that cannot form a
// real calendar date fail with ErrInvalidDate; nothing is clamped.
func Resolve(c DateComponents, today time.Time) (Resolution, error) {
	if c.Year < 0 || c.Month < 0 || c.Day < 0 {
		return Resolution{}, &InvalidDateError{Year: c.Year, Month: c.Month, Day: c.Day, Reason: "negative component"}
	}

	switch {
	case c.HasYear() && c.HasMonth() && c.HasDay():
		d, err := NewDate(c.Year, c.Month, c.Day)
		if err != nil {
			return Resolution{}, err
		}
		return Resolution{
			Scope:   ExactDay{Date: d},
			Context: Context{Mode: ModeExactDay, Year: c.Year, Month: time.Month(c.Month), Day: c.Day},
		}, nil

	case c.HasYear() && c.HasMonth():
		start, err := NewDate(c.Year, c.Month, 1)
		if err != nil {
			return Resolution{}, err
		}
		end := time.Date(c.Year, time.Month(c.Month), DaysIn(c.Year, time.Month(c.Month)), 0, 0, 0, 0, time.UTC)
		return Resolution{
			Scope:   Month{Start: start, End: end},
			Context: Context{Mode: ModeMonth, Year: c.Year, Month: time.Month(c.Month), Day: 1},
		}, nil

	case c.HasYear():
		start, err := NewDate(c.Year, 1, 1)
		if err != nil {
			return Resolution{}, err
		}
		end := time.Date(c.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
		return Resolution{
			Scope:   Year{Start: start, End: end},
			Context: Context{Mode: ModeYear, Year: c.Year, Month: time.January, Day: 1},
		}, nil

	default:
		t := Today(today)
		return Resolution{
			Scope:   DefaultUpcoming{Today: t},
			Context: Context{Mode: ModeDefaultUpcoming, Year: t.Year(), Month: t.Month(), Day: t.Day()},
		}, nil
	}
}

// NewDate builds a calendar date, rejecting anything time.Date would
// normalize (April 31st, month 13, year 0).
func NewDate(year, month, day int) (time.Time, error) {
	if year < minYear || year > maxYear {
		return time.Time{}, &InvalidDateError{Year: year, Month: month, Day: day, Reason: "year out of range"}
	}
	if month < 1 || month > 12 {
		return time.Time{}, &InvalidDateError{Year: year, Month: month, Day: day, Reason: "month out of range"}
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return time.Time{}, &InvalidDateError{Year: year, Month: month, Day: day, Reason: "day out of range"}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// DaysIn returns the number of days in the given month, leap years
// included.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Today strips the clock part of t, keeping whatever calendar date t
// carries in its own location.
func Today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
