package scope

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date encoding used for every bound the
// package produces.
const DateLayout = "2006-01-02"

// Mode identifies which kind of view a request resolved to.
type Mode int

const (
	ModeDefaultUpcoming Mode = iota
	ModeYear
	ModeMonth
	ModeExactDay
)

func (m Mode) String() string {
	switch m {
	case ModeDefaultUpcoming:
		return "upcoming"
	case ModeYear:
		return "year"
	case ModeMonth:
		return "month"
	case ModeExactDay:
		return "day"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DateComponents holds the date parts requested by the caller. A zero
// value means the part is absent.
type DateComponents struct {
	Year  int
	Month int
	Day   int
}

// HasYear reports whether a year was supplied.
func (c DateComponents) HasYear() bool { return c.Year != 0 }

// HasMonth reports whether a month was supplied.
func (c DateComponents) HasMonth() bool { return c.Month != 0 }

// HasDay reports whether a day was supplied.
func (c DateComponents) HasDay() bool { return c.Day != 0 }

// IsEmpty reports whether no part was supplied at all.
func (c DateComponents) IsEmpty() bool {
	return !c.HasYear() && !c.HasMonth() && !c.HasDay()
}

// Scope is a resolved date scope.
//
// This is a sealed interface: only ExactDay, Month, Year and
// DefaultUpcoming implement it, so a type switch over a Scope is
// exhaustive.
type Scope interface {
	Mode() Mode
	scopeNode()
}

// ExactDay selects events running on a single calendar date.
type ExactDay struct {
	Date time.Time
}

// Month selects events overlapping a calendar month.
type Month struct {
	Start time.Time
	End   time.Time
}

// Year selects events overlapping a calendar year.
type Year struct {
	Start time.Time
	End   time.Time
}

// DefaultUpcoming selects events that have not ended by Today.
type DefaultUpcoming struct {
	Today time.Time
}

func (ExactDay) Mode() Mode        { return ModeExactDay }
func (Month) Mode() Mode           { return ModeMonth }
func (Year) Mode() Mode            { return ModeYear }
func (DefaultUpcoming) Mode() Mode { return ModeDefaultUpcoming }

func (ExactDay) scopeNode()        {}
func (Month) scopeNode()           {}
func (Year) scopeNode()            {}
func (DefaultUpcoming) scopeNode() {}

func (s ExactDay) String() string {
	return "day " + s.Date.Format(DateLayout)
}

func (s Month) String() string {
	return fmt.Sprintf("month %s..%s", s.Start.Format(DateLayout), s.End.Format(DateLayout))
}

func (s Year) String() string {
	return fmt.Sprintf("year %s..%s", s.Start.Format(DateLayout), s.End.Format(DateLayout))
}

func (s DefaultUpcoming) String() string {
	return "upcoming from " + s.Today.Format(DateLayout)
}

// Context is the resolved (year, month, day) published to downstream
// consumers such as breadcrumbs and headings. It is a value: each request
// gets its own copy.
type Context struct {
	Mode  Mode
	Year  int
	Month time.Month
	Day   int
}

// Date returns the context as a calendar date.
func (c Context) Date() time.Time {
	return time.Date(c.Year, c.Month, c.Day, 0, 0, 0, 0, time.UTC)
}

// Resolution is the outcome of Resolve: the scope to query with and the
// context to display.
type Resolution struct {
	Scope   Scope
	Context Context
}
