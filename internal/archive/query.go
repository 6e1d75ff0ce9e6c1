// Package archive applies date-scoped archive views to a query.
//
// A request arrives with optional year, month and day routing values. The
// rewrite resolves them to a scope, builds the overlap predicate and
// ordering, and hands both to a Sink. The Sink is the query object that
// eventually runs against storage.
package archive

import (
	"time"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
)

// Sink receives the output of a rewrite.
type Sink interface {
	SetPredicate(p predicate.Predicate)
	SetOrdering(o predicate.OrderSpec)
	ClearDateRouting(c predicate.RoutingClear)
}

// Query is a request-scoped query object. Year, MonthNum and Day are the
// native date routing values taken from the request; while set, they
// restrict results to events whose start date falls in that period.
type Query struct {
	Year     int
	MonthNum int
	Day      int

	predicate predicate.Predicate
	order     predicate.OrderSpec
	cleared   predicate.RoutingClear
}

// NewQuery returns a Query routed by the given components.
func NewQuery(c scope.DateComponents) *Query {
	return &Query{Year: c.Year, MonthNum: c.Month, Day: c.Day}
}

func (q *Query) SetPredicate(p predicate.Predicate) { q.predicate = p }

func (q *Query) SetOrdering(o predicate.OrderSpec) { q.order = o }

// ClearDateRouting zeroes the routing values named by c.
func (q *Query) ClearDateRouting(c predicate.RoutingClear) {
	q.cleared = c
	if c.Year {
		q.Year = 0
	}
	if c.Month {
		q.MonthNum = 0
	}
	if c.Day {
		q.Day = 0
	}
}

// Routing returns the native routing values still in effect.
func (q *Query) Routing() scope.DateComponents {
	return scope.DateComponents{Year: q.Year, Month: q.MonthNum, Day: q.Day}
}

// Plan returns the effective plan: the rewrite predicate ANDed with any
// native routing filter that was not cleared.
func (q *Query) Plan() predicate.Plan {
	p := q.predicate
	if r := q.routingPredicate(); r != nil {
		if p == nil {
			p = r
		} else {
			p = predicate.And{Predicates: []predicate.Predicate{p, r}}
		}
	}
	return predicate.Plan{Predicate: p, Order: q.order, Clear: q.cleared}
}

// routingPredicate filters on start_date the way a plain date archive
// would. Routing without a year is inert; an impossible date matches
// nothing.
func (q *Query) routingPredicate() predicate.Predicate {
	c := q.Routing()
	if !c.HasYear() {
		return nil
	}
	res, err := scope.Resolve(c, time.Time{})
	if err != nil {
		return predicate.Or{}
	}
	switch s := res.Scope.(type) {
	case scope.ExactDay:
		return predicate.Between{Field: predicate.StartDate, Low: s.Date, High: s.Date}
	case scope.Month:
		return predicate.Between{Field: predicate.StartDate, Low: s.Start, High: s.End}
	case scope.Year:
		return predicate.Between{Field: predicate.StartDate, Low: s.Start, High: s.End}
	}
	return nil
}
