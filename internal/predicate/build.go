package predicate

import (
	"fmt"
	"time"

	"github.com/runnerr0/eventscope/internal/scope"
)

var (
	archiveOrder  = OrderSpec{Field: OrderStartDateMeta, Direction: Asc}
	upcomingOrder = OrderSpec{Field: OrderRawStartDate, Direction: Asc}
	clearAll      = RoutingClear{Year: true, Month: true, Day: true}
)

// Build turns a resolved scope into the predicate, ordering and routing
// instructions for the query sink.
//
// Dated views (day, month, year) sort ascending by start date and clear
// the sink's native date routing. The upcoming view keeps only events
// that have not ended and leaves routing alone.
func Build(s scope.Scope) Plan {
	switch s := s.(type) {
	case scope.ExactDay:
		return Plan{
			Predicate: Spans(s.Date),
			Order:     archiveOrder,
			Clear:     clearAll,
		}
	case scope.Month:
		return Plan{
			Predicate: Overlaps(s.Start, s.End),
			Order:     archiveOrder,
			Clear:     clearAll,
		}
	case scope.Year:
		return Plan{
			Predicate: Overlaps(s.Start, s.End),
			Order:     archiveOrder,
			Clear:     clearAll,
		}
	case scope.DefaultUpcoming:
		return Plan{
			Predicate: NotEndedBy(s.Today),
			Order:     upcomingOrder,
		}
	default:
		panic(fmt.Sprintf("predicate: unsupported scope %T", s))
	}
}

// Spans matches events running on day: start_date <= day AND end_date >= day.
func Spans(day time.Time) Predicate {
	return And{Predicates: []Predicate{
		Compare{Field: StartDate, Op: OpLTE, Value: day},
		Compare{Field: EndDate, Op: OpGTE, Value: day},
	}}
}

// Overlaps matches events intersecting the window [start, end]:
//
//	(start_date BETWEEN start AND end OR end_date BETWEEN start AND end)
//	OR (start_date < start AND end_date > end)
//
// The second clause catches events that begin before and finish after the
// window; neither of their endpoints falls inside it.
func Overlaps(start, end time.Time) Predicate {
	return Or{Predicates: []Predicate{
		Or{Predicates: []Predicate{
			Between{Field: StartDate, Low: start, High: end},
			Between{Field: EndDate, Low: start, High: end},
		}},
		And{Predicates: []Predicate{
			Compare{Field: StartDate, Op: OpLT, Value: start},
			Compare{Field: EndDate, Op: OpGT, Value: end},
		}},
	}}
}

// NotEndedBy matches events that are ongoing or in the future on today.
func NotEndedBy(today time.Time) Predicate {
	return Compare{Field: EndDate, Op: OpGTE, Value: today}
}

// EndedBefore matches events that finished strictly before cutoff.
func EndedBefore(cutoff time.Time) Predicate {
	return Compare{Field: EndDate, Op: OpLT, Value: cutoff}
}
