package predicate

import "time"

// Field is an event column a predicate compares against.
type Field string

const (
	StartDate Field = "start_date"
	EndDate   Field = "end_date"
)

// Op is a scalar comparison operator.
type Op string

const (
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpGT  Op = ">"
	OpGTE Op = ">="
)

// Predicate is a boolean filter over an event's start and end dates.
//
// This is a sealed interface: only Compare, Between, And and Or implement
// it. Consumers (the SQL compiler, Matches) switch over these four types.
type Predicate interface {
	predicateNode()
}

// Compare is `<field> <op> <value>`.
type Compare struct {
	Field Field
	Op    Op
	Value time.Time
}

// Between is `<field> BETWEEN <low> AND <high>`, inclusive on both ends.
// A Between with Low after High matches nothing.
type Between struct {
	Field Field
	Low   time.Time
	High  time.Time
}

// And is true when every child is true. An empty And is always true.
type And struct {
	Predicates []Predicate
}

// Or is true when any child is true. An empty Or is always false.
type Or struct {
	Predicates []Predicate
}

func (Compare) predicateNode() {}
func (Between) predicateNode() {}
func (And) predicateNode()     {}
func (Or) predicateNode()      {}

// OrderField names the sort key handed to the query sink.
type OrderField string

const (
	// OrderStartDateMeta sorts by the stored start_date value; used by
	// the dated archive views.
	OrderStartDateMeta OrderField = "start_date_meta"
	// OrderRawStartDate sorts by start_date directly; used by the
	// upcoming listing.
	OrderRawStartDate OrderField = "raw_start_date"
)

// Column returns the event field the order key sorts on.
func (f OrderField) Column() Field {
	return StartDate
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// OrderSpec is the ordering instruction for the query sink.
type OrderSpec struct {
	Field     OrderField
	Direction Direction
}

// RoutingClear tells the sink to drop its own year/month/day routing
// filters so the predicate is authoritative.
type RoutingClear struct {
	Year  bool
	Month bool
	Day   bool
}

// Any reports whether any routing filter should be cleared.
func (r RoutingClear) Any() bool {
	return r.Year || r.Month || r.Day
}

// Plan is everything Build hands to the query sink.
type Plan struct {
	Predicate Predicate
	Order     OrderSpec
	Clear     RoutingClear
}

// Interval is the part of an event record the predicates look at.
type Interval struct {
	StartDate time.Time
	EndDate   time.Time
}
