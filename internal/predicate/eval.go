package predicate

import (
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/eventscope/internal/scope"
)

// Matches evaluates p against a single event interval in memory.
//
// Dates are compared by their YYYY-MM-DD text, the same encoding the
// SQLite store uses, so Matches and the compiled SQL agree on every
// record, including ones whose start is after their end.
func Matches(p Predicate, iv Interval) bool {
	switch p := p.(type) {
	case nil:
		return true
	case Compare:
		return compare(dateKey(fieldValue(p.Field, iv)), p.Op, dateKey(p.Value))
	case *Compare:
		return Matches(*p, iv)
	case Between:
		v := dateKey(fieldValue(p.Field, iv))
		return v >= dateKey(p.Low) && v <= dateKey(p.High)
	case *Between:
		return Matches(*p, iv)
	case And:
		for _, child := range p.Predicates {
			if !Matches(child, iv) {
				return false
			}
		}
		return true
	case *And:
		return Matches(*p, iv)
	case Or:
		for _, child := range p.Predicates {
			if Matches(child, iv) {
				return true
			}
		}
		return false
	case *Or:
		return Matches(*p, iv)
	default:
		panic(fmt.Sprintf("predicate: unsupported predicate %T", p))
	}
}

func fieldValue(f Field, iv Interval) time.Time {
	if f == EndDate {
		return iv.EndDate
	}
	return iv.StartDate
}

func compare(left string, op Op, right string) bool {
	switch op {
	case OpLT:
		return left < right
	case OpLTE:
		return left <= right
	case OpGT:
		return left > right
	case OpGTE:
		return left >= right
	default:
		return false
	}
}

func dateKey(t time.Time) string {
	return t.Format(scope.DateLayout)
}

// Format renders p as a human-readable expression, for diagnostics.
func Format(p Predicate) string {
	var b strings.Builder
	writePredicate(&b, p, false)
	return b.String()
}

func writePredicate(b *strings.Builder, p Predicate, nested bool) {
	switch p := p.(type) {
	case nil:
		b.WriteString("TRUE")
	case Compare:
		fmt.Fprintf(b, "%s %s %s", p.Field, p.Op, dateKey(p.Value))
	case *Compare:
		writePredicate(b, *p, nested)
	case Between:
		fmt.Fprintf(b, "%s BETWEEN %s AND %s", p.Field, dateKey(p.Low), dateKey(p.High))
	case *Between:
		writePredicate(b, *p, nested)
	case And:
		writeGroup(b, "AND", "TRUE", p.Predicates, nested)
	case *And:
		writePredicate(b, *p, nested)
	case Or:
		writeGroup(b, "OR", "FALSE", p.Predicates, nested)
	case *Or:
		writePredicate(b, *p, nested)
	default:
		fmt.Fprintf(b, "<%T>", p)
	}
}

func writeGroup(b *strings.Builder, op, empty string, children []Predicate, nested bool) {
	if len(children) == 0 {
		b.WriteString(empty)
		return
	}
	if nested && len(children) > 1 {
		b.WriteString("(")
	}
	for i, child := range children {
		if i > 0 {
			b.WriteString(" " + op + " ")
		}
		writePredicate(b, child, true)
	}
	if nested && len(children) > 1 {
		b.WriteString(")")
	}
}
