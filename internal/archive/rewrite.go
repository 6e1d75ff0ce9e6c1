package archive

import (
	"time"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
)

// Rewrite resolves c against today and applies the resulting plan to sink.
// Routing is cleared only when the plan asks for it. On error the sink is
// left untouched.
func Rewrite(c scope.DateComponents, today time.Time, sink Sink) (scope.Resolution, error) {
	res, err := scope.Resolve(c, today)
	if err != nil {
		return scope.Resolution{}, err
	}
	apply(predicate.Build(res.Scope), sink)
	return res, nil
}

// RewriteUpcoming applies the upcoming view regardless of any routing
// values. Listing pages that are not date archives use this path.
func RewriteUpcoming(today time.Time, sink Sink) scope.Resolution {
	res, _ := scope.Resolve(scope.DateComponents{}, today)
	apply(predicate.Build(res.Scope), sink)
	return res
}

func apply(plan predicate.Plan, sink Sink) {
	sink.SetPredicate(plan.Predicate)
	sink.SetOrdering(plan.Order)
	if plan.Clear.Any() {
		sink.ClearDateRouting(plan.Clear)
	}
}

// incompleteRequest describes components that Resolve will ignore, or ""
// when the request is well formed.
func incompleteRequest(c scope.DateComponents) string {
	switch {
	case c.HasDay() && !c.HasMonth():
		return "day given without month"
	case c.HasMonth() && !c.HasYear():
		return "month given without year"
	}
	return ""
}
