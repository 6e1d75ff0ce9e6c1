package archive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
)

// recordingSink captures every call made by a rewrite.
type recordingSink struct {
	calls     []string
	predicate predicate.Predicate
	order     predicate.OrderSpec
	clear     predicate.RoutingClear
}

func (r *recordingSink) SetPredicate(p predicate.Predicate) {
	r.calls = append(r.calls, "predicate")
	r.predicate = p
}

func (r *recordingSink) SetOrdering(o predicate.OrderSpec) {
	r.calls = append(r.calls, "ordering")
	r.order = o
}

func (r *recordingSink) ClearDateRouting(c predicate.RoutingClear) {
	r.calls = append(r.calls, "clear")
	r.clear = c
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := scope.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRewrite_MonthClearsRouting(t *testing.T) {
	q := NewQuery(scope.DateComponents{Year: 2023, Month: 2})

	res, err := Rewrite(scope.DateComponents{Year: 2023, Month: 2}, date(t, "2024-06-01"), q)
	require.NoError(t, err)

	assert.Equal(t, scope.ModeMonth, res.Context.Mode)
	assert.True(t, q.Routing().IsEmpty(), "routing should be cleared")

	plan := q.Plan()
	assert.Equal(t, predicate.Overlaps(date(t, "2023-02-01"), date(t, "2023-02-28")), plan.Predicate)
	assert.Equal(t, predicate.OrderSpec{Field: predicate.OrderStartDateMeta, Direction: predicate.Asc}, plan.Order)
	assert.Equal(t, predicate.RoutingClear{Year: true, Month: true, Day: true}, plan.Clear)
}

func TestRewrite_CallOrder(t *testing.T) {
	sink := &recordingSink{}

	_, err := Rewrite(scope.DateComponents{Year: 2023, Month: 6, Day: 15}, date(t, "2024-06-01"), sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"predicate", "ordering", "clear"}, sink.calls)
	assert.Equal(t, predicate.Spans(date(t, "2023-06-15")), sink.predicate)
}

func TestRewrite_UpcomingNeverClears(t *testing.T) {
	sink := &recordingSink{}

	res, err := Rewrite(scope.DateComponents{}, date(t, "2024-06-01"), sink)
	require.NoError(t, err)

	assert.Equal(t, scope.ModeDefaultUpcoming, res.Context.Mode)
	assert.Equal(t, []string{"predicate", "ordering"}, sink.calls)
	assert.Equal(t, predicate.NotEndedBy(date(t, "2024-06-01")), sink.predicate)
	assert.Equal(t, predicate.OrderRawStartDate, sink.order.Field)
}

func TestRewrite_InvalidDateLeavesSinkUntouched(t *testing.T) {
	sink := &recordingSink{}

	_, err := Rewrite(scope.DateComponents{Year: 2023, Month: 2, Day: 30}, date(t, "2024-06-01"), sink)
	require.Error(t, err)
	assert.ErrorIs(t, err, scope.ErrInvalidDate)
	assert.Empty(t, sink.calls)
}

func TestRewriteUpcoming(t *testing.T) {
	sink := &recordingSink{}

	res := RewriteUpcoming(date(t, "2024-06-01"), sink)

	assert.Equal(t, scope.ModeDefaultUpcoming, res.Context.Mode)
	assert.Equal(t, 2024, res.Context.Year)
	assert.Equal(t, []string{"predicate", "ordering"}, sink.calls)
}

func TestQuery_UnclearedRoutingNarrowsPlan(t *testing.T) {
	q := NewQuery(scope.DateComponents{Year: 2023, Month: 2})
	q.SetPredicate(predicate.Overlaps(date(t, "2023-02-01"), date(t, "2023-02-28")))

	p := q.Plan().Predicate
	spanning := predicate.Interval{StartDate: date(t, "2023-01-20"), EndDate: date(t, "2023-03-05")}
	inside := predicate.Interval{StartDate: date(t, "2023-02-10"), EndDate: date(t, "2023-02-12")}

	// A start-date route drops events that began before the window.
	assert.False(t, predicate.Matches(p, spanning))
	assert.True(t, predicate.Matches(p, inside))

	q.ClearDateRouting(predicate.RoutingClear{Year: true, Month: true, Day: true})
	assert.True(t, predicate.Matches(q.Plan().Predicate, spanning))
}

func TestQuery_RoutingPredicate(t *testing.T) {
	tests := []struct {
		name    string
		routing scope.DateComponents
		want    predicate.Predicate
	}{
		{"none", scope.DateComponents{}, nil},
		{"month without year is inert", scope.DateComponents{Month: 4}, nil},
		{"year", scope.DateComponents{Year: 2023},
			predicate.Between{Field: predicate.StartDate, Low: date(t, "2023-01-01"), High: date(t, "2023-12-31")}},
		{"month", scope.DateComponents{Year: 2024, Month: 2},
			predicate.Between{Field: predicate.StartDate, Low: date(t, "2024-02-01"), High: date(t, "2024-02-29")}},
		{"day", scope.DateComponents{Year: 2024, Month: 2, Day: 3},
			predicate.Between{Field: predicate.StartDate, Low: date(t, "2024-02-03"), High: date(t, "2024-02-03")}},
		{"impossible date", scope.DateComponents{Year: 2023, Month: 13}, predicate.Or{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := NewQuery(tc.routing)
			assert.Equal(t, tc.want, q.Plan().Predicate)
		})
	}
}

func TestQuery_PartialClear(t *testing.T) {
	q := NewQuery(scope.DateComponents{Year: 2023, Month: 2, Day: 3})
	q.ClearDateRouting(predicate.RoutingClear{Day: true})

	assert.Equal(t, scope.DateComponents{Year: 2023, Month: 2}, q.Routing())
}

func TestIncompleteRequest(t *testing.T) {
	assert.Equal(t, "", incompleteRequest(scope.DateComponents{Year: 2023, Month: 2, Day: 1}))
	assert.Equal(t, "", incompleteRequest(scope.DateComponents{}))
	assert.Equal(t, "day given without month", incompleteRequest(scope.DateComponents{Year: 2023, Day: 5}))
	assert.Equal(t, "month given without year", incompleteRequest(scope.DateComponents{Month: 5}))
}
