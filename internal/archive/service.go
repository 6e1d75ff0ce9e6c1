package archive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/runnerr0/eventscope/internal/logging"
	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

// EventQuerier executes a plan against storage.
type EventQuerier interface {
	QueryEvents(ctx context.Context, plan predicate.Plan) ([]storage.Event, error)
}

// Clock returns the current instant.
type Clock func() time.Time

// Service runs archive views end to end.
type Service struct {
	Store    EventQuerier
	Clock    Clock
	Location *time.Location
	Logger   *slog.Logger
}

// Result is one executed archive view.
type Result struct {
	Resolution scope.Resolution
	Plan       predicate.Plan
	Events     []storage.Event
}

// Today returns the current calendar date in the service's location.
func (s *Service) Today() time.Time {
	now := time.Now
	if s.Clock != nil {
		now = s.Clock
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return scope.Today(now().In(loc))
}

// List runs the view selected by c.
func (s *Service) List(ctx context.Context, c scope.DateComponents) (*Result, error) {
	log := logging.OrDiscard(s.Logger)
	if msg := incompleteRequest(c); msg != "" {
		log.Warn("ignoring incomplete date request", "reason", msg,
			"year", c.Year, "month", c.Month, "day", c.Day)
	}

	q := NewQuery(c)
	res, err := Rewrite(c, s.Today(), q)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, res, q)
}

// Upcoming runs the upcoming view.
func (s *Service) Upcoming(ctx context.Context) (*Result, error) {
	q := &Query{}
	res := RewriteUpcoming(s.Today(), q)
	return s.run(ctx, res, q)
}

// Explain resolves and builds c without touching storage.
func (s *Service) Explain(c scope.DateComponents) (*Result, error) {
	q := NewQuery(c)
	res, err := Rewrite(c, s.Today(), q)
	if err != nil {
		return nil, err
	}
	return &Result{Resolution: res, Plan: q.Plan()}, nil
}

func (s *Service) run(ctx context.Context, res scope.Resolution, q *Query) (*Result, error) {
	log := logging.OrDiscard(s.Logger)
	plan := q.Plan()

	log.Debug("archive view resolved",
		"mode", res.Context.Mode.String(),
		"scope", fmt.Sprint(res.Scope),
		"predicate", predicate.Format(plan.Predicate))

	if s.Store == nil {
		return nil, fmt.Errorf("archive service has no store")
	}
	events, err := s.Store.QueryEvents(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}

	log.Debug("archive view executed", "events", len(events))
	return &Result{Resolution: res, Plan: plan, Events: events}, nil
}
