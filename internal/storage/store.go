package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/querysql"
	"github.com/runnerr0/eventscope/internal/scope"
)

const eventsTable = "events"

var eventColumns = []string{
	"id", "uid", "title", "location", "start_date", "end_date", "source", "created_at",
}

// Store defines the event data operations.
type Store interface {
	AddEvent(ctx context.Context, event *Event) error
	UpsertByUID(ctx context.Context, event *Event) (bool, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	QueryEvents(ctx context.Context, plan predicate.Plan) ([]Event, error)
	CountMatching(ctx context.Context, p predicate.Predicate) (int64, error)
	CountEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PruneEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context, today time.Time) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db       *sql.DB
	compiler *querysql.Compiler

	// Prepared statements
	insertEvent *sql.Stmt
	getEvent    *sql.Stmt
	deleteEvent *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, compiler: querysql.NewCompiler()}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.insertEvent, err = s.db.Prepare(`
		INSERT INTO events (id, uid, title, location, start_date, end_date, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	s.getEvent, err = s.db.Prepare(`
		SELECT ` + strings.Join(eventColumns, ", ") + `
		FROM events WHERE id = ?
	`)
	if err != nil {
		return err
	}

	s.deleteEvent, err = s.db.Prepare(`DELETE FROM events WHERE id = ?`)
	if err != nil {
		return err
	}

	return nil
}

// generateID creates an event ID: EVT- + a random UUID.
func generateID() string {
	return "EVT-" + uuid.New().String()
}

func formatDate(t time.Time) string {
	return t.Format(scope.DateLayout)
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

func validateEvent(event *Event) error {
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("event title is required")
	}
	if event.StartDate.IsZero() || event.EndDate.IsZero() {
		return fmt.Errorf("event start and end dates are required")
	}
	return nil
}

// AddEvent inserts a new event. ID, Source and CreatedAt are filled in
// when empty. Start after end is stored as given; such events simply
// never overlap a window.
func (s *SQLiteStore) AddEvent(ctx context.Context, event *Event) error {
	if err := validateEvent(event); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = generateID()
	}
	if event.Source == "" {
		event.Source = "manual"
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := s.insertEvent.ExecContext(ctx,
		event.ID, event.UID, event.Title, event.Location,
		formatDate(event.StartDate), formatDate(event.EndDate),
		event.Source, event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// UpsertByUID inserts the event, or updates the existing row with the same
// (source, uid). It reports whether a new row was created.
func (s *SQLiteStore) UpsertByUID(ctx context.Context, event *Event) (bool, error) {
	if event.UID == "" {
		return false, fmt.Errorf("upsert requires a uid")
	}
	if err := validateEvent(event); err != nil {
		return false, err
	}
	if event.Source == "" {
		event.Source = "manual"
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existingID string
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM events WHERE source = ? AND uid = ?", event.Source, event.UID,
	).Scan(&existingID)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		event.ID = generateID()
		if event.CreatedAt.IsZero() {
			event.CreatedAt = time.Now().UTC()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, uid, title, location, start_date, end_date, source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID, event.UID, event.Title, event.Location,
			formatDate(event.StartDate), formatDate(event.EndDate),
			event.Source, event.CreatedAt.Format(time.RFC3339),
		)
		if err != nil {
			return false, fmt.Errorf("insert event: %w", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("lookup uid: %w", err)
	default:
		event.ID = existingID
		_, err = tx.ExecContext(ctx,
			`UPDATE events SET title = ?, location = ?, start_date = ?, end_date = ? WHERE id = ?`,
			event.Title, event.Location,
			formatDate(event.StartDate), formatDate(event.EndDate), existingID,
		)
		if err != nil {
			return false, fmt.Errorf("update event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// GetEvent retrieves a single event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*Event, error) {
	e, err := scanEvent(s.getEvent.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// DeleteEvent removes an event by ID.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.deleteEvent.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	return nil
}

// QueryEvents returns the events selected by plan's predicate, in plan's
// order.
func (s *SQLiteStore) QueryEvents(ctx context.Context, plan predicate.Plan) ([]Event, error) {
	query, args, err := s.compiler.Select(eventsTable, eventColumns, plan)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}
	return s.scanEvents(ctx, query, args...)
}

// CountMatching counts the events selected by p.
func (s *SQLiteStore) CountMatching(ctx context.Context, p predicate.Predicate) (int64, error) {
	query, args, err := s.compiler.Count(eventsTable, p)
	if err != nil {
		return 0, fmt.Errorf("compile count: %w", err)
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

// CountEndedBefore reports how many events PruneEndedBefore would delete.
func (s *SQLiteStore) CountEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.CountMatching(ctx, predicate.EndedBefore(cutoff))
}

// PruneEndedBefore deletes events whose end date is strictly before cutoff.
func (s *SQLiteStore) PruneEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := s.compiler.Delete(eventsTable, predicate.EndedBefore(cutoff))
	if err != nil {
		return 0, fmt.Errorf("compile prune: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	return res.RowsAffected()
}

// PurgeAll deletes all events.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("purge events: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics. Upcoming counts events that have
// not ended by today.
func (s *SQLiteStore) GetStats(ctx context.Context, today time.Time) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&stats.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	stats.UpcomingEvents, err = s.CountMatching(ctx, predicate.NotEndedBy(today))
	if err != nil {
		return nil, err
	}

	if stats.TotalEvents > 0 {
		var earliest, latest string
		err = s.db.QueryRowContext(ctx, "SELECT MIN(start_date), MAX(end_date) FROM events").Scan(&earliest, &latest)
		if err != nil {
			return nil, fmt.Errorf("event date range: %w", err)
		}
		if stats.EarliestStart, err = scope.ParseDate(earliest); err != nil {
			return nil, fmt.Errorf("parse earliest start %q: %w", earliest, err)
		}
		if stats.LatestEnd, err = scope.ParseDate(latest); err != nil {
			return nil, fmt.Errorf("parse latest end %q: %w", latest, err)
		}
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT source, COUNT(*) AS cnt FROM events GROUP BY source ORDER BY cnt DESC, source ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("count by source: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, err
		}
		stats.BySource = append(stats.BySource, sc)
	}

	return stats, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var e Event
	var startStr, endStr, createdStr string
	if err := row.Scan(
		&e.ID, &e.UID, &e.Title, &e.Location, &startStr, &endStr, &e.Source, &createdStr,
	); err != nil {
		return nil, err
	}

	var err error
	if e.StartDate, err = scope.ParseDate(startStr); err != nil {
		return nil, fmt.Errorf("event %s start_date: %w", e.ID, err)
	}
	if e.EndDate, err = scope.ParseDate(endStr); err != nil {
		return nil, fmt.Errorf("event %s end_date: %w", e.ID, err)
	}
	e.CreatedAt, _ = parseTimestamp(createdStr)

	return &e, nil
}

// scanEvents executes a query and scans results into an Event slice.
func (s *SQLiteStore) scanEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.insertEvent, s.getEvent, s.deleteEvent}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
