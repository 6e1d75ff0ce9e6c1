package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/eventscope/internal/config"
	"github.com/runnerr0/eventscope/internal/logging"
	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// testRuntime is a runtime pinned to 2024-03-10 12:00 UTC.
func testRuntime(t *testing.T) *runtime {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Calendar.Timezone = "UTC"
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)
	return &runtime{
		cfg: cfg,
		log: logging.Discard(),
		loc: time.UTC,
		now: func() time.Time { return now },
	}
}

// openTestStore creates a migrated in-memory store for testing.
func openTestStore(t *testing.T) (*storage.SQLiteStore, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())

	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, db
}

// seedEvent inserts an event and returns its ID.
func seedEvent(t *testing.T, store *storage.SQLiteStore, title, start, end string) string {
	t.Helper()
	s, err := scope.ParseDate(start)
	require.NoError(t, err)
	e, err := scope.ParseDate(end)
	require.NoError(t, err)

	event := &storage.Event{Title: title, StartDate: s, EndDate: e}
	require.NoError(t, store.AddEvent(context.Background(), event))
	return event.ID
}

// runtimeStore bundles a test runtime with a seeded store.
type runtimeStore struct {
	rt    *runtime
	store *storage.SQLiteStore
	db    *sql.DB
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}
