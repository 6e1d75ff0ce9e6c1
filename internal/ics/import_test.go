package ics

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestImport_IsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := parse(t, calendar(
		"UID:a\nSUMMARY:Alpha\nDTSTART;VALUE=DATE:20240110\nDTEND;VALUE=DATE:20240112",
		"UID:b\nSUMMARY:Beta\nDTSTART;VALUE=DATE:20240120",
	))
	res, err := Import(ctx, store, first, "ics")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)

	second := parse(t, calendar(
		"UID:a\nSUMMARY:Alpha (moved)\nDTSTART;VALUE=DATE:20240111\nDTEND;VALUE=DATE:20240113",
		"UID:b\nSUMMARY:Beta\nDTSTART;VALUE=DATE:20240120",
	))
	res, err = Import(ctx, store, second, "ics")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Updated: 2}, res)

	today, err := scope.ParseDate("2024-01-01")
	require.NoError(t, err)
	events, err := store.QueryEvents(ctx, predicate.Build(scope.DefaultUpcoming{Today: today}))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "Alpha (moved)", events[0].Title)
	assert.Equal(t, "2024-01-12", events[0].EndDate.Format(scope.DateLayout))
	assert.Equal(t, "ics", events[0].Source)
}

func TestImport_SourcesAreIndependent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	entries := parse(t, calendar("UID:shared\nSUMMARY:Shared\nDTSTART;VALUE=DATE:20240110"))

	_, err := Import(ctx, store, entries, "work")
	require.NoError(t, err)
	res, err := Import(ctx, store, entries, "home")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
}

func TestImport_RequiresSource(t *testing.T) {
	_, err := Import(context.Background(), openTestStore(t), nil, "")
	assert.Error(t, err)
}

type failingUpserter struct{ calls int }

func (f *failingUpserter) UpsertByUID(context.Context, *storage.Event) (bool, error) {
	f.calls++
	return false, errors.New("locked")
}

func TestImport_StopsOnStoreError(t *testing.T) {
	store := &failingUpserter{}
	entries := parse(t, calendar(
		"UID:a\nDTSTART;VALUE=DATE:20240110",
		"UID:b\nDTSTART;VALUE=DATE:20240111",
	))

	_, err := Import(context.Background(), store, entries, "ics")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "import a"))
	assert.Equal(t, 1, store.calls)
}

func TestImport_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &failingUpserter{}
	_, err := Import(ctx, store, []Entry{{UID: "a"}}, "ics")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, store.calls)
}

func TestImport_OverrideDoesNotReplaceSeries(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	entries := parse(t, calendar(
		"UID:club\nSUMMARY:Book Club\nDTSTART;VALUE=DATE:20240105\nRRULE:FREQ=WEEKLY;COUNT=3",
		"UID:club\nSUMMARY:Moved\nRECURRENCE-ID;VALUE=DATE:20240119\nDTSTART;VALUE=DATE:20240120",
	))
	res, err := Import(ctx, store, entries, "ics")
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Created: 2}, res)

	today, err := scope.ParseDate("2024-01-01")
	require.NoError(t, err)
	events, err := store.QueryEvents(ctx, predicate.Build(scope.DefaultUpcoming{Today: today}))
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "club", events[0].UID)
	assert.Equal(t, "club/2024-01-19", events[1].UID)
	assert.Equal(t, "Moved", events[1].Title)
}
