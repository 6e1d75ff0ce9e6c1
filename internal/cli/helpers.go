package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/eventscope/internal/archive"
	"github.com/runnerr0/eventscope/internal/config"
	"github.com/runnerr0/eventscope/internal/logging"
	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

// runtime carries what every command needs after flags are parsed.
type runtime struct {
	cfg *config.Config
	log *slog.Logger
	loc *time.Location
	now func() time.Time
}

// newRuntime loads config and builds the logger for a command invocation.
func newRuntime(g *GlobalFlags) (*runtime, error) {
	var cfg *config.Config
	var err error
	if g.Config != "" {
		cfg, err = config.LoadOrCreateAt(g.Config)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Logging
	if g.Verbose {
		logCfg.Level = "debug"
	}
	log, err := logging.New(logCfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &runtime{cfg: cfg, log: log, loc: loc, now: time.Now}, nil
}

// today is the current calendar date in the configured timezone.
func (rt *runtime) today() time.Time {
	return scope.Today(rt.now().In(rt.loc))
}

func (rt *runtime) service(store archive.EventQuerier) *archive.Service {
	return &archive.Service{
		Store:    store,
		Clock:    rt.now,
		Location: rt.loc,
		Logger:   rt.log,
	}
}

// formatDate renders a date with calendar.date_format.
func (rt *runtime) formatDate(t time.Time) string {
	layout := rt.cfg.Calendar.DateFormat
	if layout == "" {
		layout = scope.DateLayout
	}
	return t.Format(layout)
}

// dbPath resolves the database path: --db-path wins over config.
func dbPath(rt *runtime, g *GlobalFlags) (string, error) {
	if g.DBPath != "" {
		return g.DBPath, nil
	}
	return rt.cfg.DBPath()
}

// openStore opens the configured database, runs migrations, and returns a
// ready-to-use store and the underlying *sql.DB.
func openStore(rt *runtime, g *GlobalFlags) (*storage.SQLiteStore, *sql.DB, error) {
	path, err := dbPath(rt, g)
	if err != nil {
		return nil, nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	runner := storage.NewMigrationRunner(db).WithJournalMode(rt.cfg.Storage.SQLiteJournalMode)
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create store: %w", err)
	}

	rt.log.Debug("database opened", "path", path)
	return store, db, nil
}

// withStore opens the runtime and store, then runs fn.
func withStore(g *GlobalFlags, fn func(*storage.SQLiteStore, *runtime) error) error {
	rt, err := newRuntime(g)
	if err != nil {
		return err
	}
	store, db, err := openStore(rt, g)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	return fn(store, rt)
}

// parseDuration parses a day-granular duration string like "30d" or "2w".
func parseDuration(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	suffix := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid duration: %q", s)
	}

	switch suffix {
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	case 'w':
		return time.Duration(n) * 7 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid duration: %q (use d or w suffix)", s)
	}
}

// parseDateFlag parses a YYYY-MM-DD flag value.
func parseDateFlag(name, value string) (time.Time, error) {
	d, err := scope.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD, got %q", name, value)
	}
	return d, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// plural returns "1 event" or "N events".
func plural(n int64, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return formatNumber(n) + " " + word + "s"
}
