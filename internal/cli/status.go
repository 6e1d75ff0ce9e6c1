package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/runnerr0/eventscope/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string            `json:"version"`
	DatabasePath      string            `json:"database_path"`
	DatabaseSizeBytes int64             `json:"database_size_bytes"`
	Today             string            `json:"today"`
	Timezone          string            `json:"timezone"`
	TotalEvents       int64             `json:"total_events"`
	UpcomingEvents    int64             `json:"upcoming_events"`
	EarliestStart     string            `json:"earliest_start,omitempty"`
	LatestEnd         string            `json:"latest_end,omitempty"`
	RetentionDays     int               `json:"retention_days"`
	Sources           []sourceCountJSON `json:"sources"`
}

type sourceCountJSON struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	rt, err := newRuntime(c.globals)
	if err != nil {
		return err
	}
	store, db, err := openStore(rt, c.globals)
	if err != nil {
		return err
	}
	defer db.Close()
	defer store.Close()

	path, err := dbPath(rt, c.globals)
	if err != nil {
		return err
	}
	return c.executeWithStore(store, db, path, rt)
}

// executeWithStore runs status against a provided store and db (for testing).
func (c *StatusCommand) executeWithStore(store *storage.SQLiteStore, db *sql.DB, path string, rt *runtime) error {
	today := rt.today()
	stats, err := store.GetStats(context.Background(), today)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	size := getDatabaseSize(db, path)

	if c.globals.JSON {
		out := statusJSON{
			Version:           c.version,
			DatabasePath:      path,
			DatabaseSizeBytes: size,
			Today:             formatOptionalDate(today),
			Timezone:          rt.loc.String(),
			TotalEvents:       stats.TotalEvents,
			UpcomingEvents:    stats.UpcomingEvents,
			EarliestStart:     formatOptionalDate(stats.EarliestStart),
			LatestEnd:         formatOptionalDate(stats.LatestEnd),
			RetentionDays:     rt.cfg.Retention.Days,
			Sources:           make([]sourceCountJSON, len(stats.BySource)),
		}
		for i, s := range stats.BySource {
			out.Sources[i] = sourceCountJSON{Source: s.Source, Count: s.Count}
		}
		return printJSON(out)
	}

	fmt.Println("Eventscope Status")
	fmt.Println("=================")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", path, formatBytes(size))
	fmt.Printf("Today:         %s (%s)\n", rt.formatDate(today), rt.loc)
	fmt.Printf("Events:        %s\n", formatNumber(stats.TotalEvents))
	fmt.Printf("Upcoming:      %s\n", formatNumber(stats.UpcomingEvents))
	if stats.TotalEvents > 0 {
		fmt.Printf("Earliest:      %s\n", rt.formatDate(stats.EarliestStart))
		fmt.Printf("Latest:        %s\n", rt.formatDate(stats.LatestEnd))
	}
	if rt.cfg.Retention.Days > 0 {
		fmt.Printf("Retention:     %d days\n", rt.cfg.Retention.Days)
	} else {
		fmt.Println("Retention:     off")
	}

	if len(stats.BySource) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for _, s := range stats.BySource {
			fmt.Printf("  %-20s %s\n", s.Source, formatNumber(s.Count))
		}
	}
	return nil
}

// getDatabaseSize returns the database file size in bytes.
// For on-disk databases, it uses os.Stat. For in-memory databases,
// it queries page_count * page_size.
func getDatabaseSize(db *sql.DB, dbPath string) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}

	var pageCount, pageSize int64
	if err := db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0
	}
	if err := db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
