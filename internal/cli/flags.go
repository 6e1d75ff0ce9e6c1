package cli

import (
	"io"

	"github.com/runnerr0/eventscope/internal/scope"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the database path from config"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// DateFlags select an archive view. All zero means upcoming.
type DateFlags struct {
	Year  int  `long:"year" description:"Calendar year (e.g., 2024)"`
	Month int  `long:"month" description:"Month number 1-12 (requires --year)"`
	Day   int  `long:"day" description:"Day of month (requires --year and --month)"`
	Today bool `long:"today" description:"Show the single day that is today"`
}

func (f DateFlags) components() scope.DateComponents {
	return scope.DateComponents{Year: f.Year, Month: f.Month, Day: f.Day}
}

// ListCommand lists events for a day, month or year, or the upcoming view.
type ListCommand struct {
	DateFlags

	globals *GlobalFlags
	version string
}

// ExplainCommand shows how a date request resolves without querying.
type ExplainCommand struct {
	DateFlags

	globals *GlobalFlags
	version string
}

// UpcomingCommand lists events that have not ended yet.
type UpcomingCommand struct {
	globals *GlobalFlags
	version string
}

// AddCommand records a single event.
type AddCommand struct {
	Title    string `long:"title" description:"Event title (required)"`
	Start    string `long:"start" description:"First day, YYYY-MM-DD (required)"`
	End      string `long:"end" description:"Last day, YYYY-MM-DD (defaults to --start)"`
	Location string `long:"location" description:"Where the event takes place"`

	globals *GlobalFlags
	version string
}

// ImportCommand imports events from an iCalendar file.
type ImportCommand struct {
	File     string `long:"file" description:"Path to .ics file, or - for stdin (required)"`
	Source   string `long:"source" description:"Source label for imported events (defaults to config import.default_source)"`
	NoExpand bool   `long:"no-expand" description:"Store recurring events once instead of expanding occurrences"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil means os.Stdin
}

// RemoveCommand deletes one event by ID.
type RemoveCommand struct {
	ID string `long:"id" description:"Event ID (required)"`

	globals *GlobalFlags
	version string
}

// PruneCommand deletes events that ended before a cutoff.
type PruneCommand struct {
	EndedBefore string `long:"ended-before" description:"Delete events whose last day is before YYYY-MM-DD"`
	OlderThan   string `long:"older-than" description:"Delete events that ended more than this long ago (e.g., 30d, 8w)"`
	DryRun      bool   `long:"dry-run" description:"Show what would be pruned without deleting"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes ALL events after a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader // nil means os.Stdin
}

// StatusCommand shows database statistics and a configuration summary.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
