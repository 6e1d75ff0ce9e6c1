package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	List     *ListCommand
	Explain  *ExplainCommand
	Upcoming *UpcomingCommand
	Add      *AddCommand
	Import   *ImportCommand
	Remove   *RemoveCommand
	Prune    *PruneCommand
	Purge    *PurgeCommand
	Status   *StatusCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "eventscope"
	parser.LongDescription = "Date-scoped event archive: list events by day, month or year, including events that span the period."

	cmds := &commands{
		List:     &ListCommand{globals: &globals, version: version},
		Explain:  &ExplainCommand{globals: &globals, version: version},
		Upcoming: &UpcomingCommand{globals: &globals, version: version},
		Add:      &AddCommand{globals: &globals, version: version},
		Import:   &ImportCommand{globals: &globals, version: version},
		Remove:   &RemoveCommand{globals: &globals, version: version},
		Prune:    &PruneCommand{globals: &globals, version: version},
		Purge:    &PurgeCommand{globals: &globals, version: version},
		Status:   &StatusCommand{globals: &globals, version: version},
	}

	parser.AddCommand("list", "List events for a day, month or year", "List events overlapping a day, month or year. Without date flags, list upcoming events.", cmds.List)
	parser.AddCommand("explain", "Show how a date request resolves", "Show the resolved scope, predicate and SQL for a date request without querying.", cmds.Explain)
	parser.AddCommand("upcoming", "List events that have not ended", "List ongoing and future events in start order.", cmds.Upcoming)
	parser.AddCommand("add", "Record an event", "Record a single event with a first and last day.", cmds.Add)
	parser.AddCommand("import", "Import an iCalendar file", "Import VEVENTs from an .ics file. Re-importing updates events in place.", cmds.Import)
	parser.AddCommand("remove", "Delete an event", "Delete a single event by ID.", cmds.Remove)
	parser.AddCommand("prune", "Delete past events", "Delete events whose last day is before a cutoff.", cmds.Prune)
	parser.AddCommand("purge", "Delete ALL events", "Delete ALL events. Destructive operation with safety prompt.", cmds.Purge)
	parser.AddCommand("status", "Show database statistics", "Show event counts, date range and configuration summary.", cmds.Status)

	return parser, &globals, cmds
}

// Run is the main entry point for the eventscope CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("eventscope %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
