package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

// resolveDateFlags turns --today or --year/--month/--day into components.
func resolveDateFlags(rt *runtime, f DateFlags) (scope.DateComponents, error) {
	if !f.Today {
		return f.components(), nil
	}
	if f.Year != 0 || f.Month != 0 || f.Day != 0 {
		return scope.DateComponents{}, fmt.Errorf("--today cannot be combined with --year, --month or --day")
	}
	t := rt.today()
	return scope.DateComponents{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs list against a provided store (used by tests).
func (c *ListCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	components, err := resolveDateFlags(rt, c.DateFlags)
	if err != nil {
		return err
	}

	result, err := rt.service(store).List(context.Background(), components)
	if err != nil {
		return err
	}
	return printView(rt, c.globals, result)
}

// Execute implements the go-flags Commander interface for UpcomingCommand.
func (c *UpcomingCommand) Execute(args []string) error {
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs upcoming against a provided store (used by tests).
func (c *UpcomingCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	result, err := rt.service(store).Upcoming(context.Background())
	if err != nil {
		return err
	}
	return printView(rt, c.globals, result)
}
