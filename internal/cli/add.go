package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/runnerr0/eventscope/internal/storage"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("--title is required for add command")
	}
	if c.Start == "" {
		return fmt.Errorf("--start is required for add command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs the add logic against a provided store (used by tests).
func (c *AddCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	start, err := parseDateFlag("start", c.Start)
	if err != nil {
		return err
	}
	end := start
	if c.End != "" {
		if end, err = parseDateFlag("end", c.End); err != nil {
			return err
		}
	}
	if end.Before(start) {
		return fmt.Errorf("--end %s is before --start %s", c.End, c.Start)
	}

	event := &storage.Event{
		Title:     strings.TrimSpace(c.Title),
		Location:  c.Location,
		StartDate: start,
		EndDate:   end,
		Source:    "manual",
	}
	if err := store.AddEvent(context.Background(), event); err != nil {
		return fmt.Errorf("storing event: %w", err)
	}
	rt.log.Debug("event added", "id", event.ID)

	if c.globals.JSON {
		return printJSON(toEventJSON(*event))
	}

	fmt.Printf("Added event %s\n", event.ID)
	fmt.Printf("  Title: %s\n", event.Title)
	fmt.Printf("  Dates: %s .. %s\n", rt.formatDate(event.StartDate), rt.formatDate(event.EndDate))
	if event.Location != "" {
		fmt.Printf("  Location: %s\n", event.Location)
	}
	return nil
}
