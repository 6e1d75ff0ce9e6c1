package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/eventscope/internal/storage"
)

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for remove command")
	}
	return withStore(c.globals, c.executeWithStore)
}

// executeWithStore runs remove against a provided store (used by tests).
func (c *RemoveCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	err := store.DeleteEvent(context.Background(), c.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no event with id %s", c.ID)
	}
	if err != nil {
		return err
	}

	if c.globals.JSON {
		return printJSON(map[string]any{"id": c.ID, "removed": true})
	}
	fmt.Printf("Removed event %s\n", c.ID)
	return nil
}
