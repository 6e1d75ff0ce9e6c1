package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/runnerr0/eventscope/internal/ics"
	"github.com/runnerr0/eventscope/internal/storage"
)

type importJSON struct {
	File    string `json:"file"`
	Source  string `json:"source"`
	Parsed  int    `json:"parsed"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	if c.File == "" {
		return fmt.Errorf("--file is required for import command")
	}
	return withStore(c.globals, c.executeWithStore)
}

func (c *ImportCommand) open() (io.ReadCloser, error) {
	if c.File == "-" {
		if c.stdin != nil {
			return io.NopCloser(c.stdin), nil
		}
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(c.File)
}

// executeWithStore runs the import against a provided store (used by tests).
func (c *ImportCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	source := c.Source
	if source == "" {
		source = rt.cfg.Import.DefaultSource
	}

	f, err := c.open()
	if err != nil {
		return fmt.Errorf("open calendar: %w", err)
	}
	defer f.Close()

	entries, err := ics.Parse(f, rt.log)
	if err != nil {
		return err
	}

	parsed := len(entries)
	if days := rt.cfg.Import.ExpandDays; days > 0 && !c.NoExpand {
		today := rt.today()
		entries = ics.Expand(entries, ics.Window{
			From:  today.AddDate(0, 0, -rt.cfg.Import.HistoryDays),
			Until: today.AddDate(0, 0, days),
		}, rt.log)
	}

	res, err := ics.Import(context.Background(), store, entries, source)
	if err != nil {
		return err
	}
	rt.log.Info("calendar imported", "file", c.File, "source", source,
		"created", res.Created, "updated", res.Updated)

	if c.globals.JSON {
		return printJSON(importJSON{
			File:    c.File,
			Source:  source,
			Parsed:  parsed,
			Created: res.Created,
			Updated: res.Updated,
		})
	}

	fmt.Printf("Imported %s from %s into source %q\n", plural(int64(parsed), "event"), c.File, source)
	fmt.Printf("  Created: %d\n", res.Created)
	fmt.Printf("  Updated: %d\n", res.Updated)
	return nil
}
