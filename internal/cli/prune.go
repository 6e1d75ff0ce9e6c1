package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

type pruneJSON struct {
	Cutoff string `json:"cutoff"`
	DryRun bool   `json:"dry_run"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	if c.EndedBefore != "" && c.OlderThan != "" {
		return fmt.Errorf("--ended-before and --older-than are mutually exclusive")
	}
	return withStore(c.globals, c.executeWithStore)
}

// cutoff returns the first day that is kept.
func (c *PruneCommand) cutoff(rt *runtime) (time.Time, error) {
	switch {
	case c.EndedBefore != "" && c.OlderThan != "":
		return time.Time{}, fmt.Errorf("--ended-before and --older-than are mutually exclusive")
	case c.EndedBefore != "":
		return parseDateFlag("ended-before", c.EndedBefore)
	case c.OlderThan != "":
		d, err := parseDuration(c.OlderThan)
		if err != nil {
			return time.Time{}, err
		}
		return rt.today().Add(-d), nil
	case rt.cfg.Retention.Days > 0:
		return rt.today().AddDate(0, 0, -rt.cfg.Retention.Days), nil
	}
	return time.Time{}, fmt.Errorf("prune needs --ended-before or --older-than (or retention.days in config)")
}

// executeWithStore runs prune against a provided store (used by tests).
func (c *PruneCommand) executeWithStore(store *storage.SQLiteStore, rt *runtime) error {
	cutoff, err := c.cutoff(rt)
	if err != nil {
		return err
	}
	ctx := context.Background()

	var n int64
	if c.DryRun {
		n, err = store.CountEndedBefore(ctx, cutoff)
	} else {
		n, err = store.PruneEndedBefore(ctx, cutoff)
	}
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}
	rt.log.Debug("prune finished", "cutoff", cutoff.Format(scope.DateLayout), "dry_run", c.DryRun, "count", n)

	if c.globals.JSON {
		return printJSON(pruneJSON{Cutoff: cutoff.Format(scope.DateLayout), DryRun: c.DryRun, Count: n})
	}

	if c.DryRun {
		fmt.Printf("Would prune %s ending before %s\n", plural(n, "event"), rt.formatDate(cutoff))
		return nil
	}
	fmt.Printf("Pruned %s ending before %s\n", plural(n, "event"), rt.formatDate(cutoff))
	return nil
}
