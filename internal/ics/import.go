package ics

import (
	"context"
	"fmt"

	"github.com/runnerr0/eventscope/internal/storage"
)

// Upserter stores events keyed by (source, uid).
type Upserter interface {
	UpsertByUID(ctx context.Context, event *storage.Event) (bool, error)
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int
	Updated int
}

// Import upserts entries under source. Re-importing the same file updates
// rows in place. It stops at the first storage error.
func Import(ctx context.Context, store Upserter, entries []Entry, source string) (ImportResult, error) {
	var res ImportResult
	if source == "" {
		return res, fmt.Errorf("import source is required")
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		created, err := store.UpsertByUID(ctx, &storage.Event{
			UID:       e.Key(),
			Title:     e.Title,
			Location:  e.Location,
			StartDate: e.StartDate,
			EndDate:   e.EndDate,
			Source:    source,
		})
		if err != nil {
			return res, fmt.Errorf("import %s: %w", e.Key(), err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}
