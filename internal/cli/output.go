package cli

import (
	"fmt"
	"time"

	"github.com/runnerr0/eventscope/internal/archive"
	"github.com/runnerr0/eventscope/internal/predicate"
	"github.com/runnerr0/eventscope/internal/scope"
	"github.com/runnerr0/eventscope/internal/storage"
)

type eventJSON struct {
	ID        string `json:"id"`
	UID       string `json:"uid,omitempty"`
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Source    string `json:"source"`
}

type contextJSON struct {
	Mode  string `json:"mode"`
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Day   int    `json:"day"`
}

type clearJSON struct {
	Year  bool `json:"year"`
	Month bool `json:"month"`
	Day   bool `json:"day"`
}

type viewJSON struct {
	Scope   string      `json:"scope"`
	Context contextJSON `json:"context"`
	Count   int         `json:"count"`
	Events  []eventJSON `json:"events"`
}

func toEventJSON(e storage.Event) eventJSON {
	return eventJSON{
		ID:        e.ID,
		UID:       e.UID,
		Title:     e.Title,
		Location:  e.Location,
		StartDate: e.StartDate.Format(scope.DateLayout),
		EndDate:   e.EndDate.Format(scope.DateLayout),
		Source:    e.Source,
	}
}

func toContextJSON(c scope.Context) contextJSON {
	return contextJSON{Mode: c.Mode.String(), Year: c.Year, Month: int(c.Month), Day: c.Day}
}

func toClearJSON(c predicate.RoutingClear) clearJSON {
	return clearJSON{Year: c.Year, Month: c.Month, Day: c.Day}
}

// heading describes a resolved view for humans, e.g. "February 2024".
func heading(rt *runtime, ctx scope.Context) string {
	switch ctx.Mode {
	case scope.ModeExactDay:
		return rt.formatDate(ctx.Date())
	case scope.ModeMonth:
		return fmt.Sprintf("%s %d", ctx.Month, ctx.Year)
	case scope.ModeYear:
		return fmt.Sprintf("%d", ctx.Year)
	default:
		return "Upcoming from " + rt.formatDate(ctx.Date())
	}
}

func printView(rt *runtime, g *GlobalFlags, result *archive.Result) error {
	if g.JSON {
		out := viewJSON{
			Scope:   fmt.Sprint(result.Resolution.Scope),
			Context: toContextJSON(result.Resolution.Context),
			Count:   len(result.Events),
			Events:  make([]eventJSON, 0, len(result.Events)),
		}
		for _, e := range result.Events {
			out.Events = append(out.Events, toEventJSON(e))
		}
		return printJSON(out)
	}

	fmt.Printf("%s (%s)\n", heading(rt, result.Resolution.Context), plural(int64(len(result.Events)), "event"))
	if len(result.Events) == 0 {
		fmt.Println("  No events.")
		return nil
	}
	for _, e := range result.Events {
		printEventLine(rt, e)
	}
	return nil
}

func printEventLine(rt *runtime, e storage.Event) {
	span := rt.formatDate(e.StartDate)
	if !e.EndDate.Equal(e.StartDate) {
		span += " .. " + rt.formatDate(e.EndDate)
	}
	line := fmt.Sprintf("  %-24s %s", span, e.Title)
	if e.Location != "" {
		line += " @ " + e.Location
	}
	fmt.Printf("%s  [%s]\n", line, e.ID)
}

func formatOptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(scope.DateLayout)
}
