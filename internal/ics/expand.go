package ics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/runnerr0/eventscope/internal/logging"
)

// maxOccurrences caps how many rows one recurring VEVENT may produce.
const maxOccurrences = 1000

// Window is the inclusive range of calendar dates occurrences are
// expanded into.
type Window struct {
	From  time.Time
	Until time.Time
}

// Expand replaces each recurring entry with its occurrences inside w.
// Occurrences keep the base entry's length in days and get the UID
// "<uid>/<YYYY-MM-DD>". EXDATE dates are dropped and RECURRENCE-ID
// overrides replace the occurrence they name. Entries whose RRULE cannot
// be parsed are kept as single events.
func Expand(entries []Entry, w Window, log *slog.Logger) []Entry {
	log = logging.OrDiscard(log)

	overrides := make(map[string]Entry)
	for _, e := range entries {
		if e.IsOverride() {
			overrides[e.Key()] = e
		}
	}
	used := make(map[string]bool)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsOverride() {
			continue
		}
		if e.RawRRule == "" {
			out = append(out, e)
			continue
		}

		starts, capped, err := occurrenceDates(e, w)
		if err != nil {
			log.Warn("keeping recurring event unexpanded", "uid", e.UID, "error", err)
			out = append(out, e)
			continue
		}
		if capped {
			log.Warn("recurring event truncated", "uid", e.UID, "max", maxOccurrences)
		}
		if len(starts) == 0 {
			// A series that begins past the window is kept as its first
			// occurrence.
			if e.StartDate.After(w.Until) {
				out = append(out, e)
			}
			continue
		}

		span := int(e.EndDate.Sub(e.StartDate).Hours() / 24)
		for _, start := range starts {
			key := occurrenceKey(e.UID, start)
			if o, ok := overrides[key]; ok {
				used[key] = true
				out = append(out, overrideOccurrence(o))
				continue
			}
			occ := e
			occ.UID = key
			occ.StartDate = start
			occ.EndDate = start.AddDate(0, 0, span)
			occ.RawRRule = ""
			occ.ExDates = nil
			out = append(out, occ)
		}
	}

	// Overrides whose occurrence was not produced still describe a real
	// instance.
	for _, e := range entries {
		if e.IsOverride() && !used[e.Key()] {
			out = append(out, overrideOccurrence(e))
		}
	}
	return out
}

// overrideOccurrence turns an override VEVENT into a stored occurrence.
func overrideOccurrence(o Entry) Entry {
	o.UID = o.Key()
	o.RecurrenceID = time.Time{}
	o.RawRRule = ""
	o.ExDates = nil
	return o
}

// occurrenceDates lists the start dates of e's occurrences that overlap w.
// The result holds at most maxOccurrences dates, counted from w.From.
func occurrenceDates(e Entry, w Window) ([]time.Time, bool, error) {
	opt, err := rrule.StrToROption(e.RawRRule)
	if err != nil {
		return nil, false, fmt.Errorf("parse RRULE: %w", err)
	}
	opt.Dtstart = e.StartDate

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, false, fmt.Errorf("build RRULE: %w", err)
	}

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range e.ExDates {
		set.ExDate(ex)
	}

	// Occurrences that start before the window but are still running
	// when it opens overlap it.
	after := w.From.AddDate(0, 0, -int(e.EndDate.Sub(e.StartDate).Hours()/24))
	times := set.Between(after, w.Until, true)

	capped := len(times) > maxOccurrences
	if capped {
		times = times[:maxOccurrences]
	}

	out := make([]time.Time, 0, len(times))
	for _, t := range times {
		out = append(out, calendarDate(t))
	}
	return out, capped, nil
}
