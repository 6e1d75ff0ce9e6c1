// Package ics imports iCalendar (.ics) files into the event store.
package ics

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/runnerr0/eventscope/internal/logging"
	"github.com/runnerr0/eventscope/internal/scope"
)

// Entry is a VEVENT reduced to calendar dates. EndDate is inclusive.
type Entry struct {
	UID       string
	Title     string
	Location  string
	StartDate time.Time
	EndDate   time.Time
	AllDay    bool
	RawRRule  string // expanded by Expand

	// ExDates are occurrence dates removed from the series by EXDATE.
	ExDates []time.Time
	// RecurrenceID is the original date of the occurrence this VEVENT
	// replaces. Zero for ordinary events.
	RecurrenceID time.Time
}

// IsOverride reports whether e replaces one occurrence of a series.
func (e Entry) IsOverride() bool {
	return !e.RecurrenceID.IsZero()
}

// Key is the identifier e is stored under. An override is keyed like the
// occurrence it replaces so both resolve to the same row.
func (e Entry) Key() string {
	if e.IsOverride() {
		return occurrenceKey(e.UID, e.RecurrenceID)
	}
	return e.UID
}

func occurrenceKey(uid string, date time.Time) string {
	return uid + "/" + date.Format(scope.DateLayout)
}

// Parse reads an iCalendar stream. VEVENTs that lack a UID or a usable
// DTSTART are logged and skipped; the rest are returned in file order.
func Parse(r io.Reader, log *slog.Logger) ([]Entry, error) {
	log = logging.OrDiscard(log)

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read calendar: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("empty calendar")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	entries := make([]Entry, 0)
	for _, ve := range cal.Events() {
		e, perr := parseVEvent(ve)
		if perr != nil {
			log.Warn("skipping vevent", "error", perr, "uid", e.UID)
			continue
		}
		entries = append(entries, e)
	}

	log.Debug("calendar parsed", "events", len(entries))
	return entries, nil
}

func parseVEvent(ve *ical.VEvent) (Entry, error) {
	var out Entry

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || strings.TrimSpace(uidProp.Value) == "" {
		return out, errors.New("missing UID")
	}
	out.UID = strings.TrimSpace(uidProp.Value)

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}
	if out.Title == "" {
		out.Title = "(untitled)"
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return out, errors.New("missing DTSTART")
	}
	out.AllDay = isDateValue(dtStart)

	loc, err := parseSpan(ve, &out)
	if err != nil {
		return out, err
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		out.ExDates = append(out.ExDates, instanceDates(p.Value, loc)...)
	}
	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if dates := instanceDates(p.Value, loc); len(dates) > 0 {
			out.RecurrenceID = dates[0]
		}
	}
	return out, nil
}

// parseSpan fills StartDate and EndDate and returns the zone DTSTART was
// read in.
func parseSpan(ve *ical.VEvent, out *Entry) (*time.Location, error) {
	if out.AllDay {
		start, err := ve.GetAllDayStartAt()
		if err != nil {
			return nil, fmt.Errorf("DTSTART: %w", err)
		}
		out.StartDate = calendarDate(start)
		out.EndDate = out.StartDate

		if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
			end, err := ve.GetAllDayEndAt()
			if err != nil {
				return nil, fmt.Errorf("DTEND: %w", err)
			}
			// All-day DTEND is exclusive.
			last := calendarDate(end).AddDate(0, 0, -1)
			if last.After(out.StartDate) {
				out.EndDate = last
			}
		}
		return start.Location(), nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("DTSTART: %w", err)
	}
	out.StartDate = calendarDate(start)
	out.EndDate = out.StartDate

	if ve.GetProperty(ical.ComponentPropertyDtEnd) != nil {
		end, err := ve.GetEndAt()
		if err != nil {
			return nil, fmt.Errorf("DTEND: %w", err)
		}
		// An event ending exactly at midnight does not occupy that day.
		if end.After(start) && isMidnight(end) {
			end = end.Add(-time.Nanosecond)
		}
		if d := calendarDate(end); d.After(out.StartDate) {
			out.EndDate = d
		}
	}
	return start.Location(), nil
}

// isDateValue reports whether a DTSTART carries a DATE rather than a
// DATE-TIME.
func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// calendarDate returns t's calendar date in t's own zone, as UTC midnight.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// instanceDates reads a comma-separated EXDATE or RECURRENCE-ID value as
// calendar dates. UTC values are moved into loc first; floating and TZID
// values already carry their own calendar date. Unreadable parts are
// skipped.
func instanceDates(value string, loc *time.Location) []time.Time {
	var out []time.Time
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if strings.HasSuffix(part, "Z") {
			t, err := time.Parse("20060102T150405Z", part)
			if err != nil {
				continue
			}
			out = append(out, calendarDate(t.In(loc)))
			continue
		}
		if len(part) < 8 {
			continue
		}
		d, err := time.Parse("20060102", part[:8])
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

func isMidnight(t time.Time) bool {
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}
