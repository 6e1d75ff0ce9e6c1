package ics

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/eventscope/internal/scope"
)

// calendar wraps VEVENT bodies in a VCALENDAR with CRLF line endings.
func calendar(events ...string) string {
	lines := []string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//eventscope//test//EN"}
	for _, e := range events {
		lines = append(lines, "BEGIN:VEVENT")
		lines = append(lines, strings.Split(strings.TrimSpace(e), "\n")...)
		lines = append(lines, "END:VEVENT")
	}
	lines = append(lines, "END:VCALENDAR")
	return strings.Join(lines, "\r\n") + "\r\n"
}

func parse(t *testing.T, src string) []Entry {
	t.Helper()
	entries, err := Parse(strings.NewReader(src), nil)
	require.NoError(t, err)
	return entries
}

func day(e Entry) (string, string) {
	return e.StartDate.Format(scope.DateLayout), e.EndDate.Format(scope.DateLayout)
}

func TestParse_AllDayEndIsExclusive(t *testing.T) {
	entries := parse(t, calendar(`
UID:fair@example.com
SUMMARY:County Fair
LOCATION:Fairgrounds
DTSTART;VALUE=DATE:20240412
DTEND;VALUE=DATE:20240415`))

	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "fair@example.com", e.UID)
	assert.Equal(t, "County Fair", e.Title)
	assert.Equal(t, "Fairgrounds", e.Location)
	assert.True(t, e.AllDay)

	start, end := day(e)
	assert.Equal(t, "2024-04-12", start)
	assert.Equal(t, "2024-04-14", end)
}

func TestParse_AllDaySingleDay(t *testing.T) {
	entries := parse(t, calendar(
		"UID:a\nSUMMARY:One day\nDTSTART;VALUE=DATE:20240229\nDTEND;VALUE=DATE:20240301",
		"UID:b\nSUMMARY:No end\nDTSTART;VALUE=DATE:20240301",
	))

	require.Len(t, entries, 2)
	start, end := day(entries[0])
	assert.Equal(t, "2024-02-29", start)
	assert.Equal(t, "2024-02-29", end)

	start, end = day(entries[1])
	assert.Equal(t, "2024-03-01", start)
	assert.Equal(t, "2024-03-01", end)
}

func TestParse_TimedEventUsesOwnZone(t *testing.T) {
	entries := parse(t, calendar(`
UID:late-call
SUMMARY:Late call
DTSTART;TZID=America/New_York:20240131T220000
DTEND;TZID=America/New_York:20240131T233000`))

	require.Len(t, entries, 1)
	assert.False(t, entries[0].AllDay)
	start, end := day(entries[0])
	// 22:00 in New York is already Feb 1 in UTC; the local date wins.
	assert.Equal(t, "2024-01-31", start)
	assert.Equal(t, "2024-01-31", end)
}

func TestParse_TimedEventSpanningMidnight(t *testing.T) {
	entries := parse(t, calendar(
		"UID:overnight\nSUMMARY:Overnight\nDTSTART:20240301T200000Z\nDTEND:20240302T060000Z",
		"UID:until-midnight\nSUMMARY:Party\nDTSTART:20240301T200000Z\nDTEND:20240302T000000Z",
	))

	require.Len(t, entries, 2)
	start, end := day(entries[0])
	assert.Equal(t, "2024-03-01", start)
	assert.Equal(t, "2024-03-02", end)

	start, end = day(entries[1])
	assert.Equal(t, "2024-03-01", start)
	assert.Equal(t, "2024-03-01", end, "ending exactly at midnight stays on the start day")
}

func TestParse_SkipsInvalidEvents(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	src := calendar(
		"SUMMARY:No uid\nDTSTART;VALUE=DATE:20240101",
		"UID:no-start\nSUMMARY:No start",
		"UID:ok\nSUMMARY:Fine\nDTSTART;VALUE=DATE:20240101",
	)
	entries, err := Parse(strings.NewReader(src), logger)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "ok", entries[0].UID)
	assert.Contains(t, buf.String(), "missing UID")
	assert.Contains(t, buf.String(), "missing DTSTART")
}

func TestParse_RecordsRRuleAndDefaultsTitle(t *testing.T) {
	entries := parse(t, calendar(`
UID:weekly
DTSTART;VALUE=DATE:20240105
RRULE:FREQ=WEEKLY;COUNT=4`))

	require.Len(t, entries, 1)
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", entries[0].RawRRule)
	assert.Equal(t, "(untitled)", entries[0].Title)
	start, end := day(entries[0])
	assert.Equal(t, start, end, "recurrences are not expanded")
}

func TestParse_EmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader("  \r\n"), nil)
	assert.Error(t, err)
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("BEGIN:VTODO\r\nEND:VTODO\r\n"), nil)
	assert.Error(t, err)
}

func TestParse_NoEvents(t *testing.T) {
	entries := parse(t, calendar())
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestParse_ExcludedDatesAndOverrides(t *testing.T) {
	entries := parse(t, calendar(`
UID:club
DTSTART;TZID=America/New_York:20240105T190000
RRULE:FREQ=WEEKLY;COUNT=5
EXDATE;TZID=America/New_York:20240112T190000,20240119T190000
EXDATE:20240127T000000Z`, `
UID:club
RECURRENCE-ID;TZID=America/New_York:20240202T190000
DTSTART;TZID=America/New_York:20240203T190000`))

	require.Len(t, entries, 2)
	base := entries[0]
	assert.False(t, base.IsOverride())
	assert.Equal(t, "club", base.Key())

	var excluded []string
	for _, d := range base.ExDates {
		excluded = append(excluded, d.Format(scope.DateLayout))
	}
	// Midnight UTC on the 27th is still the 26th in New York.
	assert.Equal(t, []string{"2024-01-12", "2024-01-19", "2024-01-26"}, excluded)

	override := entries[1]
	assert.True(t, override.IsOverride())
	assert.Equal(t, "2024-02-02", override.RecurrenceID.Format(scope.DateLayout))
	assert.Equal(t, "club/2024-02-02", override.Key())
}
