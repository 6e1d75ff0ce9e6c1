package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when an event ID does not exist.
var ErrNotFound = errors.New("event not found")

// Event is a single dated event record.
type Event struct {
	ID        string
	UID       string // external identifier, e.g. an iCalendar UID
	Title     string
	Location  string
	StartDate time.Time
	EndDate   time.Time
	Source    string // "manual", "ics"
	CreatedAt time.Time
}

// Stats holds aggregate statistics about the event database.
type Stats struct {
	TotalEvents    int64
	UpcomingEvents int64
	EarliestStart  time.Time
	LatestEnd      time.Time
	BySource       []SourceCount
}

// SourceCount pairs a source label with its event count.
type SourceCount struct {
	Source string
	Count  int64
}
