package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:              "~/.config/eventscope",
			SQLiteFile:        "eventscope.db",
			SQLiteJournalMode: "wal",
		},
		Calendar: CalendarConfig{
			Timezone:   "Local",
			DateFormat: "2006-01-02",
		},
		Retention: RetentionConfig{
			Days: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Import: ImportConfig{
			DefaultSource: "ics",
			ExpandDays:    365,
			HistoryDays:   365,
		},
	}
}
