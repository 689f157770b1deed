package detector

// TimestampFormat is a candidate layout for the leading bracketed token of
// captured terraform output.
type TimestampFormat struct {
	Name      string   // Human-readable name
	Layout    string   // Go time layout for parsing
	Examples  []string // Example leading tokens
	Ambiguous bool     // True if format has date ordering ambiguity (MM/DD vs DD/MM)
}

// DefaultFormats returns the built-in formats to detect.
// More specific layouts come first so ties favour them.
func DefaultFormats() []*TimestampFormat {
	return []*TimestampFormat{
		{
			Name:     "RFC 3339 with fractional seconds",
			Layout:   "2006-01-02T15:04:05.999999999Z07:00",
			Examples: []string{"[2024-01-15T10:30:00.123456Z]", "[2024-01-15T10:30:00.5+02:00]"},
		},
		{
			Name:     "RFC 3339",
			Layout:   "2006-01-02T15:04:05Z07:00",
			Examples: []string{"[2024-01-15T10:30:00Z]", "[2024-01-15T10:30:00-05:00]"},
		},
		{
			Name:     "ISO 8601 with milliseconds and compact offset",
			Layout:   "2006-01-02T15:04:05.000Z0700",
			Examples: []string{"[2024-01-15T10:30:00.123+0000]"},
		},
		{
			Name:     "ISO 8601 with compact offset",
			Layout:   "2006-01-02T15:04:05Z0700",
			Examples: []string{"[2024-01-15T10:30:00+0100]"},
		},
		{
			Name:     "ISO 8601 with milliseconds",
			Layout:   "2006-01-02T15:04:05.000",
			Examples: []string{"[2024-01-15T10:30:00.123]"},
		},
		{
			Name:     "ISO 8601",
			Layout:   "2006-01-02T15:04:05",
			Examples: []string{"[2024-01-15T10:30:00]"},
		},
		{
			Name:     "Slash-separated datetime",
			Layout:   "2006/01/02-15:04:05",
			Examples: []string{"[2024/01/15-10:30:00]"},
		},
		{
			Name:     "Time of day with milliseconds",
			Layout:   "15:04:05.000",
			Examples: []string{"[10:30:00.123]"},
		},
		{
			Name:     "Time of day",
			Layout:   "15:04:05",
			Examples: []string{"[10:30:00]"},
		},
		{
			Name:      "US date format (MM/DD/YYYY)",
			Layout:    "01/02/2006-15:04:05",
			Examples:  []string{"[01/15/2024-10:30:00]"},
			Ambiguous: true,
		},
	}
}
