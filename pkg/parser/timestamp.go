package parser

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultLayouts are tried in order against the leading bracketed token.
var DefaultLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"15:04:05",
}

// ErrNoTimestamp is returned when the leading token is too short to hold one.
var ErrNoTimestamp = errors.New("no timestamp token")

// TimestampExtractor parses the timestamp carried by a line's leading token.
// The token runs up to the first space; its first and last characters
// (normally the brackets) are dropped before parsing.
type TimestampExtractor struct {
	layouts []string
}

// NewTimestampExtractor creates an extractor trying the given layouts in order.
// With no layouts, DefaultLayouts are used.
func NewTimestampExtractor(layouts ...string) *TimestampExtractor {
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}
	return &TimestampExtractor{layouts: layouts}
}

// Layouts returns the layouts the extractor tries.
func (e *TimestampExtractor) Layouts() []string {
	return e.layouts
}

// Extract parses the leading token of line.
// On success it also returns the text following the token and its space.
func (e *TimestampExtractor) Extract(line string) (time.Time, string, error) {
	token, rest := line, ""
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		token, rest = line[:idx], line[idx+1:]
	}

	if len(token) < 3 {
		return time.Time{}, line, ErrNoTimestamp
	}
	inner := token[1 : len(token)-1]

	var lastErr error
	for _, layout := range e.layouts {
		ts, err := time.Parse(layout, inner)
		if err == nil {
			return ts, rest, nil
		}
		lastErr = err
	}

	return time.Time{}, line, fmt.Errorf("parsing timestamp %q: %w", inner, lastErr)
}
