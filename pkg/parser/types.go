// Package parser turns captured terraform console output into classified log lines.
package parser

import "time"

// RawLine is a single line of input before classification.
type RawLine struct {
	// Content is the line text without its trailing newline.
	Content string

	// Source is the file path (or "-" for stdin) this line came from.
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int
}

// LineKind tags the outcome of classifying one line.
type LineKind int

const (
	// Unclassified lines do not have the "<identifier>: <body>" shape.
	Unclassified LineKind = iota

	// Classified lines carry an identifier and a body.
	Classified
)

// String returns the kind name.
func (k LineKind) String() string {
	if k == Classified {
		return "classified"
	}
	return "unclassified"
}

// LogLine is the classified form of one console line.
type LogLine struct {
	// Kind reports whether the line matched the line grammar.
	Kind LineKind

	// Timestamp is parsed from the leading token. Zero when absent or unparseable.
	Timestamp time.Time

	// Identifier is the raw resource identifier segment.
	Identifier string

	// Key is the canonical resource key derived from Identifier.
	Key string

	// LocalExec is true when Identifier ends in the "(local-exec)" marker.
	LocalExec bool

	// Body is the message text after ": ", without surrounding escapes.
	Body string

	// StyleStart and StyleEnd hold the raw escape sequences around the
	// identifier and body. They are passed through untouched.
	StyleStart string
	StyleEnd   string
}

// HasTimestamp reports whether a timestamp was parsed for the line.
func (l LogLine) HasTimestamp() bool {
	return !l.Timestamp.IsZero()
}

// Attributable reports whether the line can be attributed to a resource.
func (l LogLine) Attributable() bool {
	return l.Kind == Classified && l.Key != ""
}
