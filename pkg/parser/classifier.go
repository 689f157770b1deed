package parser

import (
	"regexp"
)

// escape matches one terminal colour escape such as "\x1b[0m" or "\x1b[1;32m".
const escape = `\x1b\[[0-9;]*m`

// linePattern captures leading escapes, the identifier, the body and trailing
// escapes. The identifier cannot contain a colon or an escape byte, so the
// body is free to contain both.
var linePattern = regexp.MustCompile(`((?:` + escape + `)*)([^:\x1b]*?): (.*?)((?:` + escape + `)*)$`)

var escapePattern = regexp.MustCompile(escape)

// Classifier splits raw console lines into their timestamp, identifier and body.
type Classifier struct {
	timestamps *TimestampExtractor
}

// NewClassifier creates a classifier using the given timestamp layouts.
func NewClassifier(layouts ...string) *Classifier {
	return &Classifier{timestamps: NewTimestampExtractor(layouts...)}
}

// Classify classifies one line. It never fails: lines that do not match the
// grammar come back with Kind == Unclassified.
func (c *Classifier) Classify(raw string) LogLine {
	var line LogLine

	text := raw
	if ts, rest, err := c.timestamps.Extract(raw); err == nil {
		line.Timestamp = ts
		text = rest
	}

	m := linePattern.FindStringSubmatch(text)
	if m == nil {
		return line
	}

	line.Kind = Classified
	line.StyleStart = m[1]
	line.Identifier = m[2]
	line.Body = m[3]
	line.StyleEnd = m[4]
	line.Key, line.LocalExec = ResolveKey(line.Identifier)

	return line
}

// StripEscapes removes terminal colour escapes from s.
func StripEscapes(s string) string {
	return escapePattern.ReplaceAllString(s, "")
}
