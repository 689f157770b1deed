package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Message markers recognised inside line bodies.
const (
	CompletionMarker = "Creation complete after"
	ExecutingMarker  = "Executing:"
)

var (
	durationComponent = regexp.MustCompile(`(\d+)(\D)`)
	completionPattern = regexp.MustCompile(`Creation complete after (\d.*) \[`)
	executingPattern  = regexp.MustCompile(`^(?:` + escape + `)*Executing: \["/bin/sh" "-c" "(.*)"\]$`)
)

// ParseDuration converts a terraform duration such as "1m30s" into seconds.
// Every <digits><unit> component is summed; units other than h, m and s are
// ignored, as are components too large to represent.
func ParseDuration(text string) int {
	total := 0
	for _, m := range durationComponent.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		var unit int
		switch m[2] {
		case "h":
			unit = 3600
		case "m":
			unit = 60
		case "s":
			unit = 1
		default:
			continue
		}
		if n > (math.MaxInt-total)/unit {
			continue
		}
		total += n * unit
	}
	return total
}

// Completion is the timing carried by a "Creation complete after" message.
type Completion struct {
	// Text is the duration exactly as printed, e.g. "1m30s".
	Text string

	// Seconds is Text converted with ParseDuration.
	Seconds int
}

// HasCompletionMarker reports whether body announces a finished creation.
func HasCompletionMarker(body string) bool {
	return strings.Contains(body, CompletionMarker)
}

// ExtractCompletion pulls the duration out of a completion message.
// The bool is false when the body has no locatable duration.
func ExtractCompletion(body string) (Completion, bool) {
	m := completionPattern.FindStringSubmatch(body)
	if m == nil {
		return Completion{}, false
	}
	return Completion{Text: m[1], Seconds: ParseDuration(m[1])}, true
}

// HasExecutingMarker reports whether body announces a local-exec command.
func HasExecutingMarker(body string) bool {
	return strings.Contains(body, ExecutingMarker)
}

// ExtractCommand pulls the shell command out of an
// `Executing: ["/bin/sh" "-c" "<command>"]` message and splits it on the
// escaped newlines terraform prints. The bool is false when the body does not
// have that shape.
func ExtractCommand(body string) ([]string, bool) {
	m := executingPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, false
	}
	return strings.Split(m[1], `\n`), true
}
