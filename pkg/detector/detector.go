// Package detector detects the timestamp layout of captured terraform output.
package detector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/parser"
)

// DefaultSampleSize is the number of lines sampled when none is given.
const DefaultSampleSize = 100

// DetectionResult holds the result of analyzing a log file.
type DetectionResult struct {
	Matches       []FormatMatch // Formats that matched, sorted by confidence descending
	SampledLines  int           // Number of lines sampled
	ParsedLines   int           // Number of lines with detected timestamps
	AmbiguityNote string        // Warning about date ordering if applicable
}

// FormatMatch represents a format that matched with its confidence score.
type FormatMatch struct {
	Format     *TimestampFormat
	Confidence float64   // 0.0 to 1.0 (share of sampled lines matched)
	MatchCount int       // Number of lines that matched
	SampleLine string    // Example line that matched
	ParsedTime time.Time // Parsed timestamp from sample
}

// Detector analyzes captured output to identify the timestamp layout.
type Detector struct {
	formats    []*TimestampFormat
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithFormats replaces the candidate formats.
func WithFormats(formats []*TimestampFormat) Option {
	return func(d *Detector) {
		if len(formats) > 0 {
			d.formats = formats
		}
	}
}

// New creates a new Detector with default formats.
func New(opts ...Option) *Detector {
	d := &Detector{
		formats:    DefaultFormats(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples a file and returns detected formats.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	lines, err := d.sampleFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines tries every format against the leading token of each line.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{SampledLines: len(lines)}
	if len(lines) == 0 {
		return result
	}

	extractors := make([]*parser.TimestampExtractor, len(d.formats))
	for i, f := range d.formats {
		extractors[i] = parser.NewTimestampExtractor(f.Layout)
	}

	type formatStats struct {
		order      int
		matchCount int
		sampleLine string
		parsedTime time.Time
	}
	stats := make(map[*TimestampFormat]*formatStats)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		for i, format := range d.formats {
			ts, _, err := extractors[i].Extract(line)
			if err != nil {
				continue
			}
			s := stats[format]
			if s == nil {
				s = &formatStats{order: i, sampleLine: line, parsedTime: ts}
				stats[format] = s
			}
			s.matchCount++
		}
	}

	for format, s := range stats {
		result.Matches = append(result.Matches, FormatMatch{
			Format:     format,
			Confidence: float64(s.matchCount) / float64(len(lines)),
			MatchCount: s.matchCount,
			SampleLine: s.sampleLine,
			ParsedTime: s.parsedTime,
		})
	}

	// Confidence first, then the format list order (more specific first).
	order := func(f *TimestampFormat) int { return stats[f].order }
	sort.Slice(result.Matches, func(i, j int) bool {
		if result.Matches[i].Confidence != result.Matches[j].Confidence {
			return result.Matches[i].Confidence > result.Matches[j].Confidence
		}
		return order(result.Matches[i].Format) < order(result.Matches[j].Format)
	})

	if len(result.Matches) > 0 {
		result.ParsedLines = result.Matches[0].MatchCount
		if result.Matches[0].Format.Ambiguous {
			result.AmbiguityNote = "This format has date ordering ambiguity (MM/DD vs DD/MM). " +
				"Verify the layout matches your output. " +
				"For European format (DD/MM/YYYY), use layout: \"02/01/2006-15:04:05\""
		}
	}

	return result
}

// sampleFile reads up to sampleSize non-blank lines from the head of a file.
func (d *Detector) sampleFile(ctx context.Context, path string) ([]string, error) {
	// #nosec G304 - path is provided by user via CLI
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for len(lines) < d.sampleSize && scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := scanner.Text()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return lines, nil
}

// BestMatch returns the highest confidence match, or nil if none found.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one format matched.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}

// Layouts returns the layouts of every match, best first.
func (r *DetectionResult) Layouts() []string {
	layouts := make([]string, 0, len(r.Matches))
	for _, m := range r.Matches {
		layouts = append(layouts, m.Format.Layout)
	}
	return layouts
}
