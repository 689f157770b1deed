// Package output turns a finished analysis into reports: the terminal
// summary table, JSON, and the HTML report pages.
package output

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/analyzer"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// Band is the colour band an elapsed time falls into.
type Band string

const (
	BandOK       Band = "ok"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

// Thresholds separate the colour bands. A resource is in a band when its
// elapsed time is strictly greater than the threshold.
type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

// DefaultThresholds matches the shipped configuration defaults.
var DefaultThresholds = Thresholds{Warning: 5 * time.Minute, Critical: 10 * time.Minute}

// BandFor returns the band for an elapsed time in seconds.
func (t Thresholds) BandFor(seconds int) Band {
	elapsed := time.Duration(seconds) * time.Second
	switch {
	case elapsed > t.Critical:
		return BandCritical
	case elapsed > t.Warning:
		return BandWarning
	default:
		return BandOK
	}
}

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Entries holds one entry per resource, slowest first.
	Entries []Entry `json:"resources"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Entry is one resource in report order.
type Entry struct {
	Key            string    `json:"module"`
	Slug           string    `json:"slug"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Complete       bool      `json:"complete"`
	ElapsedText    string    `json:"elapsed"`
	ElapsedSeconds int       `json:"parsed_time"`
	Band           Band      `json:"band"`
	Command        []string  `json:"command,omitempty"`

	// Record is the full record the entry was built from.
	Record *state.Record `json:"-"`
}

// HasLocalExec reports whether the resource ran a local-exec provisioner.
func (e *Entry) HasLocalExec() bool {
	return e.Record != nil && e.Record.LocalExec != nil
}

// HasCommand reports whether the local-exec command was captured.
func (e *Entry) HasCommand() bool {
	return e.HasLocalExec() && e.Record.LocalExec.Command != nil
}

// Summary provides aggregate statistics.
type Summary struct {
	// Resources is the number of distinct resources seen.
	Resources int `json:"resources"`

	// Completed is the number of resources that reported a completion.
	Completed int `json:"completed"`

	// Warning and Critical count resources in those colour bands.
	Warning  int `json:"warning"`
	Critical int `json:"critical"`

	// LinesProcessed is the total number of input lines read.
	LinesProcessed int `json:"lines_processed"`

	// LinesIgnored counts lines that were not attributed to any resource.
	LinesIgnored int `json:"lines_ignored"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	RunID      string        `json:"run_id"`
	ConfigFile string        `json:"config_file,omitempty"`
	Sources    []string      `json:"sources"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Duration   time.Duration `json:"duration_ns"`
}

// NewReport creates a Report from analysis results. Entries are sorted by
// elapsed seconds, descending; ties keep first-seen order.
func NewReport(result *analyzer.AnalysisResult, th Thresholds) *Report {
	meta := result.Metadata

	report := &Report{
		Entries: make([]Entry, 0, len(result.Records)),
		Metadata: Metadata{
			RunID:      meta.RunID,
			ConfigFile: meta.ConfigFile,
			Sources:    meta.Sources,
			AnalyzedAt: meta.EndTime,
			Duration:   meta.EndTime.Sub(meta.StartTime),
		},
		Summary: Summary{
			Resources:      len(result.Records),
			LinesProcessed: meta.LinesProcessed,
			LinesIgnored:   meta.Count(state.OutcomeIgnored) + meta.Count(state.OutcomeBlankKey),
		},
	}

	slugs := newSlugger()
	for _, rec := range result.Records {
		e := Entry{
			Key:            rec.Key,
			Slug:           slugs.slug(rec.Key),
			StartTime:      rec.StartTime,
			EndTime:        rec.EndTime,
			Complete:       rec.Complete,
			ElapsedText:    rec.ElapsedText,
			ElapsedSeconds: rec.ElapsedSeconds,
			Band:           th.BandFor(rec.ElapsedSeconds),
			Record:         rec,
		}
		if rec.HasCommand() {
			e.Command = rec.LocalExec.Command
		}

		if e.Complete {
			report.Summary.Completed++
		}
		switch e.Band {
		case BandWarning:
			report.Summary.Warning++
		case BandCritical:
			report.Summary.Critical++
		}

		report.Entries = append(report.Entries, e)
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		return report.Entries[i].ElapsedSeconds > report.Entries[j].ElapsedSeconds
	})

	return report
}

// HasSlow returns true if any resource is in the critical band.
func (r *Report) HasSlow() bool {
	return r.Summary.Critical > 0
}

// Over returns the entries whose elapsed seconds exceed limit, in report order.
func (r *Report) Over(limit int) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.ElapsedSeconds > limit {
			out = append(out, e)
		}
	}
	return out
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9._-]`)

// Slug maps a resource key to a file-system safe directory name. The result
// is always a single path element below the report directory: names made
// only of dots, and the index page name, get a leading underscore.
func Slug(key string) string {
	slug := slugUnsafe.ReplaceAllString(strings.ToLower(key), "_")
	if strings.Trim(slug, ".") == "" || slug == IndexPage {
		slug = "_" + slug
	}
	return slug
}

// slugger hands out unique slugs. Keys that collapse to a slug already
// handed out get the first free numeric suffix, in first-seen order.
type slugger struct {
	used map[string]bool
	next map[string]int
}

func newSlugger() *slugger {
	return &slugger{used: make(map[string]bool), next: make(map[string]int)}
}

func (s *slugger) slug(key string) string {
	base := Slug(key)
	if !s.used[base] {
		s.used[base] = true
		return base
	}
	n := s.next[base]
	if n == 0 {
		n = 2
	}
	for ; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !s.used[candidate] {
			s.used[candidate] = true
			s.next[base] = n + 1
			return candidate
		}
	}
}
