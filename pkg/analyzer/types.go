// Package analyzer drives a single pass over terraform console output and
// hands the finished state table to the reporters.
package analyzer

import (
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Records holds one entry per resource, in first-seen order.
	Records []*state.Record

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// RunID uniquely identifies this run in logs and webhook payloads.
	RunID string

	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string

	// Sources lists the inputs that were read ("-" for stdin).
	Sources []string

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// LinesProcessed is the total number of input lines examined.
	LinesProcessed int

	// Outcomes counts what the state table did with each line.
	Outcomes map[state.Outcome]int
}

// Count returns how many lines produced the given outcome.
func (m *AnalysisMetadata) Count(o state.Outcome) int {
	return m.Outcomes[o]
}

// Incomplete returns the keys of resources that never reported a completion.
func (r *AnalysisResult) Incomplete() []string {
	var keys []string
	for _, rec := range r.Records {
		if !rec.Complete {
			keys = append(keys, rec.Key)
		}
	}
	return keys
}

// Lookup returns the record for key, if present.
func (r *AnalysisResult) Lookup(key string) (*state.Record, bool) {
	for _, rec := range r.Records {
		if rec.Key == key {
			return rec, true
		}
	}
	return nil, false
}
