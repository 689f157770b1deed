package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/tfanalyze/pkg/logger"
	"github.com/ccollicutt/tfanalyze/pkg/parser"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// ErrRunAborted marks a run that stopped on an unexpected internal failure.
var ErrRunAborted = errors.New("analysis run aborted")

// Analyzer classifies lines from a source and builds a fresh state table
// for every run.
type Analyzer struct {
	classifier *parser.Classifier
	log        *logger.Logger

	// Options
	layouts    []string
	configFile string
	runID      string
	now        func() time.Time
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithLayouts sets the timestamp layouts tried on each line's leading token.
func WithLayouts(layouts []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.layouts = layouts
	}
}

// WithLogger sets the logger used for run diagnostics.
func WithLogger(l *logger.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if l != nil {
			a.log = l
		}
	}
}

// WithConfigFile records the configuration file in the result metadata.
func WithConfigFile(path string) AnalyzerOption {
	return func(a *Analyzer) {
		a.configFile = path
	}
}

// WithRunID fixes the run ID instead of generating one.
func WithRunID(id string) AnalyzerOption {
	return func(a *Analyzer) {
		a.runID = id
	}
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		log: logger.Discard(),
		now: time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.classifier = parser.NewClassifier(a.layouts...)
	a.log = a.log.WithComponent("analyzer")

	return a
}

// Analyze reads every line from source and returns the finalized records.
// Any read error, panic, or cancellation aborts the run and no partial
// result is returned.
func (a *Analyzer) Analyze(ctx context.Context, source parser.LineSource) (result *AnalysisResult, err error) {
	runID := a.runID
	if runID == "" {
		runID = logger.RunIDFromContext(ctx)
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx = logger.ContextWithRunID(ctx, runID)
	log := a.log.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrRunAborted, r)
		}
	}()

	table := state.NewTable()
	meta := AnalysisMetadata{
		RunID:      runID,
		ConfigFile: a.configFile,
		StartTime:  a.now(),
		Outcomes:   make(map[state.Outcome]int),
	}

	sourcesSeen := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		raw, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		if !sourcesSeen[raw.Source] {
			sourcesSeen[raw.Source] = true
			meta.Sources = append(meta.Sources, raw.Source)
		}
		meta.LinesProcessed++

		line := a.classifier.Classify(raw.Content)
		outcome := table.Apply(line)
		meta.Outcomes[outcome]++

		if !outcome.Mutated() {
			log.Debug("line not attributed",
				"source", raw.Source,
				"line", raw.LineNum,
				"outcome", string(outcome))
		}
	}

	meta.EndTime = a.now()

	log.Info("analysis complete",
		"lines", meta.LinesProcessed,
		"resources", table.Len(),
		"duration", meta.EndTime.Sub(meta.StartTime))

	return &AnalysisResult{
		Records:  table.Records(),
		Metadata: meta,
	}, nil
}
