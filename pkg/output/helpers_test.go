package output

import (
	"testing"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/analyzer"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

var baseTime = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func record(key string, startOffset time.Duration, elapsed int, text string) *state.Record {
	rec := &state.Record{
		Key:            key,
		StartTime:      baseTime.Add(startOffset),
		ElapsedText:    text,
		ElapsedSeconds: elapsed,
		Lines:          []state.Line{{Body: "Creating..."}},
	}
	if elapsed > 0 {
		rec.Complete = true
		rec.EndTime = rec.StartTime.Add(time.Duration(elapsed) * time.Second)
		rec.Lines = append(rec.Lines, state.Line{Body: "Creation complete after " + text + " [id=x]"})
	}
	return rec
}

// createTestResult returns records in first-seen order:
// a fast bucket, a critical cluster, a warning database, an incomplete
// resource and one with a local-exec provisioner.
func createTestResult(t *testing.T) *analyzer.AnalysisResult {
	t.Helper()

	withExec := record(`null_resource.setup["x"]`, 3*time.Second, 45, "45s")
	withExec.LocalExec = &state.LocalExecRecord{
		Lines:   []state.Line{{Body: "\x1b[0mhello"}, {Body: "world"}},
		Command: []string{"echo hello", "echo world"},
	}

	return &analyzer.AnalysisResult{
		Records: []*state.Record{
			record("aws_s3_bucket.logs", 0, 5, "5s"),
			record("module.eks.aws_eks_cluster.this", time.Second, 754, "12m34s"),
			record("aws_db_instance.main", 2*time.Second, 400, "6m40s"),
			record("aws_iam_role.pending", 2*time.Second, 0, state.DefaultElapsedText),
			withExec,
		},
		Metadata: analyzer.AnalysisMetadata{
			RunID:          "run-42",
			ConfigFile:     "tfanalyze.yaml",
			Sources:        []string{"-"},
			StartTime:      baseTime,
			EndTime:        baseTime.Add(250 * time.Millisecond),
			LinesProcessed: 20,
			Outcomes: map[state.Outcome]int{
				state.OutcomeIgnored:  6,
				state.OutcomeBlankKey: 1,
			},
		},
	}
}

func createTestReport(t *testing.T) *Report {
	t.Helper()
	return NewReport(createTestResult(t), DefaultThresholds)
}
