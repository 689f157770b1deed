package state

import (
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/parser"
)

// Outcome records what Apply did with a line.
type Outcome string

const (
	// OutcomeIgnored: the line did not classify.
	OutcomeIgnored Outcome = "ignored"

	// OutcomeBlankKey: the line classified but its key is empty.
	OutcomeBlankKey Outcome = "blank_key"

	// OutcomeMain: appended to the main-phase lines.
	OutcomeMain Outcome = "main"

	// OutcomeCompletion: a completion message set the timing fields.
	OutcomeCompletion Outcome = "completion"

	// OutcomeCompletionMalformed: the completion marker was present but no
	// duration could be located. The line was appended; timing is unchanged.
	OutcomeCompletionMalformed Outcome = "completion_malformed"

	// OutcomeLocalExec: appended to the local-exec lines.
	OutcomeLocalExec Outcome = "local_exec"

	// OutcomeExecuting: an "Executing:" line set the local-exec command.
	OutcomeExecuting Outcome = "executing"

	// OutcomeExecutingMalformed: the "Executing:" marker was present without
	// the shell invocation shape. The line was appended as local-exec output.
	OutcomeExecutingMalformed Outcome = "executing_malformed"
)

// Mutated reports whether the outcome changed the table.
func (o Outcome) Mutated() bool {
	return o != OutcomeIgnored && o != OutcomeBlankKey
}

// Table maps resource keys to their records for the length of one run.
// It is not safe for concurrent use; lines are applied in arrival order.
type Table struct {
	records map[string]*Record
	order   []string

	// clock is the last timestamp seen on an attributed line. It stands in
	// for lines that carry no timestamp of their own.
	clock time.Time
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{records: make(map[string]*Record)}
}

// Apply attributes one classified line to its resource.
func (t *Table) Apply(line parser.LogLine) Outcome {
	if !line.Attributable() {
		if line.Kind != parser.Classified {
			return OutcomeIgnored
		}
		return OutcomeBlankKey
	}

	at := t.clock
	if line.HasTimestamp() {
		at = line.Timestamp
		t.clock = at
	}

	rec, ok := t.records[line.Key]
	if !ok {
		rec = newRecord(line.Key, at)
		t.records[line.Key] = rec
		t.order = append(t.order, line.Key)
	}

	entry := Line{Body: line.Body, StyleStart: line.StyleStart, StyleEnd: line.StyleEnd}

	if line.LocalExec {
		return applyLocalExec(rec, line.Body, entry)
	}
	return applyMain(rec, line.Body, entry, at)
}

func applyLocalExec(rec *Record, body string, entry Line) Outcome {
	if rec.LocalExec == nil {
		rec.LocalExec = &LocalExecRecord{Lines: []Line{}}
	}
	le := rec.LocalExec

	if parser.HasExecutingMarker(body) {
		if cmd, ok := parser.ExtractCommand(body); ok {
			le.Command = cmd
			return OutcomeExecuting
		}
		le.Lines = append(le.Lines, entry)
		return OutcomeExecutingMalformed
	}

	le.Lines = append(le.Lines, entry)
	return OutcomeLocalExec
}

func applyMain(rec *Record, body string, entry Line, at time.Time) Outcome {
	outcome := OutcomeMain

	if parser.HasCompletionMarker(body) {
		if c, ok := parser.ExtractCompletion(body); ok {
			rec.ElapsedText = c.Text
			rec.ElapsedSeconds = c.Seconds
			rec.EndTime = at
			rec.Complete = true
			outcome = OutcomeCompletion
		} else {
			outcome = OutcomeCompletionMalformed
		}
	}

	rec.Lines = append(rec.Lines, entry)
	return outcome
}

// Get returns the record for key.
func (t *Table) Get(key string) (*Record, bool) {
	rec, ok := t.records[key]
	return rec, ok
}

// Len returns the number of distinct resources seen.
func (t *Table) Len() int {
	return len(t.order)
}

// Keys returns resource keys in first-seen order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.order...)
}

// Records returns deep copies of all records in first-seen order.
// The copies are independent of the table.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.records[key].Clone())
	}
	return out
}
