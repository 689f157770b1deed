// Package state holds the per-run table of resource records built from classified lines.
package state

import (
	"time"
)

// DefaultElapsedText is the elapsed text of a resource with no completion message.
const DefaultElapsedText = "0s"

// Line is one log line attributed to a resource, with its escapes kept for rendering.
type Line struct {
	Body       string `json:"body"`
	StyleStart string `json:"style_start,omitempty"`
	StyleEnd   string `json:"style_end,omitempty"`
}

// Record accumulates everything seen for one resource key.
type Record struct {
	// Key is the canonical resource key. It doubles as the module name.
	Key string `json:"module"`

	// StartTime is the time of the first line attributed to Key.
	StartTime time.Time `json:"start_time"`

	// EndTime is set by the most recent completion message. Zero until then.
	EndTime time.Time `json:"end_time"`

	// Complete is set once a completion message has been seen.
	Complete bool `json:"complete"`

	// ElapsedText is the duration as terraform printed it.
	ElapsedText string `json:"elapsed"`

	// ElapsedSeconds is ElapsedText in seconds.
	ElapsedSeconds int `json:"elapsed_seconds"`

	// Lines are the main-phase lines in arrival order.
	Lines []Line `json:"lines"`

	// LocalExec is nil unless a local-exec line was seen for Key.
	LocalExec *LocalExecRecord `json:"local_exec,omitempty"`
}

// LocalExecRecord holds local-exec provisioner output for a resource.
type LocalExecRecord struct {
	// Lines are the local-exec lines, excluding the "Executing:" line.
	Lines []Line `json:"lines"`

	// Command is the executed shell command split on escaped newlines.
	// Nil unless an "Executing:" line was seen.
	Command []string `json:"command,omitempty"`
}

func newRecord(key string, start time.Time) *Record {
	return &Record{
		Key:         key,
		StartTime:   start,
		ElapsedText: DefaultElapsedText,
		Lines:       []Line{},
	}
}

// HasCommand reports whether a local-exec command was captured.
func (r *Record) HasCommand() bool {
	return r.LocalExec != nil && r.LocalExec.Command != nil
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Lines = append([]Line{}, r.Lines...)
	if r.LocalExec != nil {
		le := LocalExecRecord{Lines: append([]Line{}, r.LocalExec.Lines...)}
		if r.LocalExec.Command != nil {
			le.Command = append([]string{}, r.LocalExec.Command...)
		}
		c.LocalExec = &le
	}
	return &c
}
