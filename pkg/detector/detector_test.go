package detector

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ccollicutt/tfanalyze/pkg/parser"
)

func TestDetector_DetectFromLines_RFC3339(t *testing.T) {
	d := New()
	lines := []string{
		"[2024-01-15T10:30:00Z] module.a: Creating...",
		"[2024-01-15T10:30:05Z] module.a: Still creating... [5s elapsed]",
		"[2024-01-15T10:30:09Z] module.a: Creation complete after 9s [id=a]",
	}

	result := d.DetectFromLines(lines)

	if !result.HasMatch() {
		t.Fatal("expected match for RFC 3339 tokens")
	}
	best := result.BestMatch()
	if best.Format.Layout != "2006-01-02T15:04:05.999999999Z07:00" {
		t.Errorf("best layout = %q", best.Format.Layout)
	}
	if best.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", best.Confidence)
	}
	if want := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC); !best.ParsedTime.Equal(want) {
		t.Errorf("ParsedTime = %v, want %v", best.ParsedTime, want)
	}
	if best.SampleLine != lines[0] {
		t.Errorf("SampleLine = %q", best.SampleLine)
	}
	if result.ParsedLines != 3 {
		t.Errorf("ParsedLines = %d, want 3", result.ParsedLines)
	}
}

func TestDetector_DetectFromLines_ISO8601NoZone(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{
		"[2024-01-15T10:30:00] module.a: Creating...",
		"[2024-01-15T10:30:01] module.b: Creating...",
	})

	best := result.BestMatch()
	if best == nil || best.Format.Name != "ISO 8601" {
		t.Fatalf("best = %+v, want ISO 8601", best)
	}
}

func TestDetector_DetectFromLines_TimeOfDay(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{
		"[10:30:00] module.a: Creating...",
		"[10:31:00] module.a: Creation complete after 1m0s [id=a]",
	})

	best := result.BestMatch()
	if best == nil || best.Format.Layout != "15:04:05" {
		t.Fatalf("best = %+v, want time of day", best)
	}
	if result.AmbiguityNote != "" {
		t.Errorf("unexpected ambiguity note: %s", result.AmbiguityNote)
	}
}

func TestDetector_DetectFromLines_FractionalPreferred(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{"[10:30:00.123] module.a: Creating..."})

	// Both time-of-day layouts parse; the more specific one wins the tie.
	if len(result.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(result.Matches))
	}
	if result.BestMatch().Format.Layout != "15:04:05.000" {
		t.Errorf("best layout = %q", result.BestMatch().Format.Layout)
	}
}

func TestDetector_DetectFromLines_NoMatch(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{
		"module.a: Creating...",
		"Apply complete! Resources: 1 added, 0 changed, 0 destroyed.",
	})

	if result.HasMatch() {
		t.Errorf("expected no match, got %s", result.BestMatch().Format.Name)
	}
	if result.BestMatch() != nil {
		t.Error("BestMatch() should be nil")
	}
	if result.SampledLines != 2 || result.ParsedLines != 0 {
		t.Errorf("SampledLines, ParsedLines = %d, %d", result.SampledLines, result.ParsedLines)
	}
}

func TestDetector_DetectFromLines_EmptyInput(t *testing.T) {
	result := New().DetectFromLines(nil)

	if result.HasMatch() {
		t.Error("expected no match for empty input")
	}
	if result.SampledLines != 0 {
		t.Errorf("SampledLines = %d, want 0", result.SampledLines)
	}
}

func TestDetector_DetectFromLines_MixedLines(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{
		"[2024-01-15T10:30:00] module.a: Creating...",
		"[2024-01-15T10:30:01] module.a: Still creating...",
		"[2024-01-15T10:30:02] module.a: Creation complete after 2s [id=a]",
		"Apply complete!",
	})

	best := result.BestMatch()
	if best == nil {
		t.Fatal("expected a match")
	}
	if best.Confidence != 0.75 {
		t.Errorf("Confidence = %v, want 0.75", best.Confidence)
	}
}

func TestDetector_DetectFromLines_AmbiguousFormat(t *testing.T) {
	d := New()
	result := d.DetectFromLines([]string{
		"[01/15/2024-10:30:00] module.a: Creating...",
		"[01/15/2024-10:30:09] module.a: Creation complete after 9s [id=a]",
	})

	best := result.BestMatch()
	if best == nil || !best.Format.Ambiguous {
		t.Fatalf("best = %+v, want the ambiguous US format", best)
	}
	if !strings.Contains(result.AmbiguityNote, "ambiguity") {
		t.Errorf("AmbiguityNote = %q", result.AmbiguityNote)
	}
}

func TestDetector_WithSampleSize(t *testing.T) {
	d := New(WithSampleSize(500))
	if d.sampleSize != 500 {
		t.Errorf("sampleSize = %d, want 500", d.sampleSize)
	}
}

func TestDetector_WithSampleSize_Invalid(t *testing.T) {
	d := New(WithSampleSize(-1))
	if d.sampleSize != DefaultSampleSize {
		t.Errorf("sampleSize = %d, want %d (default)", d.sampleSize, DefaultSampleSize)
	}
}

func TestDetector_WithFormats(t *testing.T) {
	custom := []*TimestampFormat{{Name: "custom", Layout: "2006.01.02-15h04"}}
	d := New(WithFormats(custom))

	result := d.DetectFromLines([]string{"[2024.01.15-10h30] module.a: Creating..."})
	if best := result.BestMatch(); best == nil || best.Format.Name != "custom" {
		t.Errorf("best = %+v, want custom", best)
	}
}

func TestDetector_DetectFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "apply.log")
	content := strings.Join([]string{
		"[2024-01-15T10:30:00Z] module.a: Creating...",
		"",
		"[2024-01-15T10:30:01Z] module.b: Creating...",
		"[2024-01-15T10:30:02Z] module.c: Creating...",
		"[2024-01-15T10:30:03Z] module.d: Creating...",
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := New(WithSampleSize(3)).DetectFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("DetectFromFile() error = %v", err)
	}

	// Blank lines are not sampled and the sample stops at three lines.
	if result.SampledLines != 3 {
		t.Errorf("SampledLines = %d, want 3", result.SampledLines)
	}
	if !result.HasMatch() || result.BestMatch().Confidence != 1.0 {
		t.Errorf("result = %+v", result)
	}
}

func TestDetector_DetectFromFile_NotFound(t *testing.T) {
	_, err := New().DetectFromFile(context.Background(), "/nonexistent/apply.log")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDetectionResult_Layouts(t *testing.T) {
	result := New().DetectFromLines([]string{"[10:30:00.123] module.a: Creating..."})

	layouts := result.Layouts()
	want := []string{"15:04:05.000", "15:04:05"}
	if len(layouts) != len(want) {
		t.Fatalf("Layouts() = %v, want %v", layouts, want)
	}
	for i := range want {
		if layouts[i] != want[i] {
			t.Errorf("Layouts()[%d] = %q, want %q", i, layouts[i], want[i])
		}
	}
}

func TestDefaultFormats(t *testing.T) {
	formats := DefaultFormats()
	if len(formats) == 0 {
		t.Fatal("DefaultFormats() returned empty")
	}

	seen := make(map[string]bool)
	for _, f := range formats {
		if f.Name == "" || f.Layout == "" {
			t.Errorf("format missing name or layout: %+v", f)
		}
		if seen[f.Layout] {
			t.Errorf("duplicate layout %q", f.Layout)
		}
		seen[f.Layout] = true

		ex := parser.NewTimestampExtractor(f.Layout)
		for _, example := range f.Examples {
			if _, _, err := ex.Extract(example + " module.a: x"); err != nil {
				t.Errorf("%s: example %q does not parse: %v", f.Name, example, err)
			}
		}
	}
}
