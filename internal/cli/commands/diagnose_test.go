package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func diagnose(t *testing.T, opts *DiagnoseOptions, inputs ...string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := runDiagnose(context.Background(), &buf, inputs, opts); err != nil {
		t.Fatalf("runDiagnose() error = %v", err)
	}
	return buf.String()
}

func TestNewDiagnoseCommand(t *testing.T) {
	cmd := NewDiagnoseCommand()

	if cmd.Use != "diagnose <output-file...>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	for _, flag := range []string{"verbose", "config"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestDiagnose_CleanOutput(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "apply.log", applyLog)

	out := diagnose(t, &DiagnoseOptions{Verbose: true}, logPath)

	for _, want := range []string{
		"[PASS] Config",
		"[PASS] Input: " + logPath,
		"[PASS] Timestamp Layout",
		"[PASS] Parse",
		"10 lines, 2 resources",
		"local_exec: 1",
		"executing: 1",
		"[PASS] Completion",
		"Summary: 5 passed, 0 warnings, 0 errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnose output missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnose_Irregularities(t *testing.T) {
	content := `[2024-01-15T10:00:00Z] aws_instance.a: Creating...
[2024-01-15T10:00:05Z] aws_instance.a: Creation complete after soon
[2024-01-15T10:00:05Z] null_resource.b (local-exec): Executing: something else
[2024-01-15T10:00:06Z] aws_instance.c: Modifying...
`
	logPath := writeTestFile(t, t.TempDir(), "apply.log", content)

	out := diagnose(t, &DiagnoseOptions{}, logPath)

	for _, want := range []string{
		"[WARN] Malformed Lines",
		"completion without duration: 1",
		"Executing without command: 1",
		"[WARN] Completion",
		"3 resource(s) never reported",
		"aws_instance.c",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnose output missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnose_LayoutMismatch(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTestFile(t, dir, "apply.log", applyLog)
	configPath := writeTestFile(t, dir, "tfanalyze.yaml", "timestamp_layouts: [\"15:04:05\"]\n")

	out := diagnose(t, &DiagnoseOptions{ConfigFile: configPath}, logPath)

	if !strings.Contains(out, "[FAIL] Timestamp Layout") {
		t.Errorf("expected layout failure:\n%s", out)
	}
	if !strings.Contains(out, `Add to timestamp_layouts: "2006-01-02T15:04:05.999999999Z07:00"`) {
		t.Errorf("expected layout suggestion:\n%s", out)
	}
}

func TestDiagnose_MissingConfig(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "apply.log", applyLog)

	out := diagnose(t, &DiagnoseOptions{ConfigFile: "/nonexistent/tfanalyze.yaml"}, logPath)

	if !strings.Contains(out, "[FAIL] Config") {
		t.Errorf("expected config failure:\n%s", out)
	}
	if !strings.Contains(out, "--write-config") {
		t.Errorf("expected starter config hint:\n%s", out)
	}
	if strings.Contains(out, "Parse") {
		t.Error("parse should not run without a usable config")
	}
}

func TestDiagnose_MissingInput(t *testing.T) {
	out := diagnose(t, &DiagnoseOptions{}, filepath.Join(t.TempDir(), "missing.log"))

	if !strings.Contains(out, "File does not exist") || !strings.Contains(out, "[FAIL] Inputs Summary") {
		t.Errorf("expected input failure:\n%s", out)
	}
}

func TestDiagnose_EmptyInput(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "empty.log", "")

	out := diagnose(t, &DiagnoseOptions{}, logPath)

	if !strings.Contains(out, "[WARN] Input: "+logPath) {
		t.Errorf("expected empty file warning:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a long string", 10, "this is..."},
		{"ééééé", 5, "ééééé"},
		{"héllo wörld ünïcode", 10, "héllo w..."},
		{"[10:00:00] ✓✓✓✓✓✓✓✓", 12, "[10:00:00..."},
		{"✓✓✓✓✓✓✓✓✓✓✓", 10, "✓✓✓✓✓✓✓..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
		if !utf8.ValidString(result) {
			t.Errorf("truncate(%q, %d) split a rune: %q", tt.input, tt.maxLen, result)
		}
	}
}
