package commands

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/tfanalyze/pkg/config"
)

func TestDetect_Text(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "apply.log", applyLog)

	stdout, _, err := execute(t, NewDetectCommand(), "", "--all", logPath)
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}

	for _, want := range []string{
		"Detected Format: RFC 3339 with fractional seconds",
		"timestamp_layouts:",
		`- "2006-01-02T15:04:05.999999999Z07:00"`,
		"Alternative layouts detected",
		`layout: "2006-01-02T15:04:05Z07:00"`,
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("detect output missing %q:\n%s", want, stdout)
		}
	}
}

func TestDetect_JSON(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "apply.log", applyLog)

	stdout, _, err := execute(t, NewDetectCommand(), "", "-o", "json", logPath)
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}

	var out JSONOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Matches) != 1 {
		t.Fatalf("matches = %d, want only the best without --all", len(out.Matches))
	}
	// 8 of the 9 non-blank lines carry a timestamp.
	if out.SampledLines != 9 || out.Matches[0].MatchCount != 8 {
		t.Errorf("sampled, matched = %d, %d", out.SampledLines, out.Matches[0].MatchCount)
	}
}

func TestDetect_NoMatch(t *testing.T) {
	logPath := writeTestFile(t, t.TempDir(), "plain.log", "module.a: Creating...\nmodule.a: Creation complete after 1s [id=a]\n")

	stdout, _, err := execute(t, NewDetectCommand(), "", logPath)
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}
	if !strings.Contains(stdout, "No timestamp layout detected.") {
		t.Errorf("stdout = %s", stdout)
	}
}

func TestDetect_MissingFile(t *testing.T) {
	_, _, err := execute(t, NewDetectCommand(), "", "/nonexistent/apply.log")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestDetect_WriteConfig(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTestFile(t, dir, "apply.log", applyLog)
	configPath := filepath.Join(dir, "tfanalyze.yaml")

	stdout, _, err := execute(t, NewDetectCommand(), "", "-w", configPath, logPath)
	if err != nil {
		t.Fatalf("detect error = %v", err)
	}
	if !strings.Contains(stdout, "Wrote starter config to: "+configPath) {
		t.Errorf("stdout = %s", stdout)
	}

	cfg, err := config.Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if len(cfg.TimestampLayouts) != 1 || cfg.TimestampLayouts[0] != "2006-01-02T15:04:05.999999999Z07:00" {
		t.Errorf("TimestampLayouts = %v", cfg.TimestampLayouts)
	}
	if cfg.Thresholds.Warning != config.DefaultWarning || cfg.Thresholds.Critical != config.DefaultCritical {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}

	// A second run must not overwrite.
	_, _, err = execute(t, NewDetectCommand(), "", "-w", configPath, logPath)
	if err == nil || !strings.Contains(err.Error(), "will not overwrite") {
		t.Errorf("error = %v, want refusal to overwrite", err)
	}
}

func TestDetect_WriteConfigWithoutMatch(t *testing.T) {
	dir := t.TempDir()
	logPath := writeTestFile(t, dir, "plain.log", "module.a: Creating...\n")

	_, _, err := execute(t, NewDetectCommand(), "", "-w", filepath.Join(dir, "out.yaml"), logPath)
	if err == nil || !strings.Contains(err.Error(), "no timestamp layout detected") {
		t.Errorf("error = %v", err)
	}
}
