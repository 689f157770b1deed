package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ccollicutt/tfanalyze/pkg/analyzer"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	return string(data)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	// Existing directories are fine.
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir() on existing dir error = %v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	file := filepath.Join(t.TempDir(), "report")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureDir(file); err == nil {
		t.Error("EnsureDir() expected error when a file occupies the path")
	}
}

func TestHTMLWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "report")
	w := NewHTMLWriter(dir)
	if w.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", w.Dir(), dir)
	}

	written, err := w.Write(context.Background(), createTestReport(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// index + 5 terraform pages + localExec + executing
	if len(written) != 8 {
		t.Errorf("written = %d files, want 8: %v", len(written), written)
	}
	if written[0] != filepath.Join(dir, IndexPage) {
		t.Errorf("written[0] = %q, want index", written[0])
	}

	index := readFile(t, filepath.Join(dir, IndexPage))
	for _, want := range []string{
		"module.eks.aws_eks_cluster.this",
		`href="module.eks.aws_eks_cluster.this/terraform.html"`,
		`href="null_resource.setup__x__/localExec.html"`,
		`href="null_resource.setup__x__/executing.html"`,
		"color: red",
		"color: #9c9c22",
		"color: green",
		"12m34s",
		"run-42",
	} {
		if !strings.Contains(index, want) {
			t.Errorf("index.html missing %q", want)
		}
	}
	// Keys are escaped, not injected.
	if strings.Contains(index, `setup["x"]`) {
		t.Error("index.html should HTML-escape quotes in keys")
	}
	if strings.Index(index, "module.eks") > strings.Index(index, "aws_db_instance.main") {
		t.Error("index.html rows not sorted by elapsed time")
	}

	page := readFile(t, filepath.Join(dir, "aws_db_instance.main", TerraformPage))
	if !strings.Contains(page, "Creating...\nCreation complete after 6m40s [id=x]") {
		t.Errorf("terraform.html body = %q", page)
	}

	local := readFile(t, filepath.Join(dir, "null_resource.setup__x__", LocalExecPage))
	if !strings.Contains(local, "hello\nworld") {
		t.Errorf("localExec.html body = %q", local)
	}
	if strings.Contains(local, "\x1b") {
		t.Error("localExec.html should not contain raw escape sequences")
	}

	exec := readFile(t, filepath.Join(dir, "null_resource.setup__x__", ExecutingPage))
	if !strings.Contains(exec, "echo hello\necho world") {
		t.Errorf("executing.html body = %q", exec)
	}

	if _, err := os.Stat(filepath.Join(dir, "aws_s3_bucket.logs", LocalExecPage)); !os.IsNotExist(err) {
		t.Errorf("localExec.html written for a resource without local-exec (err = %v)", err)
	}
}

func TestHTMLWriter_Write_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewHTMLWriter(t.TempDir())
	if _, err := w.Write(ctx, createTestReport(t)); err == nil {
		t.Error("Write() expected error for cancelled context")
	}
}

func TestHTMLWriter_Write_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	w := NewHTMLWriter(file)
	if _, err := w.Write(context.Background(), createTestReport(t)); err == nil {
		t.Error("Write() expected error when the report dir is a file")
	}
}

func TestHTMLWriter_Write_DotKeysStayInsideReport(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "report")
	result := &analyzer.AnalysisResult{Records: []*state.Record{
		record("..", 0, 20, "20s"),
		record(".", 0, 10, "10s"),
	}}

	written, err := NewHTMLWriter(dir).Write(context.Background(), NewReport(result, DefaultThresholds))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for _, path := range written {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			t.Errorf("page %s written outside %s", path, dir)
		}
	}
	if _, err := os.Stat(filepath.Join(parent, TerraformPage)); !os.IsNotExist(err) {
		t.Errorf("terraform.html written into the parent directory (err = %v)", err)
	}
	if _, err := os.Stat(filepath.Join(dir, TerraformPage)); !os.IsNotExist(err) {
		t.Errorf("terraform.html written into the report root (err = %v)", err)
	}
	for _, slug := range []string{"_..", "_."} {
		if _, err := os.Stat(filepath.Join(dir, slug, TerraformPage)); err != nil {
			t.Errorf("missing page for slug %s: %v", slug, err)
		}
	}
}
