package output

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/ccollicutt/tfanalyze/pkg/parser"
	"github.com/ccollicutt/tfanalyze/pkg/state"
)

// Report page file names.
const (
	IndexPage     = "index.html"
	TerraformPage = "terraform.html"
	LocalExecPage = "localExec.html"
	ExecutingPage = "executing.html"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var htmlColors = map[Band]template.CSS{
	BandOK:       "green",
	BandWarning:  "#9c9c22",
	BandCritical: "red",
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// HTMLWriter writes the report pages under a directory.
type HTMLWriter struct {
	dir string
}

// NewHTMLWriter creates a writer rooted at dir.
func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{dir: dir}
}

// Dir returns the output directory.
func (h *HTMLWriter) Dir() string {
	return h.dir
}

type indexRow struct {
	Key           string
	Elapsed       string
	Color         template.CSS
	Link          string
	LinkLocalExec string
	LinkExecuting string
}

type indexPage struct {
	RunID   string
	Summary Summary
	Rows    []indexRow
}

type logPage struct {
	Module string
	Title  string
	Time   string
	Body   string
}

// Write renders index.html and the per-resource pages. It returns the paths
// written, index first.
func (h *HTMLWriter) Write(ctx context.Context, report *Report) ([]string, error) {
	if err := EnsureDir(h.dir); err != nil {
		return nil, err
	}

	index := indexPage{
		RunID:   report.Metadata.RunID,
		Summary: report.Summary,
		Rows:    make([]indexRow, 0, len(report.Entries)),
	}
	for i := range report.Entries {
		e := &report.Entries[i]
		row := indexRow{
			Key:     e.Key,
			Elapsed: e.ElapsedText,
			Color:   htmlColors[e.Band],
			Link:    e.Slug + "/" + TerraformPage,
		}
		if e.HasLocalExec() {
			row.LinkLocalExec = e.Slug + "/" + LocalExecPage
		}
		if e.HasCommand() {
			row.LinkExecuting = e.Slug + "/" + ExecutingPage
		}
		index.Rows = append(index.Rows, row)
	}

	indexPath := filepath.Join(h.dir, IndexPage)
	if err := renderPage(indexPath, "index.html", index); err != nil {
		return nil, err
	}
	written := []string{indexPath}

	for i := range report.Entries {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		paths, err := h.writeEntry(&report.Entries[i])
		written = append(written, paths...)
		if err != nil {
			return written, err
		}
	}

	return written, nil
}

func (h *HTMLWriter) writeEntry(e *Entry) ([]string, error) {
	dir := filepath.Join(h.dir, e.Slug)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}

	pages := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{TerraformPage, "Elapsed", joinBodies(e.Record.Lines), true},
		{LocalExecPage, "local-exec output", localExecBody(e.Record), e.HasLocalExec()},
		{ExecutingPage, "local-exec command", strings.Join(commandOf(e.Record), "\n"), e.HasCommand()},
	}

	var written []string
	for _, p := range pages {
		if !p.want {
			continue
		}
		path := filepath.Join(dir, p.name)
		data := logPage{Module: e.Key, Title: p.title, Time: e.ElapsedText, Body: p.body}
		if err := renderPage(path, "log.html", data); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func renderPage(path, tmpl string, data any) error {
	f, err := os.Create(path) // #nosec G304 -- path is the report directory plus a single-element slug
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := pageTemplates.ExecuteTemplate(f, tmpl, data); err != nil {
		f.Close()
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}

func joinBodies(lines []state.Line) string {
	bodies := make([]string, 0, len(lines))
	for _, l := range lines {
		bodies = append(bodies, parser.StripEscapes(l.Body))
	}
	return strings.Join(bodies, "\n")
}

func localExecBody(rec *state.Record) string {
	if rec.LocalExec == nil {
		return ""
	}
	return joinBodies(rec.LocalExec.Lines)
}

func commandOf(rec *state.Record) []string {
	if rec.LocalExec == nil {
		return nil
	}
	return rec.LocalExec.Command
}
