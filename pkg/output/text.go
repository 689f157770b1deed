package output

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TableTitle heads the terminal summary.
const TableTitle = "Top long resource creation:"

var bandColors = map[Band]lipgloss.Color{
	BandOK:       lipgloss.Color("2"),
	BandWarning:  lipgloss.Color("3"),
	BandCritical: lipgloss.Color("1"),
}

// TextFormatter formats reports as a terminal table.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text. Colour is emitted only when w is a
// terminal that supports it.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "tfanalyze: %d resources, %d completed, %d over warning, %d over critical\n",
		report.Summary.Resources,
		report.Summary.Completed,
		report.Summary.Warning,
		report.Summary.Critical)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	r := lipgloss.NewRenderer(w)

	if _, err := fmt.Fprintln(w, TableTitle); err != nil {
		return err
	}

	rows := report.Over(f.opts.TimeLimit)
	if len(rows) == 0 {
		_, err := fmt.Fprintf(w, "  no resource took longer than %ds\n", f.opts.TimeLimit)
		return err
	}

	header := r.NewStyle().Bold(true).Padding(0, 1)
	cell := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("245"))).
		Headers("Module Name", "Time").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, e := range rows {
		elapsed := r.NewStyle().Foreground(bandColors[e.Band]).Render(e.ElapsedText)
		t.Row(e.Key, elapsed)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
