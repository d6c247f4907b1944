package dfpextract

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// WriteText renders every table of the report for a terminal, followed by the
// skipped pages.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	for i, t := range r.Tables {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(fmt.Sprintf("%s (%s, page %d)", t.Title, t.Kind, t.Page)))
		b.WriteString("\n")
		b.WriteString(renderTable(t))
		b.WriteString("\n")
	}

	if len(r.Failures) > 0 {
		if len(r.Tables) > 0 {
			b.WriteString("\n")
		}
		b.WriteString(titleStyle.Render(fmt.Sprintf("Skipped pages (%d)", len(r.Failures))))
		b.WriteString("\n")
		for _, f := range r.Failures {
			b.WriteString(failureStyle.Render("  " + failureLine(f)))
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, "failed to write report")
	}
	return nil
}

func renderTable(t *ExtractedTable) string {
	rows := make([][]string, len(t.Rows))
	for r := range t.Rows {
		cells := make([]string, len(t.Columns))
		for c := range t.Columns {
			cells[c] = strings.ReplaceAll(t.Cell(r, c), "\n", " ")
		}
		rows[r] = cells
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(t.Columns...).
		Rows(rows...).
		Render()
}
