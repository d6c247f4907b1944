package dfpextract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ivanvanderbyl/markdown"
)

// ToMarkdown renders the report as markdown: a section per table followed by
// the list of skipped pages.
func (r *Report) ToMarkdown() string {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	for i, table := range r.Tables {
		if i > 0 {
			md.HorizontalRule().LF()
		}
		convertTableToMarkdown(md, table)
		md.LF()
	}

	if len(r.Failures) > 0 {
		md.H3("Skipped pages").LF()
		for _, failure := range r.Failures {
			md.BulletList(failureLine(failure))
		}
	}

	if err := md.Build(); err != nil {
		return ""
	}

	return buf.String()
}

// convertTableToMarkdown writes a table heading and its grid.
func convertTableToMarkdown(md *markdown.Markdown, table *ExtractedTable) {
	md.H2(table.Title)
	md.PlainText(fmt.Sprintf("%s, page %d", markdown.Bold(string(table.Kind)), table.Page))
	md.LF()

	header := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = markdownCell(c)
	}

	rows := make([][]string, 0, len(table.Rows))
	for r := range table.Rows {
		cells := make([]string, len(table.Columns))
		for c := range table.Columns {
			cells[c] = markdownCell(table.Cell(r, c))
		}
		rows = append(rows, cells)
	}

	// An empty body still renders a valid table
	if len(rows) == 0 {
		rows = [][]string{make([]string, len(header))}
	}

	md.Table(markdown.TableSet{
		Header: header,
		Rows:   rows,
	})
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

func failureLine(f PageFailure) string {
	if f.Title != "" {
		return fmt.Sprintf("Page %d (%s), %s: %v", f.Page, f.Title, f.Stage, f.Err)
	}
	return fmt.Sprintf("Page %d, %s: %v", f.Page, f.Stage, f.Err)
}
