package dfpextract

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ExtractedTable is a labelled grid taken from one page.
type ExtractedTable struct {
	Title   string
	Kind    TableKind
	Page    int
	Columns []string
	Rows    [][]string

	// LabelColumns leading columns hold account codes and descriptions.
	LabelColumns int
}

// IsLabel reports whether col holds labels rather than amounts.
func (t *ExtractedTable) IsLabel(col int) bool {
	return col < t.LabelColumns
}

// Cell returns the text at row and col, or "" when out of range.
func (t *ExtractedTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// Amount parses the cell at row and col as a Brazilian-formatted amount.
func (t *ExtractedTable) Amount(row, col int) (decimal.Decimal, error) {
	if row < 0 || row >= len(t.Rows) {
		return decimal.Zero, errors.Errorf("row %d out of range", row)
	}
	if col < 0 || col >= len(t.Columns) {
		return decimal.Zero, errors.Errorf("column %d out of range", col)
	}
	return ParseAmount(t.Cell(row, col))
}

// Stage names the step at which a page failed.
type Stage string

const (
	StageTitle   Stage = "title"
	StageColumns Stage = "columns"
	StageGrid    Stage = "grid"
)

// PageFailure records why a table page was skipped.
type PageFailure struct {
	Page  int
	Title string // Empty when the title could not be resolved
	Stage Stage
	Err   error
}

func (f PageFailure) Error() string {
	if f.Title != "" {
		return fmt.Sprintf("page %d (%s): %s: %v", f.Page, f.Title, f.Stage, f.Err)
	}
	return fmt.Sprintf("page %d: %s: %v", f.Page, f.Stage, f.Err)
}

func (f PageFailure) Unwrap() error {
	return f.Err
}

// PageMetrics contains timing for a single table page.
type PageMetrics struct {
	PageNumber int
	Duration   time.Duration
	Succeeded  bool
}

// ProcessingMetrics contains timing and statistics for a full extraction.
type ProcessingMetrics struct {
	TotalTime       time.Duration
	PageExtractions []PageMetrics
	TablePages      int
	Extracted       int
	Failed          int
	TotalRows       int
}

// Report is the outcome of a full extraction: the tables that were extracted,
// keyed by title in page order, and the pages that were skipped.
type Report struct {
	Tables   []*ExtractedTable
	Failures []PageFailure
	Metrics  ProcessingMetrics

	byTitle map[string]int
}

// add stores a table. A repeated title replaces the earlier table in place.
func (r *Report) add(table *ExtractedTable) (replaced bool) {
	if r.byTitle == nil {
		r.byTitle = make(map[string]int)
	}
	if i, ok := r.byTitle[table.Title]; ok {
		r.Tables[i] = table
		return true
	}
	r.byTitle[table.Title] = len(r.Tables)
	r.Tables = append(r.Tables, table)
	return false
}

// Table returns the table with the given title.
func (r *Report) Table(title string) (*ExtractedTable, bool) {
	i, ok := r.byTitle[title]
	if !ok {
		return nil, false
	}
	return r.Tables[i], true
}

// Titles returns the table titles in order.
func (r *Report) Titles() []string {
	titles := make([]string, len(r.Tables))
	for i, t := range r.Tables {
		titles[i] = t.Title
	}
	return titles
}

// logProcessingMetrics logs the processing metrics of an extraction.
func logProcessingMetrics(log *slog.Logger, metrics ProcessingMetrics) {
	for _, pm := range metrics.PageExtractions {
		log.Info("table page processed",
			"page", pm.PageNumber,
			"ok", pm.Succeeded,
			"duration", pm.Duration.Round(time.Millisecond))
	}

	var avg time.Duration
	if len(metrics.PageExtractions) > 0 {
		avg = metrics.TotalTime / time.Duration(len(metrics.PageExtractions))
	}

	log.Info("extraction metrics",
		"table_pages", metrics.TablePages,
		"extracted", metrics.Extracted,
		"failed", metrics.Failed,
		"rows", metrics.TotalRows,
		"total", metrics.TotalTime.Round(time.Millisecond),
		"avg_per_page", avg.Round(time.Millisecond))
}
