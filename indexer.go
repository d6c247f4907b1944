package dfpextract

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Indexer finds the financial tables of a loaded filing through its table of
// contents and labels their grids with the filing's column headers.
type Indexer struct {
	doc     *Document
	tables  TableExtractor
	config  Config
	log     *slog.Logger
	summary *SummaryMap
}

// NewIndexer creates an indexer over a loaded document. Grids are requested
// from tables.
func NewIndexer(doc *Document, tables TableExtractor, config Config) *Indexer {
	return &Indexer{
		doc:    doc,
		tables: tables,
		config: config,
		log:    config.logger(),
	}
}

// SummarySection locates the table of contents: the span of the summary page
// from the start marker title up to, but excluding, the end marker title.
func (ix *Indexer) SummarySection() (*Section, error) {
	page, err := ix.doc.Page(ix.config.SummaryPage)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load summary page")
	}

	titles := page.Elements.FilterByFont(TagTitle)

	start, err := titles.FilterByTextEqual(ix.config.StartMarker).ExtractSingle()
	if err != nil {
		return nil, errors.Wrap(withQuery(err, ix.config.StartMarker), "failed to find summary start marker")
	}

	end, err := titles.FilterByTextEqual(ix.config.EndMarker).ExtractSingle()
	if err != nil {
		return nil, errors.Wrap(withQuery(err, ix.config.EndMarker), "failed to find summary end marker")
	}

	return ix.doc.Section("summary", start, end, false)
}

// Summary builds the summary map. The result is cached.
func (ix *Indexer) Summary() (*SummaryMap, error) {
	if ix.summary != nil {
		return ix.summary, nil
	}

	section, err := ix.SummarySection()
	if err != nil {
		return nil, err
	}

	summary, err := BuildSummary(section.Elements, ix.log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build summary")
	}

	ix.summary = summary
	return summary, nil
}

// TablePages returns the pages holding financial tables, in summary order.
func (ix *Indexer) TablePages() ([]int, error) {
	summary, err := ix.Summary()
	if err != nil {
		return nil, err
	}
	return FilterTablePages(summary, ix.config.ExcludedNamePrefixes), nil
}

// TableTitle returns the text of the single table-title element on a page.
func (ix *Indexer) TableTitle(pageNumber int) (string, error) {
	page, err := ix.doc.Page(pageNumber)
	if err != nil {
		return "", err
	}

	title, err := page.Elements.FilterByFont(TagTableTitle).ExtractSingle()
	if err != nil {
		return "", errors.Wrapf(withQuery(err, string(TagTableTitle)), "page %d", pageNumber)
	}
	return title.Text, nil
}

// ExtractTable extracts and labels the table on a page.
func (ix *Indexer) ExtractTable(pageNumber int) (*ExtractedTable, error) {
	title, err := ix.TableTitle(pageNumber)
	if err != nil {
		return nil, err
	}
	return ix.extractTitled(pageNumber, title)
}

func (ix *Indexer) extractTitled(pageNumber int, title string) (*ExtractedTable, error) {
	table, failure := ix.extractStaged(pageNumber, title)
	if failure != nil {
		return nil, failure.Err
	}
	return table, nil
}

// extractStaged runs column resolution and grid extraction for a titled page,
// reporting the stage that failed.
func (ix *Indexer) extractStaged(pageNumber int, title string) (*ExtractedTable, *PageFailure) {
	kind := tableKind(title, ix.config.EquityTitleMarker)

	columns, err := ix.ColumnNames(pageNumber, kind)
	if err != nil {
		return nil, &PageFailure{Page: pageNumber, Title: title, Stage: StageColumns, Err: err}
	}

	rows, err := ix.labelledRows(pageNumber, kind, len(columns))
	if err != nil {
		return nil, &PageFailure{Page: pageNumber, Title: title, Stage: StageGrid, Err: err}
	}

	return &ExtractedTable{
		Title:   title,
		Kind:    kind,
		Page:    pageNumber,
		Columns: columns,
		Rows:    rows,

		LabelColumns: ix.config.LabelColumns,
	}, nil
}

// labelledRows fetches the first grid on a page, checks it against the column
// count and drops the header rows the table extractor reads as data.
func (ix *Indexer) labelledRows(pageNumber int, kind TableKind, columns int) ([][]string, error) {
	grids, err := ix.tables.ExtractTables(pageNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to extract tables from page %d", pageNumber)
	}
	if len(grids) == 0 {
		return nil, &NoTableError{Page: pageNumber}
	}

	grid := grids[0]
	if width := grid.Width(); width != columns {
		return nil, &ColumnCountError{
			Page:     pageNumber,
			Source:   "table grid",
			Expected: columns,
			Actual:   width,
		}
	}

	drop := ix.config.StatementHeaderRows
	if kind == KindEquity {
		drop = ix.config.EquityHeaderRows
	}
	if len(grid) < drop {
		return nil, &RowRangeError{Page: pageNumber, Rows: len(grid), Drop: drop}
	}

	rows := make([][]string, 0, len(grid)-drop)
	for _, row := range grid[drop:] {
		padded := make([]string, columns)
		copy(padded, row)
		rows = append(rows, padded)
	}
	return rows, nil
}

// ExtractAll extracts every table page. Pages that fail are recorded in the
// report and skipped. Only a failure to build the summary is returned as an
// error.
func (ix *Indexer) ExtractAll() (*Report, error) {
	startTime := time.Now()

	pages, err := ix.TablePages()
	if err != nil {
		return nil, err
	}

	report := &Report{}
	report.Metrics.TablePages = len(pages)

	for _, pageNumber := range pages {
		pageStart := time.Now()
		ok := ix.extractInto(report, pageNumber)
		report.Metrics.PageExtractions = append(report.Metrics.PageExtractions, PageMetrics{
			PageNumber: pageNumber,
			Duration:   time.Since(pageStart),
			Succeeded:  ok,
		})
	}

	report.Metrics.Extracted = len(report.Tables)
	report.Metrics.Failed = len(report.Failures)
	for _, t := range report.Tables {
		report.Metrics.TotalRows += len(t.Rows)
	}
	report.Metrics.TotalTime = time.Since(startTime)

	if ix.config.EnableMetricsLogging {
		logProcessingMetrics(ix.log, report.Metrics)
	}

	return report, nil
}

// extractInto extracts one page into the report, recording a failure instead
// of returning it.
func (ix *Indexer) extractInto(report *Report, pageNumber int) bool {
	title, err := ix.TableTitle(pageNumber)
	if err != nil {
		ix.recordFailure(report, PageFailure{Page: pageNumber, Stage: StageTitle, Err: err})
		return false
	}

	table, failure := ix.extractStaged(pageNumber, title)
	if failure != nil {
		ix.recordFailure(report, *failure)
		return false
	}

	if report.add(table) {
		ix.log.Warn("table title repeated, keeping the later page", "title", title, "page", pageNumber)
	}
	return true
}

func (ix *Indexer) recordFailure(report *Report, failure PageFailure) {
	ix.log.Warn("table page skipped",
		"page", failure.Page,
		"stage", string(failure.Stage),
		"error", failure.Err)
	report.Failures = append(report.Failures, failure)
}

// withQuery fills in the query of match errors so messages name what was
// being looked for.
func withQuery(err error, query string) error {
	var notFound *NotFoundError
	if errors.As(err, &notFound) && notFound.Query == "" {
		notFound.Query = query
	}
	var ambiguous *AmbiguousMatchError
	if errors.As(err, &ambiguous) && ambiguous.Query == "" {
		ambiguous.Query = query
	}
	return err
}
