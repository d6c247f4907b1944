package dfpextract_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/dfpextract"
)

func TestIndexer_SummarySection(t *testing.T) {
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())

	section, err := ix.SummarySection()
	require.NoError(t, err)
	assert.Equal(t, "Individual Statements", section.Start.Text)
	assert.Equal(t, "Reports and Statements", section.End.Text)

	texts := section.Elements.Texts()
	assert.Equal(t, "Individual Statements", texts[0])
	assert.NotContains(t, texts, "Reports and Statements")
	assert.NotContains(t, texts, "Auditor Report")
	assert.NotContains(t, texts, "Contents")
}

func TestIndexer_SummaryMarkers(t *testing.T) {
	t.Run("missing end marker", func(t *testing.T) {
		config := testConfig()
		config.EndMarker = "Opinions"
		ix := dfpextract.NewIndexer(filing(), filingTables(), config)

		_, err := ix.Summary()
		var notFound *dfpextract.NotFoundError
		require.True(t, errors.As(err, &notFound), "got %v", err)
		assert.Equal(t, "Opinions", notFound.Query)
	})

	t.Run("duplicate start marker", func(t *testing.T) {
		page := summaryPage("Balance Sheet", "10")
		page.Elements = append(page.Elements, el(dfpextract.TagTitle, "Individual Statements", 50, 500))
		ix := dfpextract.NewIndexer(dfpextract.NewDocument(page), filingTables(), testConfig())

		_, err := ix.Summary()
		var ambiguous *dfpextract.AmbiguousMatchError
		require.True(t, errors.As(err, &ambiguous), "got %v", err)
		assert.Equal(t, 2, ambiguous.Count)
	})

	t.Run("summary page out of range", func(t *testing.T) {
		config := testConfig()
		config.SummaryPage = 40
		ix := dfpextract.NewIndexer(filing(), filingTables(), config)

		_, err := ix.Summary()
		var notFound *dfpextract.PageNotFoundError
		assert.True(t, errors.As(err, &notFound), "got %v", err)
	})

	t.Run("marker with wrong font", func(t *testing.T) {
		page := summaryPage("Balance Sheet", "10")
		for i := range page.Elements {
			if page.Elements[i].Text == "Individual Statements" {
				page.Elements[i].Tag = dfpextract.TagSubtitle
			}
		}
		ix := dfpextract.NewIndexer(dfpextract.NewDocument(page), filingTables(), testConfig())

		_, err := ix.Summary()
		var notFound *dfpextract.NotFoundError
		assert.True(t, errors.As(err, &notFound), "got %v", err)
	})
}

func TestIndexer_TablePages(t *testing.T) {
	doc := dfpextract.NewDocument(summaryPage(
		"Balance Sheet", "10",
		"Income Statement", "15",
		"Note 1", "20",
	))
	ix := dfpextract.NewIndexer(doc, filingTables(), testConfig())

	pages, err := ix.TablePages()
	require.NoError(t, err)
	assert.Equal(t, []int{11, 16}, pages)

	summary, err := ix.Summary()
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Len())
}

func TestIndexer_TableTitle(t *testing.T) {
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())

	title, err := ix.TableTitle(11)
	require.NoError(t, err)
	assert.Equal(t, "Balance Sheet", title)

	_, err = ix.TableTitle(2)
	var notFound *dfpextract.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	_, err = ix.TableTitle(99)
	var pageErr *dfpextract.PageNotFoundError
	assert.True(t, errors.As(err, &pageErr))
}

func TestIndexer_ColumnNames(t *testing.T) {
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())

	equity, err := ix.ColumnNames(16, dfpextract.KindEquity)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "a", "e", "h", "b", "f", "g", "c"}, equity)

	statement, err := ix.ColumnNames(11, dfpextract.KindStatement)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Code",
		"Description",
		"Current Year",
		"Prior Year 12/31/2022",
		"12/31/2021",
	}, statement)

	again, err := ix.ColumnNames(11, dfpextract.KindStatement)
	require.NoError(t, err)
	assert.Equal(t, statement, again)
}

func TestIndexer_ColumnNamesCountMismatch(t *testing.T) {
	pages := make([]dfpextract.Page, 7)
	pages[6] = dfpextract.Page{Elements: headerRow(80, "a", "b", "c")}
	pages[1] = dfpextract.Page{Elements: headerRow(80, "x", "y", "z", "w")}
	ix := dfpextract.NewIndexer(dfpextract.NewDocument(pages...), filingTables(), testConfig())

	_, err := ix.ColumnNames(3, dfpextract.KindEquity)
	var countErr *dfpextract.ColumnCountError
	require.True(t, errors.As(err, &countErr), "got %v", err)
	assert.Equal(t, 7, countErr.Page)
	assert.Equal(t, 8, countErr.Expected)
	assert.Equal(t, 3, countErr.Actual)

	_, err = ix.ColumnNames(2, dfpextract.KindStatement)
	require.True(t, errors.As(err, &countErr), "got %v", err)
	assert.Equal(t, 5, countErr.Expected)
	assert.Equal(t, 4, countErr.Actual)
}

func TestIndexer_ExtractTable(t *testing.T) {
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())

	balance, err := ix.ExtractTable(11)
	require.NoError(t, err)
	assert.Equal(t, "Balance Sheet", balance.Title)
	assert.Equal(t, dfpextract.KindStatement, balance.Kind)
	assert.Equal(t, 11, balance.Page)
	require.Len(t, balance.Rows, 2)
	assert.Equal(t, "Total Assets", balance.Cell(0, 1))

	equity, err := ix.ExtractTable(16)
	require.NoError(t, err)
	assert.Equal(t, dfpextract.KindEquity, equity.Kind)
	require.Len(t, equity.Rows, 1)
	assert.Equal(t, "Opening Balance", equity.Cell(0, 1))
}

func TestIndexer_ExtractTableErrors(t *testing.T) {
	tests := []struct {
		name   string
		grids  []dfpextract.Grid
		target interface{}
	}{
		{
			name:   "no table",
			target: new(*dfpextract.NoTableError),
		},
		{
			name:   "column mismatch",
			grids:  []dfpextract.Grid{{{"a", "b", "c"}}},
			target: new(*dfpextract.ColumnCountError),
		},
		{
			name:   "empty grid",
			grids:  []dfpextract.Grid{{}},
			target: new(*dfpextract.ColumnCountError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables := dfpextract.TableExtractorFunc(func(int) ([]dfpextract.Grid, error) {
				return tt.grids, nil
			})
			ix := dfpextract.NewIndexer(filing(), tables, testConfig())

			_, err := ix.ExtractTable(11)
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %v", err)
		})
	}
}

func TestIndexer_HeaderRowsExceedGrid(t *testing.T) {
	config := testConfig()
	config.StatementHeaderRows = 3
	tables := dfpextract.TableExtractorFunc(func(int) ([]dfpextract.Grid, error) {
		return []dfpextract.Grid{{{"1", "2", "3", "4", "5"}}}, nil
	})
	ix := dfpextract.NewIndexer(filing(), tables, config)

	_, err := ix.ExtractTable(11)
	var rowErr *dfpextract.RowRangeError
	require.True(t, errors.As(err, &rowErr), "got %v", err)
	assert.Equal(t, 1, rowErr.Rows)
	assert.Equal(t, 3, rowErr.Drop)
}

func TestIndexer_ExtractAll(t *testing.T) {
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())

	report, err := ix.ExtractAll()
	require.NoError(t, err)
	assert.Empty(t, report.Failures)
	assert.Equal(t, []string{"Balance Sheet", "DMPL 01/01/2023 to 12/31/2023"}, report.Titles())

	balance, ok := report.Table("Balance Sheet")
	require.True(t, ok)
	assert.Equal(t, 11, balance.Page)

	assert.Equal(t, 2, report.Metrics.TablePages)
	assert.Equal(t, 2, report.Metrics.Extracted)
	assert.Equal(t, 3, report.Metrics.TotalRows)
	assert.Len(t, report.Metrics.PageExtractions, 2)
}

func TestIndexer_ExtractAllRecordsFailures(t *testing.T) {
	pages := make([]dfpextract.Page, 30)
	pages[0] = summaryPage(
		"Balance Sheet", "10",
		"Untitled", "12",
		"Income Statement", "15",
		"Cash Flow", "20",
		"Notes", "25",
	)
	pages[10] = statementPage("Balance Sheet")
	pages[12] = dfpextract.Page{Elements: headerRow(80, statementHeaders...)}
	pages[15] = statementPage("Income Statement")
	pages[20] = statementPage("Cash Flow")
	pages[20].Elements = pages[20].Elements[:3]

	grid := []dfpextract.Grid{{
		{"Code", "Description", "Current Year", "12/31/2022", "12/31/2021"},
		{"1", "Total", "1,00", "2,00", "3,00"},
	}}
	tables := dfpextract.TableExtractorFunc(func(page int) ([]dfpextract.Grid, error) {
		if page == 16 {
			return nil, nil
		}
		return grid, nil
	})

	ix := dfpextract.NewIndexer(dfpextract.NewDocument(pages...), tables, testConfig())
	report, err := ix.ExtractAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Balance Sheet"}, report.Titles())
	require.Len(t, report.Failures, 3)

	assert.Equal(t, 13, report.Failures[0].Page)
	assert.Equal(t, dfpextract.StageTitle, report.Failures[0].Stage)

	assert.Equal(t, 16, report.Failures[1].Page)
	assert.Equal(t, "Income Statement", report.Failures[1].Title)
	assert.Equal(t, dfpextract.StageGrid, report.Failures[1].Stage)
	var noTable *dfpextract.NoTableError
	assert.True(t, errors.As(report.Failures[1], &noTable))

	assert.Equal(t, 21, report.Failures[2].Page)
	assert.Equal(t, dfpextract.StageColumns, report.Failures[2].Stage)
	var countErr *dfpextract.ColumnCountError
	assert.True(t, errors.As(report.Failures[2].Err, &countErr))

	assert.Equal(t, 1, report.Metrics.Extracted)
	assert.Equal(t, 3, report.Metrics.Failed)
}

func TestIndexer_ExtractAllRepeatedTitle(t *testing.T) {
	pages := make([]dfpextract.Page, 20)
	pages[0] = summaryPage(
		"Balance Sheet", "4",
		"Cash Flow", "8",
		"Balance Sheet", "12",
	)
	pages[4] = statementPage("Balance Sheet")
	pages[8] = statementPage("Cash Flow")
	pages[12] = statementPage("Balance Sheet")

	tables := dfpextract.TableExtractorFunc(func(page int) ([]dfpextract.Grid, error) {
		return []dfpextract.Grid{{
			{"Code", "Description", "Current Year", "12/31/2022", "12/31/2021"},
			{"1", "Total", "1,00", "2,00", "3,00"},
		}}, nil
	})

	ix := dfpextract.NewIndexer(dfpextract.NewDocument(pages...), tables, testConfig())
	report, err := ix.ExtractAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Balance Sheet", "Cash Flow"}, report.Titles())
	balance, ok := report.Table("Balance Sheet")
	require.True(t, ok)
	assert.Equal(t, 13, balance.Page)
}

func TestIndexer_ExtractAllSummaryFailure(t *testing.T) {
	doc := dfpextract.NewDocument(summaryPage("Balance Sheet", "10", "Cash Flow"))
	ix := dfpextract.NewIndexer(doc, filingTables(), testConfig())

	_, err := ix.ExtractAll()
	var imbalance *dfpextract.SummaryImbalanceError
	require.True(t, errors.As(err, &imbalance), "got %v", err)
}

func TestIndexer_ExtractorError(t *testing.T) {
	boom := errors.New("boom")
	tables := dfpextract.TableExtractorFunc(func(int) ([]dfpextract.Grid, error) {
		return nil, boom
	})
	ix := dfpextract.NewIndexer(filing(), tables, testConfig())

	_, err := ix.ExtractTable(11)
	assert.True(t, errors.Is(err, boom))
}
