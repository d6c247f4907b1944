package dfpextract_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ivanvanderbyl/dfpextract"
)

func sampleReport(t *testing.T) *dfpextract.Report {
	t.Helper()
	ix := dfpextract.NewIndexer(filing(), filingTables(), testConfig())
	report, err := ix.ExtractAll()
	require.NoError(t, err)
	return report
}

func TestExtractedTable_Records(t *testing.T) {
	report := sampleReport(t)
	balance, ok := report.Table("Balance Sheet")
	require.True(t, ok)

	records := balance.Records()
	require.Len(t, records, 10)

	first := records[2]
	assert.Equal(t, "Balance Sheet", first.Title)
	assert.Equal(t, "DFS", first.Kind)
	assert.Equal(t, 11, first.Page)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "1", first.Account)
	assert.Equal(t, "Current Year", first.Column)
	assert.Equal(t, "1.234,56", first.Value)
	assert.Equal(t, "1234.56", first.Amount)

	negative := records[7]
	assert.Equal(t, "(10,00)", negative.Value)
	assert.Equal(t, "-10", negative.Amount)

	dash := records[8]
	assert.Equal(t, "-", dash.Value)
	assert.Empty(t, dash.Amount)
}

func TestExtractedTable_RecordsSkipLabelColumns(t *testing.T) {
	report := sampleReport(t)
	balance, ok := report.Table("Balance Sheet")
	require.True(t, ok)
	assert.Equal(t, 2, balance.LabelColumns)

	records := balance.Records()
	require.Len(t, records, 10)

	code := records[5]
	assert.Equal(t, "Code", code.Column)
	assert.Equal(t, "1.01", code.Value)
	assert.Empty(t, code.Amount)

	description := records[6]
	assert.Equal(t, "Description", description.Column)
	assert.Equal(t, "Current Assets", description.Value)
	assert.Empty(t, description.Amount)

	for _, record := range records {
		if record.Column == "Code" || record.Column == "Description" {
			assert.Empty(t, record.Amount, "row %d", record.Row)
		}
	}

	table := &dfpextract.ExtractedTable{
		Columns:      []string{"Code", "Value"},
		Rows:         [][]string{{"1.01", "1.01"}},
		LabelColumns: 1,
	}
	records = table.Records()
	require.Len(t, records, 2)
	assert.Empty(t, records[0].Amount)
	assert.Equal(t, "101", records[1].Amount)
}

func TestReport_WriteCSV(t *testing.T) {
	report := sampleReport(t)

	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "title,kind,page,row,account,column,value,amount", lines[0])
	assert.Len(t, lines, 1+10+8)

	var records []dfpextract.Record
	require.NoError(t, gocsv.Unmarshal(&buf, &records))
	assert.Equal(t, report.Records(), records)
}

func TestReport_WriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&dfpextract.Report{}).WriteCSV(&buf))
	assert.Equal(t, "title,kind,page,row,account,column,value,amount", strings.TrimSpace(buf.String()))
}

func TestReport_WriteXLSX(t *testing.T) {
	report := sampleReport(t)
	report.Failures = append(report.Failures, dfpextract.PageFailure{
		Page:  21,
		Stage: dfpextract.StageTitle,
		Err:   errors.New("no title"),
	})

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Balance Sheet", "DMPL 01-01-2023 to 12-31-2023", "Failures"}, f.GetSheetList())

	rows, err := f.GetRows("Balance Sheet")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Code", "Description", "Current Year", "Prior Year 12/31/2022", "12/31/2021"}, rows[0])
	assert.Equal(t, "Total Assets", rows[1][1])

	value, err := f.GetCellValue("Balance Sheet", "C2")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", value)

	code, err := f.GetCellValue("Balance Sheet", "A3")
	require.NoError(t, err)
	assert.Equal(t, "1.01", code)

	failures, err := f.GetRows("Failures")
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, []string{"21", "", "title", "no title"}, failures[1])
}

func TestReport_WriteXLSXSheetNames(t *testing.T) {
	long := strings.Repeat("Demonstração ", 4)
	report := &dfpextract.Report{Tables: []*dfpextract.ExtractedTable{
		{Title: long, Columns: []string{"a"}},
		{Title: long + "Consolidada", Columns: []string{"a"}},
		{Title: "  ", Columns: []string{"a"}},
		{Title: "Ativo [R$]?", Columns: []string{"a"}},
	}}

	var buf bytes.Buffer
	require.NoError(t, report.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 4)
	for _, name := range sheets {
		assert.LessOrEqual(t, len([]rune(name)), 31, name)
	}
	assert.Equal(t, "Demonstração Demonstração Demon", sheets[0])
	assert.Equal(t, "Demonstração Demonstração D (2)", sheets[1])
	assert.Equal(t, "Table 3", sheets[2])
	assert.Equal(t, "Ativo -R$--", sheets[3])
}
