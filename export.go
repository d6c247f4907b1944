package dfpextract

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// Record is one cell of an extracted table in long format.
type Record struct {
	Title   string `csv:"title"`
	Kind    string `csv:"kind"`
	Page    int    `csv:"page"`
	Row     int    `csv:"row"`
	Account string `csv:"account"`
	Column  string `csv:"column"`
	Value   string `csv:"value"`
	Amount  string `csv:"amount"`
}

// Records flattens the table into one record per data cell. The first cell of
// each row names the account. Amount is empty for label columns and for cells
// that do not parse.
func (t *ExtractedTable) Records() []Record {
	var records []Record
	for r, row := range t.Rows {
		account := ""
		if len(row) > 0 {
			account = row[0]
		}
		for c, column := range t.Columns {
			value := t.Cell(r, c)
			record := Record{
				Title:   t.Title,
				Kind:    string(t.Kind),
				Page:    t.Page,
				Row:     r + 1,
				Account: account,
				Column:  column,
				Value:   value,
			}
			if !t.IsLabel(c) {
				if amount, err := ParseAmount(value); err == nil {
					record.Amount = amount.String()
				}
			}
			records = append(records, record)
		}
	}
	return records
}

// Records flattens every table of the report in order.
func (r *Report) Records() []Record {
	var records []Record
	for _, t := range r.Tables {
		records = append(records, t.Records()...)
	}
	return records
}

// WriteCSV writes the report in long format, one line per cell.
func (r *Report) WriteCSV(w io.Writer) error {
	records := r.Records()
	if records == nil {
		records = []Record{}
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return errors.Wrap(err, "failed to write CSV")
	}
	return nil
}

const (
	maxSheetName  = 31
	defaultSheet  = "Sheet1"
	failuresSheet = "Failures"
)

// WriteXLSX writes a workbook with one sheet per table: the column names on
// the first row, then the data rows. Cells that parse as amounts are stored
// as numbers. Page failures are listed on a separate sheet.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool)
	for i, t := range r.Tables {
		name := uniqueSheetName(sanitizeSheetName(t.Title, i+1), used)
		if err := writeTableSheet(f, name, t); err != nil {
			return err
		}
	}

	if len(r.Failures) > 0 {
		name := uniqueSheetName(failuresSheet, used)
		if err := writeFailuresSheet(f, name, r.Failures); err != nil {
			return err
		}
	}

	if len(used) > 0 && !used[strings.ToLower(defaultSheet)] {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return errors.Wrap(err, "failed to remove default sheet")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write XLSX")
	}
	return nil
}

func writeTableSheet(f *excelize.File, name string, t *ExtractedTable) error {
	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrapf(err, "failed to create sheet %q", name)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := setRow(f, name, 1, header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(t.Columns))
		for c := range t.Columns {
			value := ""
			if c < len(row) {
				value = row[c]
			}
			cells[c] = value
			if t.IsLabel(c) {
				continue
			}
			if amount, err := ParseAmount(value); err == nil {
				cells[c] = amount.InexactFloat64()
			}
		}
		if err := setRow(f, name, r+2, cells); err != nil {
			return err
		}
	}
	return nil
}

func writeFailuresSheet(f *excelize.File, name string, failures []PageFailure) error {
	if _, err := f.NewSheet(name); err != nil {
		return errors.Wrapf(err, "failed to create sheet %q", name)
	}
	if err := setRow(f, name, 1, []interface{}{"page", "title", "stage", "error"}); err != nil {
		return err
	}
	for i, failure := range failures {
		row := []interface{}{failure.Page, failure.Title, string(failure.Stage), failure.Err.Error()}
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrap(err, "invalid cell")
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return errors.Wrapf(err, "failed to write row %d of sheet %q", row, sheet)
	}
	return nil
}

// sanitizeSheetName turns a title into a valid sheet name: characters Excel
// forbids are replaced, surrounding quotes removed and the result cut to 31
// runes. Blank titles fall back to "Table n".
func sanitizeSheetName(title string, n int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, title)
	name = strings.Trim(strings.TrimSpace(name), "'")
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Table %d", n)
	}
	return truncateRunes(name, maxSheetName)
}

// uniqueSheetName appends " (n)" to names already taken. Sheet names compare
// case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, maxSheetName-utf8.RuneCountInString(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
