package dfpextract

import (
	"strings"

	"github.com/pkg/errors"
)

// TableKind distinguishes the two statement layouts of a filing.
type TableKind string

const (
	// KindEquity is the statement of changes in equity (DMPL), whose eight
	// columns are read from a reference page.
	KindEquity TableKind = "DMPL"

	// KindStatement covers the other financial statements (DFS), whose five
	// columns are read from their own page.
	KindStatement TableKind = "DFS"
)

// tableKind detects the layout from a table title.
func tableKind(title, equityMarker string) TableKind {
	if equityMarker != "" && strings.Contains(title, equityMarker) {
		return KindEquity
	}
	return KindStatement
}

// permuteColumns reorders names so that output[i] = names[order[i]].
func permuteColumns(names []string, order []int) ([]string, error) {
	if len(names) != len(order) {
		return nil, errors.Errorf("permutation of %d columns applied to %d names", len(order), len(names))
	}
	out := make([]string, len(order))
	for i, idx := range order {
		if idx < 0 || idx >= len(names) {
			return nil, errors.Errorf("column index %d out of range", idx)
		}
		out[i] = names[idx]
	}
	return out, nil
}

// mergePriorPeriod moves the prior-period label from the last header onto the
// one before it. The filing prints the label once above both prior-period
// columns and the text layer attaches it to the wrong one.
func mergePriorPeriod(names []string, label string) []string {
	n := len(names)
	if n < 2 || label == "" {
		return names
	}
	out := make([]string, n)
	copy(out, names)
	out[n-2] = label + " " + out[n-2]
	out[n-1] = strings.TrimSpace(strings.ReplaceAll(out[n-1], label, ""))
	return out
}

// headerTexts returns the cleaned column-header texts of a page.
func (ix *Indexer) headerTexts(pageNumber int) ([]string, error) {
	page, err := ix.doc.Page(pageNumber)
	if err != nil {
		return nil, err
	}
	headers := page.Elements.FilterByFont(TagColumn).Texts()
	for i, h := range headers {
		headers[i] = cleanHeader(h)
	}
	return headers, nil
}

// ColumnNames resolves the display-ordered column names for a table of the
// given kind on pageNumber. Equity statements always read their headers from
// the configured reference page.
func (ix *Indexer) ColumnNames(pageNumber int, kind TableKind) ([]string, error) {
	source := pageNumber
	order := ix.config.StatementColumnOrder
	if kind == KindEquity {
		source = ix.config.EquityReferencePage
		order = ix.config.EquityColumnOrder
	}

	headers, err := ix.headerTexts(source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read column headers for page %d", pageNumber)
	}
	if len(headers) != len(order) {
		return nil, &ColumnCountError{
			Page:     source,
			Source:   "header row",
			Expected: len(order),
			Actual:   len(headers),
		}
	}

	if kind == KindStatement {
		headers = mergePriorPeriod(headers, ix.config.PriorPeriodLabel)
	}

	return permuteColumns(headers, order)
}
