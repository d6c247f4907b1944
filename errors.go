package dfpextract

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoAmount is returned when a cell holds no numeric value.
var ErrNoAmount = errors.New("cell has no amount")

// NotFoundError is returned when exactly one element was expected and none matched.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	if e.Query == "" {
		return "no matching element"
	}
	return fmt.Sprintf("no element matches %s", e.Query)
}

// AmbiguousMatchError is returned when exactly one element was expected and
// several matched.
type AmbiguousMatchError struct {
	Query string
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("%d elements matched, expected one", e.Count)
	}
	return fmt.Sprintf("%d elements match %s, expected one", e.Count, e.Query)
}

// PageNotFoundError is returned for page numbers outside the document.
type PageNotFoundError struct {
	Page      int
	PageCount int
}

func (e *PageNotFoundError) Error() string {
	return fmt.Sprintf("page %d out of range 1..%d", e.Page, e.PageCount)
}

// SummaryImbalanceError is returned when the summary region does not pair
// every page number with a section name.
type SummaryImbalanceError struct {
	// Text of the orphan page number, empty when names were left unpaired.
	Number string
	// Names that never received a page number.
	Unpaired []string
}

func (e *SummaryImbalanceError) Error() string {
	if e.Number != "" {
		return fmt.Sprintf("summary page number %q has no preceding name", e.Number)
	}
	return fmt.Sprintf("summary names without page number: %s", strings.Join(e.Unpaired, ", "))
}

// ColumnCountError is returned when the number of headers or grid columns on a
// page does not match the expected layout.
type ColumnCountError struct {
	Page     int
	Source   string
	Expected int
	Actual   int
}

func (e *ColumnCountError) Error() string {
	return fmt.Sprintf("page %d: %s has %d columns, expected %d", e.Page, e.Source, e.Actual, e.Expected)
}

// RowRangeError is returned when a grid has fewer rows than the header rows
// to drop.
type RowRangeError struct {
	Page int
	Rows int
	Drop int
}

func (e *RowRangeError) Error() string {
	return fmt.Sprintf("page %d: grid has %d rows, cannot drop %d header rows", e.Page, e.Rows, e.Drop)
}

// NoTableError is returned when the table extractor finds no grid on a page.
type NoTableError struct {
	Page int
}

func (e *NoTableError) Error() string {
	return fmt.Sprintf("no table found on page %d", e.Page)
}

// UnmappedFontError is returned in strict mode for a font missing from the mapping.
type UnmappedFontError struct {
	Page       int
	Descriptor string
	Text       string
}

func (e *UnmappedFontError) Error() string {
	return fmt.Sprintf("page %d: font %q is not mapped (text %q)", e.Page, e.Descriptor, e.Text)
}
