package dfpextract_test

import (
	"github.com/ivanvanderbyl/dfpextract"
)

// el builds a tagged element with a small box at (x, y).
func el(tag dfpextract.FontTag, text string, x, y float64) dfpextract.Element {
	return dfpextract.Element{
		Text: text,
		Tag:  tag,
		Box:  dfpextract.Rect{X0: x, Y0: y, X1: x + 40, Y1: y + 10},
	}
}

// headerRow places column headers left to right on one line.
func headerRow(y float64, names ...string) []dfpextract.Element {
	elements := make([]dfpextract.Element, len(names))
	for i, name := range names {
		elements[i] = el(dfpextract.TagColumn, name, 50+float64(i)*60, y)
	}
	return elements
}

// testConfig is the default template with English markers.
func testConfig() dfpextract.Config {
	config := dfpextract.DefaultConfig()
	config.SummaryPage = 1
	config.StartMarker = "Individual Statements"
	config.EndMarker = "Reports and Statements"
	config.ExcludedNamePrefixes = []string{"Report", "Note"}
	config.PriorPeriodLabel = "Prior Year"
	return config
}

// summaryPage builds a table of contents from alternating names and page
// numbers, each pair on one line.
func summaryPage(entries ...string) dfpextract.Page {
	elements := []dfpextract.Element{
		el(dfpextract.TagText, "Contents", 50, 20),
		el(dfpextract.TagTitle, "Individual Statements", 50, 50),
	}
	y := 80.0
	for i, text := range entries {
		x := 50.0
		if i%2 == 1 {
			x = 500
		}
		elements = append(elements, el(dfpextract.TagSubtitle, text, x, y))
		if i%2 == 1 {
			y += 20
		}
	}
	if len(entries)%2 == 1 {
		y += 20
	}
	elements = append(elements,
		el(dfpextract.TagTitle, "Reports and Statements", 50, y+20),
		el(dfpextract.TagSubtitle, "Auditor Report", 50, y+50),
		el(dfpextract.TagSubtitle, "40", 500, y+50),
	)
	return dfpextract.Page{Elements: elements}
}

// Raw statement headers in text order; the default permutation swaps the
// first two.
var statementHeaders = []string{"Description", "Code", "Current Year", "12/31/2022", "Prior Year 12/31/2021"}

var equityHeaders = []string{"a", "b", "c", "d", "e", "f", "g", "h"}

// statementPage builds a statement page with a title and the five statement
// headers.
func statementPage(title string) dfpextract.Page {
	elements := []dfpextract.Element{el(dfpextract.TagTableTitle, title, 50, 40)}
	elements = append(elements, headerRow(80, statementHeaders...)...)
	return dfpextract.Page{Elements: elements}
}

// filing builds a sixteen-page document: a summary on page 1 pointing at a
// balance sheet (11) and an equity statement (16), with the equity headers
// on page 7.
func filing() *dfpextract.Document {
	pages := make([]dfpextract.Page, 16)
	pages[0] = summaryPage(
		"Balance Sheet", "10",
		"DMPL 01/01/2023 to 12/31/2023", "15",
		"Notes", "20",
	)
	pages[6] = dfpextract.Page{Elements: headerRow(80, equityHeaders...)}
	pages[10] = statementPage("Balance Sheet")
	pages[15] = dfpextract.Page{Elements: []dfpextract.Element{
		el(dfpextract.TagTableTitle, "DMPL 01/01/2023 to 12/31/2023", 50, 40),
	}}
	return dfpextract.NewDocument(pages...)
}

// filingTables returns grids that match the filing's headers.
func filingTables() dfpextract.TableExtractor {
	return dfpextract.TableExtractorFunc(func(page int) ([]dfpextract.Grid, error) {
		switch page {
		case 11:
			return []dfpextract.Grid{{
				{"Code", "Description", "Current Year", "12/31/2022", "12/31/2021"},
				{"1", "Total Assets", "1.234,56", "1.000,00", "900,00"},
				{"1.01", "Current Assets", "(10,00)", "-", ""},
			}}, nil
		case 16:
			return []dfpextract.Grid{{
				{"a", "b", "c", "d", "e", "f", "g", "h"},
				{"", "", "", "", "", "", "", ""},
				{"5.01", "Opening Balance", "1", "2", "3", "4", "5", "6"},
			}}, nil
		}
		return nil, nil
	})
}
