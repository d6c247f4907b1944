package dfpextract_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivanvanderbyl/dfpextract"
)

func gridWords() []dfpextract.EnrichedWord {
	return []dfpextract.EnrichedWord{
		{Text: "Name", Box: dfpextract.Rect{X0: 100, Y0: 100, X1: 150, Y1: 115}},
		{Text: "Age", Box: dfpextract.Rect{X0: 200, Y0: 100, X1: 230, Y1: 115}},
		{Text: "City", Box: dfpextract.Rect{X0: 300, Y0: 100, X1: 340, Y1: 115}},
		{Text: "John", Box: dfpextract.Rect{X0: 100, Y0: 130, X1: 140, Y1: 145}},
		{Text: "25", Box: dfpextract.Rect{X0: 200, Y0: 130, X1: 220, Y1: 145}},
		{Text: "NYC", Box: dfpextract.Rect{X0: 300, Y0: 130, X1: 330, Y1: 145}},
		{Text: "Jane", Box: dfpextract.Rect{X0: 100, Y0: 160, X1: 140, Y1: 175}},
		{Text: "30", Box: dfpextract.Rect{X0: 200, Y0: 160, X1: 220, Y1: 175}},
		{Text: "LA", Box: dfpextract.Rect{X0: 300, Y0: 160, X1: 320, Y1: 175}},
	}
}

func TestTableDetection_SimpleGrid(t *testing.T) {
	settings := dfpextract.DefaultTableSettings()
	tables := dfpextract.DetectTables(gridWords(), nil, settings)

	require.NotEmpty(t, tables, "Expected to detect at least one table")

	table := tables[0]
	for i, row := range table.Rows {
		t.Logf("Row %d: %v", i+1, row.Cells)
	}

	require.Equal(t, 3, table.NumRows, "Expected 3 rows")
	require.Equal(t, 3, table.NumCols, "Expected 3 columns")

	grid := table.Grid()
	require.Len(t, grid, 3)
	require.Equal(t, 3, grid.Width())
	require.Equal(t, []string{"John", "25", "NYC"}, grid[1])
}

func TestTableDetection_NoWords(t *testing.T) {
	require.Empty(t, dfpextract.DetectTables(nil, nil, dfpextract.DefaultTableSettings()))
}

func TestGridWidth(t *testing.T) {
	grid := dfpextract.Grid{
		{"a"},
		{"a", "b", "c"},
		{},
	}
	require.Equal(t, 3, grid.Width())
	require.Equal(t, 0, dfpextract.Grid(nil).Width())
}
