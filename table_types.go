package dfpextract

// Edge represents a horizontal or vertical line segment used for table detection.
// Based on pdfplumber's edge structure.
type Edge struct {
	X0          float64 // Left x coordinate
	X1          float64 // Right x coordinate
	Top         float64 // Top y coordinate
	Bottom      float64 // Bottom y coordinate
	Width       float64 // Width (for horizontal edges)
	Height      float64 // Height (for vertical edges)
	Orientation string  // "h" for horizontal, "v" for vertical
}

// Point represents an (x, y) coordinate where edges intersect.
type Point struct {
	X float64
	Y float64
}

// CellBBox represents a table cell as a bounding box.
type CellBBox struct {
	X0     float64
	Top    float64
	X1     float64
	Bottom float64
}

// TableCell represents a detected table cell with its content.
type TableCell struct {
	BBox    CellBBox
	Content string
}

// TableRow represents a row of cells in a table.
type TableRow struct {
	Cells []TableCell
	BBox  CellBBox
}

// Table represents a detected table with its structure and content.
type Table struct {
	BBox    CellBBox
	Rows    []TableRow
	NumRows int
	NumCols int
}

// Grid returns the table content as rows of strings, padded to NumCols.
// Newlines inside cells are replaced by spaces.
func (t Table) Grid() Grid {
	grid := make(Grid, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, t.NumCols)
		for i := 0; i < t.NumCols && i < len(row.Cells); i++ {
			cells[i] = collapseNewlines(row.Cells[i].Content)
		}
		grid = append(grid, cells)
	}
	return grid
}

// TableSettings configures table detection behavior.
// Based on pdfplumber's TableSettings.
type TableSettings struct {
	// Strategy for detecting table edges: "text", "lines", "lines_text"
	VerticalStrategy   string `yaml:"vertical_strategy"`
	HorizontalStrategy string `yaml:"horizontal_strategy"`

	// Tolerances for snapping close edges together
	SnapXTolerance float64 `yaml:"snap_x_tolerance"`
	SnapYTolerance float64 `yaml:"snap_y_tolerance"`

	// Tolerances for joining edges on the same line
	JoinXTolerance float64 `yaml:"join_x_tolerance"`
	JoinYTolerance float64 `yaml:"join_y_tolerance"`

	// Minimum edge length to consider
	EdgeMinLength float64 `yaml:"edge_min_length"`

	// Minimum number of words required to infer edges from text alignment
	MinWordsVertical   int `yaml:"min_words_vertical"`
	MinWordsHorizontal int `yaml:"min_words_horizontal"`

	// Tolerances for finding edge intersections
	IntersectionXTolerance float64 `yaml:"intersection_x_tolerance"`
	IntersectionYTolerance float64 `yaml:"intersection_y_tolerance"`
}

// DefaultTableSettings returns default settings for table detection.
// Uses "lines" strategy by default, falling back to text alignment when a
// page has no ruling lines.
func DefaultTableSettings() TableSettings {
	return TableSettings{
		VerticalStrategy:       "lines",
		HorizontalStrategy:     "lines",
		SnapXTolerance:         3.0,
		SnapYTolerance:         3.0,
		JoinXTolerance:         3.0,
		JoinYTolerance:         3.0,
		EdgeMinLength:          3.0,
		MinWordsVertical:       3,
		MinWordsHorizontal:     1,
		IntersectionXTolerance: 3.0,
		IntersectionYTolerance: 3.0,
	}
}
