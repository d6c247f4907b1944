package dfpextract

import (
	"math"
	"sort"
	"strings"
)

// mergeEdges snaps and joins edges that are close together.
func mergeEdges(edges []Edge, settings TableSettings) []Edge {
	if settings.SnapXTolerance > 0 || settings.SnapYTolerance > 0 {
		edges = snapEdges(edges, settings.SnapXTolerance, settings.SnapYTolerance)
	}

	type lineKey struct {
		orientation string
		position    float64
	}

	var keys []lineKey
	grouped := make(map[lineKey][]Edge)
	for _, edge := range edges {
		key := lineKey{orientation: edge.Orientation, position: edge.Top}
		if edge.Orientation == "v" {
			key.position = edge.X0
		}
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], edge)
	}

	// Keys keep first-seen order so results are deterministic
	var result []Edge
	for _, key := range keys {
		tolerance := settings.JoinXTolerance
		if key.orientation == "v" {
			tolerance = settings.JoinYTolerance
		}
		result = append(result, joinCollinear(grouped[key], tolerance)...)
	}
	return result
}

// edgeSpan returns the extent of an edge along its own direction.
func edgeSpan(e Edge) (float64, float64) {
	if e.Orientation == "v" {
		return e.Top, e.Bottom
	}
	return e.X0, e.X1
}

// edgePosition returns the coordinate an edge is snapped on.
func edgePosition(e Edge) float64 {
	if e.Orientation == "v" {
		return e.X0
	}
	return e.Top
}

// snapEdges moves edges within tolerance of each other onto their average position.
func snapEdges(edges []Edge, xTol, yTol float64) []Edge {
	var vEdges, hEdges []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vEdges = append(vEdges, e)
		} else {
			hEdges = append(hEdges, e)
		}
	}
	return append(snapGroup(vEdges, xTol), snapGroup(hEdges, yTol)...)
}

// snapGroup snaps edges of a single orientation.
func snapGroup(edges []Edge, tolerance float64) []Edge {
	if len(edges) == 0 {
		return edges
	}

	type cluster struct {
		value   float64
		members []int
	}

	var clusters []cluster
	for i, edge := range edges {
		val := edgePosition(edge)
		found := false
		for j := range clusters {
			if math.Abs(clusters[j].value-val) <= tolerance {
				n := float64(len(clusters[j].members))
				clusters[j].value = (clusters[j].value*n + val) / (n + 1)
				clusters[j].members = append(clusters[j].members, i)
				found = true
				break
			}
		}
		if !found {
			clusters = append(clusters, cluster{value: val, members: []int{i}})
		}
	}

	result := make([]Edge, len(edges))
	copy(result, edges)

	for _, c := range clusters {
		for _, idx := range c.members {
			e := &result[idx]
			diff := c.value - edgePosition(*e)
			if e.Orientation == "v" {
				e.X0 += diff
				e.X1 += diff
			} else {
				e.Top += diff
				e.Bottom += diff
			}
		}
	}
	return result
}

// joinCollinear joins edges on the same line whose ends are within tolerance.
func joinCollinear(edges []Edge, tolerance float64) []Edge {
	if len(edges) == 0 {
		return edges
	}

	sort.Slice(edges, func(i, j int) bool {
		a, _ := edgeSpan(edges[i])
		b, _ := edgeSpan(edges[j])
		return a < b
	})

	joined := []Edge{edges[0]}
	for _, current := range edges[1:] {
		last := &joined[len(joined)-1]
		_, lastEnd := edgeSpan(*last)
		start, end := edgeSpan(current)

		if start > lastEnd+tolerance {
			joined = append(joined, current)
			continue
		}
		if end <= lastEnd {
			continue
		}
		if last.Orientation == "h" {
			last.X1 = end
			last.Width = last.X1 - last.X0
		} else {
			last.Bottom = end
			last.Height = last.Bottom - last.Top
		}
	}
	return joined
}

// filterEdgesByLength filters edges by minimum length.
func filterEdgesByLength(edges []Edge, minLength float64) []Edge {
	if minLength <= 0 {
		return edges
	}

	result := make([]Edge, 0, len(edges))
	for _, edge := range edges {
		start, end := edgeSpan(edge)
		if end-start >= minLength {
			result = append(result, edge)
		}
	}
	return result
}

// crossing records the edges meeting at an intersection point.
type crossing struct {
	v []Edge
	h []Edge
}

// findIntersections finds where vertical and horizontal edges intersect.
func findIntersections(edges []Edge, settings TableSettings) map[Point]*crossing {
	intersections := make(map[Point]*crossing)

	var vEdges, hEdges []Edge
	for _, e := range edges {
		if e.Orientation == "v" {
			vEdges = append(vEdges, e)
		} else {
			hEdges = append(hEdges, e)
		}
	}

	xTol := settings.IntersectionXTolerance
	yTol := settings.IntersectionYTolerance

	for _, v := range vEdges {
		for _, h := range hEdges {
			if v.Top > h.Top+yTol || v.Bottom < h.Top-yTol ||
				v.X0 < h.X0-xTol || v.X0 > h.X1+xTol {
				continue
			}

			point := Point{X: v.X0, Y: h.Top}
			c, ok := intersections[point]
			if !ok {
				c = &crossing{}
				intersections[point] = c
			}
			c.v = append(c.v, v)
			c.h = append(c.h, h)
		}
	}

	return intersections
}

// intersectionsToCells creates the minimal rectangular cells bounded by
// connected intersections.
func intersectionsToCells(intersections map[Point]*crossing) []CellBBox {
	if len(intersections) == 0 {
		return nil
	}

	points := make([]Point, 0, len(intersections))
	for p := range intersections {
		points = append(points, p)
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Y == points[j].Y {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})

	// Two points are connected when a single edge passes through both
	connected := func(p1, p2 Point) bool {
		if p1.X == p2.X {
			for _, e1 := range intersections[p1].v {
				for _, e2 := range intersections[p2].v {
					if e1.X0 == e2.X0 && e1.Top == e2.Top && e1.Bottom == e2.Bottom {
						return true
					}
				}
			}
		}
		if p1.Y == p2.Y {
			for _, e1 := range intersections[p1].h {
				for _, e2 := range intersections[p2].h {
					if e1.Top == e2.Top && e1.X0 == e2.X0 && e1.X1 == e2.X1 {
						return true
					}
				}
			}
		}
		return false
	}

	var cells []CellBBox
	for i, pt := range points {
		var right, below *Point
		for j := i + 1; j < len(points); j++ {
			p := &points[j]
			if p.X == pt.X && p.Y > pt.Y && (below == nil || p.Y < below.Y) {
				below = p
			}
			if p.Y == pt.Y && p.X > pt.X && (right == nil || p.X < right.X) {
				right = p
			}
		}

		if below == nil || right == nil || !connected(pt, *below) || !connected(pt, *right) {
			continue
		}

		corner := Point{X: right.X, Y: below.Y}
		if _, ok := intersections[corner]; !ok {
			continue
		}
		if connected(corner, *right) && connected(corner, *below) {
			cells = append(cells, CellBBox{X0: pt.X, Top: pt.Y, X1: corner.X, Bottom: corner.Y})
		}
	}

	return cells
}

// cellCorners returns the four corners of a cell.
func cellCorners(c CellBBox) [4]Point {
	return [4]Point{{c.X0, c.Top}, {c.X0, c.Bottom}, {c.X1, c.Top}, {c.X1, c.Bottom}}
}

// cellsToTables groups cells sharing corners into contiguous tables.
func cellsToTables(cells []CellBBox) [][]CellBBox {
	remaining := make([]CellBBox, len(cells))
	copy(remaining, cells)

	var tables [][]CellBBox
	for len(remaining) > 0 {
		table := []CellBBox{remaining[0]}
		corners := make(map[Point]bool)
		for _, c := range cellCorners(remaining[0]) {
			corners[c] = true
		}
		remaining = remaining[1:]

		for grew := true; grew; {
			grew = false
			kept := remaining[:0]
			for _, cell := range remaining {
				shares := false
				for _, c := range cellCorners(cell) {
					if corners[c] {
						shares = true
						break
					}
				}
				if !shares {
					kept = append(kept, cell)
					continue
				}
				table = append(table, cell)
				for _, c := range cellCorners(cell) {
					corners[c] = true
				}
				grew = true
			}
			remaining = kept
		}

		if len(table) > 1 {
			tables = append(tables, table)
		}
	}

	return tables
}

// createTable arranges cells into rows and fills them with the words whose
// centers fall inside each cell.
func createTable(cells []CellBBox, words []EnrichedWord) Table {
	if len(cells) == 0 {
		return Table{}
	}

	bbox := CellBBox{X0: math.MaxFloat64, Top: math.MaxFloat64, X1: -math.MaxFloat64, Bottom: -math.MaxFloat64}
	for _, cell := range cells {
		bbox.X0 = math.Min(bbox.X0, cell.X0)
		bbox.Top = math.Min(bbox.Top, cell.Top)
		bbox.X1 = math.Max(bbox.X1, cell.X1)
		bbox.Bottom = math.Max(bbox.Bottom, cell.Bottom)
	}

	type rowGroup struct {
		top   float64
		cells []CellBBox
	}

	var rows []rowGroup
	for _, cell := range cells {
		found := false
		for i := range rows {
			if math.Abs(rows[i].top-cell.Top) < 1.0 {
				rows[i].cells = append(rows[i].cells, cell)
				found = true
				break
			}
		}
		if !found {
			rows = append(rows, rowGroup{top: cell.Top, cells: []CellBBox{cell}})
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].top < rows[j].top })

	tableRows := make([]TableRow, 0, len(rows))
	maxCols := 0
	for _, row := range rows {
		sort.Slice(row.cells, func(j, k int) bool { return row.cells[j].X0 < row.cells[k].X0 })

		tableCells := make([]TableCell, 0, len(row.cells))
		hasContent := false
		for _, cellBBox := range row.cells {
			content := cellContent(cellBBox, words)
			if content != "" {
				hasContent = true
			}
			tableCells = append(tableCells, TableCell{BBox: cellBBox, Content: content})
		}

		// Rows where every cell is empty are separators
		if !hasContent {
			continue
		}

		maxCols = max(maxCols, len(tableCells))
		tableRows = append(tableRows, TableRow{
			Cells: tableCells,
			BBox: CellBBox{
				X0:     row.cells[0].X0,
				Top:    row.top,
				X1:     row.cells[len(row.cells)-1].X1,
				Bottom: row.cells[0].Bottom,
			},
		})
	}

	return Table{
		BBox:    bbox,
		Rows:    tableRows,
		NumRows: len(tableRows),
		NumCols: maxCols,
	}
}

// cellContent joins the words centered in a cell, top to bottom and left to right.
func cellContent(cell CellBBox, words []EnrichedWord) string {
	const tolerance = 1.0

	var inside []EnrichedWord
	for _, word := range words {
		cx, cy := word.Box.CenterX(), word.Box.CenterY()
		if cx >= cell.X0-tolerance && cx <= cell.X1+tolerance &&
			cy >= cell.Top-tolerance && cy <= cell.Bottom+tolerance {
			inside = append(inside, word)
		}
	}

	sort.Slice(inside, func(i, j int) bool {
		if math.Abs(inside[i].Box.Y0-inside[j].Box.Y0) < 2.0 {
			return inside[i].Box.X0 < inside[j].Box.X0
		}
		return inside[i].Box.Y0 < inside[j].Box.Y0
	})

	var b strings.Builder
	for i, word := range inside {
		if i > 0 {
			if word.Box.Y0-inside[i-1].Box.Y1 > 2.0 {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(word.Text)
	}
	return b.String()
}
