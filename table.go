package dfpextract

import (
	"math"
	"sort"
)

// wordCluster is a group of words sharing a coordinate within one point.
type wordCluster struct {
	pos   float64
	words []EnrichedWord
}

// clusterWords groups words by the coordinate returned by pos.
func clusterWords(words []EnrichedWord, pos func(EnrichedWord) float64) []wordCluster {
	var clusters []wordCluster
	for _, word := range words {
		p := pos(word)
		found := false
		for i := range clusters {
			if math.Abs(clusters[i].pos-p) < 1.0 {
				clusters[i].words = append(clusters[i].words, word)
				found = true
				break
			}
		}
		if !found {
			clusters = append(clusters, wordCluster{pos: p, words: []EnrichedWord{word}})
		}
	}
	return clusters
}

// boundsOf returns the bounding box of a set of words.
func boundsOf(words []EnrichedWord) Rect {
	bb := Rect{X0: math.MaxFloat64, Y0: math.MaxFloat64, X1: -math.MaxFloat64, Y1: -math.MaxFloat64}
	for _, w := range words {
		bb = Rect{
			X0: math.Min(bb.X0, w.Box.X0),
			Y0: math.Min(bb.Y0, w.Box.Y0),
			X1: math.Max(bb.X1, w.Box.X1),
			Y1: math.Max(bb.Y1, w.Box.Y1),
		}
	}
	return bb
}

// wordsToEdgesHorizontal infers horizontal rulings from rows of aligned words.
// Based on pdfplumber's words_to_edges_h function.
func wordsToEdgesHorizontal(words []EnrichedWord, minWords int) []Edge {
	var rows []wordCluster
	for _, c := range clusterWords(words, func(w EnrichedWord) float64 { return w.Box.Y0 }) {
		if len(c.words) >= minWords {
			rows = append(rows, c)
		}
	}
	if len(rows) == 0 {
		return nil
	}

	var all []EnrichedWord
	for _, r := range rows {
		all = append(all, r.words...)
	}
	span := boundsOf(all)

	edges := make([]Edge, 0, len(rows)*2)
	for _, r := range rows {
		bottom := boundsOf(r.words).Y1
		for _, y := range []float64{r.pos, bottom} {
			edges = append(edges, Edge{
				X0:          span.X0,
				X1:          span.X1,
				Top:         y,
				Bottom:      y,
				Width:       span.Width(),
				Orientation: "h",
			})
		}
	}
	return edges
}

// wordsToEdgesVertical infers vertical rulings from words aligned on their left
// edge, right edge or center. Based on pdfplumber's words_to_edges_v function.
func wordsToEdgesVertical(words []EnrichedWord, minWords int) []Edge {
	if len(words) == 0 {
		return nil
	}

	clusters := clusterWords(words, func(w EnrichedWord) float64 { return w.Box.X0 })
	clusters = append(clusters, clusterWords(words, func(w EnrichedWord) float64 { return w.Box.X1 })...)
	clusters = append(clusters, clusterWords(words, func(w EnrichedWord) float64 { return w.Box.CenterX() })...)

	// Largest clusters claim their area first
	sort.SliceStable(clusters, func(i, j int) bool {
		return len(clusters[i].words) > len(clusters[j].words)
	})

	var columns []Rect
	for _, c := range clusters {
		if len(c.words) < minWords {
			continue
		}
		bb := boundsOf(c.words)
		overlaps := false
		for _, existing := range columns {
			if !(bb.X1 < existing.X0 || bb.X0 > existing.X1 || bb.Y1 < existing.Y0 || bb.Y0 > existing.Y1) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			columns = append(columns, bb)
		}
	}
	if len(columns) == 0 {
		return nil
	}

	sort.Slice(columns, func(i, j int) bool { return columns[i].X0 < columns[j].X0 })

	top, bottom, right := math.MaxFloat64, -math.MaxFloat64, -math.MaxFloat64
	for _, bb := range columns {
		top = math.Min(top, bb.Y0)
		bottom = math.Max(bottom, bb.Y1)
		right = math.Max(right, bb.X1)
	}

	edges := make([]Edge, 0, len(columns)+1)
	for _, x := range append(columnStarts(columns), right) {
		edges = append(edges, Edge{
			X0:          x,
			X1:          x,
			Top:         top,
			Bottom:      bottom,
			Height:      bottom - top,
			Orientation: "v",
		})
	}
	return edges
}

func columnStarts(columns []Rect) []float64 {
	starts := make([]float64, len(columns))
	for i, c := range columns {
		starts[i] = c.X0
	}
	return starts
}

// edgesFor selects explicit rulings of one orientation and, depending on the
// strategy, falls back to or adds edges inferred from text.
func edgesFor(orientation, strategy string, rulings []Edge, infer func() []Edge) []Edge {
	var edges []Edge
	if strategy == "lines" || strategy == "lines_text" {
		for _, r := range rulings {
			if r.Orientation == orientation {
				edges = append(edges, r)
			}
		}
	}

	if (len(edges) == 0 && strategy == "lines") || strategy == "text" || strategy == "lines_text" {
		edges = append(edges, infer()...)
	}
	return edges
}

// DetectTables finds tables among a page's words using explicit rulings or
// word alignment. Based on pdfplumber's TableFinder.
func DetectTables(words []EnrichedWord, rulings []Edge, settings TableSettings) []Table {
	if len(words) == 0 {
		return nil
	}

	edges := edgesFor("v", settings.VerticalStrategy, rulings, func() []Edge {
		return wordsToEdgesVertical(words, settings.MinWordsVertical)
	})
	edges = append(edges, edgesFor("h", settings.HorizontalStrategy, rulings, func() []Edge {
		return wordsToEdgesHorizontal(words, settings.MinWordsHorizontal)
	})...)

	if len(edges) == 0 {
		return nil
	}

	edges = mergeEdges(edges, settings)
	edges = filterEdgesByLength(edges, settings.EdgeMinLength)

	intersections := findIntersections(edges, settings)
	cells := intersectionsToCells(intersections)

	groups := cellsToTables(cells)
	tables := make([]Table, 0, len(groups))
	for _, group := range groups {
		tables = append(tables, createTable(group, words))
	}
	return tables
}
