package dfpextract

import (
	"math"
	"sort"
	"strings"
)

// textRun is a stretch of words on one line sharing a font descriptor.
type textRun struct {
	line       int
	descriptor string
	fontSize   float64
	words      []EnrichedWord
	box        Rect
}

func (r textRun) text() string {
	parts := make([]string, len(r.words))
	for i, w := range r.words {
		parts[i] = w.Text
	}
	return strings.Join(parts, " ")
}

// textBlock is one or more vertically stacked runs that form an element.
type textBlock struct {
	runs []textRun
	box  Rect
}

func (b *textBlock) last() textRun {
	return b.runs[len(b.runs)-1]
}

func (b *textBlock) text() string {
	lines := make([]string, len(b.runs))
	for i, r := range b.runs {
		lines[i] = r.text()
	}
	return strings.Join(lines, "\n")
}

// buildElements groups a page's words into untagged elements: words become
// baseline lines, lines split into runs at font changes and wide gaps, and
// runs on consecutive lines merge when they are stacked closely in the same
// font, like pdfminer's text boxes with line_margin.
func buildElements(words []EnrichedWord, layout LayoutSettings) []Element {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]EnrichedWord, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].Baseline-sorted[j].Baseline) < 3 {
			return sorted[i].Box.X0 < sorted[j].Box.X0
		}
		return sorted[i].Baseline < sorted[j].Baseline
	})

	var runs []textRun
	for i, line := range groupWordsIntoLinesBaseline(sorted) {
		runs = append(runs, splitLineIntoRuns(line, i, layout.RunGapFactor)...)
	}

	blocks := mergeRuns(runs, layout.LineGapFactor)

	elements := make([]Element, 0, len(blocks))
	for _, block := range blocks {
		first := block.runs[0]
		elements = append(elements, Element{
			Text:     normalizeText(block.text()),
			Font:     first.descriptor,
			FontSize: first.fontSize,
			Box:      block.box,
		})
	}
	return elements
}

// groupWordsIntoLinesBaseline groups sorted words into lines using a baseline
// threshold derived from the x-height.
func groupWordsIntoLinesBaseline(words []EnrichedWord) []Line {
	var lines []Line
	var current Line

	for _, word := range words {
		if len(current.Words) > 0 {
			threshold := 0.4 * current.Words[0].XHeight
			if threshold == 0 {
				threshold = 3.0
			}
			if math.Abs(word.Baseline-current.Baseline) < threshold {
				current.Words = append(current.Words, word)
				current.Box = unionRect(current.Box, word.Box)
				n := float64(len(current.Words))
				current.Baseline = (current.Baseline*(n-1) + word.Baseline) / n
				continue
			}
			lines = append(lines, current)
		}
		current = Line{Words: []EnrichedWord{word}, Box: word.Box, Baseline: word.Baseline}
	}
	if len(current.Words) > 0 {
		lines = append(lines, current)
	}

	// Words were sorted with a tolerance; settle each line left to right
	for i := range lines {
		sort.SliceStable(lines[i].Words, func(a, b int) bool {
			return lines[i].Words[a].Box.X0 < lines[i].Words[b].Box.X0
		})
	}
	return lines
}

// splitLineIntoRuns cuts a line wherever the font descriptor changes or the
// gap to the previous word exceeds gapFactor times the font size.
func splitLineIntoRuns(line Line, lineIndex int, gapFactor float64) []textRun {
	var runs []textRun
	for _, word := range line.Words {
		descriptor := word.Descriptor()
		if n := len(runs); n > 0 {
			last := &runs[n-1]
			gap := word.Box.X0 - last.box.X1
			if last.descriptor == descriptor && gap <= gapFactor*last.fontSize {
				last.words = append(last.words, word)
				last.box = unionRect(last.box, word.Box)
				continue
			}
		}
		runs = append(runs, textRun{
			line:       lineIndex,
			descriptor: descriptor,
			fontSize:   word.FontSize,
			words:      []EnrichedWord{word},
			box:        word.Box,
		})
	}
	return runs
}

// mergeRuns stacks runs into blocks. A run joins a block when the block's last
// run sits on the previous line, shares the descriptor, overlaps it
// horizontally and is at most gapFactor times the font size above it.
func mergeRuns(runs []textRun, gapFactor float64) []*textBlock {
	var blocks []*textBlock
	for _, run := range runs {
		var target *textBlock
		for _, block := range blocks {
			last := block.last()
			if last.line != run.line-1 || last.descriptor != run.descriptor {
				continue
			}
			if run.box.X0 >= last.box.X1 || last.box.X0 >= run.box.X1 {
				continue
			}
			if gap := run.box.Y0 - last.box.Y1; gap <= gapFactor*run.fontSize {
				target = block
				break
			}
		}

		if target == nil {
			blocks = append(blocks, &textBlock{runs: []textRun{run}, box: run.box})
			continue
		}
		target.runs = append(target.runs, run)
		target.box = unionRect(target.box, run.box)
	}
	return blocks
}

// classifyElements tags elements through the font mapping. In strict mode the
// first unmapped font is an error; otherwise unmapped elements keep an empty
// tag and their descriptors are returned.
func classifyElements(pageNumber int, elements []Element, fonts FontMapping, strict bool) ([]Element, []string, error) {
	var unmapped []string
	seen := make(map[string]bool)

	for i := range elements {
		tag, ok := fonts.Classify(elements[i].Font)
		if !ok {
			if strict {
				return nil, nil, &UnmappedFontError{
					Page:       pageNumber,
					Descriptor: elements[i].Font,
					Text:       elements[i].Text,
				}
			}
			if !seen[elements[i].Font] {
				seen[elements[i].Font] = true
				unmapped = append(unmapped, elements[i].Font)
			}
			tag = TagUnmapped
		}
		elements[i].Tag = tag
	}
	return elements, unmapped, nil
}

// unionRect merges two rectangles into their bounding box
func unionRect(r1, r2 Rect) Rect {
	return Rect{
		X0: math.Min(r1.X0, r2.X0),
		Y0: math.Min(r1.Y0, r2.Y0),
		X1: math.Max(r1.X1, r2.X1),
		Y1: math.Max(r1.Y1, r2.Y1),
	}
}
