package dfpextract

import (
	"math"
	"sort"
	"strings"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// readPage loads the page at the 0-based index and reads its words. Ruling
// lines are only read when withRulings is set, since element building does
// not need them.
func readPage(instance pdfium.Pdfium, docRef references.FPDF_DOCUMENT, index int, withRulings bool) (*pageContent, error) {
	pageResp, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: docRef,
		Index:    index,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	page := pageResp.Page

	widthResp, err := instance.FPDF_GetPageWidthF(&requests.FPDF_GetPageWidthF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page width")
	}

	heightResp, err := instance.FPDF_GetPageHeightF(&requests.FPDF_GetPageHeightF{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page height")
	}

	content := &pageContent{
		number: index + 1,
		width:  float64(widthResp.PageWidth),
		height: float64(heightResp.PageHeight),
	}

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}

	if charCount.Count > 0 {
		chars := extractEnrichedChars(instance, textPage.TextPage, charCount.Count, content.height)
		content.words = expandLigatures(groupCharsIntoWords(chars))
	}

	if withRulings {
		rulings, err := extractRulings(instance, page, content.width, content.height)
		if err != nil {
			content.rulingErr = errors.Wrap(err, "failed to read ruling lines")
			rulings = nil
		}
		content.rulings = rulings
	}

	return content, nil
}

// extractEnrichedChars extracts all characters with their font metadata.
// Characters pdfium cannot describe are skipped.
func extractEnrichedChars(instance pdfium.Pdfium, textPage references.FPDF_TEXTPAGE, count int, pageHeight float64) []EnrichedChar {
	chars := make([]EnrichedChar, 0, count)

	for i := range count {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage,
			Index:    i,
		})
		if err != nil {
			continue
		}

		char := EnrichedChar{
			Text: rune(unicodeRes.Unicode),
			// Convert PDF coordinates (origin bottom-left) to standard (origin top-left)
			Box: Rect{
				X0: charBox.Left,
				Y0: pageHeight - charBox.Top,
				X1: charBox.Right,
				Y1: pageHeight - charBox.Bottom,
			},
			FontSize:   12.0,
			FontWeight: 400,
		}

		if fontSize, err := instance.FPDFText_GetFontSize(&requests.FPDFText_GetFontSize{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontSize = fontSize.FontSize
		}

		if fontWeight, err := instance.FPDFText_GetFontWeight(&requests.FPDFText_GetFontWeight{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontWeight = fontWeight.FontWeight
		}

		if fontInfo, err := instance.FPDFText_GetFontInfo(&requests.FPDFText_GetFontInfo{
			TextPage: textPage,
			Index:    i,
		}); err == nil {
			char.FontName = fontInfo.FontName
			char.FontFlags = fontInfo.Flags
		}

		chars = append(chars, char)
	}

	return chars
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ' '
}

// calculateAverageCharWidth calculates the average character width for a set of chars
func calculateAverageCharWidth(chars []EnrichedChar) float64 {
	if len(chars) == 0 {
		return 0
	}
	var totalWidth float64
	for _, char := range chars {
		totalWidth += char.Box.Width()
	}
	return totalWidth / float64(len(chars))
}

// detectWordBoundaries returns the indexes where a new word starts. Words break
// on whitespace, on a change of font, and on horizontal gaps wider than half
// an average character, which pdfium leaves between right-aligned numbers
// that are not separated by a space.
func detectWordBoundaries(chars []EnrichedChar) []int {
	if len(chars) <= 1 {
		return nil
	}

	avgWidth := calculateAverageCharWidth(chars)

	var boundaries []int
	for i := 1; i < len(chars); i++ {
		prev, curr := chars[i-1], chars[i]

		switch {
		case isSpace(curr.Text):
			boundaries = append(boundaries, i)
		case prev.FontName != curr.FontName || math.Abs(prev.FontSize-curr.FontSize) > 0.05:
			boundaries = append(boundaries, i)
		case avgWidth > 0 && curr.Box.X0-prev.Box.X1 > avgWidth*0.5:
			boundaries = append(boundaries, i)
		case math.Abs(curr.Box.CenterY()-prev.Box.CenterY()) > math.Max(prev.Box.Height(), curr.Box.Height()):
			// Line change without an explicit newline
			boundaries = append(boundaries, i)
		}
	}

	return boundaries
}

// groupCharsIntoWords groups characters into words.
func groupCharsIntoWords(chars []EnrichedChar) []EnrichedWord {
	if len(chars) == 0 {
		return nil
	}

	boundarySet := make(map[int]bool)
	for _, b := range detectWordBoundaries(chars) {
		boundarySet[b] = true
	}

	var words []EnrichedWord
	var current []EnrichedChar

	flush := func() {
		if len(current) > 0 {
			words = append(words, aggregateWord(current))
			current = nil
		}
	}

	for i, char := range chars {
		if boundarySet[i] {
			flush()
		}
		if !isSpace(char.Text) {
			current = append(current, char)
		}
	}
	flush()

	return words
}

// aggregateWord creates an EnrichedWord from a slice of characters.
func aggregateWord(chars []EnrichedChar) EnrichedWord {
	var text strings.Builder
	box := chars[0].Box
	var totalFontSize float64
	weightCounts := make(map[int]int)
	fontCounts := make(map[string]int)

	for _, char := range chars {
		text.WriteRune(char.Text)
		box.X0 = math.Min(box.X0, char.Box.X0)
		box.Y0 = math.Min(box.Y0, char.Box.Y0)
		box.X1 = math.Max(box.X1, char.Box.X1)
		box.Y1 = math.Max(box.Y1, char.Box.Y1)
		totalFontSize += char.FontSize
		weightCounts[char.FontWeight]++
		fontCounts[char.FontName]++
	}

	word := EnrichedWord{
		Text:       text.String(),
		Box:        box,
		FontSize:   totalFontSize / float64(len(chars)),
		FontWeight: dominant(weightCounts),
		FontName:   dominant(fontCounts),
		FontFlags:  chars[0].FontFlags,
	}
	word.IsBold = word.FontWeight >= 700
	word.Baseline = calculateBaseline(word)
	word.XHeight = calculateXHeight(word)

	return word
}

// dominant returns the most frequent key. Ties go to the smallest key so the
// result does not depend on map iteration order.
func dominant[K int | string](counts map[K]int) K {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var best K
	bestCount := 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	return best
}

// ligatureMap maps ligature unicode codepoints to their expanded forms
var ligatureMap = map[rune]string{
	0xFB00: "ff",
	0xFB01: "fi",
	0xFB02: "fl",
	0xFB03: "ffi",
	0xFB04: "ffl",
	0xFB05: "ft",
	0xFB06: "st",
}

// expandLigatures expands ligature characters into their component letters
func expandLigatures(words []EnrichedWord) []EnrichedWord {
	for i := range words {
		if !strings.ContainsFunc(words[i].Text, func(r rune) bool { _, ok := ligatureMap[r]; return ok }) {
			continue
		}

		var expanded strings.Builder
		for _, r := range words[i].Text {
			if expansion, ok := ligatureMap[r]; ok {
				expanded.WriteString(expansion)
			} else {
				expanded.WriteRune(r)
			}
		}
		words[i].Text = expanded.String()
	}
	return words
}
