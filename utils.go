package dfpextract

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// calculateBaseline estimates the baseline Y-coordinate for a word
// The baseline is typically at the bottom of non-descender characters
func calculateBaseline(word EnrichedWord) float64 {
	return word.Box.Y1 - (word.FontSize * 0.15)
}

// calculateXHeight estimates the x-height (height of lowercase letters) for a word
// X-height is typically about 0.5-0.7 times the font size
func calculateXHeight(word EnrichedWord) float64 {
	for _, r := range word.Text {
		if r >= 'a' && r <= 'z' {
			return word.Box.Height() * 0.7
		}
	}
	return word.FontSize * 0.5
}

// normalizeText returns text in NFC form. pdfium may emit accented letters
// as a base letter followed by a combining mark, which would break exact
// matching against markers such as "Pareceres e Declarações".
func normalizeText(s string) string {
	return norm.NFC.String(s)
}

// cleanHeader trims a column header and removes embedded line breaks.
func cleanHeader(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "")
}

// collapseNewlines replaces line breaks inside a cell with single spaces.
func collapseNewlines(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}
