package dfpextract

// Rect represents a bounding box in PDF coordinates.
type Rect struct {
	X0 float64 // Left
	Y0 float64 // Top (after conversion from PDF coordinates)
	X1 float64 // Right
	Y1 float64 // Bottom (after conversion from PDF coordinates)
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 {
	return (r.X0 + r.X1) / 2
}

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 {
	return (r.Y0 + r.Y1) / 2
}

// EnrichedChar represents a single character with the metadata needed to
// classify it by font.
type EnrichedChar struct {
	Text       rune
	Box        Rect
	FontSize   float64
	FontWeight int
	FontName   string
	FontFlags  int
}

// EnrichedWord represents a word with aggregated style information.
type EnrichedWord struct {
	Text       string
	Box        Rect
	FontSize   float64 // Average font size
	FontWeight int     // Dominant font weight
	FontName   string  // Dominant font name
	FontFlags  int     // Flags of the first character
	IsBold     bool
	Baseline   float64 // Y-coordinate of the text baseline
	XHeight    float64 // Height of lowercase letters
}

// Descriptor returns the font descriptor used for classification.
func (w EnrichedWord) Descriptor() string {
	return FontDescriptor(w.FontName, w.FontSize)
}

// Line represents a horizontal line of text.
type Line struct {
	Words    []EnrichedWord
	Box      Rect
	Baseline float64
}

// pageContent holds everything read from a single pdfium page.
type pageContent struct {
	number  int
	width   float64
	height  float64
	words   []EnrichedWord
	rulings []Edge

	// rulingErr is set when ruling lines could not be read; rulings is then
	// empty and table detection relies on text alignment.
	rulingErr error
}
