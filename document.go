package dfpextract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Element is a positioned run of text tagged with a font category.
type Element struct {
	Index    int // Position in document order
	Page     int
	Text     string
	Font     string // Font descriptor, e.g. "Arial,Bold,11.0"
	FontSize float64
	Tag      FontTag
	Box      Rect
}

// String returns a short description used in error messages.
func (e Element) String() string {
	return fmt.Sprintf("<%s page=%d %q>", e.Tag, e.Page, e.Text)
}

// ElementList is an ordered list of elements.
type ElementList []Element

// FilterByFont keeps elements carrying any of the given tags.
func (l ElementList) FilterByFont(tags ...FontTag) ElementList {
	var out ElementList
	for _, el := range l {
		for _, tag := range tags {
			if el.Tag == tag {
				out = append(out, el)
				break
			}
		}
	}
	return out
}

// FilterByTextEqual keeps elements whose text equals text exactly.
func (l ElementList) FilterByTextEqual(text string) ElementList {
	var out ElementList
	for _, el := range l {
		if el.Text == text {
			out = append(out, el)
		}
	}
	return out
}

// ExtractSingle returns the only element in the list.
func (l ElementList) ExtractSingle() (Element, error) {
	switch len(l) {
	case 0:
		return Element{}, &NotFoundError{}
	case 1:
		return l[0], nil
	default:
		return Element{}, &AmbiguousMatchError{Count: len(l)}
	}
}

// Texts returns the text of every element.
func (l ElementList) Texts() []string {
	texts := make([]string, len(l))
	for i, el := range l {
		texts[i] = el.Text
	}
	return texts
}

// Page holds the elements of a single PDF page.
type Page struct {
	Number   int
	Width    float64
	Height   float64
	Elements ElementList
}

// Section is a named span of the document between two boundary elements.
type Section struct {
	Name     string
	Start    Element
	End      Element
	Elements ElementList
}

// Document is a loaded PDF whose text has been classified by font.
type Document struct {
	pages    []Page
	elements ElementList
}

// NewDocument builds a document from pages. Elements are sorted within each
// page (top to bottom, then left to right) and indexed in document order.
func NewDocument(pages ...Page) *Document {
	doc := &Document{pages: make([]Page, len(pages))}

	index := 0
	for i, page := range pages {
		if page.Number == 0 {
			page.Number = i + 1
		}

		elements := make(ElementList, len(page.Elements))
		copy(elements, page.Elements)
		sortReadingOrder(elements)

		for j := range elements {
			elements[j].Index = index
			elements[j].Page = page.Number
			index++
		}
		page.Elements = elements

		doc.pages[i] = page
		doc.elements = append(doc.elements, elements...)
	}

	return doc
}

// rowTolerance is how far, in points, a top may sit below the first top of a
// row and still belong to it.
const rowTolerance = 1.0

// sortReadingOrder sorts elements top to bottom, then left to right within
// rows. A row starts at the highest remaining element and takes every element
// whose top is within rowTolerance of it.
func sortReadingOrder(elements ElementList) {
	sort.SliceStable(elements, func(a, b int) bool {
		return elements[a].Box.Y0 < elements[b].Box.Y0
	})

	for start := 0; start < len(elements); {
		end := start + 1
		for end < len(elements) && elements[end].Box.Y0-elements[start].Box.Y0 <= rowTolerance {
			end++
		}
		row := elements[start:end]
		sort.SliceStable(row, func(a, b int) bool {
			return row[a].Box.X0 < row[b].Box.X0
		})
		start = end
	}
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.pages)
}

// Page returns the page with the given 1-based number.
func (d *Document) Page(number int) (*Page, error) {
	if number < 1 || number > len(d.pages) {
		return nil, &PageNotFoundError{Page: number, PageCount: len(d.pages)}
	}
	return &d.pages[number-1], nil
}

// Elements returns every element in document order.
func (d *Document) Elements() ElementList {
	return d.elements
}

// Section returns the elements between start and end. The end element is
// included only when includeEnd is set.
func (d *Document) Section(name string, start, end Element, includeEnd bool) (*Section, error) {
	if end.Index < start.Index {
		return nil, errors.Errorf("section %q: end element %s precedes start element %s", name, end, start)
	}
	if end.Index >= len(d.elements) {
		return nil, errors.Errorf("section %q: end element %s is not part of this document", name, end)
	}

	last := end.Index
	if includeEnd {
		last++
	}

	elements := make(ElementList, last-start.Index)
	copy(elements, d.elements[start.Index:last])

	return &Section{
		Name:     name,
		Start:    start,
		End:      end,
		Elements: elements,
	}, nil
}

// String renders the document's elements one per line, for debugging.
func (d *Document) String() string {
	var b strings.Builder
	for _, el := range d.elements {
		fmt.Fprintf(&b, "%4d p%-3d %-14s %-18s %q\n", el.Index, el.Page, el.Tag, el.Font, el.Text)
	}
	return b.String()
}
