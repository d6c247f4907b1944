package dfpextract

import (
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// extractRulings reads the ruling lines drawn on a page as edges. Page borders
// are dropped so a framed page is not mistaken for a single table.
func extractRulings(instance pdfium.Pdfium, page references.FPDF_PAGE, pageWidth, pageHeight float64) ([]Edge, error) {
	countResp, err := instance.FPDFPage_CountObjects(&requests.FPDFPage_CountObjects{
		Page: requests.Page{
			ByReference: &page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count page objects")
	}

	var edges []Edge
	keep := func(candidates ...Edge) {
		for _, edge := range candidates {
			if !isPageBorder(edge, pageWidth, pageHeight) {
				edges = append(edges, edge)
			}
		}
	}

	for i := 0; i < countResp.Count; i++ {
		objResp, err := instance.FPDFPage_GetObject(&requests.FPDFPage_GetObject{
			Page: requests.Page{
				ByReference: &page,
			},
			Index: i,
		})
		if err != nil {
			continue
		}

		typeResp, err := instance.FPDFPageObj_GetType(&requests.FPDFPageObj_GetType{
			PageObject: objResp.PageObject,
		})
		if err != nil || typeResp.Type != enums.FPDF_PAGEOBJ_PATH {
			continue
		}

		boundsResp, err := instance.FPDFPageObj_GetBounds(&requests.FPDFPageObj_GetBounds{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		// Convert PDF coordinates (origin bottom-left) to standard (origin top-left)
		box := Rect{
			X0: float64(boundsResp.Left),
			Y0: pageHeight - float64(boundsResp.Top),
			X1: float64(boundsResp.Right),
			Y1: pageHeight - float64(boundsResp.Bottom),
		}

		segResp, err := instance.FPDFPath_CountSegments(&requests.FPDFPath_CountSegments{
			PageObject: objResp.PageObject,
		})
		if err != nil {
			continue
		}

		switch {
		case segResp.Count == 2:
			// MOVETO + LINETO
			if edge, ok := pathToEdge(box); ok {
				keep(edge)
			}
		case segResp.Count >= 4:
			// Rectangles and cell backgrounds
			keep(boundsToEdges(box)...)
		}
	}

	return edges, nil
}

// isPageBorder reports whether an edge hugs the page boundary or spans almost
// the whole page.
func isPageBorder(edge Edge, pageWidth, pageHeight float64) bool {
	const borderTolerance = 20.0
	const fullSpanThreshold = 0.90

	switch edge.Orientation {
	case "h":
		return edge.Top < borderTolerance || edge.Top > pageHeight-borderTolerance ||
			edge.Width > pageWidth*fullSpanThreshold
	case "v":
		return edge.X0 < borderTolerance || edge.X0 > pageWidth-borderTolerance ||
			edge.Height > pageHeight*fullSpanThreshold
	}
	return false
}

// pathToEdge converts a thin path into a horizontal or vertical edge.
func pathToEdge(box Rect) (Edge, bool) {
	width, height := box.Width(), box.Height()
	edge := Edge{
		X0:     box.X0,
		X1:     box.X1,
		Top:    box.Y0,
		Bottom: box.Y1,
		Width:  width,
		Height: height,
	}

	switch {
	case height < 2.0 && width > 1.0:
		edge.Orientation = "h"
	case width < 2.0 && height > 1.0:
		edge.Orientation = "v"
	default:
		return Edge{}, false
	}
	return edge, true
}

// boundsToEdges converts a rectangle into its four sides.
func boundsToEdges(box Rect) []Edge {
	horizontal := func(y float64) Edge {
		return Edge{X0: box.X0, X1: box.X1, Top: y, Bottom: y, Width: box.Width(), Orientation: "h"}
	}
	vertical := func(x float64) Edge {
		return Edge{X0: x, X1: x, Top: box.Y0, Bottom: box.Y1, Height: box.Height(), Orientation: "v"}
	}
	return []Edge{horizontal(box.Y0), horizontal(box.Y1), vertical(box.X0), vertical(box.X1)}
}
