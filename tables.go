package dfpextract

import (
	"log/slog"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// Grid is a table's content as rows of cell strings.
type Grid [][]string

// Width returns the number of columns of the widest row.
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		width = max(width, len(row))
	}
	return width
}

// TableExtractor finds the tables on a 1-based page of a document.
type TableExtractor interface {
	ExtractTables(pageNumber int) ([]Grid, error)
}

// TableExtractorFunc adapts a function to TableExtractor.
type TableExtractorFunc func(pageNumber int) ([]Grid, error)

// ExtractTables calls f(pageNumber).
func (f TableExtractorFunc) ExtractTables(pageNumber int) ([]Grid, error) {
	return f(pageNumber)
}

// PdfiumTableExtractor detects tables on the pages of a PDF file. Each call
// opens the file, so the extractor can be used alongside a Loader holding
// the same instance.
type PdfiumTableExtractor struct {
	instance pdfium.Pdfium
	path     string
	settings TableSettings
	log      *slog.Logger
}

// NewPdfiumTableExtractor creates an extractor for the PDF at path.
func NewPdfiumTableExtractor(instance pdfium.Pdfium, path string, settings TableSettings) *PdfiumTableExtractor {
	return NewPdfiumTableExtractorWithConfig(instance, path, Config{TableSettings: settings})
}

// NewPdfiumTableExtractorWithConfig creates an extractor using the template's
// table settings and logger.
func NewPdfiumTableExtractorWithConfig(instance pdfium.Pdfium, path string, config Config) *PdfiumTableExtractor {
	return &PdfiumTableExtractor{
		instance: instance,
		path:     path,
		settings: config.TableSettings,
		log:      config.logger(),
	}
}

// ExtractTables returns the grids detected on the page, in detection order.
func (e *PdfiumTableExtractor) ExtractTables(pageNumber int) ([]Grid, error) {
	doc, err := e.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &e.path,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer e.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := e.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}
	if pageNumber < 1 || pageNumber > pageCount.PageCount {
		return nil, &PageNotFoundError{Page: pageNumber, PageCount: pageCount.PageCount}
	}

	content, err := readPage(e.instance, doc.Document, pageNumber-1, true)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to extract page %d", pageNumber)
	}

	return e.detect(pageNumber, content), nil
}

// detect runs table detection over a page read with its ruling lines.
func (e *PdfiumTableExtractor) detect(pageNumber int, content *pageContent) []Grid {
	if content.rulingErr != nil {
		e.log.Debug("ruling lines unavailable, detecting tables from text alignment",
			"page", pageNumber, "error", content.rulingErr)
	}

	tables := DetectTables(content.words, content.rulings, e.settings)

	grids := make([]Grid, 0, len(tables))
	for _, table := range tables {
		if table.NumRows == 0 {
			continue
		}
		grids = append(grids, table.Grid())
	}
	return grids
}
