package dfpextract

import (
	"io"
	"time"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// Loader builds font-tagged documents from PDFs using pdfium text extraction.
type Loader struct {
	instance pdfium.Pdfium
	config   Config
}

// NewLoader creates a loader with the default filing template.
func NewLoader(instance pdfium.Pdfium) *Loader {
	return &Loader{
		instance: instance,
		config:   DefaultConfig(),
	}
}

// NewLoaderWithConfig creates a loader with a custom template.
func NewLoaderWithConfig(instance pdfium.Pdfium, config Config) *Loader {
	return &Loader{
		instance: instance,
		config:   config,
	}
}

// LoadFile loads a PDF file.
func (l *Loader) LoadFile(filePath string) (*Document, error) {
	return l.open(&requests.OpenDocument{
		FilePath: &filePath,
	})
}

// LoadBytes loads PDF bytes.
func (l *Loader) LoadBytes(pdfBytes []byte) (*Document, error) {
	return l.open(&requests.OpenDocument{
		File: &pdfBytes,
	})
}

// LoadReader loads a PDF from an io.ReadSeeker.
func (l *Loader) LoadReader(reader io.ReadSeeker) (*Document, error) {
	return l.open(&requests.OpenDocument{
		FileReader: reader,
	})
}

func (l *Loader) open(req *requests.OpenDocument) (*Document, error) {
	doc, err := l.instance.OpenDocument(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer l.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	return l.loadDocument(doc.Document)
}

// loadDocument reads every page of an open document into elements.
func (l *Loader) loadDocument(docRef references.FPDF_DOCUMENT) (*Document, error) {
	log := l.config.logger()
	startTime := time.Now()

	pageCount, err := l.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: docRef,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	pages := make([]Page, 0, pageCount.PageCount)
	unmapped := make(map[string]bool)

	for i := 0; i < pageCount.PageCount; i++ {
		pageStart := time.Now()

		content, err := readPage(l.instance, docRef, i, false)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract page %d", i+1)
		}

		elements := buildElements(content.words, l.config.Layout)
		elements, missing, err := classifyElements(content.number, elements, l.config.Fonts, l.config.StrictFonts)
		if err != nil {
			return nil, err
		}
		for _, descriptor := range missing {
			if !unmapped[descriptor] {
				unmapped[descriptor] = true
				log.Debug("font not mapped", "page", content.number, "font", descriptor)
			}
		}

		pages = append(pages, Page{
			Number:   content.number,
			Width:    content.width,
			Height:   content.height,
			Elements: elements,
		})

		if l.config.EnableMetricsLogging {
			log.Info("page loaded",
				"page", content.number,
				"pages", pageCount.PageCount,
				"elements", len(elements),
				"duration", time.Since(pageStart).Round(time.Millisecond))
		}
	}

	document := NewDocument(pages...)

	if l.config.EnableMetricsLogging {
		log.Info("document loaded",
			"pages", document.PageCount(),
			"elements", len(document.Elements()),
			"unmapped_fonts", len(unmapped),
			"duration", time.Since(startTime).Round(time.Millisecond))
	}

	return document, nil
}

// GetDocumentInfo returns basic information about a PDF without loading it.
func (l *Loader) GetDocumentInfo(filePath string) (*DocumentInfo, error) {
	doc, err := l.instance.OpenDocument(&requests.OpenDocument{
		FilePath: &filePath,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open PDF document")
	}
	defer l.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: doc.Document,
	})

	pageCount, err := l.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: doc.Document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	return &DocumentInfo{
		PageCount: pageCount.PageCount,
	}, nil
}

// DocumentInfo contains basic information about a PDF document.
type DocumentInfo struct {
	PageCount int
}
