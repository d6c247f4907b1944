package dfpextract

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPdfiumTableExtractor_LogsRulingFallback(t *testing.T) {
	var logs bytes.Buffer
	config := Config{
		TableSettings: DefaultTableSettings(),
		Logger:        slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	extractor := NewPdfiumTableExtractorWithConfig(nil, "filing.pdf", config)

	grids := extractor.detect(3, &pageContent{number: 3})
	assert.Empty(t, grids)
	assert.Empty(t, logs.String())

	grids = extractor.detect(3, &pageContent{number: 3, rulingErr: errors.New("path objects unavailable")})
	assert.Empty(t, grids)
	assert.Contains(t, logs.String(), "ruling lines unavailable")
	assert.Contains(t, logs.String(), "page=3")
	assert.Contains(t, logs.String(), "path objects unavailable")
}
