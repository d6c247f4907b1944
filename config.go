package dfpextract

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// LayoutSettings controls how words are grouped into elements.
type LayoutSettings struct {
	// RunGapFactor splits a line into separate elements where the horizontal
	// gap between words exceeds this multiple of the font size (default: 1.5)
	RunGapFactor float64 `yaml:"run_gap_factor"`

	// LineGapFactor merges runs on consecutive lines into one element when the
	// vertical gap is below this multiple of the font size (default: 0.5)
	LineGapFactor float64 `yaml:"line_gap_factor"`
}

// DefaultLayoutSettings returns the default element grouping settings.
func DefaultLayoutSettings() LayoutSettings {
	return LayoutSettings{
		RunGapFactor:  1.5,
		LineGapFactor: 0.5,
	}
}

// Config describes a filing template: how fonts map to tags, where the
// summary lives and how each table kind lays out its columns.
type Config struct {
	// Fonts maps font descriptors to tags (default: DefaultFontMapping())
	Fonts FontMapping `yaml:"fonts"`

	// StrictFonts fails loading when a font is missing from Fonts (default: false)
	StrictFonts bool `yaml:"strict_fonts"`

	// SummaryPage is the 1-based page holding the table of contents (default: 1)
	SummaryPage int `yaml:"summary_page"`

	// StartMarker and EndMarker are the titles bounding the summary region.
	// The start is included, the end is not.
	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`

	// ExcludedNamePrefixes drops summary entries that are reports or notes
	// rather than tables (default: "Relat", "Nota")
	ExcludedNamePrefixes []string `yaml:"excluded_name_prefixes"`

	// EquityTitleMarker identifies equity-change statements by title substring (default: "DMPL")
	EquityTitleMarker string `yaml:"equity_title_marker"`

	// EquityReferencePage holds the column headers used for every
	// equity-change statement (default: 7)
	EquityReferencePage int `yaml:"equity_reference_page"`

	// EquityColumnOrder and StatementColumnOrder permute raw headers into
	// display order.
	EquityColumnOrder    []int `yaml:"equity_column_order"`
	StatementColumnOrder []int `yaml:"statement_column_order"`

	// PriorPeriodLabel is moved from the last statement header onto the one
	// before it (default: "Penúltimo Exercício")
	PriorPeriodLabel string `yaml:"prior_period_label"`

	// LabelColumns is the number of leading display columns holding the
	// account code and description rather than amounts (default: 2)
	LabelColumns int `yaml:"label_columns"`

	// Leading grid rows that repeat the header and are dropped.
	EquityHeaderRows    int `yaml:"equity_header_rows"`
	StatementHeaderRows int `yaml:"statement_header_rows"`

	// Layout controls element grouping (default: DefaultLayoutSettings())
	Layout LayoutSettings `yaml:"layout"`

	// TableSettings configures table detection (default: DefaultTableSettings())
	TableSettings TableSettings `yaml:"tables"`

	// EnableMetricsLogging logs per-page timing and statistics (default: false)
	EnableMetricsLogging bool `yaml:"metrics"`

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns the configuration for the CVM DFP filing template.
func DefaultConfig() Config {
	return Config{
		Fonts:                DefaultFontMapping(),
		SummaryPage:          1,
		StartMarker:          "DFs Individuais",
		EndMarker:            "Pareceres e Declarações",
		ExcludedNamePrefixes: []string{"Relat", "Nota"},
		EquityTitleMarker:    "DMPL",
		EquityReferencePage:  7,
		EquityColumnOrder:    []int{3, 0, 4, 7, 1, 5, 6, 2},
		StatementColumnOrder: []int{1, 0, 2, 3, 4},
		PriorPeriodLabel:     "Penúltimo Exercício",
		EquityHeaderRows:     2,
		StatementHeaderRows:  1,
		LabelColumns:         2,
		Layout:               DefaultLayoutSettings(),
		TableSettings:        DefaultTableSettings(),
	}
}

// LoadConfig reads a YAML template from path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes a YAML template on top of DefaultConfig. A fonts
// section replaces the default mapping rather than extending it.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	var fonts struct {
		Fonts FontMapping `yaml:"fonts"`
	}
	if err := yaml.Unmarshal(data, &fonts); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}
	if len(fonts.Fonts) > 0 {
		config.Fonts = nil
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(err, "failed to parse config")
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks the template for inconsistencies.
func (c Config) Validate() error {
	if len(c.Fonts) == 0 {
		return errors.New("config: font mapping is empty")
	}
	if err := c.Fonts.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.SummaryPage < 1 {
		return errors.Errorf("config: summary page must be >= 1, got %d", c.SummaryPage)
	}
	if c.EquityReferencePage < 1 {
		return errors.Errorf("config: equity reference page must be >= 1, got %d", c.EquityReferencePage)
	}
	if c.StartMarker == "" || c.EndMarker == "" {
		return errors.New("config: summary markers must not be empty")
	}
	if err := validatePermutation(c.EquityColumnOrder); err != nil {
		return errors.Wrap(err, "config: equity column order")
	}
	if err := validatePermutation(c.StatementColumnOrder); err != nil {
		return errors.Wrap(err, "config: statement column order")
	}
	if len(c.StatementColumnOrder) < 2 {
		return errors.New("config: statement layout needs at least two columns")
	}
	if c.EquityHeaderRows < 0 || c.StatementHeaderRows < 0 {
		return errors.New("config: header rows must not be negative")
	}
	if c.LabelColumns < 0 || c.LabelColumns >= min(len(c.EquityColumnOrder), len(c.StatementColumnOrder)) {
		return errors.Errorf("config: label columns must leave at least one amount column, got %d", c.LabelColumns)
	}
	return nil
}

// validatePermutation checks that order holds each index 0..n-1 exactly once.
func validatePermutation(order []int) error {
	if len(order) == 0 {
		return errors.New("permutation is empty")
	}
	seen := make([]bool, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(order) {
			return errors.Errorf("index %d out of range 0..%d", idx, len(order)-1)
		}
		if seen[idx] {
			return errors.Errorf("index %d repeated", idx)
		}
		seen[idx] = true
	}
	return nil
}

// logger returns the configured logger or one that discards everything.
func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
