package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/dfpextract"
)

func main() {
	cmd := &cli.Command{
		Name:  "dfpextract",
		Usage: "Extract financial statement tables from DFP/ITR filings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Input PDF file path",
				Sources:  cli.EnvVars("DFPEXTRACT_INPUT"),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML filing template (default: built-in DFP template)",
				Sources: cli.EnvVars("DFPEXTRACT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or xlsx",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
			&cli.IntFlag{
				Name:  "summary-page",
				Usage: "Page holding the table of contents",
			},
			&cli.IntFlag{
				Name:  "equity-page",
				Usage: "Page holding the equity statement column headers",
			},
			&cli.BoolFlag{
				Name:  "strict-fonts",
				Usage: "Fail when a font is missing from the template",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Log per-page timing and statistics",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log debug output",
			},
		},
		Action: extractTables,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func extractTables(_ context.Context, cmd *cli.Command) error {
	inputPath := cmd.String("input")
	outputPath := cmd.String("output")
	format := cmd.String("format")

	switch format {
	case "text", "markdown", "csv":
	case "xlsx":
		if outputPath == "" {
			return fmt.Errorf("xlsx output requires --output")
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	config, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := config.Logger

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	loader := dfpextract.NewLoaderWithConfig(instance, config)

	info, err := loader.GetDocumentInfo(inputPath)
	if err != nil {
		return fmt.Errorf("failed to get document info: %w", err)
	}
	logger.Info("processing filing", "path", inputPath, "pages", info.PageCount)

	doc, err := loader.LoadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to load PDF: %w", err)
	}

	tables := dfpextract.NewPdfiumTableExtractorWithConfig(instance, inputPath, config)
	indexer := dfpextract.NewIndexer(doc, tables, config)

	report, err := indexer.ExtractAll()
	if err != nil {
		return fmt.Errorf("failed to extract tables: %w", err)
	}
	logger.Info("extraction finished",
		"tables", len(report.Tables),
		"failures", len(report.Failures))

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := writeReport(out, report, format); err != nil {
		return err
	}

	if outputPath != "" {
		logger.Info("report written", "path", outputPath, "format", format)
	}
	return nil
}

// loadConfig reads the template and applies command line overrides.
func loadConfig(cmd *cli.Command) (dfpextract.Config, error) {
	config := dfpextract.DefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		config, err = dfpextract.LoadConfig(path)
		if err != nil {
			return config, err
		}
	}

	if cmd.IsSet("summary-page") {
		config.SummaryPage = cmd.Int("summary-page")
	}
	if cmd.IsSet("equity-page") {
		config.EquityReferencePage = cmd.Int("equity-page")
	}
	if cmd.Bool("strict-fonts") {
		config.StrictFonts = true
	}
	if cmd.Bool("metrics") {
		config.EnableMetricsLogging = true
	}

	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	config.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

func writeReport(w io.Writer, report *dfpextract.Report, format string) error {
	switch format {
	case "markdown":
		_, err := io.WriteString(w, report.ToMarkdown())
		return err
	case "csv":
		return report.WriteCSV(w)
	case "xlsx":
		return report.WriteXLSX(w)
	default:
		return report.WriteText(w)
	}
}
