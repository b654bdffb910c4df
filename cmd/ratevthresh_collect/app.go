package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/user/ratevthresh_go/internal/analysis"
	"github.com/user/ratevthresh_go/internal/collector"
	"github.com/user/ratevthresh_go/internal/config"
	"github.com/user/ratevthresh_go/internal/parser"
	"github.com/user/ratevthresh_go/internal/report"
)

// App runs one collect-and-report pass.
type App struct {
	fs     afero.Fs
	cfg    config.Config
	stdout io.Writer
	logger *zap.Logger
}

// NewApp creates a new App application struct
func NewApp(fsys afero.Fs, cfg config.Config, stdout io.Writer, logger *zap.Logger) *App {
	return &App{fs: fsys, cfg: cfg, stdout: stdout, logger: logger}
}

func (a *App) sendStatus(message string) {
	a.logger.Info(message)
}

// Run collects the scans named by suffixes, prints the rate table and,
// when configured, writes the PDF report.
func (a *App) Run(suffixes []string) error {
	a.sendStatus(fmt.Sprintf("Collecting %d scan(s) from %s", len(suffixes), a.cfg.Dir))
	c := collector.NewCollector(a.fs, collector.Config{Dir: a.cfg.Dir, Prefix: a.cfg.Prefix}, a.logger)
	table, err := c.Collect(suffixes)
	if err != nil {
		return err
	}
	a.sendStatus(fmt.Sprintf("Collected %d thresholds.", table.Len()))

	opts := report.TextOptions{Missing: a.cfg.Missing, Placeholder: a.cfg.Placeholder}
	if err := report.WriteText(a.stdout, table, opts); err != nil {
		return err
	}

	if a.cfg.PDFPath == "" {
		return nil
	}
	if table.Len() == 0 {
		a.logger.Warn("No rates collected, skipping PDF report", zap.String("path", a.cfg.PDFPath))
		return nil
	}
	return a.generatePDF(table, suffixes)
}

func (a *App) generatePDF(table *collector.RateTable, suffixes []string) error {
	a.sendStatus(fmt.Sprintf("Analyzing rates (target rate: %s)...", report.FormatCount(a.cfg.TargetRate)))
	results, err := analysis.AnalyzeRates(table, a.cfg.TargetRate)
	if err != nil {
		return fmt.Errorf("error analyzing rates: %w", err)
	}
	for _, e := range results.AnalysisErrors {
		a.logger.Debug("Analysis warning", zap.String("detail", e))
	}

	heatmapThreshold := results.Thresholds[0]
	if a.cfg.HeatmapThreshold != nil {
		heatmapThreshold = *a.cfg.HeatmapThreshold
	}

	a.sendStatus("Generating plots...")
	plotImages := make(map[string][]byte)
	if img, err := report.CreateRateHeatmap(table, heatmapThreshold); err != nil {
		a.logger.Warn("Error generating heatmap", zap.Int("threshold", heatmapThreshold), zap.Error(err))
	} else {
		plotImages[report.HeatmapPlotKey] = img
	}
	for slot := parser.MinSlot; slot <= parser.MaxSlot; slot++ {
		img, err := report.CreateRateCurvePlot(table, slot)
		if err != nil {
			a.logger.Warn("Error generating rate curves", zap.Int("slot", slot), zap.Error(err))
			continue
		}
		plotImages[report.CurvePlotKey(slot)] = img
	}

	a.sendStatus(fmt.Sprintf("Generating PDF: %s...", a.cfg.PDFPath))
	info := report.ReportInfo{Suffixes: suffixes, HeatmapThreshold: heatmapThreshold}
	if err := report.WritePDFFile(a.fs, a.cfg.PDFPath, results, info, plotImages); err != nil {
		return err
	}
	a.sendStatus(fmt.Sprintf("PDF report successfully generated: %s", a.cfg.PDFPath))
	return nil
}
