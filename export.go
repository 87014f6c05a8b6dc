package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"

	"job-insights/render"
	"job-insights/services"
	"job-insights/storage"
)

// export writes the fetched records to CSV and every analysis to one XLSX
// workbook under EXPORT_DIR.
func (a *app) export(ctx context.Context) error {
	records, err := a.fetch(ctx, a.analyticsQuery())
	if err != nil {
		return err
	}

	csvPath := filepath.Join(a.cfg.ExportDir, "scraped_jobs.csv")
	csvWriter, err := storage.NewCSVWriter(csvPath)
	if err != nil {
		return err
	}
	if err := csvWriter.Write(records); err != nil {
		_ = csvWriter.Close()
		return err
	}
	if err := csvWriter.Close(); err != nil {
		return fmt.Errorf("csv: close: %w", err)
	}
	a.logger.Info("Raw records saved to %s", csvPath)

	xlsxPath := filepath.Join(a.cfg.ExportDir, "analytics.xlsx")
	book, err := storage.NewXLSXWriter(xlsxPath)
	if err != nil {
		return err
	}

	views := services.Views()
	bar := pb.StartNew(len(views))
	for _, v := range views {
		result, err := a.analyzer.Analyze(v, records)
		if err != nil {
			bar.Finish()
			return err
		}
		sheet, err := storage.ReportSheet(v, result)
		if err != nil {
			bar.Finish()
			return err
		}
		if err := book.AddSheet(sheet); err != nil {
			bar.Finish()
			return err
		}
		bar.Increment()
	}
	bar.Finish()

	if err := book.Close(); err != nil {
		return err
	}
	a.logger.Info("Analytics workbook saved to %s", xlsxPath)
	return nil
}

// snapshot renders every analysis to HTML and screenshots it to PNG.
func (a *app) snapshot(ctx context.Context) error {
	records, err := a.fetch(ctx, a.analyticsQuery())
	if err != nil {
		return err
	}

	now := time.Now()
	views := services.Views()
	pages := make([]render.Page, 0, len(views))
	for _, v := range views {
		result, err := a.analyzer.Analyze(v, records)
		if err != nil {
			return err
		}
		page, err := render.RenderPage(v, services.ViewTitle(v), result, now)
		if err != nil {
			return err
		}
		pages = append(pages, page)
	}

	dir := filepath.Join(a.cfg.ExportDir, "snapshots")
	shooter := render.NewSnapshotter(a.cfg.ChromeBin, a.cfg.SnapshotConcurrency, a.cfg.SnapshotRateLimitMs, a.logger)
	paths, err := shooter.Snapshot(ctx, pages, dir)
	a.logger.Info("Wrote %d of %d snapshots to %s", len(paths), len(pages), dir)
	return err
}
