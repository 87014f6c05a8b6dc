package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"job-insights/api"
	"job-insights/config"
	"job-insights/models"
	"job-insights/services"
	"job-insights/storage"
	"job-insights/utils"
)

func main() {
	view := flag.String("view", "all", "Analysis view to print (a view key or \"all\")")
	list := flag.Bool("list", false, "Print the job list instead of analyses")
	search := flag.String("search", "", "Job list search term")
	level := flag.String("level", "all", "Job list experience level filter")
	limit := flag.Int("limit", 50, "Job list size")
	export := flag.Bool("export", false, "Write records to CSV and every analysis to XLSX")
	snapshot := flag.Bool("snapshot", false, "Render every analysis to HTML and PNG")
	serve := flag.Bool("serve", false, "Serve the HTTP API")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := utils.NewLogger()
	cfg := config.Load()
	logger.SetDebug(cfg.Debug || *debug)

	logger.Info("=== Job Insights starting ===")
	logger.Info("Config: store %s | fetch limit: %d | timeout: %v",
		cfg.RecordStore, cfg.FetchLimit, cfg.FetchTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tiers, err := services.LoadTierSet(cfg.TiersPath)
	if err != nil {
		logger.Error("Invalid tier overrides in %s: %v", cfg.TiersPath, err)
		os.Exit(1)
	}
	analyzer := services.NewAnalyzer(logger, tiers, services.NewScorer(services.DefaultScoreTables(), nil))

	store, err := storage.NewRecordStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open record store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	app := &app{cfg: cfg, logger: logger, store: store, analyzer: analyzer}

	switch {
	case *serve:
		srv := api.NewServer(store, analyzer, logger, api.Options{
			Addr:         cfg.HTTPAddr,
			AllowOrigins: cfg.CORSAllowOrigins,
			FetchTimeout: cfg.FetchTimeout,
			FetchLimit:   cfg.FetchLimit,
		})
		err = srv.Run(ctx)
	case *export:
		err = app.export(ctx)
	case *snapshot:
		err = app.snapshot(ctx)
	case *list:
		err = app.printList(ctx, services.JobFilter{Term: *search, ExperienceLevel: *level}, *limit)
	default:
		err = app.printViews(ctx, *view)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	logger   *utils.Logger
	store    storage.RecordStore
	analyzer *services.Analyzer
}

// fetch runs one store query bounded by the configured timeout.
func (a *app) fetch(ctx context.Context, q storage.Query) ([]*models.JobRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	records, err := a.store.Fetch(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	a.logger.Info("Fetched %d records", len(records))
	return records, nil
}

func (a *app) analyticsQuery() storage.Query {
	q := storage.AnalyticsQuery()
	q.Limit = a.cfg.FetchLimit
	return q
}

func (a *app) printViews(ctx context.Context, view string) error {
	views := services.Views()
	if view != "all" {
		views = []string{view}
	}

	records, err := a.fetch(ctx, a.analyticsQuery())
	if err != nil {
		return err
	}

	printer := services.NewInsightService(a.logger, os.Stdout)
	for _, v := range views {
		result, err := a.analyzer.Analyze(v, records)
		if err != nil {
			return fmt.Errorf("%w (known views: %v)", err, services.Views())
		}
		if err := printer.Print(v, result); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printList(ctx context.Context, filter services.JobFilter, limit int) error {
	records, err := a.fetch(ctx, storage.ListQuery(storage.MaxFetchLimit))
	if err != nil {
		return err
	}
	rows := a.analyzer.ListJobs(records, filter, limit)
	return services.NewInsightService(a.logger, os.Stdout).PrintJobs(rows)
}
