package storage

import (
	"context"
	"fmt"

	"job-insights/config"
	"job-insights/utils"
)

// NewRecordStore builds the backend selected by cfg.RecordStore.
func NewRecordStore(ctx context.Context, cfg *config.Config, logger *utils.Logger) (RecordStore, error) {
	switch cfg.RecordStore {
	case config.StoreREST, "":
		return NewRESTStore(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseTable, logger)
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.DSN(), cfg.SupabaseTable, cfg.MaxRetries, logger)
	case config.StoreCSV:
		return NewCSVStore(cfg.CSVInputPath, logger)
	}
	return nil, &StoreError{Code: CodeConfig, Message: fmt.Sprintf("unknown RECORD_STORE %q", cfg.RecordStore)}
}

var (
	_ RecordStore  = (*RESTStore)(nil)
	_ RecordStore  = (*PostgresStore)(nil)
	_ RecordStore  = (*CSVStore)(nil)
	_ RecordWriter = (*CSVWriter)(nil)
)
