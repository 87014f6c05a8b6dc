package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"job-insights/models"
	"job-insights/utils"
)

// PostgresStore reads job records directly from PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	table string
	log   *utils.Logger
}

// NewPostgresStore opens a connection to PostgreSQL and returns a ready-to-use
// PostgresStore. The ping is retried; fetches are not.
func NewPostgresStore(ctx context.Context, dsn, table string, maxRetries int, logger *utils.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &StoreError{Code: CodeConfig, Message: "postgres: open", Err: err}
	}

	retry := &utils.RetryConfig{MaxAttempts: maxRetries, BaseDelay: time.Second, Logger: logger}
	if err := retry.Do(ctx, "postgres ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, &StoreError{Code: CodeConnect, Message: "postgres: ping", Err: err}
	}

	if table == "" {
		table = "scraped_jobs"
	}
	return newPostgresStore(db, table, logger), nil
}

func newPostgresStore(db *sql.DB, table string, logger *utils.Logger) *PostgresStore {
	return &PostgresStore{db: db, table: table, log: logger}
}

// Fetch runs q as a single SELECT.
func (ps *PostgresStore) Fetch(ctx context.Context, q Query) ([]*models.JobRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	query := buildSelect(ps.table, q)

	rows, err := ps.db.QueryContext(ctx, query, q.EffectiveLimit())
	if err != nil {
		return nil, &StoreError{Code: CodeQuery, Message: "postgres: fetch records", Err: err}
	}
	defer rows.Close()

	records := []*models.JobRecord{}
	for rows.Next() {
		r := &models.JobRecord{}
		var skills []byte
		if err := rows.Scan(r.Fields(&skills)...); err != nil {
			return nil, &StoreError{Code: CodeDecode, Message: "postgres: scan row", Err: err}
		}
		r.Skills = skillsValue(skills)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Code: CodeQuery, Message: "postgres: iterate rows", Err: err}
	}
	ps.log.Debug("[postgres] fetched %d records from %s", len(records), ps.table)
	return records, nil
}

// buildSelect renders q as SQL with the limit as $1. Column names come from
// models.Columns, which Query.validate enforces.
func buildSelect(table string, q Query) string {
	cols := make([]string, len(models.Columns))
	for i, c := range models.Columns {
		cols[i] = pq.QuoteIdentifier(c)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), pq.QuoteIdentifier(table))
	for i, f := range q.RequireFields {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(pq.QuoteIdentifier(f) + " IS NOT NULL")
	}
	if q.NewestFirst {
		b.WriteString(` ORDER BY "created_at" DESC`)
	}
	b.WriteString(" LIMIT $1")
	return b.String()
}

// skillsValue turns the raw skills column into something ParseSkills reads:
// jsonb stays JSON, text[] becomes []string, anything else is text.
func skillsValue(raw []byte) any {
	if raw == nil {
		return nil
	}
	if json.Valid(raw) {
		return json.RawMessage(append([]byte(nil), raw...))
	}
	if len(raw) > 0 && raw[0] == '{' {
		var arr pq.StringArray
		if err := arr.Scan(raw); err == nil {
			return []string(arr)
		}
	}
	return string(raw)
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
