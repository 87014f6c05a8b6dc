package storage

import (
	"context"
	"fmt"

	"job-insights/models"
)

// MaxFetchLimit caps a single fetch.
const MaxFetchLimit = 1000

// RecordStore is the interface any job record backend must satisfy.
type RecordStore interface {
	Fetch(ctx context.Context, q Query) ([]*models.JobRecord, error)
	Close() error
}

// RecordWriter persists fetched records, e.g. for offline analysis.
type RecordWriter interface {
	Write(records []*models.JobRecord) error
	Close() error
}

// Query selects records from a store.
type Query struct {
	Limit         int
	RequireFields []string // columns that must be non-null
	NewestFirst   bool
}

// AnalyticsQuery is the fetch used by every analysis view.
func AnalyticsQuery() Query {
	return Query{
		Limit:         MaxFetchLimit,
		RequireFields: []string{"title", "client_location", "budget_amount"},
		NewestFirst:   true,
	}
}

// ListQuery is the fetch used by the job list.
func ListQuery(n int) Query {
	return Query{Limit: n, NewestFirst: true}
}

// EffectiveLimit clamps Limit to 1..MaxFetchLimit; zero means the maximum.
func (q Query) EffectiveLimit() int {
	switch {
	case q.Limit <= 0 || q.Limit > MaxFetchLimit:
		return MaxFetchLimit
	default:
		return q.Limit
	}
}

func (q Query) validate() error {
	for _, f := range q.RequireFields {
		if !knownColumn(f) {
			return &StoreError{Code: CodeConfig, Message: fmt.Sprintf("unknown column %q", f)}
		}
	}
	return nil
}

func knownColumn(name string) bool {
	for _, c := range models.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Error codes carried by StoreError. HTTP failures use "http_<status>".
const (
	CodeConnect = "connect"
	CodeQuery   = "query"
	CodeDecode  = "decode"
	CodeConfig  = "config"
)

// StoreError is a failed fetch. Message is suitable for display.
type StoreError struct {
	Code    string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("store %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("store %s: %s", e.Code, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
