package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"job-insights/models"
	"job-insights/utils"
)

// RESTStore reads job records from a Supabase (PostgREST) table over HTTPS.
// Each Fetch is a single request; failures are returned, never retried.
type RESTStore struct {
	baseURL string
	apiKey  string
	table   string
	client  *http.Client
	logger  *utils.Logger
}

// NewRESTStore returns a RESTStore for {baseURL}/rest/v1/{table}.
func NewRESTStore(baseURL, apiKey, table string, logger *utils.Logger) (*RESTStore, error) {
	if baseURL == "" || apiKey == "" {
		return nil, &StoreError{Code: CodeConfig, Message: "SUPABASE_URL and SUPABASE_ANON_KEY are required"}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, &StoreError{Code: CodeConfig, Message: "invalid SUPABASE_URL", Err: err}
	}
	if table == "" {
		table = "scraped_jobs"
	}
	return &RESTStore{
		baseURL: baseURL,
		apiKey:  apiKey,
		table:   table,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}, nil
}

// Fetch issues one GET for q and decodes the JSON array response.
func (s *RESTStore) Fetch(ctx context.Context, q Query) ([]*models.JobRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	endpoint := s.endpoint(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &StoreError{Code: CodeConfig, Message: "build request", Err: err}
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &StoreError{Code: CodeConnect, Message: "record store unreachable", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &StoreError{Code: CodeConnect, Message: "read response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode, body)
	}

	var records []*models.JobRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &StoreError{Code: CodeDecode, Message: "decode records", Err: err}
	}
	records = compact(records)
	s.logger.Debug("[rest] fetched %d records from %s in %v", len(records), s.table, time.Since(start))
	return records, nil
}

func (s *RESTStore) endpoint(q Query) string {
	v := url.Values{}
	v.Set("select", "*")
	for _, f := range q.RequireFields {
		v.Set(f, "not.is.null")
	}
	if q.NewestFirst {
		v.Set("order", "created_at.desc")
	}
	v.Set("limit", strconv.Itoa(q.EffectiveLimit()))
	return fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, url.PathEscape(s.table), v.Encode())
}

// Close is a no-op; the HTTP client holds no dedicated resources.
func (s *RESTStore) Close() error {
	return nil
}

type restErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Hint    string `json:"hint"`
}

func httpError(status int, body []byte) *StoreError {
	e := &StoreError{
		Code:    "http_" + strconv.Itoa(status),
		Message: http.StatusText(status),
	}
	var parsed restErrorBody
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		e.Message = parsed.Message
		if parsed.Code != "" {
			e.Err = errors.New("postgrest " + parsed.Code)
		}
	}
	return e
}

func compact(records []*models.JobRecord) []*models.JobRecord {
	out := records[:0]
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	if out == nil {
		return []*models.JobRecord{}
	}
	return out
}
