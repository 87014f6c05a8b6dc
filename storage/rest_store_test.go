package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-insights/utils"
)

const sampleRows = `[
  {"id": 7, "title": "Go developer", "budget_amount": "$28.00 - $56.00", "budget_type": "Hourly",
   "client_location": "United States", "skills": ["Go", "PostgreSQL"], "client_rating": 4.9,
   "payment_method_verified": true, "proposals_count": 15, "created_at": "2024-03-01T10:00:00+00:00"},
  {"id": 8, "title": "Logo", "budget_amount": null, "client_location": "Canada", "skills": null,
   "client_rating": null, "payment_method_verified": null}
]`

func TestRESTStoreFetch(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleRows))
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "anon-key", "", utils.Discard())
	require.NoError(t, err)

	records, err := store.Fetch(context.Background(), AnalyticsQuery())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "/rest/v1/scraped_jobs", gotPath)
	assert.Contains(t, gotQuery, "title=not.is.null")
	assert.Contains(t, gotQuery, "client_location=not.is.null")
	assert.Contains(t, gotQuery, "budget_amount=not.is.null")
	assert.Contains(t, gotQuery, "order=created_at.desc")
	assert.Contains(t, gotQuery, "limit=1000")
	assert.Equal(t, "anon-key", gotKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)

	first := records[0]
	assert.Equal(t, int64(7), first.ID)
	assert.Equal(t, "Go developer", first.Title.Text())
	assert.Equal(t, "15", first.ProposalsCount.Text())
	require.NotNil(t, first.ClientRating)
	assert.InDelta(t, 4.9, *first.ClientRating, 1e-9)
	require.NotNil(t, first.PaymentVerified)
	assert.True(t, *first.PaymentVerified)

	second := records[1]
	assert.False(t, second.BudgetAmount.Valid)
	assert.Nil(t, second.Skills)
	assert.Nil(t, second.ClientRating)
}

func TestRESTStoreErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key","code":"PGRST301"}`))
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "bad", "scraped_jobs", utils.Discard())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), ListQuery(10))
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "http_401", se.Code)
	assert.Equal(t, "Invalid API key", se.Message)
}

func TestRESTStoreNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "k", "", utils.Discard())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), ListQuery(10))
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "http_502", se.Code)
	assert.Equal(t, "Bad Gateway", se.Message)
}

func TestRESTStoreSingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "k", "", utils.Discard())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), AnalyticsQuery())
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRESTStoreDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "k", "", utils.Discard())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), AnalyticsQuery())
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeDecode, se.Code)
}

func TestRESTStoreContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	store, err := NewRESTStore(srv.URL, "k", "", utils.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = store.Fetch(ctx, AnalyticsQuery())
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeConnect, se.Code)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewRESTStoreRequiresCredentials(t *testing.T) {
	_, err := NewRESTStore("", "", "", utils.Discard())
	var se *StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, CodeConfig, se.Code)
}

func TestQueryLimitClamp(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{0, 1000},
		{-5, 1000},
		{1, 1},
		{50, 50},
		{1000, 1000},
		{5000, 1000},
	}
	for _, tt := range tests {
		if got := ListQuery(tt.limit).EffectiveLimit(); got != tt.want {
			t.Errorf("ListQuery(%d).EffectiveLimit() = %d; want %d", tt.limit, got, tt.want)
		}
	}
}

func TestQueryRejectsUnknownColumn(t *testing.T) {
	q := Query{RequireFields: []string{"title; drop table"}}
	var se *StoreError
	require.True(t, errors.As(q.validate(), &se))
	assert.Equal(t, CodeConfig, se.Code)
}
