package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-insights/models"
	"job-insights/utils"
)

func sampleRecords() []*models.JobRecord {
	verified := true
	rating := 4.5
	return []*models.JobRecord{
		{
			ID: 1, Title: models.Str("Older job"), CreatedAt: models.Str("2024-03-01T10:00:00Z"),
			BudgetAmount: models.Str("$500"), ClientLocation: models.Str("Germany"),
			Skills: []any{"Go", "Docker"}, PaymentVerified: &verified, ClientRating: &rating,
		},
		{
			ID: 2, Title: models.Str("Newer job, with comma"), CreatedAt: models.Str("2024-03-05T10:00:00Z"),
			BudgetAmount: models.Str("$30.00 - $50.00"), ClientLocation: models.Str("India"),
			Skills: "React, Node.js",
		},
		{
			ID: 3, Title: models.Str("No budget"), CreatedAt: models.Str("2024-03-04T10:00:00Z"),
			ClientLocation: models.Str("France"),
		},
	}
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "jobs.csv")
	w, err := NewCSVWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleRecords()))
	require.NoError(t, w.Close())
	return path
}

func TestCSVRoundTrip(t *testing.T) {
	path := writeSample(t)
	store, err := NewCSVStore(path, utils.Discard())
	require.NoError(t, err)

	records, err := store.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, records, 3)

	first := records[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Older job", first.Title.Text())
	require.NotNil(t, first.PaymentVerified)
	assert.True(t, *first.PaymentVerified)
	require.NotNil(t, first.ClientRating)
	assert.Equal(t, 4.5, *first.ClientRating)

	raw, ok := first.Skills.(json.RawMessage)
	require.True(t, ok, "skills written as JSON should read back as JSON, got %T", first.Skills)
	assert.JSONEq(t, `["Go","Docker"]`, string(raw))

	assert.Equal(t, "Newer job, with comma", records[1].Title.Text())
	assert.Equal(t, "React, Node.js", records[1].Skills)

	assert.False(t, records[2].BudgetAmount.Valid)
	assert.Nil(t, records[2].ClientRating)
}

func TestCSVStoreAnalyticsQuery(t *testing.T) {
	store, err := NewCSVStore(writeSample(t), utils.Discard())
	require.NoError(t, err)

	records, err := store.Fetch(context.Background(), AnalyticsQuery())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID, "newest first")
	assert.Equal(t, int64(1), records[1].ID)
}

func TestCSVStoreLimit(t *testing.T) {
	store, err := NewCSVStore(writeSample(t), utils.Discard())
	require.NoError(t, err)

	records, err := store.Fetch(context.Background(), ListQuery(1))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)
}

func TestCSVStoreMissingFile(t *testing.T) {
	store, err := NewCSVStore(filepath.Join(t.TempDir(), "absent.csv"), utils.Discard())
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), Query{})
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeConnect, se.Code)
}

func TestReadRecordsCSVPartialHeader(t *testing.T) {
	in := "Title,client_location,extra\nDesigner,Spain,ignored\n"
	records, err := ReadRecordsCSV(context.Background(), strings.NewReader(in), utils.Discard())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Designer", records[0].Title.Text())
	assert.Equal(t, "Spain", records[0].ClientLocation.Text())
	assert.False(t, records[0].Description.Valid)
}

func TestReadRecordsCSVBadCellsStayEmpty(t *testing.T) {
	in := "id,title,client_rating,payment_method_verified\n" +
		"1,Go backend,4.8,true\n" +
		"x2,Logo design,N/A,maybe\n"
	records, err := ReadRecordsCSV(context.Background(), strings.NewReader(in), utils.Discard())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].ClientRating)
	assert.Equal(t, 4.8, *records[0].ClientRating)

	bad := records[1]
	assert.Equal(t, "Logo design", bad.Title.Text())
	assert.Nil(t, bad.ClientRating)
	assert.Nil(t, bad.PaymentVerified)
	assert.Zero(t, bad.ID)
}

func TestReadRecordsCSVMalformedQuoting(t *testing.T) {
	in := "id,title\n1,bare\"quote\n"
	_, err := ReadRecordsCSV(context.Background(), strings.NewReader(in), utils.Discard())
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeDecode, se.Code)
}

func TestReadRecordsCSVEmpty(t *testing.T) {
	records, err := ReadRecordsCSV(context.Background(), strings.NewReader(""), utils.Discard())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
