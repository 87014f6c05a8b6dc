package storage

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"job-insights/models"
)

func TestXLSXWriterSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "analytics.xlsx")
	w, err := NewXLSXWriter(path)
	require.NoError(t, err)

	tiers, err := ReportSheet("client-spending", models.TierReport{
		Total: 3,
		Tiers: []models.TierStat{
			{Label: "Starter", Min: 1, Max: 1000, Count: 2, Percentage: 66.7, Average: 400},
			{Label: "Enterprise", Min: 100000, Max: math.Inf(1), Count: 1, Percentage: 33.3, Average: 250000},
		},
	})
	require.NoError(t, err)
	require.NoError(t, w.AddSheet(tiers))

	countries, err := ReportSheet("client-countries", models.CategoryReport{
		Items: []models.CategoryCount{{Key: "United States", Count: 4, Percentage: 80}},
	})
	require.NoError(t, err)
	require.NoError(t, w.AddSheet(countries))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"client-spending", "client-countries"}, f.GetSheetList())

	rows, err := f.GetRows("client-spending")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Tier", rows[0][0])
	assert.Equal(t, "Starter", rows[1][0])
	assert.Equal(t, "", rows[2][2], "open tier max is blank")

	cell, err := f.GetCellValue("client-countries", "A2")
	require.NoError(t, err)
	assert.Equal(t, "United States", cell)
}

func TestReportSheetUnknownType(t *testing.T) {
	_, err := ReportSheet("x", 42)
	assert.Error(t, err)
}

func TestSheetNameTruncated(t *testing.T) {
	assert.Len(t, []rune(sheetName("a-very-long-analysis-view-name-indeed")), 31)
}
