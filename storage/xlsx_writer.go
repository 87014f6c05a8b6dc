package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"job-insights/models"
)

// Sheet is one worksheet of an analytics workbook.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// XLSXWriter collects analysis sheets and saves them as one workbook.
// It is safe for concurrent use.
type XLSXWriter struct {
	mu     sync.Mutex
	path   string
	file   *excelize.File
	sheets int
}

func NewXLSXWriter(path string) (*XLSXWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("xlsx: create output dir: %w", err)
	}
	return &XLSXWriter{path: path, file: excelize.NewFile()}, nil
}

// AddSheet writes s as a new worksheet. The first sheet replaces the
// workbook's default "Sheet1".
func (x *XLSXWriter) AddSheet(s Sheet) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	name := sheetName(s.Name)
	if x.sheets == 0 {
		if err := x.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("xlsx: rename sheet: %w", err)
		}
	} else if _, err := x.file.NewSheet(name); err != nil {
		return fmt.Errorf("xlsx: new sheet %q: %w", name, err)
	}
	x.sheets++

	if err := x.setRow(name, 1, toAny(s.Header)); err != nil {
		return err
	}
	for i, row := range s.Rows {
		if err := x.setRow(name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func (x *XLSXWriter) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx: cell name: %w", err)
	}
	if err := x.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx: write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// Close saves the workbook.
func (x *XLSXWriter) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.file.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return x.file.Close()
}

func sheetName(name string) string {
	r := []rune(name)
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// ReportSheet flattens an analysis result into a worksheet.
func ReportSheet(name string, result any) (Sheet, error) {
	s := Sheet{Name: name}
	switch r := result.(type) {
	case models.TierReport:
		s.Header = []string{"Tier", "Min", "Max", "Count", "Percentage", "Average"}
		s.Rows = tierRows(r.Tiers, "")
	case models.BudgetReport:
		s.Header = []string{"Type", "Tier", "Min", "Max", "Count", "Percentage", "Average"}
		s.Rows = append(tierRows(r.Hourly.Tiers, "hourly"), tierRows(r.Fixed.Tiers, "fixed")...)
	case models.CategoryReport:
		s.Header = []string{"Name", "Count", "Percentage"}
		s.Rows = categoryRows(r.Items)
	case models.TimelineReport:
		s.Header = []string{"Date", "Jobs"}
		for _, d := range r.Days {
			s.Rows = append(s.Rows, []any{d.Date, d.Count})
		}
	case models.HeatmapReport:
		s.Header = []string{"Day"}
		for h := 0; h < 24; h++ {
			s.Header = append(s.Header, fmt.Sprintf("%02d", h))
		}
		days := [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
		for d, cells := range r.Grid {
			row := []any{days[d]}
			for _, c := range cells {
				row = append(row, c)
			}
			s.Rows = append(s.Rows, row)
		}
	case models.ClientActivityReport:
		s.Header = []string{"Job ID", "Location", "Jobs Posted", "Total Spent", "Category"}
		for _, p := range r.Points {
			s.Rows = append(s.Rows, []any{p.JobID, p.Location, p.JobsPosted, p.TotalSpent, p.Category})
		}
	case models.OpportunityReport:
		s.Header = []string{"Job ID", "Title", "Budget", "Opportunity Value", "Success Probability", "Competition", "Quality Tier"}
		for _, j := range r.Jobs {
			s.Rows = append(s.Rows, []any{j.JobID, j.Title, j.Budget, j.Score.OpportunityValue,
				j.Score.SuccessProbability, j.Score.CompetitionLevel, j.Score.QualityTier})
		}
	default:
		return Sheet{}, fmt.Errorf("xlsx: no sheet layout for %T", result)
	}
	return s, nil
}

func tierRows(tiers []models.TierStat, prefix string) [][]any {
	rows := make([][]any, 0, len(tiers))
	for _, t := range tiers {
		var max any = t.Max
		if t.Open() {
			max = ""
		}
		row := []any{t.Label, t.Min, max, t.Count, t.Percentage, t.Average}
		if prefix != "" {
			row = append([]any{prefix}, row...)
		}
		rows = append(rows, row)
	}
	return rows
}

func categoryRows(items []models.CategoryCount) [][]any {
	rows := make([][]any, 0, len(items))
	for _, c := range items {
		rows = append(rows, []any{c.Key, c.Count, c.Percentage})
	}
	return rows
}
