package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"job-insights/models"
	"job-insights/utils"
)

// CSVStore serves records from a CSV file written by CSVWriter (or any CSV
// whose header names scraped_jobs columns). The file is re-read on every
// Fetch.
type CSVStore struct {
	path   string
	logger *utils.Logger
}

func NewCSVStore(path string, logger *utils.Logger) (*CSVStore, error) {
	if path == "" {
		return nil, &StoreError{Code: CodeConfig, Message: "CSV_INPUT_PATH is required"}
	}
	return &CSVStore{path: path, logger: logger}, nil
}

func (s *CSVStore) Fetch(ctx context.Context, q Query) ([]*models.JobRecord, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &StoreError{Code: CodeConnect, Message: fmt.Sprintf("open %s", s.path), Err: err}
	}
	defer f.Close()

	records, err := ReadRecordsCSV(ctx, f, s.logger)
	if err != nil {
		return nil, err
	}

	records = filterRequired(records, q.RequireFields)
	if q.NewestFirst {
		// ISO-8601 timestamps in one format order lexically.
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].CreatedAt.Text() > records[j].CreatedAt.Text()
		})
	}
	if n := q.EffectiveLimit(); len(records) > n {
		records = records[:n]
	}
	s.logger.Debug("[csv] read %d records from %s", len(records), s.path)
	return records, nil
}

func (s *CSVStore) Close() error {
	return nil
}

// ReadRecordsCSV decodes every row of r. Columns are matched by header
// name; unknown columns are ignored and missing ones stay null. A typed cell
// that does not parse is left null and logged; only malformed CSV fails.
func ReadRecordsCSV(ctx context.Context, r io.Reader, logger *utils.Logger) ([]*models.JobRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []*models.JobRecord{}, nil
	}
	if err != nil {
		return nil, &StoreError{Code: CodeDecode, Message: "read csv header", Err: err}
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	records := []*models.JobRecord{}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, &StoreError{Code: CodeQuery, Message: "read cancelled", Err: err}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &StoreError{Code: CodeDecode, Message: fmt.Sprintf("read csv line %d", line), Err: err}
		}
		rec, bad := decodeRow(row, index)
		for _, err := range bad {
			logger.Debug("[csv] line %d: %v (left empty)", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// decodeRow never fails; cells that do not parse are reported in bad.
func decodeRow(row []string, index map[string]int) (r *models.JobRecord, bad []error) {
	r = &models.JobRecord{}
	var skills []byte
	fields := r.Fields(&skills)
	for i, col := range models.Columns {
		pos, ok := index[col]
		if !ok || pos >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[pos])
		if val == "" {
			continue
		}
		switch dst := fields[i].(type) {
		case *int64:
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				bad = append(bad, fmt.Errorf("%s: %w", col, err))
				continue
			}
			*dst = n
		case *models.NullString:
			*dst = models.Str(row[pos])
		case **bool:
			b, err := strconv.ParseBool(val)
			if err != nil {
				bad = append(bad, fmt.Errorf("%s: %w", col, err))
				continue
			}
			*dst = &b
		case **float64:
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				bad = append(bad, fmt.Errorf("%s: %w", col, err))
				continue
			}
			*dst = &f
		case *[]byte:
			r.Skills = skillsValue([]byte(val))
		}
	}
	return r, bad
}

func filterRequired(records []*models.JobRecord, required []string) []*models.JobRecord {
	if len(required) == 0 {
		return records
	}
	out := records[:0]
	for _, r := range records {
		if hasAll(r, required) {
			out = append(out, r)
		}
	}
	return out
}

func hasAll(r *models.JobRecord, required []string) bool {
	row, err := recordValues(r)
	if err != nil {
		return false
	}
	for _, col := range required {
		for i, c := range models.Columns {
			if c == col && row[i] == "" {
				return false
			}
		}
	}
	return true
}
