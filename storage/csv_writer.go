package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"job-insights/models"
)

// CSVWriter writes raw job records to a CSV file with one column per
// scraped_jobs column. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(models.Columns); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends records to the file.
func (c *CSVWriter) Write(records []*models.JobRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		if r == nil {
			continue
		}
		row, err := recordValues(r)
		if err != nil {
			return fmt.Errorf("csv: encode record %d: %w", r.ID, err)
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// recordValues renders r in models.Columns order. Nulls become empty cells.
func recordValues(r *models.JobRecord) ([]string, error) {
	var skills []byte
	fields := r.Fields(&skills)
	row := make([]string, len(fields))
	for i, f := range fields {
		switch v := f.(type) {
		case *int64:
			row[i] = strconv.FormatInt(*v, 10)
		case *models.NullString:
			row[i] = v.String
			if !v.Valid {
				row[i] = ""
			}
		case **bool:
			if *v != nil {
				row[i] = strconv.FormatBool(**v)
			}
		case **float64:
			if *v != nil {
				row[i] = strconv.FormatFloat(**v, 'f', -1, 64)
			}
		case *[]byte:
			s, err := skillsText(r.Skills)
			if err != nil {
				return nil, err
			}
			row[i] = s
		}
	}
	return row, nil
}

func skillsText(skills any) (string, error) {
	switch v := skills.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.RawMessage:
		return string(v), nil
	}
	b, err := json.Marshal(skills)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
