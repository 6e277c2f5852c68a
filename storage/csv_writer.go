package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"airbnb-dashboard/models"
)

// CSVWriter writes dashboard view results to a CSV file, one block per chart.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
	wrote  bool
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteView writes each chart as a "# view/chart-id" marker row, its header and its
// data rows, with a blank row between charts.
func (c *CSVWriter) WriteView(v *models.ViewResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, ch := range v.Charts {
		if c.wrote {
			if err := c.writer.Write([]string{}); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
		}
		if err := c.writer.Write([]string{"# " + v.View + "/" + ch.ID}); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
		c.wrote = true
		for _, row := range Tabulate(ch) {
			rec := make([]string, len(row))
			for j, v := range row {
				rec[j] = formatCell(v)
			}
			if err := c.writer.Write(rec); err != nil {
				return fmt.Errorf("csv: write row: %w", err)
			}
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
