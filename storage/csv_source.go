package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"airbnb-dashboard/models"
)

// CSVSource loads listings from a comma-separated file with a header row.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a CSVSource for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads the whole file into a Dataset. The file handle is released
// before Load returns, on every path.
func (s *CSVSource) Load(ctx context.Context) (*models.Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, &LoadError{Source: s.Path, Err: err}
	}
	defer f.Close()

	listings, err := readListings(ctx, s.Path, f)
	if err != nil {
		return nil, err
	}
	return &models.Dataset{Source: s.Path, LoadedAt: time.Now(), Listings: listings}, nil
}

// Close is a no-op; Load holds the file only while reading.
func (s *CSVSource) Close() error { return nil }

func readListings(ctx context.Context, source string, r io.Reader) ([]models.Listing, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: source, Err: fmt.Errorf("empty file: %w", ErrMissingColumns)}
		}
		return nil, &LoadError{Source: source, Line: 1, Err: err}
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, col := range models.RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &LoadError{
			Source: source,
			Line:   1,
			Err:    fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")),
		}
	}

	var listings []models.Listing
	for line := 2; ; line++ {
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, &LoadError{Source: source, Line: line, Err: err}
			}
		}

		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Source: source, Line: line, Err: err}
		}

		l, err := listingFromCells(func(column string) string {
			i, ok := idx[column]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		})
		if err != nil {
			le := &LoadError{Source: source, Line: line, Err: err}
			var ce *cellError
			if errors.As(err, &ce) {
				le.Column, le.Err = ce.column, ce.err
			}
			return nil, le
		}
		listings = append(listings, l)
	}
	return listings, nil
}
