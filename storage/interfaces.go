package storage

import (
	"context"

	"airbnb-dashboard/models"
)

// DatasetSource is the interface any listing backend must satisfy to feed the
// dashboard.
type DatasetSource interface {
	Load(ctx context.Context) (*models.Dataset, error)
	Close() error
}

// DatasetWriter persists a whole dataset, replacing what was stored before.
type DatasetWriter interface {
	Write(ctx context.Context, d *models.Dataset) error
	Close() error
}

// ViewWriter persists dashboard view results for offline use.
type ViewWriter interface {
	WriteView(v *models.ViewResult) error
	Close() error
}

var (
	_ DatasetSource = (*CSVSource)(nil)
	_ DatasetSource = (*PostgresStore)(nil)
	_ DatasetWriter = (*PostgresStore)(nil)
	_ DatasetSource = (*MongoStore)(nil)
	_ DatasetWriter = (*MongoStore)(nil)
	_ ViewWriter    = (*CSVWriter)(nil)
	_ ViewWriter    = (*XLSXWriter)(nil)
)
