package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const pgBatchSize = 500

// pgListing is the row shape of the listings table.
type pgListing struct {
	ID               int64           `db:"id"`
	Name             string          `db:"name"`
	Street           string          `db:"street"`
	GovernmentArea   string          `db:"government_area"`
	Country          string          `db:"country"`
	Market           string          `db:"market"`
	PropertyType     string          `db:"property_type"`
	RoomType         string          `db:"room_type"`
	BedType          string          `db:"bed_type"`
	IsLocationExact  string          `db:"is_location_exact"`
	HostResponseTime string          `db:"host_response_time"`
	Price            sql.NullFloat64 `db:"price"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	NumberOfReviews  sql.NullFloat64 `db:"number_of_reviews"`
	Availability30   sql.NullFloat64 `db:"availability_30"`
	Availability60   sql.NullFloat64 `db:"availability_60"`
	Availability90   sql.NullFloat64 `db:"availability_90"`
	Availability365  sql.NullFloat64 `db:"availability_365"`
	ReviewScores     sql.NullFloat64 `db:"review_scores"`
	HostResponseRate sql.NullFloat64 `db:"host_response_rate"`
	LastReview       sql.NullTime    `db:"last_review"`
}

const pgInsert = `
	INSERT INTO listings (
		name, street, government_area, country, market, property_type, room_type,
		bed_type, is_location_exact, host_response_time, price, latitude, longitude,
		number_of_reviews, availability_30, availability_60, availability_90,
		availability_365, review_scores, host_response_rate, last_review
	) VALUES (
		:name, :street, :government_area, :country, :market, :property_type, :room_type,
		:bed_type, :is_location_exact, :host_response_time, :price, :latitude, :longitude,
		:number_of_reviews, :availability_30, :availability_60, :availability_90,
		:availability_365, :review_scores, :host_response_rate, :last_review
	)`

// PostgresStore keeps a dataset in the PostgreSQL listings table.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it to accept
// pings, runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres-ping", db.PingContext); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS listings (
			id                 SERIAL PRIMARY KEY,
			name               TEXT NOT NULL DEFAULT '',
			street             TEXT NOT NULL DEFAULT '',
			government_area    TEXT NOT NULL DEFAULT '',
			country            TEXT NOT NULL,
			market             TEXT NOT NULL,
			property_type      TEXT NOT NULL,
			room_type          TEXT NOT NULL,
			bed_type           TEXT NOT NULL,
			is_location_exact  TEXT NOT NULL,
			host_response_time TEXT NOT NULL,
			price              DOUBLE PRECISION,
			latitude           DOUBLE PRECISION,
			longitude          DOUBLE PRECISION,
			number_of_reviews  DOUBLE PRECISION,
			availability_30    DOUBLE PRECISION,
			availability_60    DOUBLE PRECISION,
			availability_90    DOUBLE PRECISION,
			availability_365   DOUBLE PRECISION,
			review_scores      DOUBLE PRECISION,
			host_response_rate DOUBLE PRECISION,
			last_review        DATE
		);

		CREATE INDEX IF NOT EXISTS idx_listings_country   ON listings(country);
		CREATE INDEX IF NOT EXISTS idx_listings_room_type ON listings(room_type);
		CREATE INDEX IF NOT EXISTS idx_listings_market    ON listings(market);
	`)
	return err
}

// Write replaces the table contents with d inside one transaction.
func (ps *PostgresStore) Write(ctx context.Context, d *models.Dataset) error {
	tx, err := ps.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM listings"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	for i := 0; i < len(d.Listings); i += pgBatchSize {
		end := i + pgBatchSize
		if end > len(d.Listings) {
			end = len(d.Listings)
		}
		batch := make([]pgListing, 0, end-i)
		for _, l := range d.Listings[i:end] {
			batch = append(batch, toPG(l))
		}
		if _, err := tx.NamedExecContext(ctx, pgInsert, batch); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// Load reads every stored listing in insertion order.
func (ps *PostgresStore) Load(ctx context.Context) (*models.Dataset, error) {
	var rows []pgListing
	if err := ps.db.SelectContext(ctx, &rows, `SELECT * FROM listings ORDER BY id`); err != nil {
		return nil, &LoadError{Source: "postgres:listings", Err: err}
	}

	listings := make([]models.Listing, len(rows))
	for i, r := range rows {
		listings[i] = fromPG(r)
	}
	return &models.Dataset{Source: "postgres:listings", LoadedAt: time.Now(), Listings: listings}, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

func toPG(l models.Listing) pgListing {
	r := pgListing{
		Name:             l.Name,
		Street:           l.Street,
		GovernmentArea:   l.GovernmentArea,
		Country:          l.Country,
		Market:           l.Market,
		PropertyType:     l.PropertyType,
		RoomType:         l.RoomType,
		BedType:          l.BedType,
		IsLocationExact:  l.IsLocationExact,
		HostResponseTime: l.HostResponseTime,
		Price:            nullFloat(l.Price),
		Latitude:         nullFloat(l.Latitude),
		Longitude:        nullFloat(l.Longitude),
		NumberOfReviews:  nullFloat(l.NumberOfReviews),
		Availability30:   nullFloat(l.Availability30),
		Availability60:   nullFloat(l.Availability60),
		Availability90:   nullFloat(l.Availability90),
		Availability365:  nullFloat(l.Availability365),
		ReviewScores:     nullFloat(l.ReviewScores),
		HostResponseRate: nullFloat(l.HostResponseRate),
	}
	if !l.LastReview.IsZero() {
		r.LastReview = sql.NullTime{Time: l.LastReview, Valid: true}
	}
	return r
}

func fromPG(r pgListing) models.Listing {
	l := models.Listing{
		Name:             r.Name,
		Street:           r.Street,
		GovernmentArea:   r.GovernmentArea,
		Country:          r.Country,
		Market:           r.Market,
		PropertyType:     r.PropertyType,
		RoomType:         r.RoomType,
		BedType:          r.BedType,
		IsLocationExact:  r.IsLocationExact,
		HostResponseTime: r.HostResponseTime,
		Price:            floatOrNaN(r.Price),
		Latitude:         floatOrNaN(r.Latitude),
		Longitude:        floatOrNaN(r.Longitude),
		NumberOfReviews:  floatOrNaN(r.NumberOfReviews),
		Availability30:   floatOrNaN(r.Availability30),
		Availability60:   floatOrNaN(r.Availability60),
		Availability90:   floatOrNaN(r.Availability90),
		Availability365:  floatOrNaN(r.Availability365),
		ReviewScores:     floatOrNaN(r.ReviewScores),
		HostResponseRate: floatOrNaN(r.HostResponseRate),
	}
	if r.LastReview.Valid {
		y, m, d := r.LastReview.Time.Date()
		l.SetLastReview(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	return l
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
