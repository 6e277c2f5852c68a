package storage

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

const mongoBatchSize = 1000

// mongoListing is the document shape of the listings collection. Missing
// numbers are stored as absent fields.
type mongoListing struct {
	Seq              int        `bson:"seq"`
	Name             string     `bson:"name,omitempty"`
	Street           string     `bson:"street,omitempty"`
	GovernmentArea   string     `bson:"government_area,omitempty"`
	Country          string     `bson:"country"`
	Market           string     `bson:"market"`
	PropertyType     string     `bson:"property_type"`
	RoomType         string     `bson:"room_type"`
	BedType          string     `bson:"bed_type"`
	IsLocationExact  string     `bson:"is_location_exact"`
	HostResponseTime string     `bson:"host_response_time"`
	Price            *float64   `bson:"price,omitempty"`
	Latitude         *float64   `bson:"latitude,omitempty"`
	Longitude        *float64   `bson:"longitude,omitempty"`
	NumberOfReviews  *float64   `bson:"number_of_reviews,omitempty"`
	Availability30   *float64   `bson:"availability_30,omitempty"`
	Availability60   *float64   `bson:"availability_60,omitempty"`
	Availability90   *float64   `bson:"availability_90,omitempty"`
	Availability365  *float64   `bson:"availability_365,omitempty"`
	ReviewScores     *float64   `bson:"review_scores,omitempty"`
	HostResponseRate *float64   `bson:"host_response_rate,omitempty"`
	LastReview       *time.Time `bson:"last_review,omitempty"`
}

// MongoStore keeps a dataset in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	name   string
}

// NewMongoStore connects to uri and pings the server before returning.
func NewMongoStore(ctx context.Context, uri, database, collection string, retry *utils.RetryConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connect: %w", err)
	}

	err = retry.Do(ctx, "mongo-ping", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return client.Ping(pingCtx, nil)
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
		name:   "mongo:" + database + "." + collection,
	}, nil
}

// Write replaces the collection contents with d.
func (ms *MongoStore) Write(ctx context.Context, d *models.Dataset) error {
	if _, err := ms.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("mongo: clear: %w", err)
	}

	for i := 0; i < len(d.Listings); i += mongoBatchSize {
		end := i + mongoBatchSize
		if end > len(d.Listings) {
			end = len(d.Listings)
		}
		docs := make([]interface{}, 0, end-i)
		for j, l := range d.Listings[i:end] {
			docs = append(docs, toMongo(i+j, l))
		}
		if _, err := ms.coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("mongo: insert batch at %d: %w", i, err)
		}
	}
	return nil
}

// Load reads every document in write order.
func (ms *MongoStore) Load(ctx context.Context) (*models.Dataset, error) {
	cur, err := ms.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, &LoadError{Source: ms.name, Err: err}
	}
	defer cur.Close(ctx)

	var docs []mongoListing
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &LoadError{Source: ms.name, Err: err}
	}

	listings := make([]models.Listing, len(docs))
	for i, doc := range docs {
		listings[i] = fromMongo(doc)
	}
	return &models.Dataset{Source: ms.name, LoadedAt: time.Now(), Listings: listings}, nil
}

func (ms *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

func toMongo(seq int, l models.Listing) mongoListing {
	doc := mongoListing{
		Seq:              seq,
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
		Price:            floatPtr(l.Price),
		Latitude:         floatPtr(l.Latitude),
		Longitude:        floatPtr(l.Longitude),
		NumberOfReviews:  floatPtr(l.NumberOfReviews),
		Availability30:   floatPtr(l.Availability30),
		Availability60:   floatPtr(l.Availability60),
		Availability90:   floatPtr(l.Availability90),
		Availability365:  floatPtr(l.Availability365),
		ReviewScores:     floatPtr(l.ReviewScores),
		HostResponseRate: floatPtr(l.HostResponseRate),
	}
	if !l.LastReview.IsZero() {
		t := l.LastReview
		doc.LastReview = &t
	}
	return doc
}

func fromMongo(doc mongoListing) models.Listing {
	l := models.Listing{
		Name:             doc.Name,
		Street:           doc.Street,
		GovernmentArea:   doc.GovernmentArea,
		Country:          category(doc.Country),
		Market:           category(doc.Market),
		PropertyType:     category(doc.PropertyType),
		RoomType:         category(doc.RoomType),
		BedType:          category(doc.BedType),
		IsLocationExact:  category(doc.IsLocationExact),
		HostResponseTime: category(doc.HostResponseTime),
		Price:            derefOrNaN(doc.Price),
		Latitude:         derefOrNaN(doc.Latitude),
		Longitude:        derefOrNaN(doc.Longitude),
		NumberOfReviews:  derefOrNaN(doc.NumberOfReviews),
		Availability30:   derefOrNaN(doc.Availability30),
		Availability60:   derefOrNaN(doc.Availability60),
		Availability90:   derefOrNaN(doc.Availability90),
		Availability365:  derefOrNaN(doc.Availability365),
		ReviewScores:     derefOrNaN(doc.ReviewScores),
		HostResponseRate: derefOrNaN(doc.HostResponseRate),
	}
	if doc.LastReview != nil {
		y, m, d := doc.LastReview.UTC().Date()
		l.SetLastReview(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	}
	return l
}

func floatPtr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func derefOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
