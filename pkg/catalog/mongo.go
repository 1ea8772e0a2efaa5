package catalog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Default MongoDB locations.
const (
	DefaultDatabase   = "starscape"
	DefaultCollection = "stars"
)

// insertBatch bounds the size of one InsertMany call.
const insertBatch = 1000

// StarDocument is the MongoDB form of one star.
type StarDocument struct {
	RunID              string   `bson:"run_id"`
	Seed               int64    `bson:"seed"`
	Index              int      `bson:"index"`
	Pos                [3]int   `bson:"pos"`
	Class              string   `bson:"class"`
	Mass               float64  `bson:"mass"`
	Cluster            int32    `bson:"cluster"`
	Age                int64    `bson:"age"`
	Luminosity         float64  `bson:"luminosity"`
	Temperature        float64  `bson:"temperature"`
	Phase              string   `bson:"phase"`
	ZeroAgeLuminosity  float64  `bson:"zero_age_luminosity"`
	ZeroAgeTemperature float64  `bson:"zero_age_temperature"`
	Color              [3]uint8 `bson:"color"`
}

// Documents converts the catalog into one document per star.
func Documents(c *Catalog) []StarDocument {
	docs := make([]StarDocument, len(c.Stars))
	for i := range c.Stars {
		s := &c.Stars[i]
		col := s.Color()
		docs[i] = StarDocument{
			RunID:              c.RunID,
			Seed:               c.Options.Seed,
			Index:              i,
			Pos:                s.Pos,
			Class:              string(s.Class),
			Mass:               s.Mass,
			Cluster:            s.Cluster,
			Age:                int64(s.Age),
			Luminosity:         s.Luminosity,
			Temperature:        s.Temperature,
			Phase:              s.Phase.String(),
			ZeroAgeLuminosity:  s.ZeroAgeLuminosity,
			ZeroAgeTemperature: s.ZeroAgeTemperature,
			Color:              [3]uint8{col.R, col.G, col.B},
		}
	}
	return docs
}

// MongoSink writes catalogs to a MongoDB collection.
type MongoSink struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSink connects to uri and targets database.collection. Empty names
// select DefaultDatabase and DefaultCollection.
func NewMongoSink(ctx context.Context, uri, database, collection string) (*MongoSink, error) {
	if database == "" {
		database = DefaultDatabase
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoSink{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Write replaces any documents of the catalog's run and inserts one
// document per star. It returns the number of inserted documents.
func (s *MongoSink) Write(ctx context.Context, c *Catalog) (int, error) {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"run_id": c.RunID}); err != nil {
		return 0, fmt.Errorf("clear run %s: %w", c.RunID, err)
	}

	docs := Documents(c)
	n := 0
	for start := 0; start < len(docs); start += insertBatch {
		end := min(start+insertBatch, len(docs))
		batch := make([]any, 0, end-start)
		for i := start; i < end; i++ {
			batch = append(batch, docs[i])
		}
		res, err := s.coll.InsertMany(ctx, batch)
		if err != nil {
			return n, fmt.Errorf("insert stars: %w", err)
		}
		n += len(res.InsertedIDs)
	}
	return n, nil
}

// Close disconnects from the server.
func (s *MongoSink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
