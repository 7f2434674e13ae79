package store

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/typeshape/pkg/errors"
	"github.com/matzehuels/typeshape/pkg/schema"
)

// DefaultCollection holds schema records in the configured database.
const DefaultCollection = "schemas"

// MongoOptions configures [NewMongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string

	// ConnectTimeout bounds the initial connection and ping.
	ConnectTimeout time.Duration
}

// MongoStore keeps records in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoRecord is the stored document. The schema is kept as its JSON
// encoding because its bodies are a closed sum type with custom codecs.
type mongoRecord struct {
	ID          string    `bson:"_id"`
	Declaration string    `bson:"declaration"`
	ProjectHash string    `bson:"project_hash"`
	Schema      string    `bson:"schema"`
	CreatedAt   time.Time `bson:"created_at"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = "typeshape"
	}
	if opts.Collection == "" {
		opts.Collection = DefaultCollection
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.ConnectTimeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "declaration", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Put(ctx context.Context, rec *Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	doc, err := toMongo(rec)
	if err != nil {
		return err
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "put record")
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	var doc mongoRecord
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, notFound(id)
		}
		return nil, errors.Wrap(errors.ErrCodeStore, err, "get record")
	}
	return fromMongo(doc)
}

func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]*Record, error) {
	filter := bson.M{}
	if opts.Declaration != "" {
		filter["declaration"] = opts.Declaration
	}
	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list records")
	}
	var docs []mongoRecord
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode records")
	}

	recs := make([]*Record, 0, len(docs))
	for _, doc := range docs {
		rec, err := fromMongo(doc)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateRecordID(id); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete record")
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toMongo(rec *Record) (mongoRecord, error) {
	data, err := json.Marshal(rec.Schema)
	if err != nil {
		return mongoRecord{}, errors.Wrap(errors.ErrCodeStore, err, "encode schema")
	}
	return mongoRecord{
		ID:          rec.ID,
		Declaration: rec.Declaration,
		ProjectHash: rec.ProjectHash,
		Schema:      string(data),
		CreatedAt:   rec.CreatedAt,
	}, nil
}

func fromMongo(doc mongoRecord) (*Record, error) {
	var n *schema.Node
	if err := json.Unmarshal([]byte(doc.Schema), &n); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode schema %s", doc.ID)
	}
	return &Record{
		ID:          doc.ID,
		Declaration: doc.Declaration,
		ProjectHash: doc.ProjectHash,
		Schema:      n,
		CreatedAt:   doc.CreatedAt.UTC(),
	}, nil
}

var _ Store = (*MongoStore)(nil)
