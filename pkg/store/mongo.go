package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "snapshots"

// MongoStore keeps one document per snapshot, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	Name      string    `bson:"_id"`
	ID        string    `bson:"id"`
	Digest    string    `bson:"digest"`
	Size      int       `bson:"size"`
	CreatedAt time.Time `bson:"created_at"`
	Data      []byte    `bson:"data,omitempty"`
}

// NewMongoStore connects to uri and uses the snapshots collection of
// database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(mongoCollection),
	}, nil
}

// Put upserts the snapshot document.
func (s *MongoStore) Put(ctx context.Context, name string, data []byte) (Snapshot, error) {
	snap, err := newSnapshot(name, data)
	if err != nil {
		return Snapshot{}, err
	}
	doc := mongoDoc{
		Name:      snap.Name,
		ID:        snap.ID.String(),
		Digest:    snap.Digest,
		Size:      snap.Size,
		CreatedAt: snap.CreatedAt,
		Data:      data,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return Snapshot{}, mongoError(err)
	}
	return snap, nil
}

// Get finds one snapshot document.
func (s *MongoStore) Get(ctx context.Context, name string) (Snapshot, []byte, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return Snapshot{}, nil, notFound(name)
	}
	if err != nil {
		return Snapshot{}, nil, mongoError(err)
	}
	snap, err := doc.snapshot()
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, doc.Data, nil
}

// List returns metadata sorted by name, without payloads.
func (s *MongoStore) List(ctx context.Context) ([]Snapshot, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"data": 0})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, mongoError(err)
	}
	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mongoError(err)
	}
	out := make([]Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap, err := doc.snapshot()
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Delete removes a snapshot document.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return mongoError(err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (d mongoDoc) snapshot() (Snapshot, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %q: bad id: %w", d.Name, err)
	}
	return Snapshot{ID: id, Name: d.Name, Digest: d.Digest, Size: d.Size, CreatedAt: d.CreatedAt.UTC()}, nil
}

// mongoError marks network failures and timeouts as retryable.
func mongoError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return Retryable(fmt.Errorf("mongo: %w", err))
	}
	return fmt.Errorf("mongo: %w", err)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
