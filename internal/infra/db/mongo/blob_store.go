// Package mongo keeps the client's local blobs in a MongoDB collection so
// several devices of one user can share cached transcripts and the session.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"academy/internal/app/ports"
)

const defaultCollection = "client_blobs"

// BlobStore implements ports.LocalStore on a single collection keyed by _id.
type BlobStore struct {
	col     *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

// NewBlobStore uses collection name in db, or client_blobs when name is empty.
// Documents untouched for ttl expire; a zero ttl keeps them forever.
func NewBlobStore(ctx context.Context, db *mongo.Database, name string, ttl time.Duration) (*BlobStore, error) {
	if name == "" {
		name = defaultCollection
	}
	col := db.Collection(name)
	if ttl > 0 {
		idx := mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())),
		}
		if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
			return nil, fmt.Errorf("mongo: create ttl index: %w", err)
		}
	}
	return &BlobStore{col: col, timeout: 5 * time.Second, now: time.Now}, nil
}

// Connect dials uri and returns the named database. Close the client on shutdown.
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	if uri == "" || database == "" {
		return nil, nil, errors.New("mongo: uri and database are required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return client, client.Database(database), nil
}

func (s *BlobStore) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	var doc blobDocument
	if err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc.Blob, true, nil
}

func (s *BlobStore) Set(key string, blob []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	doc := blobDocument{Key: key, Blob: blob, UpdatedAt: s.now().UTC()}
	_, err := s.col.UpdateByID(ctx, key, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

type blobDocument struct {
	Key       string    `bson:"_id"`
	Blob      []byte    `bson:"blob"`
	UpdatedAt time.Time `bson:"updated_at"`
}

var _ ports.LocalStore = (*BlobStore)(nil)
