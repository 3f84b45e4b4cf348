// Package mongo contains the MongoDB implementation of the key-value store.
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/and161185/privchat/internal/storage"
)

// document is the shape stored in the kv collection, one per key.
type document struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// KV implements storage.Store on a single Mongo collection.
type KV struct{ coll *mongo.Collection }

var _ storage.Store = (*KV)(nil)

// Connect dials the given URI and returns a store over <db>.kv along with
// the client for shutdown.
func Connect(ctx context.Context, uri, db string) (*KV, *mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return NewKV(client.Database(db).Collection("kv")), client, nil
}

// NewKV constructs a store over an existing collection.
func NewKV(coll *mongo.Collection) *KV { return &KV{coll: coll} }

// Get finds the document for key. Absent documents return (nil, nil).
func (s *KV) Get(ctx context.Context, key string, _ bool) (any, error) {
	var doc document
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Value, nil
}

// Set replaces the document for key, inserting it when absent.
func (s *KV) Set(ctx context.Context, key string, value any, _ bool) error {
	doc := document{Key: key, Value: asText(value)}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func asText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return storage.Encode(t)
	}
}
