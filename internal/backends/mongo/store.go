// Package mongo stores each record kind in its own MongoDB collection, using the numeric id as _id.
package mongo

import (
	"banco/internal/types"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

type Store[T types.Record[T]] struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	keyField string
}

// NewStore binds a store to collection and makes keyField a unique index.
func NewStore[T types.Record[T]](ctx context.Context, db *mongo.Database, collection, keyField string) (*Store[T], error) {
	s := &Store[T]{
		coll:     db.Collection(collection),
		counters: db.Collection(countersCollection),
		keyField: keyField,
	}
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: keyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "create index %s.%s", collection, keyField)
	}
	return s, nil
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	id, err := s.nextID(ctx)
	if err != nil {
		return zero, err
	}
	rec = rec.WithID(id)
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return zero, types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
		}
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return rec, nil
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	return s.find(ctx, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (s *Store[T]) ListPage(ctx context.Context, page, size int) ([]T, error) {
	if page < 1 || size < 1 {
		return nil, nil
	}
	return s.find(ctx, options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(page-1)*int64(size)).
		SetLimit(int64(size)))
}

func (s *Store[T]) Count(ctx context.Context) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return int(n), nil
}

func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *Store[T]) GetByKey(ctx context.Context, key string) (T, error) {
	return s.findOne(ctx, bson.M{s.keyField: key})
}

func (s *Store[T]) Update(ctx context.Context, rec T) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.RecordID()}, rec)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
		}
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	if res.MatchedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *Store[T]) DeleteByID(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

// DeleteAll empties the collection; the counter document survives so ids are not reused.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *Store[T]) find(ctx context.Context, opts *options.FindOptions) ([]T, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "")
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return out, nil
}

func (s *Store[T]) findOne(ctx context.Context, filter bson.M) (T, error) {
	var rec T
	err := s.coll.FindOne(ctx, filter).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		var zero T
		return zero, types.ErrNotFound
	}
	if err != nil {
		var zero T
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return rec, nil
}

func (s *Store[T]) nextID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": s.coll.Name()},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, types.Err(types.ErrDataStoreAccess, err, "next id for %s", s.coll.Name())
	}
	return counter.Seq, nil
}

// Connect opens a client and checks it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return cli, nil
}
