package redis

import (
	"banco/internal/types"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	seqKeyNameTemplate   = "_banco_%s_seq"   // INCR counter for ids
	itemsKeyNameTemplate = "_banco_%s_items" // hash id -> json record
	keysKeyNameTemplate  = "_banco_%s_keys"  // hash record key -> id
	idsKeyNameTemplate   = "_banco_%s_ids"   // sorted set of ids, score = id
)

// Store keeps one collection in three Redis structures: a hash of JSON records by id, a hash from
// the unique record key to the id and a sorted set of ids used for ordering and pagination.
type Store[T types.Record[T]] struct {
	cli        *redis.Client
	collection string
}

func NewStore[T types.Record[T]](cli *redis.Client, collection string) *Store[T] {
	return &Store[T]{cli: cli, collection: collection}
}

func (s *Store[T]) Insert(ctx context.Context, rec T) (T, error) {
	var zero T
	id, err := s.cli.Incr(ctx, s.key(seqKeyNameTemplate)).Result()
	if err != nil {
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	rec = rec.WithID(id)
	b, err := json.Marshal(rec)
	if err != nil {
		return zero, err
	}
	ok, err := s.cli.HSetNX(ctx, s.key(keysKeyNameTemplate), rec.RecordKey(), id).Result()
	if err != nil {
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	if !ok {
		return zero, types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
	}
	_, err = s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key(itemsKeyNameTemplate), idField(id), string(b))
		p.ZAdd(ctx, s.key(idsKeyNameTemplate), redis.Z{Score: float64(id), Member: idField(id)})
		return nil
	})
	if err != nil {
		// release the key so it is not left claimed by a record that was never written
		if delErr := s.cli.HDel(context.WithoutCancel(ctx), s.key(keysKeyNameTemplate), rec.RecordKey()).Err(); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return zero, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return rec, nil
}

func (s *Store[T]) List(ctx context.Context) ([]T, error) {
	return s.rangeByRank(ctx, 0, -1)
}

func (s *Store[T]) ListPage(ctx context.Context, page, size int) ([]T, error) {
	if page < 1 || size < 1 {
		return nil, nil
	}
	start := int64(page-1) * int64(size)
	return s.rangeByRank(ctx, start, start+int64(size)-1)
}

func (s *Store[T]) Count(ctx context.Context) (int, error) {
	n, err := s.cli.ZCard(ctx, s.key(idsKeyNameTemplate)).Result()
	if err != nil {
		return 0, types.Err(types.ErrDataStoreAccess, err, "")
	}
	return int(n), nil
}

func (s *Store[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var zero T
	out := s.cli.HGet(ctx, s.key(itemsKeyNameTemplate), idField(id))
	if out.Err() != nil {
		if errors.Is(out.Err(), redis.Nil) {
			return zero, types.ErrNotFound
		}
		return zero, types.Err(types.ErrDataStoreAccess, out.Err(), "")
	}
	var rec T
	if err := json.Unmarshal([]byte(out.Val()), &rec); err != nil {
		return zero, fmt.Errorf("decode %s record %d: %w", s.collection, id, err)
	}
	return rec, nil
}

func (s *Store[T]) GetByKey(ctx context.Context, key string) (T, error) {
	var zero T
	out := s.cli.HGet(ctx, s.key(keysKeyNameTemplate), key)
	if out.Err() != nil {
		if errors.Is(out.Err(), redis.Nil) {
			return zero, types.ErrNotFound
		}
		return zero, types.Err(types.ErrDataStoreAccess, out.Err(), "")
	}
	id, err := strconv.ParseInt(out.Val(), 10, 64)
	if err != nil {
		return zero, fmt.Errorf("invalid id for key %q: %w", key, err)
	}
	return s.GetByID(ctx, id)
}

func (s *Store[T]) Update(ctx context.Context, rec T) error {
	prev, err := s.GetByID(ctx, rec.RecordID())
	if err != nil {
		return err
	}
	id := rec.RecordID()
	if prev.RecordKey() != rec.RecordKey() {
		ok, err := s.cli.HSetNX(ctx, s.key(keysKeyNameTemplate), rec.RecordKey(), id).Result()
		if err != nil {
			return types.Err(types.ErrDataStoreAccess, err, "")
		}
		if !ok {
			return types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
		}
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, s.key(itemsKeyNameTemplate), idField(id), string(b))
		if prev.RecordKey() != rec.RecordKey() {
			p.HDel(ctx, s.key(keysKeyNameTemplate), prev.RecordKey())
		}
		return nil
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

func (s *Store[T]) DeleteByID(ctx context.Context, id int64) error {
	prev, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.cli.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, s.key(itemsKeyNameTemplate), idField(id))
		p.HDel(ctx, s.key(keysKeyNameTemplate), prev.RecordKey())
		p.ZRem(ctx, s.key(idsKeyNameTemplate), idField(id))
		return nil
	})
	if err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "")
	}
	return nil
}

// DeleteAll drops the records but keeps the id counter.
func (s *Store[T]) DeleteAll(ctx context.Context) error {
	out := s.cli.Del(ctx,
		s.key(itemsKeyNameTemplate),
		s.key(keysKeyNameTemplate),
		s.key(idsKeyNameTemplate),
	)
	if out.Err() != nil {
		return types.Err(types.ErrDataStoreAccess, out.Err(), "")
	}
	return nil
}

func (s *Store[T]) rangeByRank(ctx context.Context, start, stop int64) ([]T, error) {
	ids, err := s.cli.ZRange(ctx, s.key(idsKeyNameTemplate), start, stop).Result()
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "")
	}
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	vals, err := s.cli.HMGet(ctx, s.key(itemsKeyNameTemplate), ids...).Result()
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "")
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// id listed but record gone; skip it
			continue
		}
		var rec T
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode %s record %s: %w", s.collection, ids[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store[T]) key(template string) string {
	return fmt.Sprintf(template, s.collection)
}

func idField(id int64) string { return strconv.FormatInt(id, 10) }
