// Package file keeps records in a JSON document on local disk.
// The whole collection is held in memory and rewritten atomically after every mutation.
package file

import (
	"banco/internal/types"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-json"
)

type document[T any] struct {
	NextID int64 `json:"next_id"`
	Items  []T   `json:"items"`
}

type Store[T types.Record[T]] struct {
	mu   sync.Mutex
	path string
	doc  document[T]
}

// NewStore opens the collection at path, creating an empty one if the file does not exist yet.
func NewStore[T types.Record[T]](path string) (*Store[T], error) {
	s := &Store[T]{path: path, doc: document[T]{NextID: 1}}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "read %s", path)
	}
	if len(b) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(b, &s.doc); err != nil {
		return nil, types.Err(types.ErrDataStoreAccess, err, "decode %s", path)
	}
	sort.Slice(s.doc.Items, func(i, j int) bool { return s.doc.Items[i].RecordID() < s.doc.Items[j].RecordID() })
	for _, it := range s.doc.Items {
		if it.RecordID() >= s.doc.NextID {
			s.doc.NextID = it.RecordID() + 1
		}
	}
	return s, nil
}

func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) Insert(_ context.Context, rec T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfKey(rec.RecordKey()) >= 0 {
		var zero T
		return zero, types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
	}
	rec = rec.WithID(s.doc.NextID)
	s.doc.NextID++
	s.doc.Items = append(s.doc.Items, rec)
	if err := s.flush(); err != nil {
		s.doc.Items = s.doc.Items[:len(s.doc.Items)-1]
		var zero T
		return zero, err
	}
	return rec, nil
}

func (s *Store[T]) List(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.doc.Items))
	copy(out, s.doc.Items)
	return out, nil
}

func (s *Store[T]) ListPage(ctx context.Context, page, size int) ([]T, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return types.Page(all, page, size), nil
}

func (s *Store[T]) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.doc.Items), nil
}

func (s *Store[T]) GetByID(_ context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfID(id); i >= 0 {
		return s.doc.Items[i], nil
	}
	var zero T
	return zero, types.ErrNotFound
}

func (s *Store[T]) GetByKey(_ context.Context, key string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOfKey(key); i >= 0 {
		return s.doc.Items[i], nil
	}
	var zero T
	return zero, types.ErrNotFound
}

func (s *Store[T]) Update(_ context.Context, rec T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfID(rec.RecordID())
	if i < 0 {
		return types.ErrNotFound
	}
	if j := s.indexOfKey(rec.RecordKey()); j >= 0 && j != i {
		return types.Err(types.ErrDuplicate, nil, "key %q", rec.RecordKey())
	}
	prev := s.doc.Items[i]
	s.doc.Items[i] = rec
	if err := s.flush(); err != nil {
		s.doc.Items[i] = prev
		return err
	}
	return nil
}

func (s *Store[T]) DeleteByID(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOfID(id)
	if i < 0 {
		return types.ErrNotFound
	}
	prev := s.doc.Items
	items := make([]T, 0, len(prev)-1)
	items = append(items, prev[:i]...)
	items = append(items, prev[i+1:]...)
	s.doc.Items = items
	if err := s.flush(); err != nil {
		s.doc.Items = prev
		return err
	}
	return nil
}

func (s *Store[T]) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.doc.Items
	s.doc.Items = nil
	if err := s.flush(); err != nil {
		s.doc.Items = prev
		return err
	}
	return nil
}

func (s *Store[T]) indexOfID(id int64) int {
	i := sort.Search(len(s.doc.Items), func(i int) bool { return s.doc.Items[i].RecordID() >= id })
	if i < len(s.doc.Items) && s.doc.Items[i].RecordID() == id {
		return i
	}
	return -1
}

func (s *Store[T]) indexOfKey(key string) int {
	for i, it := range s.doc.Items {
		if it.RecordKey() == key {
			return i
		}
	}
	return -1
}

// flush must be called with mu held.
func (s *Store[T]) flush() error {
	doc := s.doc
	if doc.Items == nil {
		doc.Items = []T{}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.path, err)
	}
	if err := writeAtomic(s.path, b, 0o600); err != nil {
		return types.Err(types.ErrDataStoreAccess, err, "write %s", s.path)
	}
	return nil
}
