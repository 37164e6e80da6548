package memory

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/pkg/cmap"
)

// Store is an in-memory storage.Backend.
type Store struct {
	data   *cmap.Map[[]byte]
	quota  int64
	used   atomic.Int64
	closed atomic.Bool

	// quotaMu serializes writes so quota accounting cannot be raced past.
	quotaMu sync.Mutex

	subs storage.Subscribers
}

// Option configures a Store.
type Option func(*Store)

// WithQuota caps total key plus value bytes. Zero disables the cap.
func WithQuota(bytes int64) Option {
	return func(s *Store) {
		s.quota = bytes
	}
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{data: cmap.New[[]byte]()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	_ storage.Backend  = (*Store)(nil)
	_ storage.Notifier = (*Store)(nil)
	_ storage.Statser  = (*Store)(nil)
)

// Name implements storage.Backend.
func (s *Store) Name() string { return "memory" }

// Get returns a copy of the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	v, ok := s.data.Get(key)
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if s.closed.Load() {
		return storage.ErrClosed
	}

	s.quotaMu.Lock()
	_, err := s.data.Update(key, func(existing []byte, exists bool) ([]byte, error) {
		delta := int64(len(value))
		if exists {
			delta -= int64(len(existing))
		} else {
			delta += int64(len(key))
		}
		if s.quota > 0 && s.used.Load()+delta > s.quota {
			return nil, storage.ErrQuotaExceeded
		}
		s.used.Add(delta)
		return append([]byte(nil), value...), nil
	})
	s.quotaMu.Unlock()
	if err != nil {
		return err
	}

	s.subs.Notify(key)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.closed.Load() {
		return storage.ErrClosed
	}

	s.quotaMu.Lock()
	v, ok := s.data.Pop(key)
	if ok {
		s.used.Add(-int64(len(key) + len(v)))
	}
	s.quotaMu.Unlock()

	if ok {
		s.subs.Notify(key)
	}
	return nil
}

// Keys lists keys with the given prefix in ascending order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	all := s.data.Keys()
	keys := all[:0]
	for _, k := range all {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Watch implements storage.Notifier.
func (s *Store) Watch(fn func(key string)) (func(), error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	return s.subs.Add(fn), nil
}

// Stats implements storage.Statser.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	if s.closed.Load() {
		return nil, storage.ErrClosed
	}
	return &storage.Stats{
		Keys:  uint64(s.data.Count()),
		Bytes: uint64(s.used.Load()),
	}, nil
}

// Close marks the store closed. Data is discarded.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.data.Clear()
	s.used.Store(0)
	return nil
}
