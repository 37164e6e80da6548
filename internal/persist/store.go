package persist

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/persistval/internal/core/domain"
	"github.com/yndnr/persistval/internal/reactive"
	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
	"github.com/yndnr/persistval/internal/telemetry/metric"
)

// Store is a reactive value persisted under a fixed key.
type Store[T any] struct {
	key     string
	initial T
	backend storage.Backend
	value   *reactive.Value[T]
	opts    options
	logger  logger.Logger

	// lastWritten holds the bytes last known to be stored under key: this
	// store's most recent write or the last external change it applied.
	writeMu     sync.Mutex
	lastWritten []byte
	writes      uint64

	closed    atomic.Bool
	closeOnce sync.Once
	stopWatch func()
	pending   chan struct{}
	done      chan struct{}
}

// Open rehydrates the value stored under key, falling back to initial, and
// returns a Store that writes every later change back to backend.
//
// The resolved value is written once before Open returns, so the key holds
// a valid encoding afterwards even if it was absent or unusable.
func Open[T any](ctx context.Context, backend storage.Backend, key string, initial T, opts ...Option) (*Store[T], error) {
	if backend == nil {
		return nil, domain.ErrPersistenceUnavailable.WithDetails("no backend")
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, domain.ErrInvalidKey.Wrap(err)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store[T]{
		key:     key,
		initial: initial,
		backend: backend,
		opts:    o,
		logger:  o.logger.With("key", key, "engine", backend.Name()),
	}

	resolved, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.value = reactive.New(resolved, reactive.WithHook(s.write))
	if err := s.write(resolved); err != nil {
		return nil, err
	}

	if o.sync {
		if err := s.startSync(); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("store opened",
		"policy", o.policy.String(),
		"codec", o.codec.Name(),
		"sync", s.stopWatch != nil)
	return s, nil
}

// load reads and decodes the stored value, applying the policies.
func (s *Store[T]) load(ctx context.Context) (T, error) {
	engine := s.backend.Name()

	data, err := s.backend.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		s.opts.metrics.ObserveRead(engine, metric.ResultAbsent)
		return s.initial, nil
	case errors.Is(err, storage.ErrUnavailable):
		s.opts.metrics.ObserveRead(engine, metric.ResultError)
		return s.initial, domain.ErrPersistenceUnavailable.WithKey(s.key).Wrap(err)
	case err != nil:
		s.opts.metrics.ObserveRead(engine, metric.ResultError)
		return s.initial, fmt.Errorf("persist: read %q: %w", s.key, err)
	}
	s.opts.metrics.ObserveRead(engine, metric.ResultOK)

	v, err := s.resolve(data)
	if err != nil {
		return s.initial, err
	}
	s.opts.metrics.ObserveRehydration(metric.SourceOpen)
	return v, nil
}

// resolve decodes data and applies the corrupt and falsy policies.
func (s *Store[T]) resolve(data []byte) (T, error) {
	// Decoding through a pointer tells a stored null apart from a stored
	// zero value; a null leaves ptr nil whatever T is.
	var ptr *T
	if err := s.opts.codec.Unmarshal(data, &ptr); err != nil {
		derr := domain.ErrDeserialization.WithKey(s.key).Wrap(err)
		if !s.opts.corruptFallback {
			return s.initial, derr
		}
		s.logger.Warn("stored value is corrupt, using initial value", "error", err)
		return s.initial, nil
	}
	var v T
	if ptr == nil {
		if s.opts.policy == FalsyFallback {
			return s.initial, nil
		}
		return v, nil
	}
	v = *ptr
	if s.opts.policy == FalsyFallback && isFalsy(v) {
		return s.initial, nil
	}
	return v, nil
}

// write is the on-change hook. It runs before the value is committed, so
// an error leaves the in-memory value untouched.
func (s *Store[T]) write(v T) error {
	if s.closed.Load() {
		return domain.ErrStoreClosed.WithKey(s.key)
	}

	data, err := s.opts.codec.Marshal(v)
	if err != nil {
		return domain.ErrSerialization.WithKey(s.key).Wrap(err)
	}

	s.writeMu.Lock()
	prev := s.lastWritten
	s.lastWritten = data
	s.writes++
	s.writeMu.Unlock()

	start := time.Now()
	err = s.backend.Set(context.Background(), s.key, data)
	s.opts.metrics.ObserveWrite(s.backend.Name(), err, time.Since(start))
	if err != nil {
		s.writeMu.Lock()
		s.lastWritten = prev
		s.writeMu.Unlock()
		s.logger.Error("failed to persist value", "error", err)
		return domain.ErrPersistenceWrite.WithKey(s.key).Wrap(err)
	}

	s.logger.Debug("value persisted", "bytes", len(data))
	return nil
}

// Key returns the storage key.
func (s *Store[T]) Key() string { return s.key }

// Get returns the current value.
func (s *Store[T]) Get() T { return s.value.Get() }

// Set persists v and then makes it the current value. On error the current
// value is unchanged.
func (s *Store[T]) Set(v T) error { return s.value.Set(v) }

// Update sets the value to fn applied to the current value.
func (s *Store[T]) Update(fn func(T) T) error { return s.value.Update(fn) }

// Subscribe calls fn with the current value and after every change.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	return s.value.Subscribe(fn)
}

// Raw returns the bytes currently stored under the key.
func (s *Store[T]) Raw(ctx context.Context) ([]byte, error) {
	return s.backend.Get(ctx, s.key)
}

// Close stops applying external changes. Later Set calls fail with
// domain.ErrStoreClosed. The key is left in place and the backend stays
// open.
func (s *Store[T]) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.stopWatch != nil {
			s.stopWatch()
			close(s.pending)
			<-s.done
		}
		s.logger.Debug("store closed")
	})
	return nil
}

func (s *Store[T]) startSync() error {
	n, ok := s.backend.(storage.Notifier)
	if !ok {
		s.logger.Warn("backend cannot report changes, sync disabled")
		return nil
	}

	s.pending = make(chan struct{}, 1)
	s.done = make(chan struct{})

	var stopMu sync.RWMutex
	stopped := false
	stop, err := n.Watch(func(key string) {
		if key != s.key {
			return
		}
		stopMu.RLock()
		defer stopMu.RUnlock()
		if stopped {
			return
		}
		select {
		case s.pending <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return fmt.Errorf("persist: watch %q: %w", s.key, err)
	}
	s.stopWatch = func() {
		stop()
		stopMu.Lock()
		stopped = true
		stopMu.Unlock()
	}

	go s.syncLoop()
	return nil
}

// syncLoop re-reads the key after each change notification. Notifications
// are coalesced, so only the latest stored state is applied.
func (s *Store[T]) syncLoop() {
	defer close(s.done)
	for range s.pending {
		s.applyExternal()
	}
}

func (s *Store[T]) applyExternal() {
	if s.closed.Load() {
		return
	}

	s.writeMu.Lock()
	seen := s.writes
	s.writeMu.Unlock()

	var next T
	data, err := s.backend.Get(context.Background(), s.key)
	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		s.logger.Info("key removed externally, using initial value")
		next = s.initial
		data = nil
	case err != nil:
		s.logger.Warn("failed to read external change", "error", err)
		return
	default:
		s.writeMu.Lock()
		own := bytes.Equal(data, s.lastWritten)
		s.writeMu.Unlock()
		if own {
			return
		}
		if next, err = s.resolve(data); err != nil {
			s.logger.Error("ignoring undecodable external change", "error", err)
			return
		}
	}

	// A write through this store after the read above wins; its own
	// notification triggers another read.
	applied := s.value.ReplaceFunc(func(cur T) (T, bool) {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if s.writes != seen {
			return cur, false
		}
		s.lastWritten = data
		return next, true
	})
	if applied {
		s.opts.metrics.ObserveRehydration(metric.SourceExternal)
		s.logger.Debug("applied external change")
	}
}
