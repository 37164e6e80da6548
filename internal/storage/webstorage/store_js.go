//go:build js && wasm

package webstorage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"syscall/js"

	"github.com/yndnr/persistval/internal/storage"
)

// Store is a storage.Backend over window.localStorage.
type Store struct {
	ls        js.Value
	namespace string

	mu       sync.Mutex
	closed   bool
	listener js.Func
	watching bool

	// known holds the keys this handle has seen in its namespace, so that a
	// clear() in another tab, which arrives with a null key, can be reported
	// key by key.
	knownMu sync.Mutex
	known   map[string]struct{}

	subs storage.Subscribers
}

var (
	_ storage.Backend  = (*Store)(nil)
	_ storage.Notifier = (*Store)(nil)
	_ storage.Statser  = (*Store)(nil)
)

// Open returns a backend over localStorage, or storage.ErrUnavailable when
// the global is missing (workers, some privacy modes).
func Open(namespace string) (storage.Backend, error) {
	ls, err := localStorage()
	if err != nil {
		return nil, err
	}
	return &Store{ls: ls, namespace: namespace, known: make(map[string]struct{})}, nil
}

func localStorage() (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webstorage: %v: %w", r, storage.ErrUnavailable)
		}
	}()
	v = js.Global().Get("localStorage")
	if v.IsUndefined() || v.IsNull() {
		return js.Value{}, fmt.Errorf("webstorage: localStorage is undefined: %w", storage.ErrUnavailable)
	}
	return v, nil
}

// call invokes a localStorage method, turning a thrown exception into an
// error.
func (s *Store) call(method string, args ...any) (v js.Value, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var jsErr js.Error
		if e, ok := r.(error); ok && errors.As(e, &jsErr) {
			if jsErr.Value.Get("name").String() == "QuotaExceededError" {
				err = storage.ErrQuotaExceeded
				return
			}
			err = fmt.Errorf("webstorage: %s: %w", method, jsErr)
			return
		}
		err = fmt.Errorf("webstorage: %s: %v", method, r)
	}()
	return s.ls.Call(method, args...), nil
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Name implements storage.Backend.
func (s *Store) Name() string { return "webstorage" }

// Get implements storage.Backend.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	v, err := s.call("getItem", itemKey(s.namespace, key))
	if err != nil {
		return nil, err
	}
	if v.IsNull() {
		s.forget(key)
		return nil, storage.ErrKeyNotFound
	}
	s.remember(key)
	return decodeValue(v.String())
}

// Set implements storage.Backend.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.call("setItem", itemKey(s.namespace, key), encodeValue(value)); err != nil {
		return err
	}
	s.remember(key)
	s.subs.Notify(key)
	return nil
}

// Delete implements storage.Backend.
func (s *Store) Delete(ctx context.Context, key string) error {
	if s.isClosed() {
		return storage.ErrClosed
	}
	if _, err := s.call("removeItem", itemKey(s.namespace, key)); err != nil {
		return err
	}
	s.forget(key)
	s.subs.Notify(key)
	return nil
}

func (s *Store) items() (map[string]string, error) {
	length := s.ls.Get("length").Int()
	out := make(map[string]string, length)
	for i := 0; i < length; i++ {
		k, err := s.call("key", i)
		if err != nil {
			return nil, err
		}
		if k.IsNull() {
			continue
		}
		key, ok := storeKey(s.namespace, k.String())
		if !ok {
			continue
		}
		v, err := s.call("getItem", k.String())
		if err != nil {
			return nil, err
		}
		out[key] = v.String()
		s.remember(key)
	}
	return out, nil
}

func (s *Store) remember(key string) {
	s.knownMu.Lock()
	s.known[key] = struct{}{}
	s.knownMu.Unlock()
}

func (s *Store) forget(key string) {
	s.knownMu.Lock()
	delete(s.known, key)
	s.knownMu.Unlock()
}

// forgetAll empties the known set and returns what it held, sorted.
func (s *Store) forgetAll() []string {
	s.knownMu.Lock()
	defer s.knownMu.Unlock()

	keys := make([]string, 0, len(s.known))
	for k := range s.known {
		keys = append(keys, k)
	}
	s.known = make(map[string]struct{})
	sort.Strings(keys)
	return keys
}

// onStorageEvent handles a window "storage" event. A null key means the
// other tab called clear(), so every key seen in this namespace changed.
func (s *Store) onStorageEvent(ev js.Value) {
	k := ev.Get("key")
	if k.IsNull() || k.IsUndefined() {
		keys := s.forgetAll()
		go func() {
			for _, key := range keys {
				s.subs.Notify(key)
			}
		}()
		return
	}
	key, ok := storeKey(s.namespace, k.String())
	if !ok {
		return
	}
	if nv := ev.Get("newValue"); nv.IsNull() || nv.IsUndefined() {
		s.forget(key)
	} else {
		s.remember(key)
	}
	go s.subs.Notify(key)
}

// Keys implements storage.Backend.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	items, err := s.items()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Stats implements storage.Statser. Bytes counts UTF-16 code units times
// two, which is how browsers charge the quota.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	if s.isClosed() {
		return nil, storage.ErrClosed
	}
	items, err := s.items()
	if err != nil {
		return nil, err
	}
	var size uint64
	for k, v := range items {
		size += uint64(js.ValueOf(itemKey(s.namespace, k)).Length()+js.ValueOf(v).Length()) * 2
	}
	return &storage.Stats{Keys: uint64(len(items)), Bytes: size}, nil
}

// Watch implements storage.Notifier. Writes from other tabs arrive through
// the window "storage" event.
func (s *Store) Watch(fn func(key string)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	if !s.watching {
		// Seed the known set so a clear() right after Watch still reports
		// the keys that existed.
		if _, err := s.items(); err != nil {
			return nil, err
		}
		s.listener = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) > 0 {
				s.onStorageEvent(args[0])
			}
			return nil
		})
		js.Global().Call("addEventListener", "storage", s.listener)
		s.watching = true
	}
	return s.subs.Add(fn), nil
}

// Close detaches the storage event listener. Items stay in localStorage.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.watching {
		js.Global().Call("removeEventListener", "storage", s.listener)
		s.listener.Release()
		s.watching = false
	}
	return nil
}
