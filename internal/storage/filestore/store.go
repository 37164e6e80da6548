package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/yndnr/persistval/internal/infra/fswatch"
	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Store is a storage.Backend backed by a single JSON file.
type Store struct {
	path   string
	logger logger.Logger

	mu     sync.Mutex
	known  document // last state this handle wrote or observed
	closed bool

	subs      storage.Subscribers
	watchOnce sync.Once
	watcher   *fswatch.Watcher
	watchErr  error
}

var (
	_ storage.Backend  = (*Store)(nil)
	_ storage.Notifier = (*Store)(nil)
	_ storage.Statser  = (*Store)(nil)
)

// Open opens the namespace document <dir>/<namespace>.json, creating dir
// if needed. The file itself is created on first write.
func Open(dir, namespace string, log logger.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("filestore: dir is required")
	}
	if namespace == "" || strings.ContainsAny(namespace, `/\`) || namespace == "." || namespace == ".." {
		return nil, fmt.Errorf("filestore: invalid namespace %q", namespace)
	}
	if log == nil {
		log = logger.Default()
	}

	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("filestore: getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("filestore: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: creating data directory: %w", err)
	}

	s := &Store{
		path:   filepath.Join(dir, namespace+".json"),
		logger: log.With("engine", "file", "namespace", namespace),
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	s.known = doc
	return s, nil
}

// Path returns the document path.
func (s *Store) Path() string { return s.path }

// Name implements storage.Backend.
func (s *Store) Name() string { return "file" }

func (s *Store) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document{}, nil
		}
		return nil, fmt.Errorf("filestore: reading %s: %w", s.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return document{}, nil
	}

	doc := document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("filestore: parsing %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: encoding document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("filestore: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("filestore: syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("filestore: closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("filestore: replacing %s: %w", s.path, err)
	}
	return nil
}

// Get reads key from the current document on disk.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set rewrites the document with key set to value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	return s.mutate(key, func(doc document) bool {
		doc[key] = append(entry(nil), value...)
		return true
	})
}

// Delete rewrites the document without key. Deleting an absent key leaves
// the file untouched and notifies nobody.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.mutate(key, func(doc document) bool {
		if _, ok := doc[key]; !ok {
			return false
		}
		delete(doc, key)
		return true
	})
}

// mutate applies fn to the current document and saves it when fn reports
// a change.
func (s *Store) mutate(key string, fn func(document) bool) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.ErrClosed
	}
	doc, err := s.load()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !fn(doc) {
		s.mu.Unlock()
		return nil
	}
	if err := s.save(doc); err != nil {
		s.mu.Unlock()
		return err
	}

	// Only this key is marked as seen: other keys that changed on disk
	// since the last event still get reported by the watcher.
	if v, ok := doc[key]; ok {
		s.known[key] = v
	} else {
		delete(s.known, key)
	}
	s.mu.Unlock()

	s.subs.Notify(key)
	return nil
}

// Keys lists keys with the given prefix in ascending order.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Watch implements storage.Notifier. Writes through this handle are
// reported synchronously; writes by other processes are reported when
// fsnotify delivers the file event.
func (s *Store) Watch(fn func(key string)) (func(), error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, storage.ErrClosed
	}

	s.watchOnce.Do(func() {
		w, err := fswatch.New(fswatch.WithLogger(s.logger))
		if err != nil {
			s.watchErr = err
			return
		}
		w.OnChange(func(string) { s.reload() })
		if err := w.Watch(s.path); err != nil {
			w.Stop()
			s.watchErr = err
			return
		}
		s.watcher = w
	})
	if s.watchErr != nil {
		return nil, s.watchErr
	}
	return s.subs.Add(fn), nil
}

// reload re-reads the document after a file event and reports changed keys.
func (s *Store) reload() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	doc, err := s.load()
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("ignoring unreadable document", "path", s.path, "error", err)
		return
	}
	changed := diff(s.known, doc)
	s.known = doc.clone()
	s.mu.Unlock()

	sort.Strings(changed)
	for _, key := range changed {
		s.subs.Notify(key)
	}
}

// Stats implements storage.Statser.
func (s *Store) Stats(ctx context.Context) (*storage.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, storage.ErrClosed
	}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	var size uint64
	if fi, err := os.Stat(s.path); err == nil {
		size = uint64(fi.Size())
	}
	return &storage.Stats{Keys: uint64(len(doc)), Bytes: size}, nil
}

// Close stops watching. The document is left on disk.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	w := s.watcher
	s.mu.Unlock()

	if w != nil {
		return w.Stop()
	}
	return nil
}
