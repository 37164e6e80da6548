package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/pb"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Engine implements storage.Backend using Badger v3.
type Engine struct {
	db     *badger.DB
	cfg    storage.BadgerConfig
	logger logger.Logger

	lastGCTime atomic.Int64 // Unix milliseconds
	gcRuns     atomic.Uint64

	metricsGCRuns prometheus.Counter

	closed      atomic.Bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	watchCtx    context.Context
	watchCancel context.CancelFunc
	watchers    sync.WaitGroup
	closeOnce   sync.Once
}

// New opens (or creates) a Badger database in cfg.Dir.
func New(cfg storage.Config, log logger.Logger) (*Engine, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}
	log = log.With("engine", "badger")

	interval, err := time.ParseDuration(cfg.Badger.GCInterval)
	if err != nil || interval <= 0 {
		return nil, fmt.Errorf("badger: invalid gc_interval %q", cfg.Badger.GCInterval)
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: log}
	opts.BlockCacheSize = cfg.Badger.CacheSize
	opts.SyncWrites = cfg.Badger.SyncWrites
	opts.DetectConflicts = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	engine := &Engine{
		db:     db,
		cfg:    cfg.Badger,
		logger: log,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	engine.watchCtx, engine.watchCancel = context.WithCancel(context.Background())

	go engine.gcLoop(interval)

	log.Info("badger engine started",
		"dir", cfg.Dir,
		"cache_size", cfg.Badger.CacheSize,
		"gc_interval", interval)

	return engine, nil
}

// Name implements storage.Backend.
func (e *Engine) Name() string { return "badger" }

// Get retrieves a value by key.
func (e *Engine) Get(ctx context.Context, key string) ([]byte, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (e *Engine) Set(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return err
	}
	if e.closed.Load() {
		return storage.ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete removes a key.
func (e *Engine) Delete(ctx context.Context, key string) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Keys lists keys with the given prefix. Badger iterates in key order.
func (e *Engine) Keys(ctx context.Context, prefix string) ([]string, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	var keys []string
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return keys, err
}

// Watch implements storage.Notifier using Badger's change subscription.
// Only writes through this handle are observed; Badger holds an exclusive
// directory lock.
// The subscription is registered asynchronously, so writes racing with Watch
// may be missed.
func (e *Engine) Watch(fn func(key string)) (func(), error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	ctx, cancel := context.WithCancel(e.watchCtx)

	e.watchers.Add(1)
	go func() {
		defer e.watchers.Done()
		err := e.db.Subscribe(ctx, func(kvs *badger.KVList) error {
			for _, kv := range kvs.Kv {
				fn(string(kv.Key))
			}
			return nil
		}, []pb.Match{{Prefix: []byte{}}})
		if err != nil && !errors.Is(err, context.Canceled) {
			e.logger.Warn("badger subscription ended", "error", err)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

// Backup writes a full backup of the database to w.
func (e *Engine) Backup(ctx context.Context, w io.Writer) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	if _, err := e.db.Backup(w, 0); err != nil {
		return fmt.Errorf("badger: backup: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup. Existing keys are overwritten
// by the backup's entries; other keys are left in place.
func (e *Engine) Restore(ctx context.Context, r io.Reader) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	if err := e.db.Load(r, 256); err != nil {
		return fmt.Errorf("badger: restore: %w", err)
	}
	e.logger.Info("backup restored")
	return nil
}

// GC runs value-log garbage collection until nothing more can be rewritten.
// It returns the number of value-log files rewritten.
func (e *Engine) GC(ctx context.Context) (int, error) {
	if e.closed.Load() {
		return 0, storage.ErrClosed
	}
	start := time.Now()

	rewrites := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewrites, err
		}
		err := e.db.RunValueLogGC(e.cfg.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) {
				break
			}
			return rewrites, fmt.Errorf("badger: gc: %w", err)
		}
		rewrites++
	}

	e.lastGCTime.Store(time.Now().UnixMilli())
	e.gcRuns.Add(1)
	if e.metricsGCRuns != nil {
		e.metricsGCRuns.Inc()
	}

	e.logger.Debug("gc completed",
		"rewrites", rewrites,
		"elapsed", time.Since(start))

	return rewrites, nil
}

// Stats implements storage.Statser. Keys are counted by a key-only scan.
func (e *Engine) Stats(ctx context.Context) (*storage.Stats, error) {
	keys, err := e.Keys(ctx, "")
	if err != nil {
		return nil, err
	}
	lsm, vlog := e.db.Size()

	return &storage.Stats{
		Keys:         uint64(len(keys)),
		Bytes:        uint64(lsm + vlog),
		LSMSize:      uint64(lsm),
		ValueLogSize: uint64(vlog),
		LastGCTime:   e.lastGCTime.Load(),
		GCRuns:       e.gcRuns.Load(),
	}, nil
}

// Close stops background work and closes the database.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		e.logger.Info("shutting down badger engine")
		e.closed.Store(true)

		close(e.stopCh)
		<-e.doneCh

		e.watchCancel()
		e.watchers.Wait()

		if cerr := e.db.Close(); cerr != nil {
			err = fmt.Errorf("badger: close db: %w", cerr)
		}
	})
	return err
}

// RegisterMetrics registers Badger size gauges and a GC counter.
func (e *Engine) RegisterMetrics(reg prometheus.Registerer) *Engine {
	e.metricsGCRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "persistval",
		Subsystem: "badger",
		Name:      "gc_runs_total",
		Help:      "Completed Badger value-log GC passes",
	})

	reg.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "persistval",
			Subsystem: "badger",
			Name:      "lsm_size_bytes",
			Help:      "Badger LSM tree size in bytes",
		}, func() float64 {
			lsm, _ := e.db.Size()
			return float64(lsm)
		}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "persistval",
			Subsystem: "badger",
			Name:      "value_log_size_bytes",
			Help:      "Badger value log size in bytes",
		}, func() float64 {
			_, vlog := e.db.Size()
			return float64(vlog)
		}),
		e.metricsGCRuns,
	)

	return e
}

func (e *Engine) gcLoop(interval time.Duration) {
	defer close(e.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := e.GC(ctx); err != nil {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()

		case <-e.stopCh:
			return
		}
	}
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
