package storage

import (
	"context"
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrClosed        = errors.New("backend closed")
	ErrUnavailable   = errors.New("backend unavailable")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrEmptyKey      = errors.New("key is empty")
)

// Backend is a flat string-keyed key/value store.
//
// Implementations must be safe for concurrent use. Get returns
// ErrKeyNotFound when the key is absent.
type Backend interface {
	// Name returns the engine name ("memory", "badger", ...).
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Keys lists keys with the given prefix in ascending order.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// Notifier is implemented by backends that report writes to a key, including
// writes made through other handles or processes.
type Notifier interface {
	// Watch calls fn with the key of every changed entry until stop is called.
	Watch(fn func(key string)) (stop func(), err error)
}

// Statser is implemented by backends that can report their size.
type Statser interface {
	Stats(ctx context.Context) (*Stats, error)
}

// Stats contains backend statistics. Engine-specific fields are zero when
// not applicable.
type Stats struct {
	Keys  uint64 `json:"keys"`
	Bytes uint64 `json:"bytes"`

	// Badger only.
	LSMSize      uint64 `json:"lsm_size,omitempty"`
	ValueLogSize uint64 `json:"value_log_size,omitempty"`
	LastGCTime   int64  `json:"last_gc_time,omitempty"` // Unix milliseconds
	GCRuns       uint64 `json:"gc_runs,omitempty"`
}

// ValidateKey rejects keys no backend can store.
func ValidateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

// Config selects and configures a backend.
type Config struct {
	// Engine is one of "memory", "badger", "sqlite", "file", "webstorage".
	// Default: "file"
	Engine string `koanf:"engine"`

	// Dir is the data directory for on-disk engines.
	Dir string `koanf:"dir"`

	// Namespace names the document (file) or table prefix (sqlite).
	// Default: "default"
	Namespace string `koanf:"namespace"`

	// QuotaBytes caps the total size of keys plus values for the memory
	// engine. Zero means unlimited.
	QuotaBytes int64 `koanf:"quota_bytes"`

	Badger BadgerConfig `koanf:"badger"`
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m
	GCInterval string `koanf:"gc_interval"`

	// GCThreshold is the value-log discard ratio (0.0-1.0) that triggers a rewrite.
	// Default: 0.5
	GCThreshold float64 `koanf:"gc_threshold"`

	// CacheSize is the block cache size in bytes.
	// Default: 16MB
	CacheSize int64 `koanf:"cache_size"`

	// SyncWrites fsyncs after each write.
	// Default: true, so a returned Set is durable.
	SyncWrites bool `koanf:"sync_writes"`
}

// DefaultConfig returns the default backend configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Engine:    "file",
		Dir:       dir,
		Namespace: "default",
		Badger:    DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:  "10m",
		GCThreshold: 0.5,
		CacheSize:   16 << 20,
		SyncWrites:  true,
	}
}

// Validate checks the configuration for the selected engine.
func (c Config) Validate() error {
	switch c.Engine {
	case "memory", "webstorage":
	case "badger", "sqlite", "file":
		if c.Dir == "" {
			return fmt.Errorf("storage: dir is required for engine %q", c.Engine)
		}
	default:
		return fmt.Errorf("storage: unknown engine %q", c.Engine)
	}
	if c.QuotaBytes < 0 {
		return fmt.Errorf("storage: quota_bytes must not be negative")
	}
	if c.Badger.GCThreshold < 0 || c.Badger.GCThreshold >= 1 {
		return fmt.Errorf("storage: badger.gc_threshold must be in [0, 1)")
	}
	return nil
}
