package benchmark

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/yndnr/persistval/internal/storage"
	"github.com/yndnr/persistval/internal/storage/backends"
	"github.com/yndnr/persistval/internal/telemetry/logger"
)

// Engines are the engines benchmarked. webstorage only exists in a browser.
var Engines = []string{"memory", "file", "sqlite", "badger"}

// PayloadSizes are the approximate encoded sizes of benchmarked values.
var PayloadSizes = []int{64, 1024, 16 * 1024}

// settings is a typical persisted value.
type settings struct {
	Theme    string            `json:"theme" cbor:"theme" yaml:"theme"`
	FontSize int               `json:"font_size" cbor:"font_size" yaml:"font_size"`
	Recent   []string          `json:"recent" cbor:"recent" yaml:"recent"`
	Flags    map[string]bool   `json:"flags" cbor:"flags" yaml:"flags"`
	Extra    map[string]string `json:"extra,omitempty" cbor:"extra,omitempty" yaml:"extra,omitempty"`
}

// newSettings builds a value whose JSON encoding is about size bytes.
func newSettings(size int) settings {
	s := settings{
		Theme:    "dark",
		FontSize: 14,
		Recent:   []string{"/home/user/a.txt", "/home/user/b.txt"},
		Flags:    map[string]bool{"autosave": true, "telemetry": false},
	}
	for i := 0; size > 128 && i < size/32; i++ {
		if s.Extra == nil {
			s.Extra = map[string]string{}
		}
		s.Extra[fmt.Sprintf("key-%04d", i)] = "some-setting-value"
	}
	return s
}

// openBackend opens engine in a temporary directory.
func openBackend(b *testing.B, engine string) storage.Backend {
	b.Helper()
	cfg := storage.DefaultConfig(b.TempDir())
	cfg.Engine = engine
	cfg.Badger.SyncWrites = false

	backend, err := backends.Open(cfg, logger.Discard())
	if err != nil {
		b.Fatalf("open %s: %v", engine, err)
	}
	b.Cleanup(func() { backend.Close() })
	return backend
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithEngines runs a benchmark function against every engine.
func runWithEngines(b *testing.B, benchFn func(b *testing.B, backend storage.Backend)) {
	for _, engine := range Engines {
		b.Run(engine, func(b *testing.B) {
			benchFn(b, openBackend(b, engine))
		})
	}
}
