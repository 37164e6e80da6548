package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/yndnr/persistval/internal/codec"
	"github.com/yndnr/persistval/internal/persist"
	"github.com/yndnr/persistval/internal/storage"
)

// BenchmarkStoreSet benchmarks Set, which encodes and writes every value.
func BenchmarkStoreSet(b *testing.B) {
	for _, size := range PayloadSizes {
		b.Run(fmt.Sprintf("bytes_%d", size), func(b *testing.B) {
			runWithEngines(b, func(b *testing.B, backend storage.Backend) {
				ctx := context.Background()
				s, err := persist.Open(ctx, backend, "settings", newSettings(size))
				if err != nil {
					b.Fatalf("Open failed: %v", err)
				}
				defer s.Close()

				b.ResetTimer()
				b.ReportAllocs()

				for i := 0; i < b.N; i++ {
					err := s.Update(func(cur settings) settings {
						cur.FontSize = i
						return cur
					})
					if err != nil {
						b.Fatalf("Update failed: %v", err)
					}
				}

				b.StopTimer()
				reportMemory(b, "mem")
			})
		})
	}
}

// BenchmarkStoreOpen benchmarks opening a store over an existing value:
// read, decode, resolve and the write-back.
func BenchmarkStoreOpen(b *testing.B) {
	runWithEngines(b, func(b *testing.B, backend storage.Backend) {
		ctx := context.Background()
		seed, err := persist.Open(ctx, backend, "settings", newSettings(1024))
		if err != nil {
			b.Fatalf("seed failed: %v", err)
		}
		seed.Close()

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			s, err := persist.Open(ctx, backend, "settings", settings{})
			if err != nil {
				b.Fatalf("Open failed: %v", err)
			}
			s.Close()
		}
	})
}

// BenchmarkStoreOpenCodec compares codecs on the open path.
func BenchmarkStoreOpenCodec(b *testing.B) {
	for _, name := range codec.Names() {
		b.Run(name, func(b *testing.B) {
			c, err := codec.ByName(name)
			if err != nil {
				b.Fatalf("ByName failed: %v", err)
			}
			backend := openBackend(b, "memory")
			ctx := context.Background()
			seed, err := persist.Open(ctx, backend, "settings", newSettings(1024), persist.WithCodec(c))
			if err != nil {
				b.Fatalf("seed failed: %v", err)
			}
			seed.Close()

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				s, err := persist.Open(ctx, backend, "settings", settings{}, persist.WithCodec(c))
				if err != nil {
					b.Fatalf("Open failed: %v", err)
				}
				s.Close()
			}
		})
	}
}

// BenchmarkStoreSubscribers benchmarks Set with a growing subscriber list.
func BenchmarkStoreSubscribers(b *testing.B) {
	for _, subs := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("subscribers_%d", subs), func(b *testing.B) {
			ctx := context.Background()
			s, err := persist.Open(ctx, openBackend(b, "memory"), "count", 0)
			if err != nil {
				b.Fatalf("Open failed: %v", err)
			}
			defer s.Close()

			var seen int
			for j := 0; j < subs; j++ {
				s.Subscribe(func(v int) { seen += v })
			}

			b.ResetTimer()
			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				if err := s.Set(i + 1); err != nil {
					b.Fatalf("Set failed: %v", err)
				}
			}
		})
	}
}
