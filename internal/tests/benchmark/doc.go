// Package benchmark contains benchmarks for persisted values.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
//
// Benchmarks cover:
//   - Store open (rehydration) and Set on every engine
//   - Codec encode and decode, plain and sealed
//   - Subscriber fan-out
package benchmark
