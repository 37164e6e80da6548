// Package memory provides an in-process storage backend.
//
// Values live in a sharded concurrent map. An optional byte quota, counted
// as len(key)+len(value) over all entries, mirrors the per-origin quota of
// browser localStorage: a write that would exceed it fails with
// storage.ErrQuotaExceeded and leaves the previous value in place.
//
// Every successful Set or Delete is reported to watchers, so stores sharing
// one Backend observe each other's writes to the same key.
package memory
