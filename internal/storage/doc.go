// Package storage defines the flat key/value backends that persisted values
// live in.
//
// A Backend maps string keys to opaque byte values, like a browser origin's
// localStorage. Implementations:
//
//   - storage/badgerstore: Badger, an embedded LSM store with value-log GC
//   - storage/memory: in-process sharded map with an optional byte quota
//   - storage/filestore: one JSON document per namespace, watched with fsnotify
//   - storage/sqlite: a single key/value table in SQLite
//   - storage/webstorage: window.localStorage under js/wasm
//
// This package itself must stay buildable for js/wasm, so it imports no engine.
//
// Backends that can observe writes made by other handles implement Notifier.
// Backends that can report their size implement Statser.
package storage
