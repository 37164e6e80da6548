// Package badgerstore is the Badger storage engine: one embedded LSM store
// per namespace, with a background value-log GC loop, stream backups and
// Prometheus gauges.
//
// It lives outside package storage because Badger does not build for js/wasm.
package badgerstore
