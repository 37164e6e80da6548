// Package sqlite implements storage.Backend on a SQLite database using the
// pure-Go modernc.org/sqlite driver.
//
// All namespaces share one kv table keyed by (namespace, key).
package sqlite
