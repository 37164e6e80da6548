// Package filestore keeps a namespace of keys in one JSON document on disk,
// the way a browser keeps one localStorage area per origin.
//
// The document maps each key to its value. Values that are valid UTF-8 are
// stored as JSON strings, so a JSON-encoded "dark" appears as "\"dark\"".
// Other values are stored as {"base64": "..."}.
//
// Writes replace the document atomically (temp file, fsync, rename). Writes
// from other processes are picked up through fsnotify and reported to
// watchers, key by key.
package filestore
