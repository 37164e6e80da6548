// Package codec converts stored values to and from bytes.
//
// JSON is the default and produces the same text JSON.stringify would, so a
// value written by a web page under a localStorage key can be read back.
// CBOR and YAML are available for non-browser backends. Sealed wraps any
// codec with authenticated encryption bound to the storage key.
package codec
