// Package confloader loads configuration into koanf-tagged structs.
//
// Sources, lowest priority first:
//
//  1. Values already in the target struct (defaults)
//  2. A YAML file
//  3. Environment variables
//  4. A map, typically built from command-line flags
//
// Environment variables are PERSISTVAL_ followed by the key path, with
// "__" between path segments:
//
//	PERSISTVAL_STORAGE__ENGINE=badger      -> storage.engine
//	PERSISTVAL_STORE__FALSY_FALLBACK=false -> store.falsy_fallback
package confloader
