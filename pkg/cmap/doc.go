// Package cmap provides a concurrent-safe, string-keyed sharded map.
//
// Keys are assigned to shards with murmur3, so shard placement is stable
// across processes. Each shard has its own RWMutex.
//
// Usage:
//
//	m := cmap.New[[]byte]()
//	m.Set("theme", []byte(`"dark"`))
//	val, ok := m.Get("theme")
package cmap
