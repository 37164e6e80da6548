// Package main provides the entry point for persistval.
//
// persistval inspects and edits values persisted under string keys, the
// same values applications hold through persist.Store:
//
//   - Reading and writing values (get, set, keys, delete)
//   - Following a value as other processes change it (watch)
//   - Backend maintenance (stats, gc, backup, restore)
//
// Usage:
//
//	persistval [global flags] command [flags] [args]
//	persistval --engine sqlite get --initial '"light"' theme
//	persistval -o json keys --prefix app.
//	persistval shell
package main
