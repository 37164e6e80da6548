// Package fswatch reports changes to individual files.
//
// It watches the parent directory rather than the file itself, so files
// replaced by rename (editors, atomic writers) keep being observed.
package fswatch
