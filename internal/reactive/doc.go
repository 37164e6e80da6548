// Package reactive provides Value, an observable container for a single
// value.
//
// Changes flow through on-change hooks before they are committed, then to
// subscribers:
//
//	v := reactive.New("light")
//	v.OnChange(func(s string) error { return save(s) })
//	v.Subscribe(func(s string) { render(s) })
//	err := v.Set("dark") // save runs, then render
//
// A hook that returns an error vetoes the change.
package reactive
