// Package persist binds a reactive value to a key in a storage backend.
//
// Open reads the key, decodes it and seeds a reactive.Value with the result
// (or with the initial value when the key is absent). From then on every
// change to the value is encoded and written back before the setter
// returns:
//
//	theme, err := persist.Open(ctx, backend, "theme", "light")
//	if err != nil {
//		return err
//	}
//	theme.Subscribe(func(t string) { fmt.Println("theme:", t) })
//	err = theme.Set("dark") // backend now holds "dark" under "theme"
//
// By default a stored value that is falsy (false, 0, "", null) is treated
// as absent. WithPresenceCheck keeps any stored value.
package persist
