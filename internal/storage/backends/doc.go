// Package backends opens the storage.Backend selected by a storage.Config.
package backends
