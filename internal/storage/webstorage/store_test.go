//go:build !(js && wasm)

package webstorage

import (
	"errors"
	"testing"

	"github.com/yndnr/persistval/internal/storage"
)

func TestOpen_Unavailable(t *testing.T) {
	b, err := Open(DefaultNamespace)
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("Open() error = %v, want ErrUnavailable", err)
	}
	if b != nil {
		t.Error("Open() should not return a backend")
	}
}
