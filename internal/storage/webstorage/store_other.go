//go:build !(js && wasm)

package webstorage

import (
	"fmt"

	"github.com/yndnr/persistval/internal/storage"
)

// Open reports that localStorage does not exist outside a browser.
func Open(namespace string) (storage.Backend, error) {
	return nil, fmt.Errorf("webstorage: localStorage requires js/wasm: %w", storage.ErrUnavailable)
}
