// Package webstorage implements storage.Backend on the browser's
// window.localStorage when compiled for js/wasm.
//
// localStorage only holds strings. Values that are valid UTF-8 are stored
// as-is, so a JSON-encoded value reads back exactly as a page script would
// have written it. Other values are stored base64-encoded behind BinaryPrefix.
//
// On every other platform Open returns storage.ErrUnavailable.
package webstorage
