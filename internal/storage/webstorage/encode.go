package webstorage

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// BinaryPrefix marks a base64-encoded binary value.
const BinaryPrefix = "\x00base64,"

// DefaultNamespace maps keys to localStorage items without a prefix.
const DefaultNamespace = "default"

func encodeValue(v []byte) string {
	if utf8.Valid(v) && !strings.HasPrefix(string(v), BinaryPrefix) {
		return string(v)
	}
	return BinaryPrefix + base64.StdEncoding.EncodeToString(v)
}

func decodeValue(s string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(s, BinaryPrefix); ok {
		return base64.StdEncoding.DecodeString(rest)
	}
	return []byte(s), nil
}

// itemKey returns the localStorage item name for key in namespace.
func itemKey(namespace, key string) string {
	if namespace == "" || namespace == DefaultNamespace {
		return key
	}
	return namespace + "/" + key
}

// storeKey reverses itemKey. ok is false for items of other namespaces.
func storeKey(namespace, item string) (string, bool) {
	if namespace == "" || namespace == DefaultNamespace {
		return item, true
	}
	return strings.CutPrefix(item, namespace+"/")
}
