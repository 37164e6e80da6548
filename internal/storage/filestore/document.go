package filestore

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// document is the on-disk form of a namespace.
type document map[string]entry

type entry []byte

type binaryEntry struct {
	Base64 string `json:"base64"`
}

func (e entry) MarshalJSON() ([]byte, error) {
	if utf8.Valid(e) {
		return json.Marshal(string(e))
	}
	return json.Marshal(binaryEntry{Base64: base64.StdEncoding.EncodeToString(e)})
}

func (e *entry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = entry(s)
		return nil
	}
	var b binaryEntry
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("filestore: entry is neither string nor binary object: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(b.Base64)
	if err != nil {
		return fmt.Errorf("filestore: bad base64 entry: %w", err)
	}
	*e = raw
	return nil
}

func (d document) clone() document {
	out := make(document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// diff returns keys whose presence or value differs between a and b.
func diff(a, b document) []string {
	var changed []string
	for k, av := range a {
		bv, ok := b[k]
		if !ok || string(av) != string(bv) {
			changed = append(changed, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			changed = append(changed, k)
		}
	}
	return changed
}
