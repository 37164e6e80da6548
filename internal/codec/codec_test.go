package codec

import (
	"errors"
	"strings"
	"testing"

	"github.com/yndnr/persistval/pkg/crypto/adaptive"
)

type settings struct {
	Theme string `json:"theme" cbor:"theme" yaml:"theme"`
	Size  int    `json:"size" cbor:"size" yaml:"size"`
}

func TestJSON_MatchesStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "dark", `"dark"`},
		{"number", 3, `3`},
		{"bool", true, `true`},
		{"null", nil, `null`},
		{"html not escaped", "<b>&", `"<b>&"`},
		{"object", settings{Theme: "dark", Size: 2}, `{"theme":"dark","size":2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JSON.Marshal(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCodecs_RoundTrip(t *testing.T) {
	in := settings{Theme: "dark", Size: 14}
	for _, c := range []Codec{JSON, CBOR, YAML} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			if err != nil {
				t.Fatal(err)
			}
			var out settings
			if err := c.Unmarshal(data, &out); err != nil {
				t.Fatal(err)
			}
			if out != in {
				t.Errorf("round trip = %+v, want %+v", out, in)
			}
		})
	}
}

func TestCodecs_RejectGarbage(t *testing.T) {
	for _, c := range []Codec{JSON, CBOR, YAML} {
		t.Run(c.Name(), func(t *testing.T) {
			var out settings
			if err := c.Unmarshal([]byte("{{{ not valid \xff"), &out); err == nil {
				t.Error("Unmarshal() of garbage should fail")
			}
		})
	}
}

func TestCBOR_Deterministic(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1, "c": 3}
	first, err := CBOR.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := CBOR.Marshal(m)
		if string(again) != string(first) {
			t.Fatal("CBOR encoding is not deterministic")
		}
	}

	var out any
	if err := CBOR.Unmarshal(first, &out); err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(map[string]any); !ok {
		t.Errorf("decoded map type = %T, want map[string]any", out)
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", NameJSON, false},
		{"json", NameJSON, false},
		{"cbor", NameCBOR, false},
		{"yaml", NameYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ByName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ByName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && c.Name() != tt.want {
				t.Errorf("ByName(%q).Name() = %q, want %q", tt.name, c.Name(), tt.want)
			}
		})
	}
	if got := strings.Join(Names(), ","); got != "cbor,json,yaml" {
		t.Errorf("Names() = %s", got)
	}
}

func newCipher(t *testing.T, passphrase string) adaptive.Cipher {
	t.Helper()
	c, err := adaptive.New(adaptive.DeriveKey(passphrase, []byte("0123456789abcdef")))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestSealed(t *testing.T) {
	c := newCipher(t, "correct horse")
	sealed := Sealed(JSON, c, "theme")

	if sealed.Name() != "sealed+json" {
		t.Errorf("Name() = %q", sealed.Name())
	}

	data, err := sealed.Marshal("dark")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "dark") {
		t.Error("sealed output contains plaintext")
	}

	var out string
	if err := sealed.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out != "dark" {
		t.Errorf("Unmarshal() = %q, want dark", out)
	}

	t.Run("other key", func(t *testing.T) {
		var s string
		err := Sealed(JSON, c, "other").Unmarshal(data, &s)
		if !errors.Is(err, ErrSealed) {
			t.Errorf("Unmarshal() under another key = %v, want ErrSealed", err)
		}
	})

	t.Run("wrong passphrase", func(t *testing.T) {
		var s string
		err := Sealed(JSON, newCipher(t, "wrong"), "theme").Unmarshal(data, &s)
		if !errors.Is(err, ErrSealed) {
			t.Errorf("Unmarshal() with wrong key = %v, want ErrSealed", err)
		}
	})

	t.Run("tampered", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[len(bad)-1] ^= 0xff
		var s string
		if err := sealed.Unmarshal(bad, &s); !errors.Is(err, ErrSealed) {
			t.Errorf("Unmarshal() of tampered data = %v, want ErrSealed", err)
		}
	})
}
