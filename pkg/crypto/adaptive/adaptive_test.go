package adaptive

import (
	"bytes"
	"errors"
	"testing"
)

var testKey = DeriveKey("correct horse battery staple", []byte("persistval-test"))

func TestNew(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if typ := c.Type(); typ != CipherAESGCM && typ != CipherChaCha20 {
		t.Errorf("New() returned unknown cipher type: %s", typ)
	}
}

func TestNewWithType_Errors(t *testing.T) {
	if _, err := NewWithType(make([]byte, 16), CipherAESGCM); !errors.Is(err, ErrKeySize) {
		t.Errorf("16-byte key error = %v, want ErrKeySize", err)
	}
	if _, err := NewWithType(testKey, "rot13"); err == nil {
		t.Error("unknown cipher type should fail")
	}
}

func TestRoundTrip(t *testing.T) {
	for _, typ := range []CipherType{CipherAESGCM, CipherChaCha20} {
		t.Run(string(typ), func(t *testing.T) {
			c, err := NewWithType(testKey, typ)
			if err != nil {
				t.Fatal(err)
			}
			if c.Type() != typ {
				t.Errorf("Type() = %s, want %s", c.Type(), typ)
			}

			plaintext := []byte(`{"theme":"dark"}`)
			aad := []byte("settings")

			sealed, err := c.Encrypt(plaintext, aad)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(sealed) != len(plaintext)+c.Overhead() {
				t.Errorf("sealed length = %d, want %d", len(sealed), len(plaintext)+c.Overhead())
			}
			if bytes.Contains(sealed, plaintext) {
				t.Error("sealed output contains plaintext")
			}

			opened, err := c.Decrypt(sealed, aad)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(opened, plaintext) {
				t.Errorf("Decrypt() = %q, want %q", opened, plaintext)
			}

			if _, err := c.Decrypt(sealed, []byte("other-key")); err == nil {
				t.Error("Decrypt() with different additional data should fail")
			}

			tampered := append([]byte(nil), sealed...)
			tampered[len(tampered)-1] ^= 0xff
			if _, err := c.Decrypt(tampered, aad); err == nil {
				t.Error("Decrypt() of tampered data should fail")
			}

			if _, err := c.Decrypt([]byte{1, 2}, aad); !errors.Is(err, ErrCiphertextShort) {
				t.Errorf("short ciphertext error = %v, want ErrCiphertextShort", err)
			}
		})
	}
}

func TestEncrypt_NonceIsRandom(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.Encrypt([]byte("same"), nil)
	b, _ := c.Encrypt([]byte("same"), nil)
	if bytes.Equal(a, b) {
		t.Error("two encryptions of the same plaintext should differ")
	}
}

func TestDeriveKey(t *testing.T) {
	a := DeriveKey("pass", []byte("salt"))
	b := DeriveKey("pass", []byte("salt"))
	c := DeriveKey("pass", []byte("pepper"))

	if len(a) != KeySize {
		t.Fatalf("len = %d, want %d", len(a), KeySize)
	}
	if !bytes.Equal(a, b) {
		t.Error("DeriveKey should be deterministic")
	}
	if bytes.Equal(a, c) {
		t.Error("different salts should yield different keys")
	}
}
