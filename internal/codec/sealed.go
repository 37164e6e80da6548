package codec

import (
	"errors"
	"fmt"

	"github.com/yndnr/persistval/pkg/crypto/adaptive"
)

// ErrSealed is returned when a sealed value cannot be opened.
var ErrSealed = errors.New("codec: cannot open sealed value")

type sealedCodec struct {
	inner  Codec
	cipher adaptive.Cipher
	aad    []byte
}

// Sealed encrypts the output of inner with c. The storage key is bound as
// additional data, so a value copied to another key fails to open.
func Sealed(inner Codec, c adaptive.Cipher, key string) Codec {
	if inner == nil {
		inner = JSON
	}
	return &sealedCodec{inner: inner, cipher: c, aad: []byte(key)}
}

func (s *sealedCodec) Name() string {
	return "sealed+" + s.inner.Name()
}

func (s *sealedCodec) Marshal(v any) ([]byte, error) {
	plain, err := s.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return s.cipher.Encrypt(plain, s.aad)
}

func (s *sealedCodec) Unmarshal(data []byte, v any) error {
	plain, err := s.cipher.Decrypt(data, s.aad)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSealed, err)
	}
	return s.inner.Unmarshal(plain, v)
}
