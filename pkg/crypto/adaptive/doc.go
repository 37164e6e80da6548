// Package adaptive seals persisted values with an AEAD cipher.
//
// The cipher is picked from hardware capabilities:
//
//   - AES-256-GCM on amd64 and arm64, where Go uses AES instructions
//   - ChaCha20-Poly1305 everywhere else
//
// Keys are 32 bytes. DeriveKey stretches a passphrase into one with
// argon2id so configuration never has to carry raw key material.
//
// Usage:
//
//	key := adaptive.DeriveKey(passphrase, salt)
//	c, err := adaptive.New(key)
//	sealed, err := c.Encrypt(plaintext, []byte(storageKey))
//	plaintext, err := c.Decrypt(sealed, []byte(storageKey))
package adaptive
