package adaptive

import "golang.org/x/crypto/argon2"

// argon2id parameters: 2 passes over 16 MiB with 2 lanes.
const (
	argonTime    = 2
	argonMemory  = 16 * 1024
	argonThreads = 2
)

// DeriveKey stretches a passphrase into a KeySize key with argon2id.
// The same passphrase and salt always yield the same key.
func DeriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMemory, argonThreads, KeySize)
}
