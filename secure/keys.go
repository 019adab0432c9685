package secure

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"
)

// KeyPair is a Curve25519 key pair identifying one pipeline endpoint.
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// GenerateKeyPair creates a new random key pair.
func GenerateKeyPair() (*KeyPair, error) {
	publicKey, privateKey, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &KeyPair{
		Public:  *publicKey,
		Private: *privateKey,
	}, nil
}

// FromPrivateKey derives the full key pair from an existing private key.
func FromPrivateKey(privateKey [32]byte) (*KeyPair, error) {
	if isZeroKey(privateKey) {
		return nil, fmt.Errorf("%w: private key is all zeros", ErrInvalidKey)
	}

	publicKey, err := curve25519.X25519(privateKey[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	pair := &KeyPair{Private: privateKey}
	copy(pair.Public[:], publicKey)
	return pair, nil
}

// isZeroKey checks if a key consists of all zeros.
func isZeroKey(key [32]byte) bool {
	for _, b := range key {
		if b != 0 {
			return false
		}
	}
	return true
}

// zeroBytes wipes a byte slice.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
