package secure

import (
	"crypto/rand"
	"fmt"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"
)

// maxSealedSize bounds accepted sealed packets. The largest legal codec
// packet is far below this; anything bigger is hostile or corrupt.
const maxSealedSize = 1 << 20

// nonceSize is the secretbox nonce length prefixed to sealed packets.
const nonceSize = 24

// ChannelSealer protects packets with the cipher states of a completed
// handshake. The underlying ciphers are stateful (each seal advances a
// nonce), so Seal and Open are serialized and sealed packets must be
// opened in the order they were sealed.
type ChannelSealer struct {
	mu         sync.Mutex
	sendCipher cipherState
	recvCipher cipherState
}

// cipherState is the part of noise.CipherState the sealer uses.
type cipherState interface {
	Encrypt(out, ad, plaintext []byte) ([]byte, error)
	Decrypt(out, ad, ciphertext []byte) ([]byte, error)
}

// NewChannelSealer builds a sealer from a completed handshake.
//
// Returns:
//   - *ChannelSealer: sealer bound to this endpoint's direction
//   - error: ErrHandshakeNotComplete while the handshake is unfinished
func NewChannelSealer(h *Handshake) (*ChannelSealer, error) {
	if h == nil || !h.Complete() {
		return nil, ErrHandshakeNotComplete
	}
	if h.sendCipher == nil || h.recvCipher == nil {
		return nil, fmt.Errorf("%w: cipher states not available", ErrHandshakeNotComplete)
	}
	return &ChannelSealer{
		sendCipher: h.sendCipher,
		recvCipher: h.recvCipher,
	}, nil
}

// Seal encrypts one packet for the peer.
func (s *ChannelSealer) Seal(packet []byte) ([]byte, error) {
	if len(packet) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrSealFailed)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := s.sendCipher.Encrypt(nil, nil, packet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}
	return sealed, nil
}

// Open authenticates and decrypts one packet from the peer.
func (s *ChannelSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) == 0 || len(sealed) > maxSealedSize {
		return nil, fmt.Errorf("%w: sealed packet of %d bytes", ErrOpenFailed, len(sealed))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	packet, err := s.recvCipher.Decrypt(nil, nil, sealed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}
	return packet, nil
}

// PresharedSealer protects packets with a symmetric key both endpoints
// already hold. Each packet carries its own random nonce, so packets
// may be opened out of order and loss does not desynchronize the
// endpoints. Layout: [nonce(24)][ciphertext].
type PresharedSealer struct {
	key [32]byte
}

// NewPresharedSealer creates a sealer for the shared key.
func NewPresharedSealer(key [32]byte) (*PresharedSealer, error) {
	if isZeroKey(key) {
		return nil, fmt.Errorf("%w: shared key is all zeros", ErrInvalidKey)
	}
	return &PresharedSealer{key: key}, nil
}

// Seal encrypts one packet under a fresh random nonce.
func (s *PresharedSealer) Seal(packet []byte) ([]byte, error) {
	if len(packet) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrSealFailed)
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealFailed, err)
	}
	return secretbox.Seal(nonce[:], packet, &nonce, &s.key), nil
}

// Open authenticates and decrypts one sealed packet.
func (s *PresharedSealer) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead || len(sealed) > maxSealedSize {
		return nil, fmt.Errorf("%w: sealed packet of %d bytes", ErrOpenFailed, len(sealed))
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	packet, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", ErrOpenFailed)
	}
	return packet, nil
}
