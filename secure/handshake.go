package secure

import (
	"crypto/rand"
	"fmt"

	"github.com/flynn/noise"
	"github.com/sirupsen/logrus"
)

// Role defines which side of the handshake an endpoint plays.
type Role uint8

const (
	// Initiator starts the handshake and must know the peer's static key.
	Initiator Role = iota
	// Responder answers a handshake initiation.
	Responder
)

// String returns the role name for logging.
func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}

// Handshake runs the Noise IK pattern between two pipeline endpoints.
// IK fits a voice call: the caller dials a peer whose static key it
// already knows, and both sides end up mutually authenticated with
// fresh cipher states for the frame stream.
//
// Message flow: the initiator produces the first message with
// WriteMessage, the responder consumes it and produces the reply with
// WriteMessage, and the initiator completes by feeding the reply to
// ReadMessage.
type Handshake struct {
	role       Role
	state      *noise.HandshakeState
	sendCipher *noise.CipherState
	recvCipher *noise.CipherState
	complete   bool
}

// NewHandshake creates an IK handshake.
//
// Parameters:
//   - local: this endpoint's static key pair
//   - peerPublic: the peer's static public key; required for the
//     initiator, ignored for the responder
//   - role: Initiator or Responder
//
// Returns:
//   - *Handshake: handshake ready for its first message
//   - error: ErrInvalidKey (wrapped) for unusable keys
func NewHandshake(local *KeyPair, peerPublic []byte, role Role) (*Handshake, error) {
	if local == nil || isZeroKey(local.Private) {
		return nil, fmt.Errorf("%w: missing local static key", ErrInvalidKey)
	}
	if role == Initiator && len(peerPublic) != 32 {
		return nil, fmt.Errorf("%w: initiator requires the peer public key (32 bytes), got %d",
			ErrInvalidKey, len(peerPublic))
	}

	staticKey := noise.DHKey{
		Private: make([]byte, 32),
		Public:  make([]byte, 32),
	}
	copy(staticKey.Private, local.Private[:])
	copy(staticKey.Public, local.Public[:])

	cipherSuite := noise.NewCipherSuite(noise.DH25519, noise.CipherChaChaPoly, noise.HashSHA256)
	config := noise.Config{
		CipherSuite:   cipherSuite,
		Random:        rand.Reader,
		Pattern:       noise.HandshakeIK,
		Initiator:     role == Initiator,
		StaticKeypair: staticKey,
	}
	if role == Initiator {
		config.PeerStatic = make([]byte, 32)
		copy(config.PeerStatic, peerPublic)
	}

	state, err := noise.NewHandshakeState(config)
	if err != nil {
		zeroBytes(staticKey.Private)
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewHandshake",
		"role":     role.String(),
	}).Debug("Created endpoint handshake")

	return &Handshake{role: role, state: state}, nil
}

// WriteMessage produces the next outgoing handshake message.
//
// The initiator calls it once with no received message. The responder
// calls it once with the initiator's message, producing the reply that
// completes its side.
//
// Returns:
//   - []byte: message to deliver to the peer
//   - bool: whether this side's handshake is now complete
//   - error: ErrHandshakeComplete after completion, ErrInvalidMessage
//     when the received message cannot be processed
func (h *Handshake) WriteMessage(payload, received []byte) ([]byte, bool, error) {
	if h.complete {
		return nil, false, ErrHandshakeComplete
	}

	if h.role == Responder {
		if received == nil {
			return nil, false, fmt.Errorf("%w: responder requires the initiator's message", ErrInvalidMessage)
		}
		if _, _, _, err := h.state.ReadMessage(nil, received); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
	}

	message, sendCipher, recvCipher, err := h.state.WriteMessage(nil, payload)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	h.sendCipher = sendCipher
	h.recvCipher = recvCipher

	// The responder's reply is the final IK message; the initiator must
	// still read that reply before its cipher states are usable.
	if h.role == Responder {
		h.complete = true
	}
	return message, h.complete, nil
}

// ReadMessage completes the initiator's side by processing the
// responder's reply.
//
// Returns:
//   - []byte: payload the responder attached to its reply
//   - bool: whether the handshake is now complete
//   - error: ErrHandshakeComplete after completion, ErrInvalidMessage
//     for a reply that fails authentication
func (h *Handshake) ReadMessage(message []byte) ([]byte, bool, error) {
	if h.complete {
		return nil, false, ErrHandshakeComplete
	}
	if h.role != Initiator {
		return nil, false, fmt.Errorf("%w: only the initiator reads the reply", ErrInvalidMessage)
	}

	payload, recvCipher, sendCipher, err := h.state.ReadMessage(nil, message)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	h.recvCipher = recvCipher
	h.sendCipher = sendCipher
	h.complete = true

	logrus.WithFields(logrus.Fields{
		"function": "ReadMessage",
		"role":     h.role.String(),
	}).Debug("Handshake complete")
	return payload, true, nil
}

// Complete reports whether cipher states are established.
func (h *Handshake) Complete() bool {
	return h.complete
}

// PeerPublicKey returns the authenticated static key of the peer.
func (h *Handshake) PeerPublicKey() ([]byte, error) {
	if !h.complete {
		return nil, ErrHandshakeNotComplete
	}
	remote := h.state.PeerStatic()
	if len(remote) == 0 {
		return nil, fmt.Errorf("%w: peer static key not available", ErrHandshakeNotComplete)
	}
	key := make([]byte, len(remote))
	copy(key, remote)
	return key, nil
}
