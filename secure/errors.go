package secure

import "errors"

var (
	// ErrHandshakeNotComplete indicates the handshake is still in progress.
	ErrHandshakeNotComplete = errors.New("handshake not complete")

	// ErrHandshakeComplete indicates the handshake already finished.
	ErrHandshakeComplete = errors.New("handshake already complete")

	// ErrInvalidMessage indicates a handshake message that does not fit
	// the current state.
	ErrInvalidMessage = errors.New("invalid message for current handshake state")

	// ErrInvalidKey indicates an unusable key.
	ErrInvalidKey = errors.New("invalid key")

	// ErrSealFailed indicates a packet could not be sealed.
	ErrSealFailed = errors.New("seal failed")

	// ErrOpenFailed indicates a sealed packet failed authentication or
	// framing checks.
	ErrOpenFailed = errors.New("open failed")
)
