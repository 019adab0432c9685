package worker

import "errors"

// Sentinel errors for the worker session protocol.
// These enable reliable error classification using errors.Is().

var (
	// ErrNotInitialized indicates an encode or decode request reached a
	// session that holds no codec.
	ErrNotInitialized = errors.New("session not initialized")

	// ErrSessionClosed indicates the session goroutine has terminated.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionDestroyed indicates a pending request was abandoned
	// because the session was destroyed while it was in flight.
	ErrSessionDestroyed = errors.New("session destroyed")

	// ErrRequestTimeout indicates a request was not answered within the
	// client's deadline.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrMissingID indicates a request message without a correlation ID.
	ErrMissingID = errors.New("missing correlation id")
)
