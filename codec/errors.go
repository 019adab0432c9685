package codec

import "errors"

// Sentinel errors for codec operations.
// These enable reliable error classification using errors.Is().

var (
	// ErrCodecUnavailable indicates the codec capability is not present in
	// this build or on this host (for example, the native Opus library
	// requires cgo).
	ErrCodecUnavailable = errors.New("codec unavailable")

	// ErrConstruction indicates codec setup failed even though the
	// capability exists.
	ErrConstruction = errors.New("codec construction failed")

	// ErrEncodeFailed indicates a runtime encoding error.
	ErrEncodeFailed = errors.New("encode failed")

	// ErrDecodeFailed indicates a runtime decoding error.
	ErrDecodeFailed = errors.New("decode failed")

	// ErrCodecClosed indicates use of a codec after Close.
	ErrCodecClosed = errors.New("codec closed")

	// ErrInvalidConfig indicates a configuration that no codec can accept.
	ErrInvalidConfig = errors.New("invalid codec configuration")
)
