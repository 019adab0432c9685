package wire

import "errors"

// Common errors for packet framing.
var (
	// ErrInvalidFormat indicates a packet that does not follow the tagged
	// frame format: missing marker byte, truncated header, or a payload
	// that is inconsistent with its header.
	ErrInvalidFormat = errors.New("invalid packet format")

	// ErrUnknownTag indicates a tag byte outside the set of known codecs.
	ErrUnknownTag = errors.New("unknown format tag")

	// ErrFrameTooLarge indicates a frame whose sample count cannot be
	// represented in the 16-bit header field.
	ErrFrameTooLarge = errors.New("frame exceeds maximum sample count")
)
