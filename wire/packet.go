package wire

import (
	"encoding/binary"
	"fmt"
)

// Packet framing constants.
const (
	// Marker is the first byte of every voicewire packet.
	Marker = 0x4F

	// TagOpus marks a payload produced by the Opus codec tier.
	TagOpus = 0x52

	// TagDecimated marks a payload produced by the decimation codec tier.
	TagDecimated = 0x50

	// HeaderSize is the fixed size of the packet header in bytes.
	HeaderSize = 4

	// MaxFrameSamples is the largest frame length representable in the
	// 16-bit sample count field. Longer frames must be split before
	// encoding.
	MaxFrameSamples = 65535
)

// KnownTag reports whether tag names a codec this format defines.
func KnownTag(tag byte) bool {
	switch tag {
	case TagOpus, TagDecimated:
		return true
	default:
		return false
	}
}

// TagName returns a human-readable name for a format tag, for logging.
func TagName(tag byte) string {
	switch tag {
	case TagOpus:
		return "opus"
	case TagDecimated:
		return "decimated"
	default:
		return fmt.Sprintf("unknown(0x%02X)", tag)
	}
}

// EncodeHeader builds the 4-byte packet header for the given tag and
// original sample count.
//
// Wire format:
//
//	[MARKER(1)][TAG(1)][SAMPLE_COUNT(2, big-endian)]
//
// Returns ErrUnknownTag for a tag outside the defined set and
// ErrFrameTooLarge when sampleCount does not fit in 16 bits.
func EncodeHeader(tag byte, sampleCount int) ([]byte, error) {
	if !KnownTag(tag) {
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownTag, tag)
	}
	if sampleCount < 0 || sampleCount > MaxFrameSamples {
		return nil, fmt.Errorf("%w: %d samples (max %d)", ErrFrameTooLarge, sampleCount, MaxFrameSamples)
	}

	header := make([]byte, HeaderSize)
	header[0] = Marker
	header[1] = tag
	binary.BigEndian.PutUint16(header[2:4], uint16(sampleCount))
	return header, nil
}

// ParseHeader validates and decodes a packet header.
//
// The input may be a bare header or a full packet; only the first
// HeaderSize bytes are examined. Returns ErrInvalidFormat when the input is
// shorter than a header or does not begin with the marker byte. The tag is
// returned as-is: dispatching on it, and rejecting unknown values, is the
// decoder's concern.
func ParseHeader(data []byte) (tag byte, sampleCount int, err error) {
	if len(data) < HeaderSize {
		return 0, 0, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidFormat, len(data), HeaderSize)
	}
	if data[0] != Marker {
		return 0, 0, fmt.Errorf("%w: bad marker byte 0x%02X", ErrInvalidFormat, data[0])
	}

	return data[1], int(binary.BigEndian.Uint16(data[2:4])), nil
}

// NewPacket assembles a complete packet from a tag, the original sample
// count, and an encoded payload.
func NewPacket(tag byte, sampleCount int, payload []byte) ([]byte, error) {
	header, err := EncodeHeader(tag, sampleCount)
	if err != nil {
		return nil, err
	}

	packet := make([]byte, 0, HeaderSize+len(payload))
	packet = append(packet, header...)
	packet = append(packet, payload...)
	return packet, nil
}

// SplitPacket separates a packet into its parsed header fields and payload.
// The returned payload aliases the input slice.
func SplitPacket(packet []byte) (tag byte, sampleCount int, payload []byte, err error) {
	tag, sampleCount, err = ParseHeader(packet)
	if err != nil {
		return 0, 0, nil, err
	}
	return tag, sampleCount, packet[HeaderSize:], nil
}
