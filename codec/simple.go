package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/opd-ai/voicewire/pcm"
	"github.com/opd-ai/voicewire/wire"
)

// CompressionRatio is the fixed decimation stride of the simple codec:
// one sample kept out of every CompressionRatio input samples.
const CompressionRatio = 10

// SimpleCodec is the zero-dependency fallback codec. Encoding keeps
// every tenth sample quantized to 16 bits; decoding rebuilds the frame
// by linear interpolation between the retained samples. Quality is poor
// but construction can never fail, which is exactly what the last
// fallback tier needs.
type SimpleCodec struct {
	closed bool
}

// NewSimpleCodec creates a simple decimation codec. It never fails.
func NewSimpleCodec() *SimpleCodec {
	return &SimpleCodec{}
}

// Encode compresses a PCM frame into a decimated packet.
//
// The payload holds ceil(len(frame)/10) big-endian int16 samples, so the
// packet size depends only on the frame length, never on its contents.
// An empty frame encodes to a header-only packet.
//
// Parameters:
//   - frame: PCM samples in [-1.0, 1.0]; values outside are clamped
//
// Returns:
//   - []byte: complete packet with tag wire.TagDecimated
//   - error: wire.ErrFrameTooLarge when the frame exceeds 65535 samples,
//     ErrCodecClosed after Close
func (c *SimpleCodec) Encode(frame []float32) ([]byte, error) {
	if c.closed {
		return nil, ErrCodecClosed
	}
	n := len(frame)
	if n > wire.MaxFrameSamples {
		return nil, fmt.Errorf("%w: frame has %d samples, limit %d",
			wire.ErrFrameTooLarge, n, wire.MaxFrameSamples)
	}

	kept := retainedCount(n)
	payload := make([]byte, kept*2)
	for i, j := 0, 0; i < n; i, j = i+CompressionRatio, j+2 {
		q := pcm.QuantizeSample(frame[i])
		binary.BigEndian.PutUint16(payload[j:j+2], uint16(q))
	}
	return wire.NewPacket(wire.TagDecimated, n, payload)
}

// Decode rebuilds a PCM frame from a decimated packet. The output
// length always equals the sample count recorded in the header; the
// samples between two retained values are linearly interpolated, and
// the final window holds the last retained value when no successor
// exists.
//
// Parameters:
//   - packet: complete packet produced by Encode
//
// Returns:
//   - []float32: reconstructed frame of exactly the recorded length
//   - error: wire.ErrInvalidFormat when the packet is malformed, carries
//     a different tag, or its payload does not match the recorded count;
//     ErrCodecClosed after Close
func (c *SimpleCodec) Decode(packet []byte) ([]float32, error) {
	if c.closed {
		return nil, ErrCodecClosed
	}
	tag, n, payload, err := wire.SplitPacket(packet)
	if err != nil {
		return nil, err
	}
	if tag != wire.TagDecimated {
		return nil, fmt.Errorf("%w: expected tag %s, got %s",
			wire.ErrInvalidFormat, wire.TagName(wire.TagDecimated), wire.TagName(tag))
	}
	kept := retainedCount(n)
	if len(payload) != kept*2 {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d for %d samples",
			wire.ErrInvalidFormat, len(payload), kept*2, n)
	}

	frame := make([]float32, n)
	for k := 0; k < kept; k++ {
		current := pcm.DequantizeSample(int16(binary.BigEndian.Uint16(payload[k*2 : k*2+2])))
		next := current
		if k+1 < kept {
			next = pcm.DequantizeSample(int16(binary.BigEndian.Uint16(payload[(k+1)*2 : (k+1)*2+2])))
		}

		start := k * CompressionRatio
		end := start + CompressionRatio
		if end > n {
			end = n
		}
		for i := start; i < end; i++ {
			t := float32(i-start) / CompressionRatio
			frame[i] = current + (next-current)*t
		}
	}
	return frame, nil
}

// Close marks the codec closed. The simple codec holds no resources.
func (c *SimpleCodec) Close() error {
	c.closed = true
	return nil
}

// retainedCount returns how many samples survive decimation of a frame
// of n samples: ceil(n / CompressionRatio).
func retainedCount(n int) int {
	return (n + CompressionRatio - 1) / CompressionRatio
}

// SimpleProvider exposes the simple codec through the provider
// interface so it can terminate a registry chain or be hosted inside a
// worker session.
type SimpleProvider struct{}

// NewSimpleProvider creates the provider for the simple codec.
func NewSimpleProvider() *SimpleProvider {
	return &SimpleProvider{}
}

// Name returns the provider identifier.
func (p *SimpleProvider) Name() string { return "simple" }

// TryConstruct builds a simple codec. It succeeds for every valid
// configuration.
func (p *SimpleProvider) TryConstruct(config Config) (Codec, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	return NewSimpleCodec(), nil
}
