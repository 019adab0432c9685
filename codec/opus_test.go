package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicewire/wire"
)

func TestNewOpusDecoderValidation(t *testing.T) {
	_, err := NewOpusDecoder(Config{Channels: 5, SampleRate: 48000, FrameSize: 960})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	assert.NoError(t, d.Close())
}

func TestOpusDecoderRejectsForeignTag(t *testing.T) {
	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	packet, err := NewSimpleCodec().Encode(make([]float32, 100))
	require.NoError(t, err)

	frame, err := d.DecodePacket(packet)
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, wire.ErrInvalidFormat)
}

func TestOpusDecoderRejectsMalformedPacket(t *testing.T) {
	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	tests := []struct {
		name   string
		packet []byte
	}{
		{"nil_packet", nil},
		{"short_packet", []byte{wire.Marker}},
		{"bad_marker", []byte{0x7F, wire.TagOpus, 0x03, 0xC0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.DecodePacket(tt.packet)
			assert.ErrorIs(t, err, wire.ErrInvalidFormat)
		})
	}
}

func TestOpusDecoderEmptyPayload(t *testing.T) {
	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	packet, err := wire.EncodeHeader(wire.TagOpus, 960)
	require.NoError(t, err)

	_, err = d.DecodePacket(packet)
	assert.ErrorIs(t, err, ErrDecodeFailed)
}

func TestOpusDecoderGarbagePayload(t *testing.T) {
	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	defer d.Close()

	packet, err := wire.NewPacket(wire.TagOpus, 960, bytes.Repeat([]byte{0xFF}, 64))
	require.NoError(t, err)

	frame, err := d.DecodePacket(packet)
	assert.Nil(t, frame)
	assert.ErrorIs(t, err, ErrDecodeFailed, "undecodable payloads surface as decode failures for the silence policy")
}

func TestOpusDecoderClosed(t *testing.T) {
	d, err := NewOpusDecoder(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, d.Close())

	packet, err := wire.NewPacket(wire.TagOpus, 960, []byte{0x01})
	require.NoError(t, err)

	_, err = d.DecodePacket(packet)
	assert.ErrorIs(t, err, ErrCodecClosed)
}

func TestOpusProvider(t *testing.T) {
	p := NewOpusProvider()
	assert.Equal(t, "opus", p.Name())

	// Whether the native codec exists depends on the build; the provider
	// must either construct a working codec or decline with the
	// capability sentinel, never anything else.
	c, err := p.TryConstruct(DefaultConfig())
	if err != nil {
		assert.ErrorIs(t, err, ErrCodecUnavailable)
		return
	}
	require.NotNil(t, c)

	frame := make([]float32, 960)
	packet, err := c.Encode(frame)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(packet), wire.HeaderSize)
	assert.Equal(t, byte(wire.TagOpus), packet[1])

	decoded, err := c.Decode(packet)
	require.NoError(t, err)
	assert.Len(t, decoded, 960, "decoded frame must match the recorded count")

	assert.NoError(t, c.Close())
}

func TestNewNativeOpusDecoder(t *testing.T) {
	// Like the provider, the decode-only constructor either builds or
	// declines with the capability sentinel, depending on the build.
	d, err := NewNativeOpusDecoder(DefaultConfig())
	if err != nil {
		assert.ErrorIs(t, err, ErrCodecUnavailable)
		return
	}
	require.NotNil(t, d)
	assert.NoError(t, d.Close())
}

func TestFitFrame(t *testing.T) {
	tests := []struct {
		name   string
		input  []float32
		n      int
		expect []float32
	}{
		{"exact", []float32{1, 2}, 2, []float32{1, 2}},
		{"trim", []float32{1, 2, 3}, 2, []float32{1, 2}},
		{"pad_with_silence", []float32{1}, 3, []float32{1, 0, 0}},
		{"empty_to_empty", nil, 0, []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fitFrame(tt.input, tt.n)
			require.Len(t, got, tt.n)
			for i := range tt.expect {
				assert.Equal(t, tt.expect[i], got[i])
			}
		})
	}
}
