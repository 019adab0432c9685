package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeHeader(t *testing.T) {
	tests := []struct {
		name        string
		tag         byte
		sampleCount int
		want        []byte
		wantErr     error
	}{
		{
			name:        "opus_tag",
			tag:         TagOpus,
			sampleCount: 960,
			want:        []byte{0x4F, 0x52, 0x03, 0xC0},
		},
		{
			name:        "decimated_tag",
			tag:         TagDecimated,
			sampleCount: 10,
			want:        []byte{0x4F, 0x50, 0x00, 0x0A},
		},
		{
			name:        "zero_samples",
			tag:         TagDecimated,
			sampleCount: 0,
			want:        []byte{0x4F, 0x50, 0x00, 0x00},
		},
		{
			name:        "max_samples",
			tag:         TagDecimated,
			sampleCount: MaxFrameSamples,
			want:        []byte{0x4F, 0x50, 0xFF, 0xFF},
		},
		{
			name:        "unknown_tag",
			tag:         0x99,
			sampleCount: 10,
			wantErr:     ErrUnknownTag,
		},
		{
			name:        "frame_too_large",
			tag:         TagOpus,
			sampleCount: MaxFrameSamples + 1,
			wantErr:     ErrFrameTooLarge,
		},
		{
			name:        "negative_count",
			tag:         TagOpus,
			sampleCount: -1,
			wantErr:     ErrFrameTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, err := EncodeHeader(tt.tag, tt.sampleCount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, header)
			assert.Equal(t, byte(Marker), header[0], "every header must begin with the marker byte")
		})
	}
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		wantTag    byte
		wantCount  int
		wantErr    error
	}{
		{
			name:      "opus_header",
			data:      []byte{0x4F, 0x52, 0x03, 0xC0},
			wantTag:   TagOpus,
			wantCount: 960,
		},
		{
			name:      "decimated_header_with_payload",
			data:      []byte{0x4F, 0x50, 0x00, 0x0A, 0xAA, 0xBB},
			wantTag:   TagDecimated,
			wantCount: 10,
		},
		{
			name:      "unknown_tag_parses",
			data:      []byte{0x4F, 0x99, 0x00, 0x0A},
			wantTag:   0x99,
			wantCount: 10,
		},
		{
			name:    "too_short",
			data:    []byte{0x4F, 0x52, 0x03},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "empty",
			data:    []byte{},
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "nil",
			data:    nil,
			wantErr: ErrInvalidFormat,
		},
		{
			name:    "bad_marker",
			data:    []byte{0x00, 0x52, 0x03, 0xC0},
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, count, err := ParseHeader(tt.data)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantCount, count)
		})
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	for _, count := range []int{0, 1, 9, 10, 960, 4800, MaxFrameSamples} {
		header, err := EncodeHeader(TagDecimated, count)
		require.NoError(t, err)

		tag, parsed, err := ParseHeader(header)
		require.NoError(t, err)
		assert.Equal(t, byte(TagDecimated), tag)
		assert.Equal(t, count, parsed)
	}
}

func TestNewPacket(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0x04}
	packet, err := NewPacket(TagOpus, 960, payload)
	require.NoError(t, err)

	assert.Equal(t, HeaderSize+len(payload), len(packet))
	assert.Equal(t, byte(Marker), packet[0])

	tag, count, got, err := SplitPacket(packet)
	require.NoError(t, err)
	assert.Equal(t, byte(TagOpus), tag)
	assert.Equal(t, 960, count)
	assert.Equal(t, payload, got)
}

func TestNewPacketRejectsOversizeFrame(t *testing.T) {
	_, err := NewPacket(TagOpus, MaxFrameSamples+1, nil)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestSplitPacketTruncated(t *testing.T) {
	_, _, _, err := SplitPacket([]byte{0x4F, 0x50})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestKnownTag(t *testing.T) {
	assert.True(t, KnownTag(TagOpus))
	assert.True(t, KnownTag(TagDecimated))
	assert.False(t, KnownTag(0x99))
	assert.False(t, KnownTag(Marker))
}

func TestTagName(t *testing.T) {
	assert.Equal(t, "opus", TagName(TagOpus))
	assert.Equal(t, "decimated", TagName(TagDecimated))
	assert.Equal(t, "unknown(0x99)", TagName(0x99))
}
