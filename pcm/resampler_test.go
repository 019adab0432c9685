package pcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResampler(t *testing.T) {
	tests := []struct {
		name    string
		config  ResamplerConfig
		wantErr bool
	}{
		{
			name:   "valid_mono_upsample",
			config: ResamplerConfig{InputRate: 16000, OutputRate: 48000, Channels: 1},
		},
		{
			name:   "valid_stereo_downsample",
			config: ResamplerConfig{InputRate: 48000, OutputRate: 16000, Channels: 2},
		},
		{
			name:    "zero_input_rate",
			config:  ResamplerConfig{InputRate: 0, OutputRate: 48000, Channels: 1},
			wantErr: true,
		},
		{
			name:    "zero_output_rate",
			config:  ResamplerConfig{InputRate: 48000, OutputRate: 0, Channels: 1},
			wantErr: true,
		},
		{
			name:    "too_many_channels",
			config:  ResamplerConfig{InputRate: 48000, OutputRate: 48000, Channels: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResampler(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.InputRate, r.InputRate())
			assert.Equal(t, tt.config.OutputRate, r.OutputRate())
		})
	}
}

func TestConvertSameRateCopies(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 48000, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)

	in := []float32{0.1, 0.2, 0.3}
	out, err := r.Convert(in)
	require.NoError(t, err)

	assert.Equal(t, in, out)
	out[0] = 9
	assert.Equal(t, float32(0.1), in[0], "output must be a copy")
}

func TestConvertUpsampleLength(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 16000, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)

	// 20 ms at 16 kHz -> 20 ms at 48 kHz.
	in := make([]float32, 320)
	out, err := r.Convert(in)
	require.NoError(t, err)
	assert.Len(t, out, 960)
}

func TestConvertDownsampleLength(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 48000, OutputRate: 8000, Channels: 1})
	require.NoError(t, err)

	in := make([]float32, 960)
	out, err := r.Convert(in)
	require.NoError(t, err)
	assert.Len(t, out, 160)
}

func TestConvertPreservesConstantSignal(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 24000, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)

	in := make([]float32, 480)
	for i := range in {
		in[i] = 0.5
	}

	out, err := r.Convert(in)
	require.NoError(t, err)
	require.Len(t, out, 960)
	for i, s := range out {
		assert.InDeltaf(t, 0.5, s, 1e-6, "sample %d", i)
	}
}

func TestConvertValidation(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000, Channels: 2})
	require.NoError(t, err)

	_, err = r.Convert(nil)
	assert.Error(t, err)

	_, err = r.Convert([]float32{0.1, 0.2, 0.3}) // odd length for stereo
	assert.Error(t, err)
}

func TestOutputLen(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)

	assert.Equal(t, 960, r.OutputLen(882)) // 20 ms frames
	assert.Equal(t, 0, r.OutputLen(0))

	same, err := NewResampler(ResamplerConfig{InputRate: 48000, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)
	assert.Equal(t, 960, same.OutputLen(960))
}

func TestResetClearsStreamState(t *testing.T) {
	r, err := NewResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000, Channels: 1})
	require.NoError(t, err)

	_, err = r.Convert(make([]float32, 441))
	require.NoError(t, err)

	r.Reset()
	assert.Equal(t, float64(0), r.position)
	assert.Equal(t, float32(0), r.tail[0])
}

func BenchmarkConvert(b *testing.B) {
	r, err := NewResampler(ResamplerConfig{InputRate: 44100, OutputRate: 48000, Channels: 1})
	if err != nil {
		b.Fatal(err)
	}
	in := make([]float32, 882)
	for i := range in {
		in[i] = float32(i%100) / 100
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Convert(in); err != nil {
			b.Fatal(err)
		}
	}
}
