package pcm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantizeSample(t *testing.T) {
	tests := []struct {
		name   string
		sample float32
		want   int16
	}{
		{name: "zero", sample: 0, want: 0},
		{name: "positive_full_scale", sample: 1.0, want: 32767},
		{name: "negative_full_scale", sample: -1.0, want: -32767},
		{name: "half_scale", sample: 0.5, want: 16384}, // round(0.5*32767) = round(16383.5)
		{name: "clamps_above", sample: 1.7, want: 32767},
		{name: "clamps_below", sample: -2.5, want: -32767},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuantizeSample(tt.sample))
		})
	}
}

func TestFloatInt16RoundTrip(t *testing.T) {
	frame := []float32{0, 0.25, -0.25, 0.99, -0.99, 1, -1}

	samples := FloatToInt16(frame)
	require.Len(t, samples, len(frame))

	back := Int16ToFloat(samples)
	require.Len(t, back, len(frame))

	for i := range frame {
		assert.InDelta(t, frame[i], back[i], 1.0/32767, "sample %d", i)
	}
}

func TestFloatToInt16SaturatesInsteadOfWrapping(t *testing.T) {
	samples := FloatToInt16([]float32{100, -100})
	assert.Equal(t, int16(32767), samples[0])
	assert.Equal(t, int16(-32767), samples[1])
}

func TestSilence(t *testing.T) {
	frame := Silence(960)
	require.Len(t, frame, 960)
	for i, s := range frame {
		require.Zerof(t, s, "sample %d", i)
	}

	assert.Empty(t, Silence(0))
	assert.Empty(t, Silence(-5))
}

func TestClamp(t *testing.T) {
	in := []float32{0.5, 1.5, -3, 0}
	out := Clamp(in)

	assert.Equal(t, []float32{0.5, 1, -1, 0}, out)
	assert.Equal(t, float32(1.5), in[1], "input must not be modified")
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		frameLen   int
		maxSamples int
		wantChunks []int
	}{
		{name: "exact_multiple", frameLen: 30, maxSamples: 10, wantChunks: []int{10, 10, 10}},
		{name: "remainder", frameLen: 25, maxSamples: 10, wantChunks: []int{10, 10, 5}},
		{name: "single_chunk", frameLen: 5, maxSamples: 10, wantChunks: []int{5}},
		{name: "empty", frameLen: 0, maxSamples: 10, wantChunks: nil},
		{name: "max_below_one", frameLen: 3, maxSamples: 0, wantChunks: []int{1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := make([]float32, tt.frameLen)
			for i := range frame {
				frame[i] = float32(i)
			}

			chunks := Split(frame, tt.maxSamples)
			require.Len(t, chunks, len(tt.wantChunks))

			var total int
			for i, chunk := range chunks {
				assert.Len(t, chunk, tt.wantChunks[i])
				for j, s := range chunk {
					assert.Equal(t, float32(total+j), s, "chunk %d sample %d", i, j)
				}
				total += len(chunk)
			}
			assert.Equal(t, tt.frameLen, total, "chunks must cover the whole frame")
		})
	}
}

func BenchmarkFloatToInt16(b *testing.B) {
	frame := make([]float32, 960)
	for i := range frame {
		frame[i] = float32(i%100) / 100
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FloatToInt16(frame)
	}
}
