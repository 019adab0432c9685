package pcm

import "math"

// maxSample is the quantization scale for 16-bit conversion. Using 32767 in
// both directions keeps FloatToInt16 and Int16ToFloat inverse up to
// quantization error.
const maxSample = 32767

// ClampSample limits a single sample to the valid [-1, 1] range.
func ClampSample(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// QuantizeSample converts one float sample to the signed 16-bit domain,
// clamping to [-1, 1] first and rounding to the nearest integer.
func QuantizeSample(s float32) int16 {
	return int16(math.Round(float64(ClampSample(s)) * maxSample))
}

// DequantizeSample converts one signed 16-bit sample back to the float
// domain.
func DequantizeSample(s int16) float32 {
	return float32(s) / maxSample
}

// FloatToInt16 converts a float frame to signed 16-bit samples.
//
// Each sample is clamped to [-1, 1] and quantized as round(sample*32767),
// so out-of-range input saturates instead of wrapping.
func FloatToInt16(frame []float32) []int16 {
	out := make([]int16, len(frame))
	for i, s := range frame {
		out[i] = QuantizeSample(s)
	}
	return out
}

// Int16ToFloat converts signed 16-bit samples to a float frame in [-1, 1].
func Int16ToFloat(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = DequantizeSample(s)
	}
	return out
}
