// Package pcm provides sample-domain utilities for voicewire frames.
//
// A frame is an ordered slice of float32 samples in [-1, 1]. Codecs and
// native codec libraries work in the signed 16-bit integer domain, so this
// package owns the conversion between the two, along with frame-shaped
// helpers: silence generation, splitting frames to honor the wire format's
// 16-bit length bound, and linear-interpolation resampling for inputs whose
// rate does not match the codec rate.
//
// Conversion clamps before quantizing, so out-of-range input never wraps:
//
//	samples := pcm.FloatToInt16([]float32{0.5, -1.7, 2.0})
//	frame := pcm.Int16ToFloat(samples)
//
// All functions allocate their results; inputs are never modified.
package pcm
