package pcm

// Silence returns an all-zero frame of the given length. Decoders use it
// when a packet's codec is unavailable and the pipeline should keep playing
// rather than fail.
func Silence(length int) []float32 {
	if length < 0 {
		length = 0
	}
	return make([]float32, length)
}

// Clamp returns a copy of frame with every sample limited to [-1, 1].
func Clamp(frame []float32) []float32 {
	out := make([]float32, len(frame))
	for i, s := range frame {
		out[i] = ClampSample(s)
	}
	return out
}

// Split divides a frame into chunks of at most maxSamples samples each,
// preserving order. The wire format stores the original frame length in an
// unsigned 16-bit field, so frames longer than wire.MaxFrameSamples must be
// split before encoding; this is the helper for that.
//
// The returned chunks alias the input frame. A nil or empty frame yields no
// chunks. maxSamples < 1 is treated as 1.
func Split(frame []float32, maxSamples int) [][]float32 {
	if maxSamples < 1 {
		maxSamples = 1
	}
	if len(frame) == 0 {
		return nil
	}

	chunks := make([][]float32, 0, (len(frame)+maxSamples-1)/maxSamples)
	for start := 0; start < len(frame); start += maxSamples {
		end := start + maxSamples
		if end > len(frame) {
			end = len(frame)
		}
		chunks = append(chunks, frame[start:end])
	}
	return chunks
}
