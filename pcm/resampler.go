package pcm

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Resampler converts frames between sample rates using linear
// interpolation. Quality is adequate for voice; the point is matching a
// codec's required rate (Opus wants 8/12/16/24/48 kHz) without external
// dependencies.
//
// A Resampler carries fractional read position and the tail sample across
// calls so that consecutive frames of a stream join without discontinuity.
// Use one Resampler per stream and per direction; it is not safe for
// concurrent use.
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int

	position float64   // fractional position in the input stream
	tail     []float32 // last sample per channel from the previous frame
}

// ResamplerConfig configures a Resampler.
type ResamplerConfig struct {
	InputRate  int // input sample rate in Hz
	OutputRate int // output sample rate in Hz
	Channels   int // interleaved channel count (1 or 2)
}

// NewResampler creates a resampler converting from InputRate to OutputRate.
//
// Parameters:
//   - config: rates and channel count
//
// Returns:
//   - *Resampler: ready-to-use resampler
//   - error: validation error for non-positive rates or unsupported channels
func NewResampler(config ResamplerConfig) (*Resampler, error) {
	logrus.WithFields(logrus.Fields{
		"function":    "NewResampler",
		"input_rate":  config.InputRate,
		"output_rate": config.OutputRate,
		"channels":    config.Channels,
	}).Debug("Creating resampler")

	if config.InputRate <= 0 || config.OutputRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: input=%d, output=%d", config.InputRate, config.OutputRate)
	}
	if config.Channels < 1 || config.Channels > 2 {
		return nil, fmt.Errorf("unsupported channel count: %d (must be 1 or 2)", config.Channels)
	}

	return &Resampler{
		inputRate:  config.InputRate,
		outputRate: config.OutputRate,
		channels:   config.Channels,
		tail:       make([]float32, config.Channels),
	}, nil
}

// Convert resamples one frame from the input rate to the output rate.
//
// The input must hold whole interleaved sample groups for the configured
// channel count. When input and output rates match, Convert returns a copy
// of the input.
func (r *Resampler) Convert(frame []float32) ([]float32, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("empty input frame")
	}
	if len(frame)%r.channels != 0 {
		return nil, fmt.Errorf("input length %d not aligned to %d channels", len(frame), r.channels)
	}

	if r.inputRate == r.outputRate {
		out := make([]float32, len(frame))
		copy(out, frame)
		return out, nil
	}

	ratio := float64(r.inputRate) / float64(r.outputRate)
	inputGroups := len(frame) / r.channels
	outputGroups := int(float64(inputGroups)/ratio + 0.5)

	out := make([]float32, 0, outputGroups*r.channels)
	for g := 0; g < outputGroups; g++ {
		idx := int(r.position)
		frac := r.position - float64(idx)
		for ch := 0; ch < r.channels; ch++ {
			out = append(out, r.sampleAt(frame, idx, frac, ch, inputGroups))
		}
		r.position += ratio
	}

	// Carry state into the next frame.
	r.position -= float64(inputGroups)
	copy(r.tail, frame[len(frame)-r.channels:])

	logrus.WithFields(logrus.Fields{
		"function":    "Convert",
		"input_rate":  r.inputRate,
		"output_rate": r.outputRate,
		"in_samples":  len(frame),
		"out_samples": len(out),
	}).Debug("Resampled frame")

	return out, nil
}

// sampleAt computes the interpolated sample for one output position.
// Positions before the frame read from the previous frame's tail; positions
// at the end hold the final sample.
func (r *Resampler) sampleAt(frame []float32, idx int, frac float64, ch, inputGroups int) float32 {
	if idx < 0 {
		return r.tail[ch]
	}
	if idx >= inputGroups-1 {
		return frame[(inputGroups-1)*r.channels+ch]
	}
	s0 := frame[idx*r.channels+ch]
	s1 := frame[(idx+1)*r.channels+ch]
	return s0 + float32(frac)*(s1-s0)
}

// OutputLen reports how many samples Convert will produce for an input of
// the given length, useful for pre-sizing buffers.
func (r *Resampler) OutputLen(inputLen int) int {
	if r.inputRate == r.outputRate {
		return inputLen
	}
	groups := inputLen / r.channels
	outGroups := int(float64(groups)*float64(r.outputRate)/float64(r.inputRate) + 0.5)
	return outGroups * r.channels
}

// InputRate returns the configured input sample rate.
func (r *Resampler) InputRate() int { return r.inputRate }

// OutputRate returns the configured output sample rate.
func (r *Resampler) OutputRate() int { return r.outputRate }

// Reset clears carried stream state. Call it on a stream discontinuity.
func (r *Resampler) Reset() {
	r.position = 0
	for i := range r.tail {
		r.tail[i] = 0
	}
}
