package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicewire/pcm"
	"github.com/opd-ai/voicewire/wire"
)

// maxOpusFrameSamples bounds the decode buffer: 120ms at 48kHz per
// channel, the longest frame the Opus bitstream allows.
const maxOpusFrameSamples = 5760

// OpusDecoder decodes Opus packets with the pure-Go pion decoder. It is
// the decode capability of last resort before the silence policy: it
// needs no cgo, so every build can at least attempt to decode real
// packets from remote peers.
//
// The pion decoder handles SILK-coded voice streams. Payloads it cannot
// parse surface as ErrDecodeFailed and the caller substitutes silence.
type OpusDecoder struct {
	decoder *opus.Decoder
	config  Config
	closed  bool
}

// NewOpusDecoder creates a pure-Go Opus decoder for the configuration.
//
// Parameters:
//   - config: session parameters; the decoder resamples its output to
//     config.SampleRate when the coded bandwidth differs
//
// Returns:
//   - *OpusDecoder: ready decoder
//   - error: ErrInvalidConfig (wrapped) for unusable parameters
func NewOpusDecoder(config Config) (*OpusDecoder, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	decoder := opus.NewDecoder()

	logrus.WithFields(logrus.Fields{
		"function":    "NewOpusDecoder",
		"sample_rate": config.SampleRate,
		"channels":    config.Channels,
	}).Debug("Created pure-Go Opus decoder")

	return &OpusDecoder{
		decoder: &decoder,
		config:  config,
	}, nil
}

// DecodePacket decodes one complete Opus packet into a PCM frame of
// exactly the length recorded in the packet header. If the coded frame
// is shorter than the recorded count, the tail is silent.
//
// Parameters:
//   - packet: complete packet carrying tag wire.TagOpus
//
// Returns:
//   - []float32: PCM frame of the recorded length at the configured rate
//   - error: wire.ErrInvalidFormat for malformed packets or a foreign
//     tag, ErrDecodeFailed when the payload cannot be decoded,
//     ErrCodecClosed after Close
func (d *OpusDecoder) DecodePacket(packet []byte) ([]float32, error) {
	if d.closed {
		return nil, ErrCodecClosed
	}
	tag, sampleCount, payload, err := wire.SplitPacket(packet)
	if err != nil {
		return nil, err
	}
	if tag != wire.TagOpus {
		return nil, fmt.Errorf("%w: expected tag %s, got %s",
			wire.ErrInvalidFormat, wire.TagName(wire.TagOpus), wire.TagName(tag))
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecodeFailed)
	}

	output := make([]byte, maxOpusFrameSamples*2*2)
	bandwidth, _, err := d.decoder.Decode(payload, output)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DecodePacket",
			"error":    err.Error(),
		}).Debug("Opus payload rejected by pure-Go decoder")
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	codedRate := int(bandwidth.SampleRate())
	if codedRate <= 0 {
		return nil, fmt.Errorf("%w: decoder reported sample rate %d", ErrDecodeFailed, codedRate)
	}

	// The coded stream may run at a lower bandwidth than the session.
	// Read the recorded duration's worth of samples at the coded rate,
	// then bring them back into the session rate.
	codedCount := sampleCount * codedRate / d.config.SampleRate
	if codedCount > len(output)/2 {
		codedCount = len(output) / 2
	}
	codedCount -= codedCount % d.config.Channels
	frame := make([]float32, codedCount)
	for i := range frame {
		frame[i] = pcm.DequantizeSample(int16(binary.LittleEndian.Uint16(output[i*2 : i*2+2])))
	}

	if codedRate != d.config.SampleRate {
		resampler, err := pcm.NewResampler(pcm.ResamplerConfig{
			InputRate:  codedRate,
			OutputRate: d.config.SampleRate,
			Channels:   d.config.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
		frame, err = resampler.Convert(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
	}

	return fitFrame(frame, sampleCount), nil
}

// Close releases the decoder.
func (d *OpusDecoder) Close() error {
	d.closed = true
	return nil
}

// fitFrame forces a frame to exactly n samples, trimming a longer frame
// and padding a shorter one with silence.
func fitFrame(frame []float32, n int) []float32 {
	if len(frame) == n {
		return frame
	}
	if len(frame) > n {
		return frame[:n]
	}
	out := make([]float32, n)
	copy(out, frame)
	return out
}

// OpusProvider exposes the native Opus codec through the provider
// interface. In builds without cgo, TryConstruct reports
// ErrCodecUnavailable and the registry moves on to the next tier.
type OpusProvider struct{}

// NewOpusProvider creates the provider for the native Opus codec.
func NewOpusProvider() *OpusProvider {
	return &OpusProvider{}
}

// Name returns the provider identifier.
func (p *OpusProvider) Name() string { return "opus" }

// TryConstruct builds the native Opus codec when the capability exists.
func (p *OpusProvider) TryConstruct(config Config) (Codec, error) {
	return newOpusCodec(config)
}
