//go:build cgo

package codec

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"layeh.com/gopus"

	"github.com/opd-ai/voicewire/pcm"
	"github.com/opd-ai/voicewire/wire"
)

// opusCodec is the native Opus codec backed by libopus through gopus.
// Sessions running at a rate libopus rejects (44.1kHz being the common
// case) are resampled to 48kHz on the way in and back on the way out,
// so packets always carry the session's own sample count.
type opusCodec struct {
	config    Config
	encoder   *gopus.Encoder
	decoder   *gopus.Decoder
	encodeRes *pcm.Resampler // session rate to codec rate, nil when equal
	decodeRes *pcm.Resampler // codec rate to session rate, nil when equal
	frameSize int            // samples per channel at the codec rate
	closed    bool
}

// newOpusCodec builds the native Opus codec for the configuration.
func newOpusCodec(config Config) (Codec, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.FrameSize*config.Channels > wire.MaxFrameSamples {
		return nil, fmt.Errorf("%w: frame of %d samples exceeds the %d sample packet limit",
			ErrConstruction, config.FrameSize*config.Channels, wire.MaxFrameSamples)
	}
	if !ValidFrameDuration(config.FrameSize, config.SampleRate) {
		return nil, fmt.Errorf("%w: %d samples at %dHz is not a supported Opus frame duration",
			ErrConstruction, config.FrameSize, config.SampleRate)
	}

	codecRate := nativeRate(config.SampleRate)
	frameSize := nativeFrameSize(config.FrameSize, config.SampleRate)
	var encodeRes, decodeRes *pcm.Resampler
	if codecRate != config.SampleRate {
		var err error
		encodeRes, err = pcm.NewResampler(pcm.ResamplerConfig{
			InputRate:  config.SampleRate,
			OutputRate: codecRate,
			Channels:   config.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
		}
		decodeRes, err = pcm.NewResampler(pcm.ResamplerConfig{
			InputRate:  codecRate,
			OutputRate: config.SampleRate,
			Channels:   config.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
		}
	}

	encoder, err := gopus.NewEncoder(codecRate, config.Channels, gopus.Voip)
	if err != nil {
		return nil, fmt.Errorf("%w: opus encoder: %v", ErrConstruction, err)
	}
	encoder.SetBitrate(config.BitRate)

	decoder, err := gopus.NewDecoder(codecRate, config.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: opus decoder: %v", ErrConstruction, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "newOpusCodec",
		"sample_rate": config.SampleRate,
		"codec_rate":  codecRate,
		"channels":    config.Channels,
		"frame_size":  config.FrameSize,
		"bit_rate":    config.BitRate,
	}).Info("Created native Opus codec")

	return &opusCodec{
		config:    config,
		encoder:   encoder,
		decoder:   decoder,
		encodeRes: encodeRes,
		decodeRes: decodeRes,
		frameSize: frameSize,
	}, nil
}

// Encode compresses one frame into an Opus packet tagged wire.TagOpus.
// The header records the original frame length, not the possibly
// resampled length fed to libopus.
func (c *opusCodec) Encode(frame []float32) ([]byte, error) {
	if c.closed {
		return nil, ErrCodecClosed
	}
	want := c.config.FrameSize * c.config.Channels
	if len(frame) != want {
		return nil, fmt.Errorf("%w: frame has %d samples, codec expects %d",
			ErrEncodeFailed, len(frame), want)
	}

	samples := frame
	if c.encodeRes != nil {
		converted, err := c.encodeRes.Convert(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
		}
		samples = fitFrame(converted, c.frameSize*c.config.Channels)
	}

	data, err := c.encoder.Encode(pcm.FloatToInt16(samples), c.frameSize, len(samples)*2)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Encode",
			"error":    err.Error(),
		}).Debug("Native Opus encode failed")
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	return wire.NewPacket(wire.TagOpus, len(frame), data)
}

// Decode expands one Opus packet into a frame of exactly the recorded
// sample count at the session rate.
func (c *opusCodec) Decode(packet []byte) ([]float32, error) {
	if c.closed {
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

	decoded, err := c.decoder.Decode(payload, c.frameSize, false)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Decode",
			"error":    err.Error(),
		}).Debug("Native Opus decode failed")
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	frame := pcm.Int16ToFloat(decoded)
	if c.decodeRes != nil {
		frame, err = c.decodeRes.Convert(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
	}
	return fitFrame(frame, sampleCount), nil
}

// Close releases the codec. The libopus state is reclaimed with the
// wrapper objects.
func (c *opusCodec) Close() error {
	c.closed = true
	c.encoder = nil
	c.decoder = nil
	return nil
}

// nativeOpusDecoder is the decode half of the native codec, for receive
// paths that never encode. Unlike the full codec it does not bind to
// the session frame duration: the remote encoder chose the duration, so
// it decodes with room for the longest frame the bitstream allows.
type nativeOpusDecoder struct {
	decoder   *gopus.Decoder
	decodeRes *pcm.Resampler // codec rate to session rate, nil when equal
	closed    bool
}

// NewNativeOpusDecoder creates a decode-only native Opus decoder. In
// builds without cgo it reports ErrCodecUnavailable and the caller
// falls through to the pure-Go decoder.
func NewNativeOpusDecoder(config Config) (PacketDecoder, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	codecRate := nativeRate(config.SampleRate)
	var decodeRes *pcm.Resampler
	if codecRate != config.SampleRate {
		var err error
		decodeRes, err = pcm.NewResampler(pcm.ResamplerConfig{
			InputRate:  codecRate,
			OutputRate: config.SampleRate,
			Channels:   config.Channels,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
		}
	}

	decoder, err := gopus.NewDecoder(codecRate, config.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: opus decoder: %v", ErrConstruction, err)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "NewNativeOpusDecoder",
		"sample_rate": config.SampleRate,
		"codec_rate":  codecRate,
		"channels":    config.Channels,
	}).Debug("Created native Opus decoder")

	return &nativeOpusDecoder{
		decoder:   decoder,
		decodeRes: decodeRes,
	}, nil
}

// DecodePacket decodes one Opus packet into a frame of exactly the
// recorded sample count at the session rate.
func (d *nativeOpusDecoder) DecodePacket(packet []byte) ([]float32, error) {
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

	decoded, err := d.decoder.Decode(payload, maxOpusFrameSamples, false)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DecodePacket",
			"error":    err.Error(),
		}).Debug("Native Opus decode failed")
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	frame := pcm.Int16ToFloat(decoded)
	if d.decodeRes != nil {
		frame, err = d.decodeRes.Convert(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
		}
	}
	return fitFrame(frame, sampleCount), nil
}

// Close releases the decoder.
func (d *nativeOpusDecoder) Close() error {
	d.closed = true
	d.decoder = nil
	return nil
}
