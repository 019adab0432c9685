package voicewire

import (
	"fmt"

	"github.com/opd-ai/voicewire/codec"
	"github.com/opd-ai/voicewire/pcm"
	"github.com/opd-ai/voicewire/wire"
)

// Decode expands one packet into a PCM frame of exactly the length
// recorded in its header. The codec is chosen by the packet's tag
// alone.
//
// A decimated packet decodes locally and cannot fail unless malformed.
// An Opus packet is offered to every constructed tier codec, then to a
// native decoder built lazily on builds that carry one, and finally to
// the pure-Go decoder, so an engine that only ever receives still
// decodes with the best capability in the build. When nothing can
// decode it, Decode returns a silent frame of the recorded length
// instead of an error, keeping the pipeline running on builds without
// the real codec. A packet with an unknown tag is a hard InvalidFormat
// error: silence is for missing capabilities, not for garbage.
//
// Parameters:
//   - input: complete packet, sealed when a sealer is configured
//
// Returns:
//   - []float32: PCM frame of the recorded length
//   - error: wire.ErrInvalidFormat, codec.ErrDecodeFailed (wrapped) for
//     sealing failures, or ErrEngineClosed
func (e *Engine) Decode(input []byte) ([]float32, error) {
	packet := input
	if e.sealer != nil {
		opened, err := e.sealer.Open(input)
		if err != nil {
			e.metrics.openFailure()
			return nil, fmt.Errorf("%w: %w", codec.ErrDecodeFailed, err)
		}
		packet = opened
	}

	tag, sampleCount, err := wire.ParseHeader(packet)
	if err != nil {
		e.metrics.invalidPacket()
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}

	var frame []float32
	var decodeErr error
	var event *FallbackEvent

	switch tag {
	case wire.TagDecimated:
		frame, decodeErr = e.simple.Decode(packet)
		if decodeErr != nil {
			e.metrics.invalidPacket()
		} else {
			e.metrics.decoded(wire.TagName(tag), len(packet))
		}

	case wire.TagOpus:
		frame, event, decodeErr = e.decodeOpusLocked(packet, sampleCount)

	default:
		e.metrics.invalidPacket()
		decodeErr = fmt.Errorf("%w: %w 0x%02X", wire.ErrInvalidFormat, wire.ErrUnknownTag, tag)
	}
	e.mu.Unlock()

	if event != nil {
		e.fallback(*event)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	return frame, nil
}

// decodeOpusLocked walks the available Opus decode capabilities and
// falls back to silence when the packet defeats all of them. Callers
// hold e.mu.
func (e *Engine) decodeOpusLocked(packet []byte, sampleCount int) ([]float32, *FallbackEvent, error) {
	var lastErr error

	for _, t := range e.tiers {
		if t.codec == nil {
			continue
		}
		// The decimation codec can never decode an Opus payload; skip
		// it rather than collect its tag rejection.
		if _, isSimple := t.codec.(*codec.SimpleCodec); isSimple {
			continue
		}
		frame, err := t.codec.Decode(packet)
		if err == nil {
			e.metrics.decoded(wire.TagName(wire.TagOpus), len(packet))
			return frame, nil, nil
		}
		lastErr = err
	}

	if e.nativeDecoder == nil && !e.nativeDecoderFailed {
		decoder, err := codec.NewNativeOpusDecoder(e.config)
		if err != nil {
			e.nativeDecoderFailed = true
			lastErr = err
		} else {
			e.nativeDecoder = decoder
		}
	}
	if e.nativeDecoder != nil {
		frame, err := e.nativeDecoder.DecodePacket(packet)
		if err == nil {
			e.metrics.decoded(wire.TagName(wire.TagOpus), len(packet))
			return frame, nil, nil
		}
		lastErr = err
	}

	if e.opusDecoder == nil && !e.opusDecoderFailed {
		decoder, err := codec.NewOpusDecoder(e.config)
		if err != nil {
			e.opusDecoderFailed = true
			lastErr = err
		} else {
			e.opusDecoder = decoder
		}
	}
	if e.opusDecoder != nil {
		frame, err := e.opusDecoder.DecodePacket(packet)
		if err == nil {
			e.metrics.decoded(wire.TagName(wire.TagOpus), len(packet))
			return frame, nil, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = codec.ErrCodecUnavailable
	}
	e.metrics.silentFrame()
	event := &FallbackEvent{Operation: "decode", Tier: wire.TagName(wire.TagOpus), Err: lastErr}
	return pcm.Silence(sampleCount), event, nil
}
