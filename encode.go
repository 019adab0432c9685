package voicewire

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicewire/codec"
	"github.com/opd-ai/voicewire/wire"
)

// Encode compresses one PCM frame into a complete tagged packet.
//
// Tiers are tried in priority order; a tier that fails to construct or
// fails at runtime hands the frame to the next one. With the default
// chain the final tier cannot fail, so Encode only errors for frames no
// codec could ever represent, for sealing failures, and after Close.
//
// Parameters:
//   - frame: PCM samples in [-1.0, 1.0]
//
// Returns:
//   - []byte: complete packet, sealed when a sealer is configured
//   - error: wire.ErrFrameTooLarge, codec.ErrEncodeFailed (wrapped) or
//     ErrEngineClosed
func (e *Engine) Encode(frame []float32) ([]byte, error) {
	if len(frame) > wire.MaxFrameSamples {
		return nil, fmt.Errorf("%w: frame has %d samples, limit %d",
			wire.ErrFrameTooLarge, len(frame), wire.MaxFrameSamples)
	}

	var steps []FallbackEvent
	var packet []byte
	var tierName string
	var lastErr error

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	for _, t := range e.tiers {
		c := e.ensureTier(t)
		if c == nil {
			lastErr = t.err
			// A declined tier is announced once, then skipped silently.
			if !t.reported {
				t.reported = true
				steps = append(steps, FallbackEvent{Operation: "encode", Tier: t.provider.Name(), Err: t.err})
			}
			continue
		}

		encoded, err := c.Encode(frame)
		if err != nil {
			lastErr = err
			steps = append(steps, FallbackEvent{Operation: "encode", Tier: t.provider.Name(), Err: err})
			e.metrics.encodeFallback()
			continue
		}
		packet = encoded
		tierName = t.provider.Name()
		break
	}
	e.mu.Unlock()

	for _, s := range steps {
		e.fallback(s)
	}

	if packet == nil {
		if lastErr == nil {
			lastErr = codec.ErrCodecUnavailable
		}
		return nil, fmt.Errorf("%w: every tier declined: %w", codec.ErrEncodeFailed, lastErr)
	}

	if e.sealer != nil {
		sealed, err := e.sealer.Seal(packet)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", codec.ErrEncodeFailed, err)
		}
		packet = sealed
	}

	e.metrics.encoded(tierName, len(packet))
	return packet, nil
}

// ensureTier constructs a tier's codec on first use. A tier that
// declines stays declined for the life of the engine. Callers hold
// e.mu.
func (e *Engine) ensureTier(t *tier) codec.Codec {
	if t.attempted {
		return t.codec
	}
	t.attempted = true

	constructed, err := t.provider.TryConstruct(e.config)
	if err != nil {
		t.err = err
		logrus.WithFields(logrus.Fields{
			"function": "ensureTier",
			"tier":     t.provider.Name(),
			"error":    err.Error(),
		}).Info("Tier unavailable")
		return nil
	}

	t.codec = constructed
	logrus.WithFields(logrus.Fields{
		"function": "ensureTier",
		"tier":     t.provider.Name(),
	}).Info("Tier constructed")
	return t.codec
}
