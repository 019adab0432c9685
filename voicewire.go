// Package voicewire is the frame codec layer of a real-time voice
// pipeline. It turns PCM frames into small self-describing packets and
// back, surviving missing codec capabilities by degrading instead of
// failing: encoding falls through tiers until one succeeds, and
// decoding substitutes silence when a real codec's packets arrive on a
// build that cannot decode them.
//
// Every packet starts with a 4-byte header naming the codec that
// produced it, so the decode side dispatches purely on the packet
// itself and never has to know what the encode side negotiated.
//
// Basic usage:
//
//	engine, err := voicewire.New(voicewire.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Close()
//
//	packet, err := engine.Encode(frame) // frame is []float32 PCM
//	if err != nil {
//	    log.Fatal(err)
//	}
//	decoded, err := engine.Decode(packet)
//
// The zero Options value selects a 20ms mono 48kHz session with the
// default tier chain: the native Opus codec, then an Opus codec
// isolated in a worker session, then the decimation codec that can
// never fail.
package voicewire

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicewire/codec"
	"github.com/opd-ai/voicewire/worker"
)

// ErrEngineClosed indicates use of an engine after Close.
var ErrEngineClosed = errors.New("engine closed")

// Sealer protects packets in transit between pipeline endpoints. The
// secure package provides implementations; any pair of functions that
// round-trips a byte slice will do.
type Sealer interface {
	// Seal encrypts one packet for the peer.
	Seal(packet []byte) ([]byte, error)
	// Open authenticates and decrypts one packet from the peer.
	Open(sealed []byte) ([]byte, error)
}

// FallbackEvent describes one step down the capability ladder.
type FallbackEvent struct {
	// Operation is "encode" or "decode".
	Operation string
	// Tier is the name of the tier that failed, or the packet tag name
	// on the decode side.
	Tier string
	// Err is the failure that caused the step down.
	Err error
}

// Options configures an Engine. The zero value is usable.
type Options struct {
	// Config holds the codec parameters for every tier. The zero value
	// selects codec.DefaultConfig.
	Config codec.Config

	// Providers is the encode tier chain in priority order. Nil selects
	// DefaultProviders. An empty non-nil slice leaves the engine unable
	// to encode.
	Providers []codec.Provider

	// Sealer, when set, seals every encoded packet and opens every
	// packet before decoding.
	Sealer Sealer
}

// DefaultProviders returns the standard tier chain: the native Opus
// codec, an Opus codec isolated in a worker session, and finally the
// decimation codec, whose construction cannot fail.
func DefaultProviders() []codec.Provider {
	return []codec.Provider{
		codec.NewOpusProvider(),
		worker.NewProvider(worker.ProviderConfig{}),
		codec.NewSimpleProvider(),
	}
}

// tier is one provider plus its construction outcome. Construction is
// attempted once per engine; a tier that declined stays declined until
// a new engine probes again.
type tier struct {
	provider  codec.Provider
	codec     codec.Codec
	err       error
	attempted bool
	reported  bool
}

// Engine orchestrates the codec tiers behind a single encode/decode
// surface. It serializes codec access internally, so it is safe for
// concurrent use; a pipeline typically runs one engine per session.
type Engine struct {
	config codec.Config
	sealer Sealer

	mu                  sync.Mutex
	tiers               []*tier
	simple              *codec.SimpleCodec
	nativeDecoder       codec.PacketDecoder
	nativeDecoderFailed bool
	opusDecoder         *codec.OpusDecoder
	opusDecoderFailed   bool
	closed              bool

	cb      sync.Mutex
	onFall  func(FallbackEvent)
	metrics counters
}

// New creates an engine.
//
// Parameters:
//   - opts: session configuration; the zero value selects defaults
//
// Returns:
//   - *Engine: ready engine; no tier is constructed until first use
//   - error: codec.ErrInvalidConfig (wrapped) for unusable parameters
func New(opts Options) (*Engine, error) {
	config := opts.Config
	if config == (codec.Config{}) {
		config = codec.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	providers := opts.Providers
	if providers == nil {
		providers = DefaultProviders()
	}
	tiers := make([]*tier, len(providers))
	for i, p := range providers {
		tiers[i] = &tier{provider: p}
	}

	logrus.WithFields(logrus.Fields{
		"function":    "New",
		"sample_rate": config.SampleRate,
		"channels":    config.Channels,
		"frame_size":  config.FrameSize,
		"tiers":       len(tiers),
	}).Info("Created voicewire engine")

	return &Engine{
		config: config,
		sealer: opts.Sealer,
		tiers:  tiers,
		simple: codec.NewSimpleCodec(),
	}, nil
}

// Config returns the engine's codec configuration.
func (e *Engine) Config() codec.Config {
	return e.config
}

// Ready reports whether the engine can still process frames. It is the
// one boolean a presentation layer needs: true from construction until
// Close.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed
}

// OnFallback registers a callback invoked whenever the engine steps
// down a tier or substitutes silence. The callback runs on the calling
// goroutine and must return quickly.
func (e *Engine) OnFallback(fn func(FallbackEvent)) {
	e.cb.Lock()
	e.onFall = fn
	e.cb.Unlock()
}

// Close releases every constructed codec. Further calls to Encode and
// Decode return ErrEngineClosed. Close is idempotent.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	for _, t := range e.tiers {
		if t.codec != nil {
			if err := t.codec.Close(); err != nil {
				logrus.WithFields(logrus.Fields{
					"function": "Close",
					"tier":     t.provider.Name(),
					"error":    err.Error(),
				}).Warn("Tier codec close failed")
			}
			t.codec = nil
		}
	}
	if e.nativeDecoder != nil {
		e.nativeDecoder.Close()
		e.nativeDecoder = nil
	}
	if e.opusDecoder != nil {
		e.opusDecoder.Close()
		e.opusDecoder = nil
	}
	e.simple.Close()

	logrus.WithFields(logrus.Fields{
		"function": "Close",
	}).Info("Engine closed")
	return nil
}

// fallback reports a step down the capability ladder.
func (e *Engine) fallback(ev FallbackEvent) {
	logrus.WithFields(logrus.Fields{
		"function":  "fallback",
		"operation": ev.Operation,
		"tier":      ev.Tier,
		"error":     ev.Err.Error(),
	}).Warn("Falling back")

	e.cb.Lock()
	fn := e.onFall
	e.cb.Unlock()
	if fn != nil {
		fn(ev)
	}
}
