package codec

import (
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Codec converts PCM frames into complete tagged packets and back.
// Implementations own any native resources and release them in Close.
// A Codec is safe for use from a single goroutine; wrap it in a worker
// session when cross-goroutine access is needed.
type Codec interface {
	// Encode converts one PCM frame into a tagged packet, header included.
	Encode(frame []float32) ([]byte, error)

	// Decode converts one tagged packet back into a PCM frame whose length
	// equals the sample count recorded in the packet header.
	Decode(packet []byte) ([]float32, error)

	// Close releases codec resources. Further calls to Encode or Decode
	// return ErrCodecClosed. Close is idempotent.
	Close() error
}

// Provider constructs codecs for one capability tier. Providers are
// iterated in priority order by the registry, so a provider reports
// honestly whether its capability exists rather than guessing.
type Provider interface {
	// Name identifies the provider in logs and fallback callbacks.
	Name() string

	// TryConstruct attempts to build a codec for the given configuration.
	// It returns ErrCodecUnavailable (wrapped) when the capability is not
	// present in this build, or ErrConstruction when setup fails.
	TryConstruct(config Config) (Codec, error)
}

// PacketDecoder is a decode-only codec view for packets whose encoder
// lives on the far side. Receive paths use one as a decode floor
// instead of constructing a full codec tier.
type PacketDecoder interface {
	// DecodePacket converts one tagged packet into a PCM frame whose
	// length equals the sample count recorded in the packet header.
	DecodePacket(packet []byte) ([]float32, error)

	// Close releases decoder resources.
	Close() error
}

// Config holds codec parameters shared by every tier. The voice profile
// is fixed; only the parameters below vary per session.
type Config struct {
	// Channels is the channel count, 1 or 2. Frames are interleaved for
	// stereo.
	Channels int

	// SampleRate is the session sample rate in Hz.
	SampleRate int

	// FrameSize is the number of samples per channel in one frame.
	FrameSize int

	// BitRate is the target encoder bit rate in bits per second. Zero
	// selects DefaultBitRate.
	BitRate int

	// Complexity is the encoder effort setting, 0 through 10. Codecs
	// without an effort knob ignore it.
	Complexity int
}

// Default codec parameters for a 20ms mono voice session at 48kHz.
const (
	DefaultChannels   = 1
	DefaultSampleRate = 48000
	DefaultFrameSize  = 960
	DefaultBitRate    = 64000
	DefaultComplexity = 10
)

// DefaultConfig returns the standard voice session configuration.
func DefaultConfig() Config {
	return Config{
		Channels:   DefaultChannels,
		SampleRate: DefaultSampleRate,
		FrameSize:  DefaultFrameSize,
		BitRate:    DefaultBitRate,
		Complexity: DefaultComplexity,
	}
}

// withDefaults fills zero-valued optional fields.
func (c Config) withDefaults() Config {
	if c.BitRate == 0 {
		c.BitRate = DefaultBitRate
	}
	return c
}

// Validate checks the configuration for values no codec can accept.
//
// Returns:
//   - error: ErrInvalidConfig (wrapped) describing the first violation,
//     or nil when the configuration is usable
func (c Config) Validate() error {
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("%w: channels must be 1 or 2, got %d", ErrInvalidConfig, c.Channels)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.FrameSize <= 0 {
		return fmt.Errorf("%w: frame size must be positive, got %d", ErrInvalidConfig, c.FrameSize)
	}
	if c.BitRate < 0 {
		return fmt.Errorf("%w: bit rate must not be negative, got %d", ErrInvalidConfig, c.BitRate)
	}
	if c.Complexity < 0 || c.Complexity > 10 {
		return fmt.Errorf("%w: complexity must be 0 through 10, got %d", ErrInvalidConfig, c.Complexity)
	}
	return nil
}

// ValidFrameDuration reports whether frameSize at sampleRate is one of
// the frame durations the real codec accepts (2.5, 5, 10, 20, 40 or
// 60ms). The simple codec accepts any frame length and does not call
// this.
func ValidFrameDuration(frameSize, sampleRate int) bool {
	if sampleRate <= 0 || frameSize <= 0 {
		return false
	}
	durations := []float64{2.5, 5, 10, 20, 40, 60}
	ms := float64(frameSize) / float64(sampleRate) * 1000.0
	for _, d := range durations {
		if math.Abs(ms-d) < 0.01 {
			return true
		}
	}
	return false
}

// nativeSampleRate is the internal rate used when the session rate is
// not one the Opus library accepts directly.
const nativeSampleRate = 48000

// isOpusRate reports whether the Opus library accepts rate directly.
func isOpusRate(rate int) bool {
	switch rate {
	case 8000, 12000, 16000, 24000, 48000:
		return true
	}
	return false
}

// nativeRate maps a session rate onto a rate the Opus library accepts.
func nativeRate(sampleRate int) int {
	if isOpusRate(sampleRate) {
		return sampleRate
	}
	return nativeSampleRate
}

// nativeFrameSize converts the session frame length to the native rate.
// It rounds to the nearest sample so any frame inside the
// ValidFrameDuration tolerance lands exactly on a frame length the Opus
// library accepts; truncation would turn 110 samples at 44.1kHz into an
// unusable 119 instead of 120.
func nativeFrameSize(frameSize, sampleRate int) int {
	if isOpusRate(sampleRate) {
		return frameSize
	}
	return (frameSize*nativeSampleRate + sampleRate/2) / sampleRate
}

// Registry is a static, ordered list of codec providers. Construction
// walks the list in priority order and returns the first codec that
// builds successfully, so capability selection happens once per session
// instead of being rediscovered on every frame.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
}

// NewRegistry creates a registry with the given providers in priority
// order.
func NewRegistry(providers ...Provider) *Registry {
	return &Registry{providers: providers}
}

// Register appends a provider at the lowest priority.
func (r *Registry) Register(provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, provider)
}

// Providers returns the providers in priority order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Construct walks the providers in priority order and returns the first
// codec that builds for the configuration.
//
// Parameters:
//   - config: codec parameters, validated before any provider runs
//
// Returns:
//   - Codec: the constructed codec
//   - string: the name of the provider that built it
//   - error: ErrCodecUnavailable (wrapped) when every provider declined
func (r *Registry) Construct(config Config) (Codec, string, error) {
	config = config.withDefaults()
	if err := config.Validate(); err != nil {
		return nil, "", err
	}

	providers := r.Providers()
	logrus.WithFields(logrus.Fields{
		"function":  "Construct",
		"providers": len(providers),
	}).Debug("Selecting codec provider")

	for _, provider := range providers {
		c, err := provider.TryConstruct(config)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Construct",
				"provider": provider.Name(),
				"error":    err.Error(),
			}).Debug("Provider declined")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"function": "Construct",
			"provider": provider.Name(),
		}).Info("Codec constructed")
		return c, provider.Name(), nil
	}

	return nil, "", fmt.Errorf("%w: no provider out of %d could construct a codec",
		ErrCodecUnavailable, len(providers))
}
