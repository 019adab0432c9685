//go:build !cgo

package codec

import "fmt"

// newOpusCodec reports the native Opus capability as absent. Builds
// without cgo still decode Opus packets through OpusDecoder and still
// encode through the fallback tiers.
func newOpusCodec(config Config) (Codec, error) {
	return nil, fmt.Errorf("%w: native Opus support requires cgo", ErrCodecUnavailable)
}

// NewNativeOpusDecoder reports the native decode capability as absent.
func NewNativeOpusDecoder(config Config) (PacketDecoder, error) {
	return nil, fmt.Errorf("%w: native Opus support requires cgo", ErrCodecUnavailable)
}
