// Package codec provides the audio codecs behind the voicewire packet
// format and the provider registry that selects between them.
//
// Two codecs exist. The native Opus codec (build tag cgo) wraps libopus
// for real compression. The simple codec decimates the frame to every
// tenth sample and reconstructs it by linear interpolation; it sounds
// rough but has no dependencies and can never fail to construct, which
// makes it the guaranteed last tier. A pure-Go Opus decoder covers the
// decode side on builds where the native codec is absent.
//
// Capability selection is explicit rather than discovered per frame:
// a Registry holds Providers in priority order, and Construct returns
// the first codec that builds for the session configuration. Callers
// hold the constructed codec for the life of the session.
//
// Every codec speaks the same contract: Encode turns one PCM frame
// into one complete tagged packet, Decode turns one packet back into
// a frame of exactly the sample count recorded in its header.
package codec
