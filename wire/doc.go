// Package wire defines the tagged packet format that carries encoded audio
// frames between voicewire endpoints.
//
// Every packet starts with a fixed 4-byte header:
//
//	[MARKER(1)][TAG(1)][SAMPLE_COUNT(2, big-endian)]
//
// The marker byte is always 0x4F. The tag byte names the codec that produced
// the payload and fully determines how the payload must be decoded; there is
// no tag negotiation. The sample count records the length of the original PCM
// frame so that lossy codecs can reconstruct output of exactly the right size.
//
// The sample count is an unsigned 16-bit field, which bounds a single packet
// to frames of at most MaxFrameSamples samples. Callers with longer frames
// must split them first (see the pcm package).
//
// All multi-byte values in this format, including the 16-bit payload samples
// written by the decimation codec, use big-endian byte order.
package wire
