package voicewire

import "sync"

// Stats is a point-in-time snapshot of engine activity. Counters only
// ever grow; the maps are copies the caller may keep.
type Stats struct {
	// PacketsEncoded counts successful Encode calls.
	PacketsEncoded uint64
	// PacketsDecoded counts Decode calls that produced real audio.
	PacketsDecoded uint64
	// BytesEncoded is the total size of produced packets.
	BytesEncoded uint64
	// BytesDecoded is the total size of consumed packets.
	BytesDecoded uint64
	// EncodeFallbacks counts runtime encode failures that pushed a frame
	// down to the next tier.
	EncodeFallbacks uint64
	// SilentFrames counts decodes answered by the silence policy.
	SilentFrames uint64
	// InvalidPackets counts packets rejected as malformed.
	InvalidPackets uint64
	// OpenFailures counts sealed packets that failed authentication.
	OpenFailures uint64
	// EncodedByTier breaks PacketsEncoded down by tier name.
	EncodedByTier map[string]uint64
	// DecodedByTag breaks PacketsDecoded down by packet tag name.
	DecodedByTag map[string]uint64
}

// counters accumulates engine activity behind its own lock so the hot
// paths never contend with snapshot readers for long.
type counters struct {
	mu              sync.Mutex
	packetsEncoded  uint64
	packetsDecoded  uint64
	bytesEncoded    uint64
	bytesDecoded    uint64
	encodeFallbacks uint64
	silentFrames    uint64
	invalidPackets  uint64
	openFailures    uint64
	encodedByTier   map[string]uint64
	decodedByTag    map[string]uint64
}

func (c *counters) encoded(tierName string, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetsEncoded++
	c.bytesEncoded += uint64(size)
	if c.encodedByTier == nil {
		c.encodedByTier = make(map[string]uint64)
	}
	c.encodedByTier[tierName]++
}

func (c *counters) decoded(tagName string, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.packetsDecoded++
	c.bytesDecoded += uint64(size)
	if c.decodedByTag == nil {
		c.decodedByTag = make(map[string]uint64)
	}
	c.decodedByTag[tagName]++
}

func (c *counters) encodeFallback() {
	c.mu.Lock()
	c.encodeFallbacks++
	c.mu.Unlock()
}

func (c *counters) silentFrame() {
	c.mu.Lock()
	c.silentFrames++
	c.mu.Unlock()
}

func (c *counters) invalidPacket() {
	c.mu.Lock()
	c.invalidPackets++
	c.mu.Unlock()
}

func (c *counters) openFailure() {
	c.mu.Lock()
	c.openFailures++
	c.mu.Unlock()
}

// Stats returns a snapshot of the engine's activity counters.
func (e *Engine) Stats() Stats {
	c := &e.metrics
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		PacketsEncoded:  c.packetsEncoded,
		PacketsDecoded:  c.packetsDecoded,
		BytesEncoded:    c.bytesEncoded,
		BytesDecoded:    c.bytesDecoded,
		EncodeFallbacks: c.encodeFallbacks,
		SilentFrames:    c.silentFrames,
		InvalidPackets:  c.invalidPackets,
		OpenFailures:    c.openFailures,
		EncodedByTier:   make(map[string]uint64, len(c.encodedByTier)),
		DecodedByTag:    make(map[string]uint64, len(c.decodedByTag)),
	}
	for k, v := range c.encodedByTier {
		stats.EncodedByTier[k] = v
	}
	for k, v := range c.decodedByTag {
		stats.DecodedByTag[k] = v
	}
	return stats
}
