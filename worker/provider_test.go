package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voicewire/codec"
	"github.com/opd-ai/voicewire/wire"
)

func TestProviderName(t *testing.T) {
	p := NewProvider(ProviderConfig{})
	assert.Equal(t, "worker", p.Name())
}

func TestProviderConstructAndRoundTrip(t *testing.T) {
	p := NewProvider(ProviderConfig{
		Registry: codec.NewRegistry(codec.NewSimpleProvider()),
	})

	c, err := p.TryConstruct(codec.DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, c)
	defer c.Close()

	packet, err := c.Encode(make([]float32, 960))
	require.NoError(t, err)
	assert.Equal(t, byte(wire.TagDecimated), packet[1])

	frame, err := c.Decode(packet)
	require.NoError(t, err)
	assert.Len(t, frame, 960, "the session boundary must preserve the recorded count")
}

func TestProviderConstructFailure(t *testing.T) {
	p := NewProvider(ProviderConfig{
		Registry: codec.NewRegistry(failingProvider{}),
	})

	c, err := p.TryConstruct(codec.DefaultConfig())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, codec.ErrConstruction,
		"an empty-handed session must be torn down and reported as a construction failure")
}

func TestProviderAsRegistryTier(t *testing.T) {
	// The worker tier composes with direct tiers in one registry: when
	// the preferred tier declines, construction lands on the worker.
	registry := codec.NewRegistry(
		failingProvider{},
		NewProvider(ProviderConfig{
			Registry: codec.NewRegistry(codec.NewSimpleProvider()),
		}),
	)

	c, name, err := registry.Construct(codec.DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "worker", name)

	packet, err := c.Encode(make([]float32, 480))
	require.NoError(t, err)
	_, count, err := wire.ParseHeader(packet)
	require.NoError(t, err)
	assert.Equal(t, 480, count)
}
