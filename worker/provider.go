package worker

import (
	"context"
	"time"

	"github.com/opd-ai/voicewire/codec"
)

// DefaultInitTimeout bounds codec construction inside the session.
const DefaultInitTimeout = 2 * time.Second

// ProviderConfig configures the worker tier.
type ProviderConfig struct {
	// Registry selects the codec constructed inside the session. Nil
	// selects a registry holding only the native Opus provider, so the
	// worker tier fails exactly when the real capability is absent
	// instead of silently duplicating the fallback tier.
	Registry *codec.Registry

	// RequestTimeout bounds each encode and decode round trip. Zero
	// selects DefaultRequestTimeout.
	RequestTimeout time.Duration

	// InitTimeout bounds codec construction. Zero selects
	// DefaultInitTimeout.
	InitTimeout time.Duration
}

// Provider runs a codec inside an isolated session and exposes it
// through the standard codec interface, making "codec behind a message
// protocol" just another registry tier.
type Provider struct {
	registry       *codec.Registry
	requestTimeout time.Duration
	initTimeout    time.Duration
}

// NewProvider creates the worker tier provider.
func NewProvider(config ProviderConfig) *Provider {
	registry := config.Registry
	if registry == nil {
		registry = codec.NewRegistry(codec.NewOpusProvider())
	}
	requestTimeout := config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	initTimeout := config.InitTimeout
	if initTimeout <= 0 {
		initTimeout = DefaultInitTimeout
	}
	return &Provider{
		registry:       registry,
		requestTimeout: requestTimeout,
		initTimeout:    initTimeout,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "worker" }

// TryConstruct starts a session, initializes its codec and returns a
// codec facade whose calls travel through the session. A failed init
// tears the session down before reporting the error.
func (p *Provider) TryConstruct(config codec.Config) (codec.Codec, error) {
	session := NewSession(p.registry)
	client := NewClient(session, p.requestTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), p.initTimeout)
	defer cancel()

	if err := client.Init(ctx, config); err != nil {
		client.Close()
		return nil, err
	}
	return &sessionCodec{client: client}, nil
}

// sessionCodec adapts a Client to the codec interface. Each call blocks
// until the session answers or the client's deadline fires, so callers
// see ordinary synchronous codec behavior with a bounded worst case.
type sessionCodec struct {
	client *Client
}

func (c *sessionCodec) Encode(frame []float32) ([]byte, error) {
	return c.client.Encode(context.Background(), frame)
}

func (c *sessionCodec) Decode(packet []byte) ([]float32, error) {
	return c.client.Decode(context.Background(), packet)
}

func (c *sessionCodec) Close() error {
	// Release the codec through the protocol first, then stop the
	// session goroutine.
	if err := c.client.Destroy(); err != nil {
		c.client.Close()
		return err
	}
	return c.client.Close()
}
