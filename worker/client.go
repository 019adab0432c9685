package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicewire/codec"
)

// DefaultRequestTimeout bounds one encode or decode round trip. A codec
// finishes a 20ms frame in well under a millisecond, so hitting this
// deadline means the session is wedged, not busy, and the pipeline is
// better served by failing over than by waiting.
const DefaultRequestTimeout = 250 * time.Millisecond

// response is the resolved outcome of one correlated request.
type response struct {
	packet []byte
	frame  []float32
	err    error
}

// Client is the request/response face of a Session. Every request gets
// a fresh correlation ID and an entry in the pending map; the entry is
// inserted before the message is sent and removed exactly once, by the
// response, by the deadline, or by destroy. Responses whose ID has no
// pending entry are dropped, so a late reply after a timeout cannot be
// mistaken for the answer to a newer request.
//
// Client is safe for concurrent use.
type Client struct {
	session *Session
	timeout time.Duration

	mu      sync.Mutex
	pending map[string]chan response
	closed  bool

	dispatchDone chan struct{}
}

// NewClient wraps a session with request correlation. A timeout of zero
// selects DefaultRequestTimeout.
func NewClient(session *Session, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	c := &Client{
		session:      session,
		timeout:      timeout,
		pending:      make(map[string]chan response),
		dispatchDone: make(chan struct{}),
	}
	go c.dispatch()
	return c
}

// Init asks the session to construct its codec and waits for the ready
// confirmation.
//
// Parameters:
//   - ctx: bounds the wait beyond the client's own request timeout
//   - config: codec parameters for the session's registry
//
// Returns:
//   - error: codec.ErrConstruction (wrapped) when the session cannot
//     build a codec, the request times out, or the session is gone
func (c *Client) Init(ctx context.Context, config codec.Config) error {
	res, err := c.roundTrip(ctx, Message{
		Type:   MessageInit,
		ID:     uuid.NewString(),
		Config: &config,
	})
	if err == nil {
		err = res.err
	}
	if err != nil {
		return remapError(codec.ErrConstruction, err)
	}
	return nil
}

// Encode sends one frame to the session and waits for the packet.
//
// Returns:
//   - []byte: complete tagged packet
//   - error: codec.ErrEncodeFailed (wrapped) on any failure; the chain
//     also carries ErrNotInitialized, ErrRequestTimeout or
//     ErrSessionDestroyed when one of those was the cause
func (c *Client) Encode(ctx context.Context, frame []float32) ([]byte, error) {
	res, err := c.roundTrip(ctx, Message{
		Type:  MessageEncode,
		ID:    uuid.NewString(),
		Frame: frame,
	})
	if err == nil {
		err = res.err
	}
	if err != nil {
		return nil, remapError(codec.ErrEncodeFailed, err)
	}
	return res.packet, nil
}

// Decode sends one packet to the session and waits for the frame.
//
// Returns:
//   - []float32: PCM frame of the packet's recorded length
//   - error: codec.ErrDecodeFailed (wrapped) on any failure, with the
//     underlying cause in the chain as for Encode
func (c *Client) Decode(ctx context.Context, packet []byte) ([]float32, error) {
	res, err := c.roundTrip(ctx, Message{
		Type:   MessageDecode,
		ID:     uuid.NewString(),
		Packet: packet,
	})
	if err == nil {
		err = res.err
	}
	if err != nil {
		return nil, remapError(codec.ErrDecodeFailed, err)
	}
	return res.frame, nil
}

// Ready reports whether the session holds a constructed codec.
func (c *Client) Ready() bool {
	return c.session.Ready()
}

// Destroy releases the session's codec and fails every in-flight
// request with ErrSessionDestroyed. The session itself stays alive and
// accepts a new init. Destroy is idempotent.
func (c *Client) Destroy() error {
	err := c.session.Send(Message{Type: MessageDestroy})
	c.failAll(ErrSessionDestroyed)
	if err != nil && !errors.Is(err, ErrSessionClosed) {
		return err
	}
	return nil
}

// Close destroys the session, terminates its goroutine and waits for
// the dispatcher to drain. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	alreadyClosed := c.closed
	c.closed = true
	c.mu.Unlock()

	if !alreadyClosed {
		c.session.Close()
	}
	<-c.dispatchDone
	return nil
}

// roundTrip registers a pending entry, sends the request and waits for
// whichever comes first: the response, the context, or the deadline.
func (c *Client) roundTrip(ctx context.Context, msg Message) (response, error) {
	ch := make(chan response, 1)
	if err := c.register(msg.ID, ch); err != nil {
		return response{}, err
	}
	if err := c.session.Send(msg); err != nil {
		c.unregister(msg.ID)
		return response{}, err
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		c.unregister(msg.ID)
		return response{}, ctx.Err()
	case <-timer.C:
		c.unregister(msg.ID)
		logrus.WithFields(logrus.Fields{
			"function": "roundTrip",
			"type":     msg.Type.String(),
			"id":       msg.ID,
			"timeout":  c.timeout.String(),
		}).Warn("Session request timed out")
		return response{}, ErrRequestTimeout
	}
}

// dispatch routes session events to their pending requests. It runs
// until the session closes its events channel, then fails whatever is
// still pending.
func (c *Client) dispatch() {
	defer close(c.dispatchDone)

	for msg := range c.session.Events() {
		switch msg.Type {
		case MessageReady:
			c.resolve(msg.ID, response{})
		case MessageEncoded:
			c.resolve(msg.ID, response{packet: msg.Packet})
		case MessageDecoded:
			c.resolve(msg.ID, response{frame: msg.Frame})
		case MessageError:
			c.resolve(msg.ID, response{err: errors.New(msg.Error)})
		default:
			logrus.WithFields(logrus.Fields{
				"function": "dispatch",
				"type":     msg.Type.String(),
			}).Debug("Ignoring unexpected session event")
		}
	}
	c.failAll(ErrSessionClosed)
}

// register inserts a pending entry before its request is sent.
func (c *Client) register(id string, ch chan response) error {
	if id == "" {
		return ErrMissingID
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrSessionClosed
	}
	c.pending[id] = ch
	return nil
}

// unregister drops a pending entry whose request gave up waiting.
func (c *Client) unregister(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
}

// resolve removes the pending entry for id and delivers the response.
// An unknown id means the request already timed out or was destroyed;
// the late reply is dropped.
func (c *Client) resolve(id string, res response) {
	c.mu.Lock()
	ch, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "resolve",
			"id":       id,
		}).Debug("Dropping response with no pending request")
		return
	}
	ch <- res
}

// failAll resolves every pending request with cause.
func (c *Client) failAll(cause error) {
	c.mu.Lock()
	drained := c.pending
	c.pending = make(map[string]chan response)
	c.mu.Unlock()

	for _, ch := range drained {
		ch <- response{err: cause}
	}
}

// remapError attaches the request's error kind to a boundary cause.
// Session-side errors arrive as strings; the one the caller must be
// able to classify, a request rejected before init, is recognized by
// its exact text and replaced with the sentinel.
func remapError(kind, cause error) error {
	if cause.Error() == ErrNotInitialized.Error() {
		return fmt.Errorf("%w: %w", kind, ErrNotInitialized)
	}
	return fmt.Errorf("%w: %w", kind, cause)
}
