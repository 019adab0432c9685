package worker

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voicewire/codec"
)

// State is the lifecycle state of a session.
type State int32

// Session lifecycle states. Init moves Uninitialized through
// Initializing to Ready or Failed; destroy returns any state to
// Uninitialized.
const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateFailed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "invalid"
	}
}

// sessionQueueSize bounds the inbox and event queues. At one frame per
// 20ms this is more than a second of backlog, so a full queue means the
// consumer is gone, not slow.
const sessionQueueSize = 64

// Session is an isolated codec unit. One goroutine owns the codec and
// processes messages strictly in arrival order, so the codec itself
// never sees concurrent calls and the session needs no locking around
// it. All interaction happens through Send and the Events channel;
// Client wraps both with request correlation.
type Session struct {
	registry *codec.Registry
	inbox    chan Message
	events   chan Message
	quit     chan struct{}
	done     chan struct{}
	state    atomic.Int32
	closer   sync.Once
}

// NewSession creates a session and starts its goroutine. The registry
// decides which codec an init request constructs.
func NewSession(registry *codec.Registry) *Session {
	s := &Session{
		registry: registry,
		inbox:    make(chan Message, sessionQueueSize),
		events:   make(chan Message, sessionQueueSize),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()

	logrus.WithFields(logrus.Fields{
		"function": "NewSession",
	}).Debug("Started codec session")
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Ready reports whether the session holds a constructed codec.
func (s *Session) Ready() bool {
	return s.State() == StateReady
}

// Events returns the channel of session responses. The channel closes
// when the session terminates.
func (s *Session) Events() <-chan Message {
	return s.events
}

// Send queues a message for processing. Messages are processed in the
// order they arrive.
//
// Returns:
//   - error: ErrSessionClosed once the session has terminated
func (s *Session) Send(msg Message) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inbox <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

// Close terminates the session goroutine, releasing the codec if one
// exists. It blocks until the goroutine has exited and the events
// channel is closed. Close is idempotent.
func (s *Session) Close() {
	s.closer.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *Session) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev != next {
		logrus.WithFields(logrus.Fields{
			"function": "setState",
			"from":     prev.String(),
			"to":       next.String(),
		}).Debug("Session state changed")
	}
}

// run is the session goroutine. It owns the codec for its entire life.
func (s *Session) run() {
	defer close(s.done)
	defer close(s.events)

	var active codec.Codec
	defer func() {
		if active != nil {
			active.Close()
		}
	}()

	for {
		select {
		case <-s.quit:
			s.setState(StateUninitialized)
			return
		case msg := <-s.inbox:
			active = s.handle(active, msg)
		}
	}
}

// handle processes one message and returns the possibly replaced codec.
func (s *Session) handle(active codec.Codec, msg Message) codec.Codec {
	switch msg.Type {
	case MessageInit:
		return s.handleInit(active, msg)

	case MessageEncode:
		if !s.requireReady(active, msg) {
			return active
		}
		packet, err := active.Encode(msg.Frame)
		if err != nil {
			s.emitError(msg.ID, err.Error())
			return active
		}
		s.emit(Message{Type: MessageEncoded, ID: msg.ID, Packet: packet})
		return active

	case MessageDecode:
		if !s.requireReady(active, msg) {
			return active
		}
		frame, err := active.Decode(msg.Packet)
		if err != nil {
			s.emitError(msg.ID, err.Error())
			return active
		}
		s.emit(Message{Type: MessageDecoded, ID: msg.ID, Frame: frame})
		return active

	case MessageDestroy:
		// Accepted in every state and idempotent: destroying an empty
		// session is a no-op.
		if active != nil {
			active.Close()
		}
		s.setState(StateUninitialized)
		return nil

	default:
		s.emitError(msg.ID, "unsupported message type "+msg.Type.String())
		return active
	}
}

// handleInit constructs the codec. Init is valid only while
// Uninitialized; a Ready or Failed session must see a destroy first, so
// a replaced codec is always released deliberately rather than by an
// accidental second init.
func (s *Session) handleInit(active codec.Codec, msg Message) codec.Codec {
	if s.State() != StateUninitialized {
		s.emitError(msg.ID, "destroy the session before init")
		return active
	}
	if msg.Config == nil {
		s.emitError(msg.ID, "init without configuration")
		return active
	}

	s.setState(StateInitializing)
	constructed, provider, err := s.registry.Construct(*msg.Config)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "handleInit",
			"error":    err.Error(),
		}).Warn("Session codec construction failed")
		s.setState(StateFailed)
		s.emitError(msg.ID, err.Error())
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"function": "handleInit",
		"provider": provider,
	}).Info("Session codec ready")
	s.setState(StateReady)
	s.emit(Message{Type: MessageReady, ID: msg.ID})
	return constructed
}

// requireReady rejects requests that need a codec when none exists.
func (s *Session) requireReady(active codec.Codec, msg Message) bool {
	if msg.ID == "" {
		s.emitError("", ErrMissingID.Error())
		return false
	}
	if active == nil {
		s.emitError(msg.ID, ErrNotInitialized.Error())
		return false
	}
	return true
}

func (s *Session) emit(msg Message) {
	select {
	case s.events <- msg:
	case <-s.quit:
	}
}

func (s *Session) emitError(id, text string) {
	s.emit(Message{Type: MessageError, ID: id, Error: text})
}
