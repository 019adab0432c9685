package worker

import (
	"fmt"

	"github.com/opd-ai/voicewire/codec"
)

// MessageType identifies the purpose of a session message.
type MessageType int

// Request types travel from client to session; response types travel
// back. Every response to an identified request echoes its ID.
const (
	// MessageInit asks the session to construct its codec. Carries
	// Config.
	MessageInit MessageType = iota + 1

	// MessageEncode asks the session to encode one frame. Carries Frame.
	MessageEncode

	// MessageDecode asks the session to decode one packet. Carries
	// Packet.
	MessageDecode

	// MessageDestroy asks the session to release its codec and return to
	// the uninitialized state. It has no response.
	MessageDestroy

	// MessageReady confirms successful initialization.
	MessageReady

	// MessageEncoded carries the packet produced for a MessageEncode.
	MessageEncoded

	// MessageDecoded carries the frame produced for a MessageDecode.
	MessageDecoded

	// MessageError reports a failed request. Carries Error and, when the
	// failing request had one, its ID.
	MessageError
)

// String returns the message type name for logging.
func (t MessageType) String() string {
	switch t {
	case MessageInit:
		return "init"
	case MessageEncode:
		return "encode"
	case MessageDecode:
		return "decode"
	case MessageDestroy:
		return "destroy"
	case MessageReady:
		return "ready"
	case MessageEncoded:
		return "encoded"
	case MessageDecoded:
		return "decoded"
	case MessageError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Message is the envelope exchanged with a session. Exactly one payload
// field is meaningful for a given type; the rest stay zero. Errors
// cross the session boundary as plain strings and the client re-attaches
// error kinds on its side.
type Message struct {
	// Type selects the payload field and the session's reaction.
	Type MessageType

	// ID correlates a response with its request. Encode and decode
	// requests must carry one; responses echo it.
	ID string

	// Config is the codec configuration for MessageInit.
	Config *codec.Config

	// Frame is the PCM payload of MessageEncode and MessageDecoded.
	Frame []float32

	// Packet is the encoded payload of MessageDecode and MessageEncoded.
	Packet []byte

	// Error is the failure description of MessageError.
	Error string
}
