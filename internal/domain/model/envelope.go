package model

import "errors"

// ErrDisconnected is returned when the event stream goes away while a caller
// is waiting on it, either because the remote end asked us to disconnect or
// because the session was closed locally.
var ErrDisconnected = errors.New("event stream disconnected")

type EnvelopeKind string

const (
	KindHandshake  EnvelopeKind = "handshake"
	KindAction     EnvelopeKind = "interactive_action"
	KindMessage    EnvelopeKind = "message_event"
	KindDisconnect EnvelopeKind = "disconnect"
	// KindOther covers envelopes that must be acknowledged but can never
	// answer a pending wait (reactions, slash commands, channel joins...).
	KindOther EnvelopeKind = "other"
)

// Action is a single button press carried by an interactive envelope.
type Action struct {
	ActionID  string `json:"action_id"`
	Value     string `json:"value"`
	MessageID string `json:"message_id"`
}

// ActionPayload is the payload of a KindAction envelope.
type ActionPayload struct {
	Actions   []Action `json:"actions"`
	UserID    string   `json:"user_id"`
	MessageID string   `json:"message_id"`
	ChannelID string   `json:"channel_id"`
}

// MessagePayload is the payload of a KindMessage envelope.
type MessagePayload struct {
	ThreadRootID string `json:"thread_root_id"`
	Timestamp    string `json:"timestamp"`
	AuthorIsBot  bool   `json:"author_is_bot"`
	Text         string `json:"text"`
	UserID       string `json:"user_id"`
	ChannelID    string `json:"channel_id"`
}

// Envelope is one decoded event from the duplex event stream. Token is the
// correlation token that has to be echoed back to acknowledge the envelope;
// it is empty only for handshake and disconnect frames.
type Envelope struct {
	Kind    EnvelopeKind    `json:"kind"`
	Token   string          `json:"token,omitempty"`
	Action  *ActionPayload  `json:"action,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

// NeedsAck reports whether the envelope carries a token that must be echoed.
func (e Envelope) NeedsAck() bool {
	return e.Token != ""
}
