package eventstream

import (
	"encoding/json"
	"errors"
	"fmt"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/jonny/hookbridge/internal/domain/model"
)

var (
	// ErrUnrecognizedFrame is returned for frames of a type this layer does not
	// know and that carry no envelope id to acknowledge.
	ErrUnrecognizedFrame = errors.New("unrecognized frame")
	// ErrMalformedFrame is returned for frames that cannot be decoded.
	ErrMalformedFrame = errors.New("malformed frame")
)

// FrameError wraps a decoding failure together with the envelope id of the
// offending frame, when one could be read.
type FrameError struct {
	EnvelopeID string
	Err        error
}

func (e *FrameError) Error() string {
	if e.EnvelopeID != "" {
		return fmt.Sprintf("envelope %s: %v", e.EnvelopeID, e.Err)
	}
	return e.Err.Error()
}

func (e *FrameError) Unwrap() error { return e.Err }

// Edits and deletions are not replies; they only need an ack.
var ignoredSubtypes = map[string]bool{
	"message_changed": true,
	"message_deleted": true,
}

// Decoder turns Socket Mode frames into domain envelopes.
type Decoder struct {
	// BotUserID is our own user id; messages from it count as bot-authored.
	BotUserID string
}

// Decode parses one raw frame.
func (d Decoder) Decode(frame []byte) (model.Envelope, error) {
	var req socketmode.Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return model.Envelope{}, &FrameError{Err: fmt.Errorf("%w: %v", ErrMalformedFrame, err)}
	}

	switch req.Type {
	case socketmode.RequestTypeHello:
		return model.Envelope{Kind: model.KindHandshake}, nil

	case socketmode.RequestTypeDisconnect:
		return model.Envelope{Kind: model.KindDisconnect, Reason: req.Reason}, nil

	case socketmode.RequestTypeInteractive:
		return d.decodeInteractive(req)

	case socketmode.RequestTypeEventsAPI:
		return d.decodeEventsAPI(req)

	default:
		if req.EnvelopeID == "" {
			return model.Envelope{}, &FrameError{Err: fmt.Errorf("%w: type %q", ErrUnrecognizedFrame, req.Type)}
		}
		return model.Envelope{Kind: model.KindOther, Token: req.EnvelopeID}, nil
	}
}

func (d Decoder) decodeInteractive(req socketmode.Request) (model.Envelope, error) {
	var cb slackapi.InteractionCallback
	if err := json.Unmarshal(req.Payload, &cb); err != nil {
		return model.Envelope{}, &FrameError{
			EnvelopeID: req.EnvelopeID,
			Err:        fmt.Errorf("%w: interactive payload: %v", ErrMalformedFrame, err),
		}
	}
	if cb.Type != slackapi.InteractionTypeBlockActions {
		return model.Envelope{Kind: model.KindOther, Token: req.EnvelopeID}, nil
	}

	messageID := cb.Container.MessageTs
	if messageID == "" {
		messageID = cb.Message.Timestamp
	}
	channelID := cb.Container.ChannelID
	if channelID == "" {
		channelID = cb.Channel.ID
	}

	actions := make([]model.Action, 0, len(cb.ActionCallback.BlockActions))
	for _, ba := range cb.ActionCallback.BlockActions {
		if ba == nil {
			continue
		}
		actions = append(actions, model.Action{
			ActionID:  ba.ActionID,
			Value:     ba.Value,
			MessageID: messageID,
		})
	}

	return model.Envelope{
		Kind:  model.KindAction,
		Token: req.EnvelopeID,
		Action: &model.ActionPayload{
			Actions:   actions,
			UserID:    cb.User.ID,
			MessageID: messageID,
			ChannelID: channelID,
		},
	}, nil
}

func (d Decoder) decodeEventsAPI(req socketmode.Request) (model.Envelope, error) {
	ev, err := slackevents.ParseEvent(req.Payload, slackevents.OptionNoVerifyToken())
	if err != nil {
		return model.Envelope{}, &FrameError{
			EnvelopeID: req.EnvelopeID,
			Err:        fmt.Errorf("%w: events_api payload: %v", ErrMalformedFrame, err),
		}
	}

	msg, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || msg == nil || ignoredSubtypes[msg.SubType] {
		return model.Envelope{Kind: model.KindOther, Token: req.EnvelopeID}, nil
	}

	return model.Envelope{
		Kind:  model.KindMessage,
		Token: req.EnvelopeID,
		Message: &model.MessagePayload{
			ThreadRootID: msg.ThreadTimeStamp,
			Timestamp:    msg.TimeStamp,
			AuthorIsBot:  d.isBot(msg),
			Text:         msg.Text,
			UserID:       msg.User,
			ChannelID:    msg.Channel,
		},
	}, nil
}

func (d Decoder) isBot(msg *slackevents.MessageEvent) bool {
	if msg.BotID != "" || msg.SubType == "bot_message" {
		return true
	}
	return d.BotUserID != "" && msg.User == d.BotUserID
}

// EncodeAck serializes the acknowledgment frame for an envelope.
func EncodeAck(token string) ([]byte, error) {
	return json.Marshal(socketmode.Response{EnvelopeID: token})
}
