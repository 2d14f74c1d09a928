package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/inbound"
)

// Matcher correlates the inbound event stream with one pending expectation
// at a time. It owns reads from the event source for the duration of Await.
type Matcher struct {
	events inbound.EventSource
	logger *slog.Logger
}

// NewMatcher creates a Matcher reading from events.
func NewMatcher(events inbound.EventSource, logger *slog.Logger) *Matcher {
	return &Matcher{events: events, logger: logger}
}

// Await consumes envelopes until one satisfies x. Every envelope that carries
// a token is acknowledged exactly once, before it is evaluated, so rejected
// candidates are not redelivered. A disconnect envelope ends the wait with
// model.ErrDisconnected. There is no internal timeout.
func (m *Matcher) Await(ctx context.Context, x model.Expectation) (model.Match, error) {
	for {
		env, err := m.events.Receive(ctx)
		if err != nil {
			return model.Match{}, fmt.Errorf("awaiting interaction: %w", err)
		}

		if env.Kind == model.KindDisconnect {
			m.logger.Warn("event stream asked to disconnect", "reason", env.Reason)
			return model.Match{}, fmt.Errorf("awaiting interaction: %w", model.ErrDisconnected)
		}

		if env.NeedsAck() {
			if err := m.events.Ack(env.Token); err != nil {
				m.logger.Warn("acknowledging envelope failed", "kind", env.Kind, "error", err)
			}
		}

		match, ok := x.Satisfies(env)
		if !ok {
			m.logger.Debug("envelope ignored", "kind", env.Kind)
			continue
		}
		if match.IsReply() {
			m.logger.Info("thread reply matched", "user", match.UserID, "ts", match.Reply.Timestamp)
		} else {
			m.logger.Info("action matched", "user", match.UserID, "action", match.Action.ActionID)
		}
		return match, nil
	}
}
