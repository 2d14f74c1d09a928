package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/inbound"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

const (
	cardUpdateTimeout  = 10 * time.Second
	disconnectedReason = "The Slack connection dropped before anyone responded. Retry the request or answer in the terminal."
)

// BridgeConfig holds the per-invocation settings of a Bridge.
type BridgeConfig struct {
	Budget       time.Duration
	InvocationID string
}

// Bridge resolves one hook request: it runs the interaction flow under the
// deadline and turns every way that can end into an Outcome.
type Bridge struct {
	flow   *Controller
	events inbound.EventSource
	audits outbound.AuditRepository
	cfg    BridgeConfig
	logger *slog.Logger
}

var _ inbound.HookPort = (*Bridge)(nil)

// NewBridge creates a Bridge. events is closed when the deadline expires.
func NewBridge(flow *Controller, events inbound.EventSource, audits outbound.AuditRepository, cfg BridgeConfig, logger *slog.Logger) *Bridge {
	if cfg.Budget <= 0 {
		cfg.Budget = DefaultBudget
	}
	return &Bridge{
		flow:   flow,
		events: events,
		audits: audits,
		cfg:    cfg,
		logger: logger,
	}
}

// Handle implements inbound.HookPort.
func (b *Bridge) Handle(ctx context.Context, req model.HookRequest) (model.Outcome, error) {
	decision, err := RaceWithDeadline(ctx, b.cfg.Budget,
		func(ctx context.Context) (model.Decision, error) {
			return b.flow.Run(ctx, req)
		},
		func() {
			b.logger.Info("deadline reached, closing event stream", "budget", b.cfg.Budget)
			if cerr := b.events.Close(); cerr != nil {
				b.logger.Warn("closing event stream", "error", cerr)
			}
		},
	)

	switch {
	case err == nil:
		event := model.AuditDecisionAllowed
		if decision.Behavior == model.BehaviorDeny {
			event = model.AuditDecisionDenied
		}
		b.audit(ctx, model.NewAuditLog(event, b.cfg.InvocationID, req, decision.DecidedBy, decision.Message))
		return model.Outcome{Decision: decision}, nil

	case errors.Is(err, ErrTimedOut):
		b.markAll(ctx, model.CardTimedOut)
		b.audit(ctx, model.NewAuditLog(model.AuditTimedOut, b.cfg.InvocationID, req, "", err.Error()).
			WithMetadata("budget", b.cfg.Budget.String()))
		return model.Outcome{TimedOut: true}, nil

	case errors.Is(err, model.ErrDisconnected):
		b.logger.Warn("event stream lost while waiting", "error", err)
		b.markAll(ctx, model.CardDisconnected)
		b.audit(ctx, model.NewAuditLog(model.AuditDisconnected, b.cfg.InvocationID, req, "", err.Error()))
		return model.Outcome{Decision: model.Deny(disconnectedReason)}, nil

	default:
		b.markAll(ctx, model.CardFailed)
		b.audit(ctx, model.NewAuditLog(model.AuditFailed, b.cfg.InvocationID, req, "", err.Error()))
		return model.Outcome{Decision: model.Deny(fmt.Sprintf("hookbridge could not complete the Slack approval: %v", err))},
			fmt.Errorf("handling %s request: %w", req.ToolName, err)
	}
}

func (b *Bridge) markAll(ctx context.Context, state model.CardState) {
	uctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cardUpdateTimeout)
	defer cancel()
	b.flow.MarkAll(uctx, state)
}

func (b *Bridge) audit(ctx context.Context, log model.AuditLog) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cardUpdateTimeout)
	defer cancel()
	if err := b.audits.Create(actx, log); err != nil {
		b.logger.Warn("writing audit log failed", "event", log.EventType, "error", err)
	}
}
