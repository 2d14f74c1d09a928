package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

const (
	planRevisionPrefix = "User requested changes to the plan:\n\n"
	planRevisionButton = "User requested changes to the plan via Slack without written feedback. Ask what should change before revising."
)

type liveCard struct {
	ref  outbound.MessageRef
	card outbound.Card
}

// Controller drives the conversational protocols on top of the matcher:
// binary approval, plan review and sequential questions. It waits on one
// expectation at a time.
type Controller struct {
	messenger outbound.Messenger
	matcher   *Matcher
	logger    *slog.Logger

	mu   sync.Mutex
	live []liveCard
}

// NewController creates a Controller.
func NewController(messenger outbound.Messenger, matcher *Matcher, logger *slog.Logger) *Controller {
	return &Controller{
		messenger: messenger,
		matcher:   matcher,
		logger:    logger,
	}
}

// Run picks the protocol for req and blocks until it resolves.
func (c *Controller) Run(ctx context.Context, req model.HookRequest) (model.Decision, error) {
	switch in := req.Input.(type) {
	case model.QuestionInput:
		return c.askQuestions(ctx, in.Questions)
	case model.PlanInput:
		return c.reviewPlan(ctx, in.Plan)
	default:
		return c.approve(ctx, req)
	}
}

func (c *Controller) approve(ctx context.Context, req model.HookRequest) (model.Decision, error) {
	card := outbound.ApprovalCard{Request: req, State: model.CardPending}
	ref, err := c.publish(ctx, "", card)
	if err != nil {
		return model.Decision{}, err
	}

	match, err := c.matcher.Await(ctx, model.Expectation{
		Actions:         model.NewActionSet(model.ActionIDApprove, model.ActionIDDeny),
		OriginMessageID: ref.Timestamp,
	})
	if err != nil {
		return model.Decision{}, err
	}

	card.Actor = match.UserID
	var decision model.Decision
	if match.Action.ActionID == model.ActionIDApprove {
		card.State = model.CardApproved
		decision = model.Allow()
	} else {
		card.State = model.CardDenied
		decision = model.Deny(fmt.Sprintf("Denied by Slack user %s", match.UserID))
	}

	if err := c.settle(ctx, ref, card); err != nil {
		return model.Decision{}, err
	}
	c.logger.Info("approval resolved", "tool", req.ToolName, "state", card.State, "user", match.UserID)
	return decision.WithDecidedBy(match.UserID), nil
}

func (c *Controller) reviewPlan(ctx context.Context, plan string) (model.Decision, error) {
	card := outbound.PlanCard{Plan: plan, State: model.CardPending}
	ref, err := c.publish(ctx, "", card)
	if err != nil {
		return model.Decision{}, err
	}

	match, err := c.matcher.Await(ctx, model.Expectation{
		Actions:         model.NewActionSet(model.ActionIDPlanApprove, model.ActionIDPlanRevise),
		OriginMessageID: ref.Timestamp,
		ThreadRootID:    ref.Timestamp,
		NotBefore:       ref.Timestamp,
	})
	if err != nil {
		return model.Decision{}, err
	}

	card.Actor = match.UserID
	var decision model.Decision
	switch {
	case match.IsReply():
		card.State = model.CardRevisionRequested
		card.Feedback = match.Reply.Text
		decision = model.Deny(planRevisionPrefix + match.Reply.Text)
	case match.Action.ActionID == model.ActionIDPlanApprove:
		card.State = model.CardApproved
		decision = model.Allow()
	default:
		card.State = model.CardRevisionRequested
		decision = model.Deny(planRevisionButton)
	}

	if err := c.settle(ctx, ref, card); err != nil {
		return model.Decision{}, err
	}
	c.logger.Info("plan review resolved", "state", card.State, "user", match.UserID)
	return decision.WithDecidedBy(match.UserID), nil
}

// MarkAll moves every card still awaiting input to state. It is safe to call
// from a goroutine other than the one running Run.
func (c *Controller) MarkAll(ctx context.Context, state model.CardState) {
	c.mu.Lock()
	pending := c.live
	c.live = nil
	c.mu.Unlock()

	for _, lc := range pending {
		if err := c.messenger.Update(ctx, lc.ref, withState(lc.card, state)); err != nil {
			c.logger.Warn("updating card failed", "ts", lc.ref.Timestamp, "state", state, "error", err)
		}
	}
}

func (c *Controller) publish(ctx context.Context, threadID string, card outbound.Card) (outbound.MessageRef, error) {
	ref, err := c.messenger.Publish(ctx, threadID, card)
	if err != nil {
		return outbound.MessageRef{}, fmt.Errorf("publishing message: %w", err)
	}
	c.track(ref, card)
	return ref, nil
}

// refresh republishes a card that is still awaiting input.
func (c *Controller) refresh(ctx context.Context, ref outbound.MessageRef, card outbound.Card) error {
	if err := c.messenger.Update(ctx, ref, card); err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	c.track(ref, card)
	return nil
}

// settle republishes a card in its terminal state and stops tracking it.
func (c *Controller) settle(ctx context.Context, ref outbound.MessageRef, card outbound.Card) error {
	c.untrack(ref)
	if err := c.messenger.Update(ctx, ref, card); err != nil {
		return fmt.Errorf("updating message: %w", err)
	}
	return nil
}

func (c *Controller) track(ref outbound.MessageRef, card outbound.Card) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.live {
		if c.live[i].ref == ref {
			c.live[i].card = card
			return
		}
	}
	c.live = append(c.live, liveCard{ref: ref, card: card})
}

func (c *Controller) untrack(ref outbound.MessageRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.live {
		if c.live[i].ref == ref {
			c.live = append(c.live[:i], c.live[i+1:]...)
			return
		}
	}
}

func withState(card outbound.Card, state model.CardState) outbound.Card {
	switch cd := card.(type) {
	case outbound.ApprovalCard:
		cd.State = state
		return cd
	case outbound.PlanCard:
		cd.State = state
		return cd
	case outbound.QuestionHeaderCard:
		cd.State = state
		return cd
	case outbound.QuestionCard:
		cd.State = state
		return cd
	default:
		return card
	}
}
