package outbound

import (
	"context"

	"github.com/jonny/hookbridge/internal/domain/model"
)

// MessageRef identifies a published message.
type MessageRef struct {
	ChannelID string
	Timestamp string
}

// Card is the content of a published message. Concrete cards are rendered by
// the messaging adapter.
type Card interface {
	card()
}

type ApprovalCard struct {
	Request model.HookRequest
	State   model.CardState
	Actor   string
	Note    string
}

type PlanCard struct {
	Plan     string
	State    model.CardState
	Actor    string
	Feedback string
}

type QuestionHeaderCard struct {
	Questions []model.Question
	State     model.CardState
	Answers   map[string]string
}

type QuestionCard struct {
	Index    int
	Total    int
	Question model.Question
	Selected model.Selection
	State    model.CardState
	Answer   string
	Actor    string
}

func (ApprovalCard) card()       {}
func (PlanCard) card()           {}
func (QuestionHeaderCard) card() {}
func (QuestionCard) card()       {}

// Messenger publishes and updates interactive messages. Implementations never
// retry; a failure is final for the request being handled.
type Messenger interface {
	Publish(ctx context.Context, threadID string, card Card) (MessageRef, error)
	Update(ctx context.Context, ref MessageRef, card Card) error
}
