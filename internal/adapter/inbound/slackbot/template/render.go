package template

import (
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

// Render returns the blocks for a card together with the plain-text fallback
// shown in notifications.
func Render(card outbound.Card) ([]slackapi.Block, string, error) {
	switch c := card.(type) {
	case outbound.ApprovalCard:
		return BuildApprovalBlocks(c), fmt.Sprintf("Permission requested: %s", c.Request.ToolName), nil
	case outbound.PlanCard:
		return BuildPlanBlocks(c), planFallback(c), nil
	case outbound.QuestionHeaderCard:
		return BuildQuestionHeaderBlocks(c), fmt.Sprintf("%d question(s) need an answer", len(c.Questions)), nil
	case outbound.QuestionCard:
		return BuildQuestionBlocks(c), fmt.Sprintf("Question %d of %d: %s", c.Index+1, c.Total, c.Question.Prompt), nil
	default:
		return nil, "", fmt.Errorf("unsupported card type %T", card)
	}
}
