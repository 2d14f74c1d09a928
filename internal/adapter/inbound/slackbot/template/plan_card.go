package template

import (
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

// BuildPlanBlocks constructs Block Kit blocks for a plan review.
func BuildPlanBlocks(c outbound.PlanCard) []slackapi.Block {
	blocks := []slackapi.Block{
		markdownSection(":clipboard: *Plan ready for review*"),
		slackapi.NewDividerBlock(),
		markdownSection(c.Plan),
	}

	if !c.State.IsTerminal() {
		actions := slackapi.NewActionBlock("plan_actions",
			button(model.ActionIDPlanApprove, "approve", "Approve plan", slackapi.StylePrimary),
			button(model.ActionIDPlanRevise, "revise", "Request changes", slackapi.StyleDefault),
		)
		return append(blocks,
			slackapi.NewDividerBlock(),
			actions,
			contextLine("Reply in this thread to request specific changes."),
		)
	}

	status := stateLine(c.State, c.Actor)
	if c.Feedback != "" {
		status += "\n>" + strings.ReplaceAll(c.Feedback, "\n", "\n>")
	}
	return append(blocks, slackapi.NewDividerBlock(), markdownSection(status))
}

// planFallback is the notification text for a plan card.
func planFallback(c outbound.PlanCard) string {
	if c.State.IsTerminal() {
		return fmt.Sprintf("Plan review: %s", c.State)
	}
	return "Plan ready for review"
}
