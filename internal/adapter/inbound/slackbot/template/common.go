package template

import (
	"fmt"
	"unicode/utf8"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/model"
)

// Block Kit limits.
const (
	maxSectionText = 3000
	maxButtonText  = 75
)

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func markdownSection(text string) *slackapi.SectionBlock {
	return slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, truncate(text, maxSectionText), false, false),
		nil, nil,
	)
}

// codeSection wraps text in a code fence, leaving room for the fence itself.
func codeSection(title, text string) *slackapi.SectionBlock {
	body := truncate(text, maxSectionText-len(title)-10)
	return markdownSection(fmt.Sprintf("%s\n```%s```", title, body))
}

func contextLine(text string) *slackapi.ContextBlock {
	return slackapi.NewContextBlock("",
		slackapi.NewTextBlockObject(slackapi.MarkdownType, truncate(text, maxSectionText), false, false),
	)
}

func button(actionID, value, label string, style slackapi.Style) *slackapi.ButtonBlockElement {
	btn := slackapi.NewButtonBlockElement(actionID, value,
		slackapi.NewTextBlockObject(slackapi.PlainTextType, truncate(label, maxButtonText), false, false),
	)
	btn.Style = style
	return btn
}

func mention(userID string) string {
	if userID == "" {
		return "someone"
	}
	return fmt.Sprintf("<@%s>", userID)
}

// stateLine describes a terminal state in one line. Pending cards have none.
func stateLine(state model.CardState, actor string) string {
	switch state {
	case model.CardApproved:
		return ":white_check_mark: Approved by " + mention(actor)
	case model.CardDenied:
		return ":x: Denied by " + mention(actor)
	case model.CardRevisionRequested:
		return ":pencil2: Changes requested by " + mention(actor)
	case model.CardAnswered:
		return ":white_check_mark: Answered by " + mention(actor)
	case model.CardCompleted:
		return ":white_check_mark: All questions answered"
	case model.CardTimedOut:
		return ":hourglass: Timed out. Respond in the terminal instead."
	case model.CardDisconnected:
		return ":electric_plug: Lost the Slack connection. The request was denied."
	case model.CardFailed:
		return ":warning: Something went wrong. The request was denied."
	default:
		return ""
	}
}
