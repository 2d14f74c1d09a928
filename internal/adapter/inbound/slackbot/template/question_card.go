package template

import (
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

const selectedMark = "✓ "

// BuildQuestionHeaderBlocks constructs the thread root announcing a batch of
// questions. Once all questions are answered it lists the answers.
func BuildQuestionHeaderBlocks(c outbound.QuestionHeaderCard) []slackapi.Block {
	title := fmt.Sprintf(":question: *%d question(s) need an answer*", len(c.Questions))
	blocks := []slackapi.Block{markdownSection(title), slackapi.NewDividerBlock()}

	lines := make([]string, 0, len(c.Questions))
	for i, q := range c.Questions {
		line := fmt.Sprintf("%d. %s", i+1, q.Prompt)
		if answer, ok := c.Answers[q.Prompt]; ok {
			line += fmt.Sprintf("\n    → *%s*", answer)
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		blocks = append(blocks, markdownSection(strings.Join(lines, "\n")))
	}

	if c.State.IsTerminal() {
		return append(blocks, markdownSection(stateLine(c.State, "")))
	}
	return append(blocks, contextLine("Questions follow in this thread, one at a time."))
}

// BuildQuestionBlocks constructs one question with its option buttons.
func BuildQuestionBlocks(c outbound.QuestionCard) []slackapi.Block {
	q := c.Question
	title := fmt.Sprintf("*Question %d of %d*", c.Index+1, c.Total)
	if q.Header != "" {
		title += fmt.Sprintf("  `%s`", q.Header)
	}
	blocks := []slackapi.Block{markdownSection(title + "\n" + q.Prompt)}

	if described := optionDescriptions(q); described != "" {
		blocks = append(blocks, markdownSection(described))
	}

	if c.State.IsTerminal() {
		status := stateLine(c.State, c.Actor)
		if c.State == model.CardAnswered {
			status += fmt.Sprintf(": *%s*", c.Answer)
		}
		return append(blocks, markdownSection(status))
	}

	elements := make([]slackapi.BlockElement, 0, len(q.Options)+1)
	for j, opt := range q.Options {
		label := opt.Label
		if c.Selected.Has(j) {
			label = selectedMark + label
		}
		elements = append(elements, button(model.OptionActionID(c.Index, j), fmt.Sprintf("%d", j), label, slackapi.StyleDefault))
	}
	if q.MultiSelect {
		elements = append(elements, button(model.ConfirmActionID(c.Index), "confirm", "Confirm", slackapi.StylePrimary))
	}
	blocks = append(blocks, slackapi.NewActionBlock(fmt.Sprintf("question_%d_actions", c.Index), elements...))

	hint := "Reply in this thread to answer in your own words."
	if q.MultiSelect {
		hint = "Select any number of options, then press Confirm. " + hint
	}
	return append(blocks, contextLine(hint))
}

func optionDescriptions(q model.Question) string {
	lines := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if opt.Description == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("• *%s*: %s", opt.Label, opt.Description))
	}
	return strings.Join(lines, "\n")
}
