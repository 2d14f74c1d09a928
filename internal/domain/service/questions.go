package service

import (
	"context"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

func (c *Controller) askQuestions(ctx context.Context, questions []model.Question) (model.Decision, error) {
	header := outbound.QuestionHeaderCard{Questions: questions, State: model.CardPending}
	headerRef, err := c.publish(ctx, "", header)
	if err != nil {
		return model.Decision{}, err
	}

	answers := make(map[string]string, len(questions))
	var lastUser string
	for i, q := range questions {
		answer, user, err := c.askQuestion(ctx, headerRef.Timestamp, i, len(questions), q)
		if err != nil {
			return model.Decision{}, err
		}
		answers[q.Prompt] = answer
		lastUser = user
	}

	header.State = model.CardCompleted
	header.Answers = answers
	if err := c.settle(ctx, headerRef, header); err != nil {
		return model.Decision{}, err
	}
	c.logger.Info("questions answered", "count", len(questions))
	return model.Allow().WithAnswers(answers).WithDecidedBy(lastUser), nil
}

// askQuestion posts question i in the header thread and waits for it to be
// answered. Replies are only accepted if they were posted after the question,
// so a late answer to the previous question cannot leak into this one.
func (c *Controller) askQuestion(ctx context.Context, threadTS string, i, total int, q model.Question) (string, string, error) {
	card := outbound.QuestionCard{
		Index:    i,
		Total:    total,
		Question: q,
		Selected: model.Selection{},
		State:    model.CardPending,
	}
	ref, err := c.publish(ctx, threadTS, card)
	if err != nil {
		return "", "", err
	}

	options := make(map[string]int, len(q.Options))
	ids := make([]string, 0, len(q.Options)+1)
	for j := range q.Options {
		id := model.OptionActionID(i, j)
		options[id] = j
		ids = append(ids, id)
	}
	confirmID := model.ConfirmActionID(i)
	if q.MultiSelect {
		ids = append(ids, confirmID)
	}

	x := model.Expectation{
		Actions:         model.NewActionSet(ids...),
		OriginMessageID: ref.Timestamp,
		ThreadRootID:    threadTS,
		NotBefore:       ref.Timestamp,
	}

	var answer string
	var match model.Match
	for {
		match, err = c.matcher.Await(ctx, x)
		if err != nil {
			return "", "", err
		}
		if match.IsReply() {
			answer = match.Reply.Text
			break
		}
		if match.Action.ActionID == confirmID {
			answer = card.Selected.Answer(q)
			break
		}
		j := options[match.Action.ActionID]
		if !q.MultiSelect {
			answer = q.Options[j].Label
			break
		}
		card.Selected = card.Selected.Toggle(j)
		c.logger.Debug("selection toggled", "question", i, "option", j, "selected", card.Selected.Indices())
		if err := c.refresh(ctx, ref, card); err != nil {
			return "", "", err
		}
	}

	card.State = model.CardAnswered
	card.Answer = answer
	card.Actor = match.UserID
	if err := c.settle(ctx, ref, card); err != nil {
		return "", "", err
	}
	return answer, match.UserID, nil
}
