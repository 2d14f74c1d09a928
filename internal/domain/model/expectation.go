package model

// ActionSet is a set of accepted action identifiers.
type ActionSet map[string]struct{}

// NewActionSet builds an ActionSet from the given identifiers.
func NewActionSet(ids ...string) ActionSet {
	s := make(ActionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s ActionSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Expectation describes which future envelope a pending wait accepts as an
// answer. OriginMessageID scopes button presses to the message that carried
// the buttons; ThreadRootID enables thread replies; NotBefore rejects replies
// posted at or before the given timestamp.
//
// Timestamps are opaque strings compared lexically. They are never parsed.
type Expectation struct {
	Actions         ActionSet
	OriginMessageID string
	ThreadRootID    string
	NotBefore       string
}

// Reply is a free-text thread reply that satisfied an expectation.
type Reply struct {
	Text      string
	Timestamp string
}

// Match is the envelope content that satisfied an expectation. Exactly one of
// Action and Reply is set.
type Match struct {
	Action *Action
	Reply  *Reply
	UserID string
}

// IsReply reports whether the match came from a thread reply.
func (m Match) IsReply() bool {
	return m.Reply != nil
}

// Satisfies checks env against the expectation and returns the matching part.
func (x Expectation) Satisfies(env Envelope) (Match, bool) {
	switch env.Kind {
	case KindAction:
		return x.matchAction(env.Action)
	case KindMessage:
		return x.matchReply(env.Message)
	default:
		return Match{}, false
	}
}

func (x Expectation) matchAction(p *ActionPayload) (Match, bool) {
	if p == nil || len(x.Actions) == 0 {
		return Match{}, false
	}
	if x.OriginMessageID != "" && p.MessageID != x.OriginMessageID {
		return Match{}, false
	}
	for i := range p.Actions {
		a := p.Actions[i]
		if !x.Actions.Has(a.ActionID) {
			continue
		}
		if a.MessageID == "" {
			a.MessageID = p.MessageID
		}
		return Match{Action: &a, UserID: p.UserID}, true
	}
	return Match{}, false
}

func (x Expectation) matchReply(p *MessagePayload) (Match, bool) {
	if p == nil || x.ThreadRootID == "" {
		return Match{}, false
	}
	if p.AuthorIsBot || p.ThreadRootID != x.ThreadRootID {
		return Match{}, false
	}
	if x.NotBefore != "" && p.Timestamp <= x.NotBefore {
		return Match{}, false
	}
	return Match{
		Reply:  &Reply{Text: p.Text, Timestamp: p.Timestamp},
		UserID: p.UserID,
	}, true
}
