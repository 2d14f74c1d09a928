package model

type Behavior string

const (
	BehaviorAllow Behavior = "allow"
	BehaviorDeny  Behavior = "deny"
)

// Decision is the verdict handed back to the hook caller. Answers is only set
// by the question flow and is merged into the echoed tool input.
type Decision struct {
	Behavior  Behavior
	Message   string
	Answers   map[string]string
	DecidedBy string
}

func Allow() Decision {
	return Decision{Behavior: BehaviorAllow}
}

func Deny(message string) Decision {
	return Decision{Behavior: BehaviorDeny, Message: message}
}

func (d Decision) WithDecidedBy(userID string) Decision {
	d.DecidedBy = userID
	return d
}

func (d Decision) WithAnswers(answers map[string]string) Decision {
	out := make(map[string]string, len(answers))
	for k, v := range answers {
		out[k] = v
	}
	d.Answers = out
	return d
}

// Outcome is the result of handling one request. When TimedOut is true no
// decision is emitted and the caller falls back to its other response path.
type Outcome struct {
	Decision Decision
	TimedOut bool
}
