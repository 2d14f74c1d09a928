package model

import "fmt"

// CardState is the lifecycle state shown on a published message.
type CardState string

const (
	CardPending           CardState = "pending"
	CardApproved          CardState = "approved"
	CardDenied            CardState = "denied"
	CardRevisionRequested CardState = "revision_requested"
	CardAnswered          CardState = "answered"
	CardCompleted         CardState = "completed"
	CardTimedOut          CardState = "timed_out"
	CardDisconnected      CardState = "disconnected"
	CardFailed            CardState = "failed"
)

// IsTerminal reports whether a card in this state no longer takes input.
func (s CardState) IsTerminal() bool {
	return s != CardPending
}

// Action identifiers carried by published buttons.
const (
	ActionIDApprove      = "hook_approve"
	ActionIDDeny         = "hook_deny"
	ActionIDPlanApprove  = "plan_approve"
	ActionIDPlanRevise   = "plan_revise"
	actionIDOptionFormat = "question_%d_option_%d"
	actionIDConfirmFmt   = "question_%d_confirm"
)

// OptionActionID is the action identifier of option j of question i.
func OptionActionID(i, j int) string {
	return fmt.Sprintf(actionIDOptionFormat, i, j)
}

// ConfirmActionID is the action identifier of the confirm button of a
// multi-select question i.
func ConfirmActionID(i int) string {
	return fmt.Sprintf(actionIDConfirmFmt, i)
}
