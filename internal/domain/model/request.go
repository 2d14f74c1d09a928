package model

import "encoding/json"

// Tool names that get a dedicated interaction flow or rendering.
const (
	ToolAskUserQuestion = "AskUserQuestion"
	ToolExitPlanMode    = "ExitPlanMode"
	ToolBash            = "Bash"
)

// HookRequest is the single approval request read on stdin.
type HookRequest struct {
	SessionID      string
	HookEventName  string
	ToolName       string
	Cwd            string
	PermissionMode string
	Input          ToolInput

	// RawInput is the tool_input object exactly as received. It is only echoed
	// back in updatedInput and never inspected after decoding.
	RawInput json.RawMessage
}

// ToolInput is the decoded tool_input payload. The concrete type is one of
// QuestionInput, PlanInput, CommandInput, FileInput or GenericInput.
type ToolInput interface {
	toolInput()
}

// QuestionInput carries the questions of an AskUserQuestion call.
type QuestionInput struct {
	Questions []Question
}

// PlanInput carries the plan text of an ExitPlanMode call.
type PlanInput struct {
	Plan string
}

// CommandInput is a shell command awaiting approval.
type CommandInput struct {
	Command     string
	Description string
	Timeout     int
}

// FileInput is a file read or modification awaiting approval.
type FileInput struct {
	FilePath  string
	OldString string
	NewString string
	Content   string
}

// GenericInput holds the tool_input of tools without a dedicated variant.
type GenericInput struct {
	Fields map[string]any
}

func (QuestionInput) toolInput() {}
func (PlanInput) toolInput()     {}
func (CommandInput) toolInput()  {}
func (FileInput) toolInput()     {}
func (GenericInput) toolInput()  {}
