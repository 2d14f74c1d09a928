package hookio

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"

	"github.com/jonny/hookbridge/internal/domain/model"
)

const permissionRequestEvent = "PermissionRequest"

type output struct {
	HookSpecificOutput hookSpecificOutput `json:"hookSpecificOutput"`
}

type hookSpecificOutput struct {
	HookEventName string         `json:"hookEventName"`
	Decision      decisionOutput `json:"decision"`
}

type decisionOutput struct {
	Behavior     model.Behavior `json:"behavior"`
	Message      string         `json:"message,omitempty"`
	UpdatedInput map[string]any `json:"updatedInput,omitempty"`
}

// WriteDecision encodes d as the hook response for req. Collected answers are
// merged into a copy of the original tool_input.
func WriteDecision(w io.Writer, req model.HookRequest, d model.Decision) error {
	out := output{HookSpecificOutput: hookSpecificOutput{
		HookEventName: permissionRequestEvent,
		Decision: decisionOutput{
			Behavior: d.Behavior,
			Message:  d.Message,
		},
	}}

	if d.Answers != nil {
		updated, err := updatedInput(req.RawInput, d.Answers)
		if err != nil {
			return err
		}
		out.HookSpecificOutput.Decision.UpdatedInput = updated
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("hookio: writing decision: %w", err)
	}
	return nil
}

func updatedInput(raw json.RawMessage, answers map[string]string) (map[string]any, error) {
	input := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("hookio: re-reading tool_input: %w", err)
		}
		if input == nil {
			input = map[string]any{}
		}
	}
	input["answers"] = maps.Clone(answers)
	return input, nil
}
