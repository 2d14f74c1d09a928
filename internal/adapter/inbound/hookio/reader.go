package hookio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jonny/hookbridge/internal/domain/model"
)

// ErrMissingToolName is returned for requests without a tool_name.
var ErrMissingToolName = errors.New("missing required field 'tool_name'")

// payload is the PermissionRequest object written to stdin by the agent.
type payload struct {
	SessionID      string          `json:"session_id"`
	HookEventName  string          `json:"hook_event_name"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	Cwd            string          `json:"cwd"`
	PermissionMode string          `json:"permission_mode"`
}

type inputDecoder func(raw json.RawMessage) (model.ToolInput, error)

// decoders maps tool names to their dedicated tool_input shape. Tools not
// listed fall back to GenericInput.
var decoders = map[string]inputDecoder{
	model.ToolAskUserQuestion: decodeQuestions,
	model.ToolExitPlanMode:    decodePlan,
	model.ToolBash:            decodeCommand,
	"Edit":                    decodeFile,
	"MultiEdit":               decodeFile,
	"Write":                   decodeFile,
	"Read":                    decodeFile,
	"NotebookEdit":            decodeFile,
}

// ReadRequest decodes a single request from r.
func ReadRequest(r io.Reader) (model.HookRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.HookRequest{}, fmt.Errorf("hookio: reading request: %w", err)
	}
	return DecodeRequest(data)
}

// DecodeRequest decodes a request from its JSON encoding.
func DecodeRequest(data []byte) (model.HookRequest, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.HookRequest{}, fmt.Errorf("hookio: failed to decode JSON: %w", err)
	}
	if p.ToolName == "" {
		return model.HookRequest{}, fmt.Errorf("hookio: %w", ErrMissingToolName)
	}

	raw := p.ToolInput
	if len(raw) == 0 || string(raw) == "null" {
		raw = json.RawMessage("{}")
	}

	decode, ok := decoders[p.ToolName]
	if !ok {
		decode = decodeGeneric
	}
	input, err := decode(raw)
	if err != nil {
		return model.HookRequest{}, fmt.Errorf("hookio: decoding tool_input for %s: %w", p.ToolName, err)
	}

	return model.HookRequest{
		SessionID:      p.SessionID,
		HookEventName:  p.HookEventName,
		ToolName:       p.ToolName,
		Cwd:            p.Cwd,
		PermissionMode: p.PermissionMode,
		Input:          input,
		RawInput:       raw,
	}, nil
}

func decodeQuestions(raw json.RawMessage) (model.ToolInput, error) {
	var v struct {
		Questions []model.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return model.QuestionInput{Questions: v.Questions}, nil
}

func decodePlan(raw json.RawMessage) (model.ToolInput, error) {
	var v struct {
		Plan string `json:"plan"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return model.PlanInput{Plan: v.Plan}, nil
}

func decodeCommand(raw json.RawMessage) (model.ToolInput, error) {
	var v struct {
		Command     string `json:"command"`
		Description string `json:"description"`
		Timeout     int    `json:"timeout"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return model.CommandInput{Command: v.Command, Description: v.Description, Timeout: v.Timeout}, nil
}

func decodeFile(raw json.RawMessage) (model.ToolInput, error) {
	var v struct {
		FilePath     string `json:"file_path"`
		NotebookPath string `json:"notebook_path"`
		OldString    string `json:"old_string"`
		NewString    string `json:"new_string"`
		Content      string `json:"content"`
		NewSource    string `json:"new_source"`
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	in := model.FileInput{
		FilePath:  v.FilePath,
		OldString: v.OldString,
		NewString: v.NewString,
		Content:   v.Content,
	}
	if in.FilePath == "" {
		in.FilePath = v.NotebookPath
	}
	if in.Content == "" {
		in.Content = v.NewSource
	}
	return in, nil
}

func decodeGeneric(raw json.RawMessage) (model.ToolInput, error) {
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return model.GenericInput{Fields: fields}, nil
}
