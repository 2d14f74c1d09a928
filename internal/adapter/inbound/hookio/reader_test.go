package hookio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/hookbridge/internal/adapter/inbound/hookio"
	"github.com/jonny/hookbridge/internal/domain/model"
)

const questionRequest = `{
  "session_id": "sess-1",
  "hook_event_name": "PermissionRequest",
  "tool_name": "AskUserQuestion",
  "cwd": "/srv/app",
  "permission_mode": "default",
  "tool_input": {
    "questions": [
      {
        "question": "Which database?",
        "header": "DB",
        "multiSelect": false,
        "options": [
          {"label": "Postgres", "description": "Relational"},
          {"label": "SQLite"}
        ]
      }
    ]
  }
}`

func TestReadRequest_Question(t *testing.T) {
	req, err := hookio.ReadRequest(strings.NewReader(questionRequest))
	require.NoError(t, err)

	assert.Equal(t, "sess-1", req.SessionID)
	assert.Equal(t, "PermissionRequest", req.HookEventName)
	assert.Equal(t, model.ToolAskUserQuestion, req.ToolName)
	assert.Equal(t, "/srv/app", req.Cwd)
	assert.Equal(t, "default", req.PermissionMode)

	in, ok := req.Input.(model.QuestionInput)
	require.True(t, ok, "expected QuestionInput, got %T", req.Input)
	require.Len(t, in.Questions, 1)
	q := in.Questions[0]
	assert.Equal(t, "Which database?", q.Prompt)
	assert.Equal(t, "DB", q.Header)
	assert.False(t, q.MultiSelect)
	assert.Equal(t, []model.Option{{Label: "Postgres", Description: "Relational"}, {Label: "SQLite"}}, q.Options)
	assert.Contains(t, string(req.RawInput), "Which database?")
}

func TestDecodeRequest_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.ToolInput
	}{
		{
			name:  "plan",
			input: `{"tool_name":"ExitPlanMode","tool_input":{"plan":"1. do it"}}`,
			want:  model.PlanInput{Plan: "1. do it"},
		},
		{
			name:  "bash",
			input: `{"tool_name":"Bash","tool_input":{"command":"ls","description":"list","timeout":5000}}`,
			want:  model.CommandInput{Command: "ls", Description: "list", Timeout: 5000},
		},
		{
			name:  "edit",
			input: `{"tool_name":"Edit","tool_input":{"file_path":"a.go","old_string":"x","new_string":"y"}}`,
			want:  model.FileInput{FilePath: "a.go", OldString: "x", NewString: "y"},
		},
		{
			name:  "notebook",
			input: `{"tool_name":"NotebookEdit","tool_input":{"notebook_path":"n.ipynb","new_source":"print(1)"}}`,
			want:  model.FileInput{FilePath: "n.ipynb", Content: "print(1)"},
		},
		{
			name:  "generic",
			input: `{"tool_name":"WebFetch","tool_input":{"url":"https://example.com"}}`,
			want:  model.GenericInput{Fields: map[string]any{"url": "https://example.com"}},
		},
		{
			name:  "missing tool_input",
			input: `{"tool_name":"WebSearch"}`,
			want:  model.GenericInput{Fields: map[string]any{}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := hookio.DecodeRequest([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Input)
		})
	}
}

func TestDecodeRequest_Errors(t *testing.T) {
	_, err := hookio.DecodeRequest([]byte(`{not json`))
	require.Error(t, err)

	_, err = hookio.DecodeRequest([]byte(`{"tool_input":{}}`))
	require.ErrorIs(t, err, hookio.ErrMissingToolName)

	_, err = hookio.DecodeRequest([]byte(`{"tool_name":"AskUserQuestion","tool_input":{"questions":"nope"}}`))
	require.Error(t, err)
}
