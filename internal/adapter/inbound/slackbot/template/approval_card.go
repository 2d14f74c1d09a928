package template

import (
	"encoding/json"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/domain/model"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
)

// BuildApprovalBlocks constructs Block Kit blocks for a tool approval request.
func BuildApprovalBlocks(c outbound.ApprovalCard) []slackapi.Block {
	req := c.Request
	header := markdownSection(fmt.Sprintf(":lock: *Permission requested: %s*", req.ToolName))

	blocks := []slackapi.Block{header, slackapi.NewDividerBlock()}
	blocks = append(blocks, inputBlocks(req.Input)...)

	if req.Cwd != "" {
		blocks = append(blocks, contextLine(fmt.Sprintf("Working directory: `%s`", req.Cwd)))
	}

	if !c.State.IsTerminal() {
		actions := slackapi.NewActionBlock("approval_actions",
			button(model.ActionIDApprove, "approve", "Approve", slackapi.StylePrimary),
			button(model.ActionIDDeny, "deny", "Deny", slackapi.StyleDanger),
		)
		return append(blocks, slackapi.NewDividerBlock(), actions)
	}

	status := stateLine(c.State, c.Actor)
	if c.Note != "" {
		status += "\n" + c.Note
	}
	return append(blocks, slackapi.NewDividerBlock(), markdownSection(status))
}

func inputBlocks(in model.ToolInput) []slackapi.Block {
	switch v := in.(type) {
	case model.CommandInput:
		blocks := []slackapi.Block{codeSection("*Command*", v.Command)}
		if v.Description != "" {
			blocks = append(blocks, markdownSection(fmt.Sprintf("*Description*\n%s", v.Description)))
		}
		return blocks

	case model.FileInput:
		blocks := []slackapi.Block{markdownSection(fmt.Sprintf("*File*\n`%s`", v.FilePath))}
		switch {
		case v.OldString != "" || v.NewString != "":
			blocks = append(blocks,
				codeSection("*Replace*", v.OldString),
				codeSection("*With*", v.NewString),
			)
		case v.Content != "":
			blocks = append(blocks, codeSection("*Content*", v.Content))
		}
		return blocks

	case model.GenericInput:
		if len(v.Fields) == 0 {
			return nil
		}
		data, err := json.MarshalIndent(v.Fields, "", "  ")
		if err != nil {
			return []slackapi.Block{markdownSection(fmt.Sprintf("*Input*\n%v", v.Fields))}
		}
		return []slackapi.Block{codeSection("*Input*", string(data))}

	default:
		return nil
	}
}
