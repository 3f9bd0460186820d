package tool

import (
	"context"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"
)

type FormatResponseInput struct {
	Content string `json:"content" jsonschema_description:"Raw or structured text to turn into a friendly summary with next steps"`
}

var formatResponseSchema = GenerateSchema[FormatResponseInput]()

type FormatResponseTool struct {
	formatter output.FormatterPort
}

func NewFormatResponseTool(formatter output.FormatterPort) *FormatResponseTool {
	return &FormatResponseTool{formatter: formatter}
}

func (t *FormatResponseTool) Name() entity.ToolName { return entity.ToolFormatResponse }
func (t *FormatResponseTool) Description() string {
	return "Rewrites raw AWS results into a clear, human-friendly summary with suggested next steps."
}
func (t *FormatResponseTool) Parameters() map[string]any { return formatResponseSchema }

func (t *FormatResponseTool) Execute(ctx context.Context, args string) (string, error) {
	var input FormatResponseInput
	if err := decodeArgs(t.Name(), args, &input); err != nil {
		return "", err
	}
	if err := requireFields(t.Name(), [2]string{"content", input.Content}); err != nil {
		return "", err
	}
	return t.formatter.Format(ctx, input.Content)
}
