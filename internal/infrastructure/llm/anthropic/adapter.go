package anthropic

import (
	"context"
	"encoding/json"
	"strings"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var _ output.LLMPort = (*AnthropicAdapter)(nil)

const defaultMaxTokens = 4096

type Config struct {
	APIKey    string
	Model     string
	MaxTokens int64
	// extra client options, e.g. option.WithBaseURL in tests
	Options []option.RequestOption
	Logger  output.LoggerPort
}

type AnthropicAdapter struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    output.LoggerPort
}

func NewAnthropicAdapter(cfg Config) *AnthropicAdapter {
	opts := append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, cfg.Options...)
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicAdapter{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    cfg.Logger,
	}
}

func (a *AnthropicAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	system, messages := convertMessages(req.Messages)

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  messages,
		Tools:     convertTools(req.Tools),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	params.Temperature = anthropic.Float(float64(req.Temperature))

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, entity.NewActionError("anthropic.Messages", entity.ErrProvider, err)
	}

	if a.logger != nil {
		a.logger.Debug("Message received",
			"stopReason", string(msg.StopReason),
			"inputTokens", msg.Usage.InputTokens,
			"outputTokens", msg.Usage.OutputTokens)
	}

	return &output.ChatResponse{Message: responseMessage(msg)}, nil
}

// convertMessages groups consecutive tool results into a single user turn;
// the API requires every tool_result to directly follow its tool_use turn.
func convertMessages(messages []entity.Message) (string, []anthropic.MessageParam) {
	var system []string
	var out []anthropic.MessageParam
	var pendingResults []anthropic.ContentBlockParamUnion

	flush := func() {
		if len(pendingResults) > 0 {
			out = append(out, anthropic.NewUserMessage(pendingResults...))
			pendingResults = nil
		}
	}

	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			system = append(system, msg.Content)
		case entity.RoleTool:
			isErr := strings.HasPrefix(msg.Content, "Error:")
			pendingResults = append(pendingResults, anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, isErr))
		case entity.RoleUser:
			flush()
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case entity.RoleAssistant:
			flush()
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, rawInput(tc.Arguments), tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		}
	}
	flush()

	return strings.Join(system, "\n\n"), out
}

func rawInput(arguments string) json.RawMessage {
	if strings.TrimSpace(arguments) == "" || !json.Valid([]byte(arguments)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(arguments)
}

func convertTools(tools []entity.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: t.Parameters["properties"],
		}
		switch req := t.Parameters["required"].(type) {
		case []string:
			schema.Required = req
		case []any:
			for _, r := range req {
				if s, ok := r.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: schema,
		}})
	}
	return out
}

func responseMessage(msg *anthropic.Message) entity.Message {
	result := entity.Message{Role: entity.RoleAssistant}

	var text strings.Builder
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, entity.ToolCall{
				ID:        v.ID,
				Name:      v.Name,
				Arguments: v.JSON.Input.Raw(),
			})
		}
	}
	result.Content = text.String()
	return result
}
