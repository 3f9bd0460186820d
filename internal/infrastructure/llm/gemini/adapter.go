// Package gemini adapts Google's Generative Language API to the planner's
// LLM port and implements the reformatting call.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

var _ output.LLMPort = (*GeminiAdapter)(nil)

const (
	roleUser  = "user"
	roleModel = "model"
)

// NewClient opens one process-wide client. The caller closes it.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return client, nil
}

// sendFunc sends the final turn of a chat session.
type sendFunc func(ctx context.Context, cs *genai.ChatSession, parts ...genai.Part) (*genai.GenerateContentResponse, error)

type GeminiAdapter struct {
	newModel func() *genai.GenerativeModel
	send     sendFunc
	model    string
	logger   output.LoggerPort
}

func NewGeminiAdapter(client *genai.Client, model string, logger output.LoggerPort) *GeminiAdapter {
	return &GeminiAdapter{
		newModel: func() *genai.GenerativeModel { return client.GenerativeModel(model) },
		send: func(ctx context.Context, cs *genai.ChatSession, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			return cs.SendMessage(ctx, parts...)
		},
		model:  model,
		logger: logger,
	}
}

func (a *GeminiAdapter) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	system, contents := convertMessages(req.Messages)
	if len(contents) == 0 {
		return nil, entity.InvalidInputf("gemini.Chat", "no user content to send")
	}

	model := a.newModel()
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	// zero is a real setting here; the planner asks for deterministic output
	model.SetTemperature(req.Temperature)
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: convertTools(req.Tools)}}
		model.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingAuto},
		}
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	a.logger.Debug("Sending chat request",
		"model", a.model,
		"history", len(session.History),
		"tools", len(req.Tools))

	resp, err := a.send(ctx, session, last.Parts...)
	if err != nil {
		return nil, entity.NewActionError("gemini.SendMessage", entity.ErrProvider, err)
	}

	msg, err := responseMessage(resp)
	if err != nil {
		return nil, err
	}
	return &output.ChatResponse{Message: msg}, nil
}

// convertMessages splits out the system prompt and folds consecutive tool
// results into one user turn, which is how Gemini expects function
// responses.
func convertMessages(messages []entity.Message) (string, []*genai.Content) {
	var system []string
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			system = append(system, msg.Content)

		case entity.RoleUser:
			contents = append(contents, genai.NewUserContent(genai.Text(msg.Content)))

		case entity.RoleAssistant:
			content := &genai.Content{Role: roleModel}
			if msg.Content != "" {
				content.Parts = append(content.Parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				content.Parts = append(content.Parts, genai.FunctionCall{
					Name: tc.Name,
					Args: decodeArgs(tc.Arguments),
				})
			}
			if len(content.Parts) > 0 {
				contents = append(contents, content)
			}

		case entity.RoleTool:
			part := genai.FunctionResponse{
				Name:     msg.Name,
				Response: map[string]any{"result": msg.Content},
			}
			if n := len(contents); n > 0 && isFunctionResponseTurn(contents[n-1]) {
				contents[n-1].Parts = append(contents[n-1].Parts, part)
				continue
			}
			contents = append(contents, &genai.Content{Role: roleUser, Parts: []genai.Part{part}})
		}
	}

	return strings.Join(system, "\n\n"), contents
}

func isFunctionResponseTurn(c *genai.Content) bool {
	if c.Role != roleUser || len(c.Parts) == 0 {
		return false
	}
	_, ok := c.Parts[0].(genai.FunctionResponse)
	return ok
}

func decodeArgs(raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}
	_ = json.Unmarshal([]byte(raw), &args)
	return args
}

func convertTools(tools []entity.ToolDefinition) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		// Gemini rejects an object schema with no properties.
		if props, ok := t.Parameters["properties"].(map[string]any); ok && len(props) > 0 {
			decl.Parameters = convertSchema(t.Parameters)
		}
		out = append(out, decl)
	}
	return out
}

// responseMessage reads the first candidate. Gemini function calls carry no
// ID, so one is generated to pair the call with its result.
func responseMessage(resp *genai.GenerateContentResponse) (entity.Message, error) {
	msg := entity.Message{Role: entity.RoleAssistant}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return msg, entity.NewActionError("gemini.SendMessage", entity.ErrProvider, fmt.Errorf("empty response"))
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return msg, fmt.Errorf("marshal function call args: %w", err)
			}
			msg.ToolCalls = append(msg.ToolCalls, entity.ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}
	msg.Content = text.String()
	return msg, nil
}
