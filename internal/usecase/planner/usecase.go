package planner

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"cloud-agent/internal/application/port/input"
	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"
)

var _ input.Planner = (*UseCase)(nil)

var ErrMaxIterations = errors.New("max iterations exceeded")

const (
	defaultMaxIterations = 25
	maxObservationLen    = 20000
)

// PromptRenderer builds the system prompt for a run from its tool set.
type PromptRenderer func(tools output.ToolRegistry) (string, error)

type Config struct {
	MaxIterations int
	// Summarize passes the final answer through the formatter.
	Summarize bool
}

// UseCase is a tool-calling loop over an LLM. Each Run is independent; the
// struct holds no per-run state.
type UseCase struct {
	llm       output.LLMPort
	formatter output.FormatterPort
	prompt    PromptRenderer
	logger    output.LoggerPort
	cfg       Config
}

func New(
	llm output.LLMPort,
	formatter output.FormatterPort,
	prompt PromptRenderer,
	logger output.LoggerPort,
	cfg Config,
) *UseCase {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaultMaxIterations
	}
	return &UseCase{
		llm:       llm,
		formatter: formatter,
		prompt:    prompt,
		logger:    logger,
		cfg:       cfg,
	}
}

func (uc *UseCase) Run(ctx context.Context, goal string, tools output.ToolRegistry) iter.Seq2[entity.Event, error] {
	return func(yield func(entity.Event, error) bool) {
		systemPrompt, err := uc.prompt(tools)
		if err != nil {
			yield(nil, fmt.Errorf("render system prompt: %w", err))
			return
		}

		messages := []entity.Message{
			{Role: entity.RoleSystem, Content: systemPrompt},
			{Role: entity.RoleUser, Content: goal},
		}
		toolDefs := tools.Definitions()

		for step := 1; step <= uc.cfg.MaxIterations; step++ {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			uc.logger.Debug("Starting iteration", "iteration", step)

			resp, err := uc.llm.Chat(ctx, output.ChatRequest{
				Messages:    messages,
				Tools:       toolDefs,
				Temperature: 0.0,
			})
			if err != nil {
				yield(nil, fmt.Errorf("llm request failed: %w", err))
				return
			}

			msg := resp.Message
			msg.Role = entity.RoleAssistant
			messages = append(messages, msg)

			if len(msg.ToolCalls) == 0 {
				uc.logger.Info("Plan run finished", "iterations", step)
				yield(entity.OutputEvent{
					Summary: uc.summarize(ctx, goal, msg.Content),
					Value:   msg.Content,
				}, nil)
				return
			}

			if msg.Content != "" {
				if !yield(entity.PlanningEvent{Step: step, Thought: msg.Content}, nil) {
					return
				}
			}

			for _, tc := range msg.ToolCalls {
				if !yield(entity.ToolCallEvent{
					Step:      step,
					CallID:    tc.ID,
					Tool:      tc.Name,
					Arguments: tc.Arguments,
				}, nil) {
					return
				}

				observation, execErr := uc.executeTool(ctx, tools, tc)

				messages = append(messages, entity.Message{
					Role:       entity.RoleTool,
					ToolCallID: tc.ID,
					Name:       tc.Name,
					Content:    observation,
				})

				result := entity.ToolResultEvent{
					Step:   step,
					CallID: tc.ID,
					Tool:   tc.Name,
					Output: observation,
				}
				if execErr != nil {
					result.Err = execErr.Error()
				}
				if !yield(result, nil) {
					return
				}
			}
		}

		yield(nil, fmt.Errorf("%w (%d)", ErrMaxIterations, uc.cfg.MaxIterations))
	}
}

// executeTool returns the observation fed back to the model. Failures are
// observations too, so the model can react to them.
func (uc *UseCase) executeTool(ctx context.Context, tools output.ToolRegistry, tc entity.ToolCall) (string, error) {
	tool, ok := tools.Get(entity.ToolName(tc.Name))
	if !ok {
		uc.logger.Warn("Unknown tool called", "name", tc.Name)
		err := fmt.Errorf("unknown tool '%s'", tc.Name)
		return "Error: " + err.Error(), err
	}

	uc.logger.Info("Executing tool", "name", tc.Name, "args", tc.Arguments)

	result, err := tool.Execute(ctx, tc.Arguments)
	if err != nil {
		uc.logger.Error("Tool execution failed", "name", tc.Name, "error", err)
		return "Error: " + err.Error(), err
	}

	if len(result) > maxObservationLen {
		result = result[:maxObservationLen] + "\n... (truncated)"
	}

	uc.logger.Debug("Tool completed", "name", tc.Name, "resultLen", len(result))
	return result, nil
}

func (uc *UseCase) summarize(ctx context.Context, goal, value string) string {
	if !uc.cfg.Summarize || uc.formatter == nil || value == "" {
		return ""
	}
	summary, err := uc.formatter.Format(ctx, fmt.Sprintf("User request: %s\n\nSystem result:\n%s", goal, value))
	if err != nil {
		uc.logger.Warn("Formatter failed, returning raw output", "error", err)
		return ""
	}
	return summary
}
