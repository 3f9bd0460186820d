package chatstream

import (
	"context"
	"fmt"

	"cloud-agent/internal/application/port/input"
	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"
)

var _ input.ChatStreamer = (*UseCase)(nil)

// UseCase bridges one chat message to a plan run and forwards final outputs
// to the client as they arrive.
type UseCase struct {
	planner input.Planner
	tools   output.ToolRegistry
	logger  output.LoggerPort
}

func New(planner input.Planner, tools output.ToolRegistry, logger output.LoggerPort) *UseCase {
	return &UseCase{planner: planner, tools: tools, logger: logger}
}

// Stream emits the text of every output event in order. Other events are
// logged only. The first planner or emit error ends the stream.
func (uc *UseCase) Stream(ctx context.Context, message string, emit input.EmitFunc) error {
	emitted := 0
	for event, err := range uc.planner.Run(ctx, message, uc.tools) {
		if err != nil {
			return fmt.Errorf("plan run: %w", err)
		}

		switch ev := event.(type) {
		case entity.OutputEvent:
			text, ok := ev.Text()
			if !ok {
				uc.logger.Debug("Output event without text, skipping")
				continue
			}
			if err := emit(text); err != nil {
				return fmt.Errorf("emit output: %w", err)
			}
			emitted++
		case entity.PlanningEvent:
			uc.logger.Debug("Planning", "step", ev.Step, "thought", ev.Thought)
		case entity.ToolCallEvent:
			uc.logger.Info("Tool call", "step", ev.Step, "tool", ev.Tool, "call_id", ev.CallID)
		case entity.ToolResultEvent:
			if ev.Err != "" {
				uc.logger.Warn("Tool failed", "step", ev.Step, "tool", ev.Tool, "error", ev.Err)
			} else {
				uc.logger.Debug("Tool result", "step", ev.Step, "tool", ev.Tool, "length", len(ev.Output))
			}
		}
	}

	uc.logger.Info("Plan run completed", "outputs", emitted)
	return nil
}
