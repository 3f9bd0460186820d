package input

import (
	"context"
	"iter"

	"cloud-agent/internal/application/port/output"
	"cloud-agent/internal/domain/entity"
)

// Planner turns a natural-language goal and a tool set into a sequence of
// execution events. Iteration drives the run: the planner does no work
// ahead of the consumer, and stopping the range loop stops the run.
type Planner interface {
	Run(ctx context.Context, goal string, tools output.ToolRegistry) iter.Seq2[entity.Event, error]
}
