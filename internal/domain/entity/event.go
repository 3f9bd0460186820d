package entity

// EventKind tags an event in a plan run's event stream.
type EventKind string

const (
	EventPlanning   EventKind = "planning"
	EventToolCall   EventKind = "tool_call"
	EventToolResult EventKind = "tool_result"
	EventOutputs    EventKind = "outputs"
)

// Event is one notification produced by a plan run. The set of variants is
// closed: PlanningEvent, ToolCallEvent, ToolResultEvent and OutputEvent.
type Event interface {
	Kind() EventKind
	isEvent()
}

// PlanningEvent carries the model's reasoning text for a step.
type PlanningEvent struct {
	Step    int
	Thought string
}

type ToolCallEvent struct {
	Step      int
	CallID    string
	Tool      string
	Arguments string
}

type ToolResultEvent struct {
	Step   int
	CallID string
	Tool   string
	Output string
	Err    string
}

// OutputEvent is a final result of a plan run. Either field may be empty.
type OutputEvent struct {
	Summary string
	Value   string
}

func (PlanningEvent) Kind() EventKind   { return EventPlanning }
func (ToolCallEvent) Kind() EventKind   { return EventToolCall }
func (ToolResultEvent) Kind() EventKind { return EventToolResult }
func (OutputEvent) Kind() EventKind     { return EventOutputs }

func (PlanningEvent) isEvent()   {}
func (ToolCallEvent) isEvent()   {}
func (ToolResultEvent) isEvent() {}
func (OutputEvent) isEvent()     {}

// Text returns the text a client should see for this output: the summary
// when present, otherwise the value. ok is false when both are empty.
func (e OutputEvent) Text() (text string, ok bool) {
	switch {
	case e.Summary != "":
		return e.Summary, true
	case e.Value != "":
		return e.Value, true
	default:
		return "", false
	}
}
