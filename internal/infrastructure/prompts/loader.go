package prompts

import (
	_ "embed"
)

//go:embed planner.txt
var PlannerPrompt string

//go:embed formatter.txt
var FormatterPrompt string
