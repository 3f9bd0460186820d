package prompts

import (
	"fmt"
	"strings"

	"cloud-agent/internal/application/port/output"

	"github.com/tmc/langchaingo/prompts"
)

// GeneratePlannerPrompt renders the planner system prompt with the tool list
// and the region used when the user does not name one. Tools appear in
// registry order.
func GeneratePlannerPrompt(baseTemplate string, tools output.ToolRegistry, defaultRegion string) (string, error) {
	var list strings.Builder
	for _, tool := range tools.All() {
		fmt.Fprintf(&list, "- %s: %s\n", tool.Name(), tool.Description())
	}

	tmpl := prompts.NewPromptTemplate(baseTemplate, []string{"tools", "region"})
	out, err := tmpl.Format(map[string]any{
		"tools":  strings.TrimRight(list.String(), "\n"),
		"region": defaultRegion,
	})
	if err != nil {
		return "", fmt.Errorf("render planner prompt: %w", err)
	}
	return out, nil
}
