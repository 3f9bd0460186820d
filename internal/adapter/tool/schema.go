package tool

import (
	"encoding/json"
	"fmt"
	"strings"

	"cloud-agent/internal/domain/entity"

	"github.com/invopop/jsonschema"
)

// GenerateSchema derives the JSON schema object handed to the LLM from an
// input struct. Fields without omitempty are required.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("marshal schema for %T: %v", v, err))
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("unmarshal schema for %T: %v", v, err))
	}
	delete(out, "$schema")
	delete(out, "$id")
	return out
}

func decodeArgs(name entity.ToolName, arguments string, v any) error {
	if strings.TrimSpace(arguments) == "" {
		arguments = "{}"
	}
	if err := json.Unmarshal([]byte(arguments), v); err != nil {
		return entity.InvalidInputf(name.String(), "decode arguments: %v", err)
	}
	return nil
}

// requireFields returns InvalidInput naming the first empty field.
func requireFields(name entity.ToolName, fields ...[2]string) error {
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			return entity.InvalidInputf(name.String(), "missing required argument %q", f[0])
		}
	}
	return nil
}
