package gemini

import (
	"fmt"
	"sort"

	"github.com/google/generative-ai-go/genai"
)

var schemaTypes = map[string]genai.Type{
	"object":  genai.TypeObject,
	"string":  genai.TypeString,
	"integer": genai.TypeInteger,
	"number":  genai.TypeNumber,
	"boolean": genai.TypeBoolean,
	"array":   genai.TypeArray,
}

// convertSchema maps a JSON schema object onto genai.Schema. Keywords genai
// has no field for are dropped; a default is folded into the description.
func convertSchema(in map[string]any) *genai.Schema {
	if in == nil {
		return nil
	}
	out := &genai.Schema{}

	if t, ok := in["type"].(string); ok {
		out.Type = schemaTypes[t]
	}
	if d, ok := in["description"].(string); ok {
		out.Description = d
	}
	if def, ok := in["default"]; ok {
		if out.Description != "" {
			out.Description += " "
		}
		out.Description += fmt.Sprintf("(default %v)", def)
	}
	if f, ok := in["format"].(string); ok {
		out.Format = f
	}
	out.Enum = stringList(in["enum"])
	out.Required = stringList(in["required"])
	sort.Strings(out.Required)

	if props, ok := in["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if p, ok := raw.(map[string]any); ok {
				out.Properties[name] = convertSchema(p)
			}
		}
	}
	if items, ok := in["items"].(map[string]any); ok {
		out.Items = convertSchema(items)
	}
	return out
}

func stringList(v any) []string {
	var out []string
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}
