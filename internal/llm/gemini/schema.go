package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchema is the subset of JSON Schema the converter understands. The CV
// contract only uses object/array/string/number shapes.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*jsonSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Items       *jsonSchema            `json:"items,omitempty"`
	Enum        []string               `json:"enum,omitempty"`
}

// schemaFromJSON converts a JSON Schema document into the genai schema shape
// used for constrained generation.
func schemaFromJSON(raw json.RawMessage) (*genai.Schema, error) {
	var parsed jsonSchema
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse schema document: %w", err)
	}
	return convertSchema(&parsed)
}

func convertSchema(in *jsonSchema) (*genai.Schema, error) {
	if in == nil {
		return nil, nil
	}

	out := &genai.Schema{
		Description: in.Description,
		Required:    in.Required,
		Enum:        in.Enum,
	}

	switch in.Type {
	case "object":
		out.Type = genai.TypeObject
		if len(in.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(in.Properties))
			for name, prop := range in.Properties {
				converted, err := convertSchema(prop)
				if err != nil {
					return nil, fmt.Errorf("property %s: %w", name, err)
				}
				out.Properties[name] = converted
			}
		}
	case "array":
		out.Type = genai.TypeArray
		items, err := convertSchema(in.Items)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		out.Items = items
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	default:
		return nil, fmt.Errorf("unsupported schema type: %q", in.Type)
	}

	return out, nil
}
