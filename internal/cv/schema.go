package cv

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SchemaJSON is the JSON Schema contract both generation calls must satisfy.
// It is sent to the model as a response-format constraint and enforced again
// locally before the typed unmarshal, because the model's structural promises
// are not trusted.
const SchemaJSON = `{
  "type": "object",
  "properties": {
    "personalInfo": {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "availability": {"type": "string"},
        "skj": {"type": "string"},
        "skjDate": {"type": "string"},
        "title": {"type": "string", "description": "salutation, e.g. Ms or Mr"},
        "roepnaam": {"type": "string"},
        "hours": {"type": "string"}
      },
      "required": ["name", "availability"]
    },
    "experience": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "period": {"type": "string"},
          "employer": {"type": "string"},
          "role": {"type": "string"},
          "bullets": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["period", "employer", "role", "bullets"]
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "period": {"type": "string"},
          "degree": {"type": "string"},
          "status": {"type": "string"}
        },
        "required": ["period", "degree", "status"]
      }
    },
    "courses": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "period": {"type": "string"},
          "title": {"type": "string"},
          "institute": {"type": "string"}
        }
      }
    },
    "systems": {"type": "array", "items": {"type": "string"}},
    "languages": {"type": "array", "items": {"type": "string"}},
    "analysis": {
      "type": "object",
      "properties": {
        "scores": {
          "type": "object",
          "properties": {
            "overall": {"type": "number"}
          }
        },
        "tags": {"type": "array", "items": {"type": "string"}, "description": "exactly 5 capability tags"},
        "summary": {"type": "string"}
      }
    }
  },
  "required": ["personalInfo", "experience", "education", "languages"]
}`

var schemaLoader = gojsonschema.NewStringLoader(SchemaJSON)

// Decode validates raw JSON against the CV schema and unmarshals it into a
// Record. The input must already be cleaned of markdown wrapping.
func Decode(raw []byte) (Record, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Record{}, fmt.Errorf("schema validate: %w", err)
	}
	if !result.Valid() {
		return Record{}, fmt.Errorf("schema violation: %s", describeViolations(result))
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func describeViolations(result *gojsonschema.Result) string {
	errs := result.Errors()
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
		if len(parts) == 3 {
			break
		}
	}
	return strings.Join(parts, "; ")
}
