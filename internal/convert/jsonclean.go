package convert

import "strings"

// extractJSON strips markdown code fencing from model output and truncates it
// to the outermost {...} span. The model is not guaranteed to return clean
// JSON even under a response-format constraint.
func extractJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return "{}"
	}

	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		if rest, ok := strings.CutPrefix(cleaned, "json"); ok {
			cleaned = rest
		} else if rest, ok := strings.CutPrefix(cleaned, "JSON"); ok {
			cleaned = rest
		}
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}
