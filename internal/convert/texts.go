package convert

import (
	"context"
	"fmt"
	"strings"

	"cvconvert-backend/internal/llm"
)

// Auxiliary texts get a higher temperature than the pipeline calls; they are
// prose for humans, not schema-constrained data.
const textTemperature = 0.7

var textInstructions = map[string]string{
	"vacancy":    vacancySystemInstruction,
	"motivation": motivationSystemInstruction,
	"profile":    profileSystemInstruction,
	"email":      emailSystemInstruction,
	"check":      checkSystemInstruction,
}

// GenerateText produces one auxiliary text (motivation letter, candidate
// profile, client e-mail, CV check report, or cleaned vacancy) for a completed
// conversion. The call is synchronous and retry-wrapped; nothing is persisted.
func (s *Service) GenerateText(ctx context.Context, conversionID, kind, input string) (string, error) {
	instruction, ok := textInstructions[kind]
	if !ok {
		return "", fmt.Errorf("%w: unknown text kind %q", ErrInvalidInput, kind)
	}

	conversion, err := s.Get(ctx, conversionID)
	if err != nil {
		return "", err
	}
	if conversion.Status != StatusCompleted || conversion.Result == nil {
		return "", ErrNotReady
	}

	client := newRetryingLLM(s.LLM, conversionID)
	resp, err := client.Generate(ctx, llm.GenerateInput{
		System:      instruction,
		Parts:       []llm.Part{llm.TextPart(textPrompt(kind, string(conversion.Result), input))},
		Temperature: textTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate %s text: %w", kind, err)
	}
	resp = strings.TrimSpace(resp)
	if resp == "" {
		return "", fmt.Errorf("generate %s text: no text received from model", kind)
	}
	return resp, nil
}

func textPrompt(kind, record, input string) string {
	var b strings.Builder
	b.WriteString("CANDIDATE CV DATA:\n")
	b.WriteString(record)
	if strings.TrimSpace(input) != "" {
		label := "ADDITIONAL INPUT"
		if kind == "vacancy" || kind == "motivation" {
			label = "VACANCY TEXT"
		}
		b.WriteString("\n\n" + label + ":\n")
		b.WriteString(input)
	}
	return b.String()
}
