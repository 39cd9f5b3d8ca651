package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts generative-model providers for CV conversion.
type Client interface {
	Generate(ctx context.Context, input GenerateInput) (string, error)
}

// Part is one content part of a generation request. Exactly one of Text or
// InlineData is set; inline parts carry the declared MIME type.
type Part struct {
	Text       string
	InlineMIME string
	InlineData []byte
}

// GenerateInput captures a single structured-generation request.
// When ResponseSchema is non-nil the provider must demand JSON output
// conforming to that JSON Schema document.
type GenerateInput struct {
	System         string
	Parts          []Part
	ResponseSchema json.RawMessage
	Temperature    float32
}

// TextPart builds a text-only part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds a binary part with its MIME type.
func InlinePart(mimeType string, data []byte) Part {
	return Part{InlineMIME: mimeType, InlineData: data}
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Generate returns ErrNotImplemented.
func (PlaceholderClient) Generate(ctx context.Context, input GenerateInput) (string, error) {
	_ = ctx
	_ = input
	return "", ErrNotImplemented
}
