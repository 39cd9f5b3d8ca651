package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"cvconvert-backend/internal/llm"
)

// Client implements llm.Client on top of the Gemini API.
type Client struct {
	client *genai.Client
	model  string
}

// NewClient constructs a Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Generate performs one structured-generation call. When the input carries a
// response schema the call is constrained to JSON conforming to it.
func (c *Client) Generate(ctx context.Context, input llm.GenerateInput) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(input.Temperature)

	if input.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(input.System)},
		}
	}
	if len(input.ResponseSchema) > 0 {
		schema, err := schemaFromJSON(input.ResponseSchema)
		if err != nil {
			return "", fmt.Errorf("response schema: %w", err)
		}
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = schema
	}

	parts := make([]genai.Part, 0, len(input.Parts))
	for _, p := range input.Parts {
		if len(p.InlineData) > 0 {
			parts = append(parts, genai.Blob{MIMEType: p.InlineMIME, Data: p.InlineData})
			continue
		}
		parts = append(parts, genai.Text(p.Text))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("generate requires at least one content part")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	logUsage(c.model, resp.UsageMetadata)

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response empty content")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return content, nil
}

func logUsage(model string, usage *genai.UsageMetadata) {
	if usage == nil {
		log.Printf("llm response model=%s", model)
		return
	}
	log.Printf("llm response model=%s prompt_tokens=%d completion_tokens=%d total_tokens=%d",
		model, usage.PromptTokenCount, usage.CandidatesTokenCount, usage.TotalTokenCount)
}

var _ llm.Client = (*Client)(nil)
