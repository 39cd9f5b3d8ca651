package convert

import (
	"context"
	"encoding/base64"
	"fmt"

	"cvconvert-backend/internal/cv"
	"cvconvert-backend/internal/ingest"
	"cvconvert-backend/internal/llm"
)

// generationTemperature keeps both pipeline calls near-deterministic.
const generationTemperature = 0.1

// extractRecord runs the phase-1 structured extraction call: source content in,
// first-pass normalized CV record out. Transport failures are retried by the
// client passed in; terminal failures surface as ErrExtraction.
func extractRecord(ctx context.Context, client llm.Client, payload ingest.SourcePayload) (cv.Record, error) {
	parts := make([]llm.Part, 0, 2)

	if payload.Binary != nil {
		data, err := base64.StdEncoding.DecodeString(payload.Binary.Data)
		if err != nil {
			return cv.Record{}, fmt.Errorf("%w: decode binary payload: %v", ErrExtraction, err)
		}
		parts = append(parts, llm.InlinePart(payload.Binary.MIMEType, data))
	}
	parts = append(parts, llm.TextPart(extractionPrompt(payload.TextContent)))

	resp, err := client.Generate(ctx, llm.GenerateInput{
		System:         extractSystemInstruction,
		Parts:          parts,
		ResponseSchema: []byte(cv.SchemaJSON),
		Temperature:    generationTemperature,
	})
	if err != nil {
		return cv.Record{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if resp == "" {
		return cv.Record{}, fmt.Errorf("%w: no text received from model", ErrExtraction)
	}

	rec, err := cv.Decode([]byte(extractJSON(resp)))
	if err != nil {
		return cv.Record{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return rec, nil
}
