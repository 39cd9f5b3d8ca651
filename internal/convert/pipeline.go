package convert

import (
	"context"

	"cvconvert-backend/internal/cv"
	"cvconvert-backend/internal/ingest"
	"cvconvert-backend/internal/llm"
)

// Convert runs the two-phase pipeline for a single ingested payload and
// returns the reconciled record. Transient model failures are retried with
// the same policy the async service uses.
func Convert(ctx context.Context, client llm.Client, payload ingest.SourcePayload, template string) (cv.Record, error) {
	template, err := normalizeTemplate(template)
	if err != nil {
		return cv.Record{}, err
	}

	retrying := newRetryingLLM(client, payload.ID)

	raw, err := extractRecord(ctx, retrying, payload)
	if err != nil {
		return cv.Record{}, err
	}
	styled, err := refineRecord(ctx, retrying, raw, template)
	if err != nil {
		return cv.Record{}, err
	}

	final := reconcile(raw, styled)
	ensureAnalysisTags(&final, template)
	return final, nil
}
