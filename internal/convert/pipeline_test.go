package convert

import (
	"context"
	"errors"
	"testing"

	"cvconvert-backend/internal/ingest"
)

func TestConvertRunsBothPhases(t *testing.T) {
	fastRetries(t)
	client := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return recordJSON(t, 4), nil },
		func() (string, error) { return recordJSON(t, 2), nil },
	}}

	payload := ingest.SourcePayload{ID: "p1", FileName: "jan.txt", TextContent: "CV text"}
	record, err := Convert(context.Background(), client, payload, "")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if client.callCount() != 2 {
		t.Fatalf("expected 2 model calls, got %d", client.callCount())
	}
	if len(record.Experience) != 1 || len(record.Experience[0].Bullets) != 4 {
		t.Fatalf("shrunk bullets must be restored, got %+v", record.Experience)
	}
	if record.Analysis == nil || len(record.Analysis.Tags) != 5 {
		t.Fatalf("default template must deliver 5 analysis tags, got %+v", record.Analysis)
	}
}

func TestConvertRejectsUnknownTemplate(t *testing.T) {
	client := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", nil },
	}}

	_, err := Convert(context.Background(), client, ingest.SourcePayload{ID: "p1"}, "fancy")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if client.callCount() != 0 {
		t.Fatalf("model must not be called for invalid template")
	}
}
