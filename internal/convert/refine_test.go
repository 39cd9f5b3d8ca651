package convert

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"cvconvert-backend/internal/cv"
	"cvconvert-backend/internal/llm"
)

const minimalRecordJSON = `{
  "personalInfo": {"name": "Jane Jansen", "availability": "Per direct"},
  "education": [{"period": "2015 - 2019", "degree": "Social Work", "status": "Diploma"}],
  "languages": ["Dutch", "English"],
  "experience": [{"period": "01/2020 - present", "employer": "Care Org", "role": "Coach", "bullets": ["Coaching families;"]}]
}`

func TestRefineRecordPicksTemplateInstruction(t *testing.T) {
	var captured llm.GenerateInput
	base := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return minimalRecordJSON, nil },
	}}
	client := captureLLM{inner: base, captured: &captured}

	raw := cv.Record{PersonalInfo: cv.PersonalInfo{Name: "Jane Jansen", Availability: "Per direct"}}
	if _, err := refineRecord(context.Background(), client, raw, cv.TemplateOld); err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if captured.System != oldStyleSystemInstruction {
		t.Fatal("old template must use the old-style instruction set")
	}

	if _, err := refineRecord(context.Background(), client, raw, cv.TemplateNew); err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if captured.System != newStyleSystemInstruction {
		t.Fatal("new template must use the new-style instruction set")
	}
}

func TestRefineRecordWrapsFailures(t *testing.T) {
	base := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("model exploded") },
	}}
	_, err := refineRecord(context.Background(), base, cv.Record{}, cv.TemplateNew)
	if !errors.Is(err, ErrRefinement) {
		t.Fatalf("expected ErrRefinement, got %v", err)
	}

	base = &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "not json at all", nil },
	}}
	_, err = refineRecord(context.Background(), base, cv.Record{}, cv.TemplateNew)
	if !errors.Is(err, ErrRefinement) {
		t.Fatalf("expected ErrRefinement on unparseable output, got %v", err)
	}
}

func TestRefineRecordStripsMarkdownFence(t *testing.T) {
	base := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "```json\n" + minimalRecordJSON + "\n```", nil },
	}}
	styled, err := refineRecord(context.Background(), base, cv.Record{}, cv.TemplateOld)
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}
	if styled.PersonalInfo.Name != "Jane Jansen" {
		t.Fatalf("unexpected record %+v", styled)
	}
}

func TestEnsureAnalysisTagsSynthesizesBlock(t *testing.T) {
	rec := cv.Record{PersonalInfo: cv.PersonalInfo{Name: "Jane Jansen"}}
	ensureAnalysisTags(&rec, cv.TemplateNew)

	if rec.Analysis == nil {
		t.Fatal("new template requires an analysis block")
	}
	if len(rec.Analysis.Tags) != requiredTagCount {
		t.Fatalf("expected %d tags, got %d", requiredTagCount, len(rec.Analysis.Tags))
	}
	if rec.Analysis.Scores.Overall != 80 {
		t.Fatalf("expected neutral fallback score, got %v", rec.Analysis.Scores.Overall)
	}
	if rec.Analysis.Profile == nil || rec.Analysis.Profile.Role != "Jane Jansen" {
		t.Fatalf("expected profile derived from the candidate, got %+v", rec.Analysis.Profile)
	}
}

func TestEnsureAnalysisTagsPadsAndTruncates(t *testing.T) {
	rec := cv.Record{Analysis: &cv.Analysis{Tags: []string{"Empathetic", "Organized"}}}
	ensureAnalysisTags(&rec, cv.TemplateNew)
	want := []string{"Empathetic", "Organized", "Professional", "Driven", "Expert"}
	if !reflect.DeepEqual(rec.Analysis.Tags, want) {
		t.Fatalf("padded tags = %v, want %v", rec.Analysis.Tags, want)
	}

	var seven []string
	for i := 0; i < 7; i++ {
		seven = append(seven, fmt.Sprintf("Tag%d", i))
	}
	rec = cv.Record{Analysis: &cv.Analysis{Tags: seven}}
	ensureAnalysisTags(&rec, cv.TemplateNew)
	if len(rec.Analysis.Tags) != requiredTagCount {
		t.Fatalf("expected truncation to %d tags, got %d", requiredTagCount, len(rec.Analysis.Tags))
	}
}

func TestEnsureAnalysisTagsSkipsOldTemplate(t *testing.T) {
	rec := cv.Record{}
	ensureAnalysisTags(&rec, cv.TemplateOld)
	if rec.Analysis != nil {
		t.Fatal("old template must not grow an analysis block")
	}
}

type captureLLM struct {
	inner    llm.Client
	captured *llm.GenerateInput
}

func (c captureLLM) Generate(ctx context.Context, input llm.GenerateInput) (string, error) {
	*c.captured = input
	return c.inner.Generate(ctx, input)
}
