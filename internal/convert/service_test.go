package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"cvconvert-backend/internal/cv"
	"cvconvert-backend/internal/ledger"
	"cvconvert-backend/internal/shared/storage/object/local"
)

func recordJSON(t *testing.T, bullets int) string {
	t.Helper()
	items := make([]string, 0, bullets)
	for i := 0; i < bullets; i++ {
		items = append(items, fmt.Sprintf("%q", fmt.Sprintf("Perform task %d;", i+1)))
	}
	return fmt.Sprintf(`{
  "personalInfo": {"name": "Jan Jansen", "availability": "Per direct"},
  "education": [{"period": "2015 - 2019", "degree": "Social Work", "status": "Diploma"}],
  "languages": ["Dutch"],
  "experience": [{"period": "01/2020 - present", "employer": "Care Org", "role": "Coach", "bullets": [%s]}]
}`, strings.Join(items, ","))
}

func newTestService(t *testing.T, llmClient *scriptedLLM) (*Service, *MemoryRepo, *ledger.Service) {
	t.Helper()
	repo := NewMemoryRepo()
	ledgerSvc := ledger.NewService(ledger.NewMemoryStore())
	return &Service{
		Repo:   repo,
		Ledger: ledgerSvc,
		Store:  local.New(t.TempDir()),
		LLM:    llmClient,
	}, repo, ledgerSvc
}

func waitForTerminalStatus(t *testing.T, repo *MemoryRepo, conversionID string) Conversion {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conversion, err := repo.GetByID(context.Background(), conversionID)
		if err != nil {
			t.Fatalf("get conversion: %v", err)
		}
		if conversion.Status == StatusCompleted || conversion.Status == StatusFailed {
			return conversion
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("conversion never reached a terminal status")
	return Conversion{}
}

func TestEnqueueRunsPipelineAndRecordsUsage(t *testing.T) {
	fastRetries(t)
	llmClient := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return recordJSON(t, 9), nil },
		func() (string, error) { return recordJSON(t, 6), nil },
	}}
	svc, repo, ledgerSvc := newTestService(t, llmClient)

	conversions, err := svc.Enqueue(context.Background(), []Upload{
		{FileName: "jan.txt", MimeType: "text/plain", Data: []byte("CV of Jan Jansen")},
	}, cv.TemplateNew)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if len(conversions) != 1 || conversions[0].Status != StatusQueued {
		t.Fatalf("unexpected enqueue result %+v", conversions)
	}

	conversion := waitForTerminalStatus(t, repo, conversions[0].ID)
	if conversion.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%v)", conversion.Status, conversion.ErrorMessage)
	}
	if conversion.SourceHash == "" {
		t.Fatal("completed conversion must carry a source hash")
	}
	if conversion.CompletedAt == nil {
		t.Fatal("completed conversion must carry a completion timestamp")
	}

	var final cv.Record
	if err := json.Unmarshal(conversion.Result, &final); err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if len(final.Experience) != 1 || len(final.Experience[0].Bullets) != 9 {
		t.Fatalf("shrunk bullets must be restored, got %+v", final.Experience)
	}
	if final.Analysis == nil || len(final.Analysis.Tags) != 5 {
		t.Fatalf("new template must deliver 5 analysis tags, got %+v", final.Analysis)
	}

	total, err := ledgerSvc.TotalCount(context.Background())
	if err != nil {
		t.Fatalf("ledger total: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 ledger event, got %d", total)
	}

	dup, _, err := ledgerSvc.IsDuplicate(context.Background(), conversion.SourceHash)
	if err != nil || !dup {
		t.Fatalf("source hash must be visible to duplicate detection, dup=%v err=%v", dup, err)
	}
}

func TestEnqueueFailureMarksConversionFailed(t *testing.T) {
	fastRetries(t)
	llmClient := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("invalid argument") },
	}}
	svc, repo, ledgerSvc := newTestService(t, llmClient)

	conversions, err := svc.Enqueue(context.Background(), []Upload{
		{FileName: "jan.txt", MimeType: "text/plain", Data: []byte("CV text")},
	}, cv.TemplateOld)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	conversion := waitForTerminalStatus(t, repo, conversions[0].ID)
	if conversion.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", conversion.Status)
	}
	if conversion.StatusMessage != "Extraction failed" {
		t.Fatalf("unexpected status message %q", conversion.StatusMessage)
	}
	if conversion.ErrorMessage == nil {
		t.Fatal("failed conversion must carry an error message")
	}

	total, _ := ledgerSvc.TotalCount(context.Background())
	if total != 0 {
		t.Fatalf("failed conversion must not be billed, got %d events", total)
	}
}

func TestEnqueuePreservesUploadOrder(t *testing.T) {
	fastRetries(t)
	llmClient := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return recordJSON(t, 2), nil },
	}}
	svc, repo, _ := newTestService(t, llmClient)

	uploads := []Upload{
		{FileName: "a.txt", MimeType: "text/plain", Data: []byte("a")},
		{FileName: "b.txt", MimeType: "text/plain", Data: []byte("b")},
		{FileName: "c.txt", MimeType: "text/plain", Data: []byte("c")},
	}
	conversions, err := svc.Enqueue(context.Background(), uploads, "")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	for i := range conversions {
		waitForTerminalStatus(t, repo, conversions[i].ID)
	}

	listed, err := svc.List(context.Background(), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 conversions, got %d", len(listed))
	}
	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if listed[i].FileName != want {
			t.Fatalf("position %d = %s, want %s", i, listed[i].FileName, want)
		}
		if listed[i].Position != i {
			t.Fatalf("position field %d = %d", i, listed[i].Position)
		}
	}
}

func TestEnqueueRejectsUnknownTemplate(t *testing.T) {
	svc, _, _ := newTestService(t, &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", nil },
	}})

	_, err := svc.Enqueue(context.Background(), []Upload{
		{FileName: "a.txt", Data: []byte("a")},
	}, "fancy")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	_, err = svc.Enqueue(context.Background(), nil, cv.TemplateNew)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty batch, got %v", err)
	}
}

func seedCompletedConversion(t *testing.T, repo *MemoryRepo, id string) Conversion {
	t.Helper()
	now := time.Now().UTC()
	conversion := Conversion{
		ID:          id,
		FileName:    "jan.docx",
		Template:    cv.TemplateNew,
		Status:      StatusCompleted,
		SourceHash:  "hash-" + id,
		Result:      json.RawMessage(recordJSON(t, 3)),
		CreatedAt:   now,
		CompletedAt: &now,
	}
	if err := repo.Create(context.Background(), conversion); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return conversion
}

func TestRecordExportBillsOncePerFormat(t *testing.T) {
	svc, repo, ledgerSvc := newTestService(t, &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", nil },
	}})
	seedCompletedConversion(t, repo, "conv-1")

	for i := 0; i < 3; i++ {
		if _, err := svc.RecordExport(context.Background(), "conv-1", "docx"); err != nil {
			t.Fatalf("export %d: %v", i, err)
		}
	}
	if _, err := svc.RecordExport(context.Background(), "conv-1", "pdf"); err != nil {
		t.Fatalf("pdf export: %v", err)
	}

	total, _ := ledgerSvc.TotalCount(context.Background())
	if total != 2 {
		t.Fatalf("expected 2 billed exports (one per format), got %d", total)
	}
}

func TestRecordExportValidation(t *testing.T) {
	svc, repo, _ := newTestService(t, &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "", nil },
	}})

	if _, err := svc.RecordExport(context.Background(), "conv-1", "xlsx"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.RecordExport(context.Background(), "missing", "docx"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	pending := Conversion{ID: "pending", Status: StatusQueued, CreatedAt: time.Now().UTC()}
	if err := repo.Create(context.Background(), pending); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.RecordExport(context.Background(), "pending", "docx"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
}

func TestGenerateText(t *testing.T) {
	fastRetries(t)
	llmClient := &scriptedLLM{responses: []func() (string, error){
		func() (string, error) { return "Dear client, allow me to introduce Jan.", nil },
	}}
	svc, repo, _ := newTestService(t, llmClient)
	seedCompletedConversion(t, repo, "conv-1")

	text, err := svc.GenerateText(context.Background(), "conv-1", "email", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Dear client, allow me to introduce Jan." {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := svc.GenerateText(context.Background(), "conv-1", "poem", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown kind, got %v", err)
	}
}
