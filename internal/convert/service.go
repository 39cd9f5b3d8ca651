package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cvconvert-backend/internal/cv"
	"cvconvert-backend/internal/ingest"
	"cvconvert-backend/internal/ledger"
	"cvconvert-backend/internal/llm"
	"cvconvert-backend/internal/shared/metrics"
	"cvconvert-backend/internal/shared/storage/object"
	"cvconvert-backend/internal/shared/telemetry"
	"cvconvert-backend/internal/shared/util"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const uploadNamespace = "uploads"

// Upload is one file received from the browser, fully buffered.
type Upload struct {
	FileName string
	MimeType string
	Data     []byte
}

// Service orchestrates the conversion pipeline: ingestion, the two model
// calls, reconciliation, and the usage ledger write. Each queued file runs in
// its own goroutine with an independent retry budget; the only shared mutable
// state is the repo and the ledger store.
type Service struct {
	Repo   Repo
	Ledger *ledger.Service
	Store  object.ObjectStore
	LLM    llm.Client
}

// Enqueue archives the uploaded files, creates one queued conversion per file
// in selection order, and starts asynchronous processing for each. A file
// that cannot be archived fails immediately without affecting its siblings.
func (s *Service) Enqueue(ctx context.Context, uploads []Upload, template string) ([]Conversion, error) {
	template, err := normalizeTemplate(template)
	if err != nil {
		return nil, err
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}

	conversions := make([]Conversion, 0, len(uploads))
	for i, up := range uploads {
		conversion := Conversion{
			ID:            uuid.NewString(),
			FileName:      up.FileName,
			MimeType:      up.MimeType,
			Template:      template,
			Position:      i,
			Status:        StatusQueued,
			StatusMessage: "Queued",
			CreatedAt:     time.Now().UTC(),
		}

		storageKey, size, detectedMime, saveErr := s.Store.Save(ctx, uploadNamespace, up.FileName, bytes.NewReader(up.Data))
		if saveErr != nil {
			msg := saveErr.Error()
			conversion.Status = StatusFailed
			conversion.StatusMessage = "Upload failed"
			conversion.ErrorMessage = &msg
		} else {
			conversion.StorageKey = storageKey
			conversion.SizeBytes = size
			if conversion.MimeType == "" {
				conversion.MimeType = detectedMime
			}
		}

		if err := s.Repo.Create(ctx, conversion); err != nil {
			return nil, err
		}
		if conversion.Status == StatusFailed {
			metrics.IncConversionFailed()
			telemetry.Error("conversion.upload_failed", map[string]any{
				"request_id":    requestIDFromContext(ctx),
				"conversion_id": conversion.ID,
				"file_name":     conversion.FileName,
				"error":         saveErr.Error(),
			})
		}
		conversions = append(conversions, conversion)
	}

	for _, conversion := range conversions {
		if conversion.Status != StatusQueued {
			continue
		}
		go s.completeAsync(backgroundWithRequestID(ctx), conversion)
	}

	return conversions, nil
}

// Get returns a conversion by ID.
func (s *Service) Get(ctx context.Context, conversionID string) (Conversion, error) {
	if conversionID == "" {
		return Conversion{}, fmt.Errorf("%w: conversion id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, conversionID)
}

// List returns conversions in upload order.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Conversion, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) completeAsync(ctx context.Context, conversion Conversion) {
	defer func() {
		if r := recover(); r != nil {
			s.failConversion(ctx, conversion, "Conversion failed", fmt.Errorf("panic: %v", r))
		}
	}()

	if err := s.Repo.UpdateStatus(ctx, conversion.ID, StatusProcessing, "Converting", nil, "", nil, nil); err != nil {
		s.failConversion(ctx, conversion, "Conversion failed", fmt.Errorf("set processing failed: %w", err))
		return
	}
	metrics.IncConversionStarted()
	started := time.Now()
	telemetry.Info("conversion.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"conversion_id":     conversion.ID,
		"file_name":         conversion.FileName,
		"template":          conversion.Template,
		"status":            StatusProcessing,
		"status_transition": "queued->processing",
	})

	reader, err := s.Store.Open(ctx, conversion.StorageKey)
	if err != nil {
		s.failConversion(ctx, conversion, "Could not read stored file", err)
		return
	}
	payload, err := ingest.Ingest(ctx, ingest.File{
		Name:     conversion.FileName,
		MIMEType: conversion.MimeType,
		Reader:   reader,
	})
	reader.Close()
	if err != nil {
		s.failConversion(ctx, conversion, "File could not be read", err)
		return
	}

	client := newRetryingLLM(s.LLM, conversion.ID)

	raw, err := extractRecord(ctx, client, payload)
	if err != nil {
		s.failConversion(ctx, conversion, "Extraction failed", err)
		return
	}

	styled, err := refineRecord(ctx, client, raw, conversion.Template)
	if err != nil {
		s.failConversion(ctx, conversion, "Refinement failed", err)
		return
	}

	final := reconcile(raw, styled)
	ensureAnalysisTags(&final, conversion.Template)

	rawJSON, err := json.Marshal(raw)
	if err != nil {
		s.failConversion(ctx, conversion, "Conversion failed", fmt.Errorf("marshal raw record: %w", err))
		return
	}
	sourceHash := util.HashSource(rawJSON, conversion.Template)

	resultJSON, err := json.Marshal(final)
	if err != nil {
		s.failConversion(ctx, conversion, "Conversion failed", fmt.Errorf("marshal final record: %w", err))
		return
	}

	now := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, conversion.ID, StatusCompleted, "Converted", resultJSON, sourceHash, nil, &now); err != nil {
		s.failConversion(ctx, conversion, "Conversion failed", fmt.Errorf("persist result: %w", err))
		return
	}
	metrics.IncConversionCompleted()
	metrics.ObserveConversionDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("conversion.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"conversion_id":     conversion.ID,
		"file_name":         conversion.FileName,
		"template":          conversion.Template,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"duration_ms":       time.Since(started).Milliseconds(),
	})

	s.recordUsage(ctx, conversion, sourceHash, "gen_"+conversion.ID)
}

// recordUsage appends a billing event. A ledger failure is logged and counted
// but never fails the conversion: the result has already been delivered.
func (s *Service) recordUsage(ctx context.Context, conversion Conversion, sourceHash, eventID string) {
	if s.Ledger == nil {
		return
	}
	inserted, err := s.Ledger.Record(ctx, conversion.ID, sourceHash, conversion.FileName, eventID)
	if err != nil {
		metrics.IncLedgerWriteFailed()
		telemetry.Error("ledger.write_failed", map[string]any{
			"request_id":    requestIDFromContext(ctx),
			"conversion_id": conversion.ID,
			"event_id":      eventID,
			"error":         err.Error(),
		})
		return
	}
	if !inserted {
		telemetry.Warn("ledger.duplicate_event", map[string]any{
			"request_id":    requestIDFromContext(ctx),
			"conversion_id": conversion.ID,
			"event_id":      eventID,
		})
	}
}

func (s *Service) failConversion(ctx context.Context, conversion Conversion, statusMessage string, cause error) {
	msg := cause.Error()
	now := time.Now().UTC()
	if err := s.Repo.UpdateStatus(ctx, conversion.ID, StatusFailed, statusMessage, nil, "", &msg, &now); err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.Error("conversion.fail_update_failed", map[string]any{
			"conversion_id": conversion.ID,
			"error":         err.Error(),
		})
	}
	metrics.IncConversionFailed()
	telemetry.Error("conversion.status", map[string]any{
		"request_id":        requestIDFromContext(ctx),
		"conversion_id":     conversion.ID,
		"file_name":         conversion.FileName,
		"template":          conversion.Template,
		"status":            StatusFailed,
		"status_message":    statusMessage,
		"error":             msg,
		"status_transition": "processing->failed",
	})
}

// RecordExport registers a billable export of a completed conversion. The
// event id is derived from the conversion and format, so repeated clicks on
// the same export button are billed once. Returns the conversion for the
// caller to render.
func (s *Service) RecordExport(ctx context.Context, conversionID, format string) (Conversion, error) {
	if format != "docx" && format != "pdf" {
		return Conversion{}, fmt.Errorf("%w: format must be docx or pdf", ErrInvalidInput)
	}
	conversion, err := s.Get(ctx, conversionID)
	if err != nil {
		return Conversion{}, err
	}
	if conversion.Status != StatusCompleted || conversion.Result == nil {
		return Conversion{}, ErrNotReady
	}

	s.recordUsage(ctx, conversion, conversion.SourceHash, fmt.Sprintf("export_%s_%s", conversion.ID, format))
	return conversion, nil
}

// normalizeTemplate defaults to the new template and rejects unknown values.
func normalizeTemplate(template string) (string, error) {
	switch template {
	case "":
		return cv.TemplateNew, nil
	case cv.TemplateOld, cv.TemplateNew:
		return template, nil
	default:
		return "", fmt.Errorf("%w: unknown template %q", ErrInvalidInput, template)
	}
}
