package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// maxInlineBytes is the upper bound for binary payloads forwarded to the
	// model as inline data. Larger PDFs fall back to local text extraction.
	maxInlineBytes = 20 << 20
)

// ErrUnreadable indicates the file could not be read or decoded.
var ErrUnreadable = errors.New("file could not be read")

// BinaryContent is a base64 payload with its declared MIME type, suitable for
// multimodal model input.
type BinaryContent struct {
	MIMEType string
	Data     string
}

// SourcePayload is one ingested file's normalized representation. Exactly one
// of TextContent/Binary carries meaningful content.
type SourcePayload struct {
	ID          string
	FileName    string
	TextContent string
	Binary      *BinaryContent
}

// File is the ingestion input: a named, typed byte source.
type File struct {
	Name     string
	MIMEType string
	Reader   io.Reader
}

// Outcome pairs a payload with its per-item error. Failed items never proceed
// to extraction; other items are unaffected.
type Outcome struct {
	FileName string
	Payload  SourcePayload
	Err      error
}

// Ingest normalizes one uploaded file into a SourcePayload.
//
// Word-processor documents are reduced to raw text, PDFs and images become
// base64 binary payloads for multimodal input, anything else is read as plain
// text.
func Ingest(ctx context.Context, file File) (SourcePayload, error) {
	if err := ctx.Err(); err != nil {
		return SourcePayload{}, err
	}

	raw, err := io.ReadAll(file.Reader)
	if err != nil {
		return SourcePayload{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, file.Name, err)
	}

	payload := SourcePayload{
		ID:       uuid.NewString(),
		FileName: file.Name,
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	mimeType := normalizeMimeType(file.MIMEType)

	switch {
	case ext == ".docx" || ext == ".doc":
		text, err := extractDOCX(raw)
		if err != nil {
			return SourcePayload{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, file.Name, err)
		}
		payload.TextContent = text
	case mimeType == mimePDF && len(raw) > maxInlineBytes:
		text, err := extractPDF(raw)
		if err != nil {
			return SourcePayload{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, file.Name, err)
		}
		payload.TextContent = text
	case mimeType == mimePDF || strings.HasPrefix(mimeType, "image/"):
		payload.Binary = &BinaryContent{
			MIMEType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(raw),
		}
	default:
		payload.TextContent = string(raw)
	}

	return payload, nil
}

// IngestAll ingests files concurrently and independently. The returned slice
// has exactly one outcome per input file, in input order.
func IngestAll(ctx context.Context, files []File) []Outcome {
	outcomes := make([]Outcome, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file File) {
			defer wg.Done()
			payload, err := Ingest(ctx, file)
			outcomes[i] = Outcome{FileName: file.Name, Payload: payload, Err: err}
		}(i, file)
	}
	wg.Wait()
	return outcomes
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	readerAt := bytes.NewReader(data)
	zr, err := zip.NewReader(readerAt, int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		name := strings.ReplaceAll(f.Name, "\\", "/")
		if name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return stripDocxXML(string(raw)), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if last := buf.Len(); last > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
