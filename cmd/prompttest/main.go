package main

// Ad-hoc pipeline harness: converts local CV files without the HTTP server.
//
//   GEMINI_API_KEY=... go run ./cmd/prompttest -template new cv.pdf cv2.docx

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"

	"cvconvert-backend/internal/convert"
	"cvconvert-backend/internal/ingest"
	"cvconvert-backend/internal/llm/gemini"
	"cvconvert-backend/internal/shared/config"
)

func main() {
	template := flag.String("template", "", "CV template: old or new (default new)")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: prompttest [-template old|new] <file> [file...]")
		os.Exit(2)
	}

	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	ctx := context.Background()
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("init gemini client: %v", err)
	}
	defer client.Close()

	files := make([]ingest.File, 0, len(paths))
	handles := make([]*os.File, 0, len(paths))
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("open %s: %v", path, err)
		}
		handles = append(handles, f)
		files = append(files, ingest.File{
			Name:     filepath.Base(path),
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
			Reader:   f,
		})
	}

	outcomes := ingest.IngestAll(ctx, files)
	for _, h := range handles {
		h.Close()
	}

	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			log.Printf("ingest %s: %v", outcome.FileName, outcome.Err)
			failed++
			continue
		}
		record, err := convert.Convert(ctx, client, outcome.Payload, *template)
		if err != nil {
			log.Printf("convert %s: %v", outcome.FileName, err)
			failed++
			continue
		}
		out, err := json.MarshalIndent(record, "", "  ")
		if err != nil {
			log.Fatalf("marshal %s: %v", outcome.FileName, err)
		}
		fmt.Printf("--- %s\n%s\n", outcome.FileName, out)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
