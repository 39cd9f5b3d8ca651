package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreAppendInserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	event := ConversionEvent{
		EventID:     "gen_cv-1",
		CVID:        "cv-1",
		SourceHash:  "abc",
		FileName:    "jan.docx",
		ConvertedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO conversion_events").
		WithArgs(event.EventID, event.CVID, event.SourceHash, event.FileName, event.ConvertedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := store.Append(context.Background(), event)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if !inserted {
		t.Fatal("expected insert to report true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAppendConflictIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	event := ConversionEvent{EventID: "gen_cv-1", CVID: "cv-1", ConvertedAt: time.Now().UTC()}

	mock.ExpectExec("INSERT INTO conversion_events").
		WithArgs(event.EventID, event.CVID, event.SourceHash, event.FileName, event.ConvertedAt).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := store.Append(context.Background(), event)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if inserted {
		t.Fatal("conflicting event id must report false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreLastBySourceHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	at := time.Date(2026, time.February, 5, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT converted_at").
		WithArgs("same").
		WillReturnRows(sqlmock.NewRows([]string{"converted_at"}).AddRow(at))

	got, ok, err := store.LastBySourceHash(context.Background(), "same")
	if err != nil {
		t.Fatalf("LastBySourceHash: %v", err)
	}
	if !ok || !got.Equal(at) {
		t.Fatalf("expected %v, got ok=%v at=%v", at, ok, got)
	}

	mock.ExpectQuery("SELECT converted_at").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"converted_at"}))

	_, ok, err = store.LastBySourceHash(context.Background(), "missing")
	if err != nil {
		t.Fatalf("LastBySourceHash missing: %v", err)
	}
	if ok {
		t.Fatal("no rows must report ok=false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreAllOldestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db)
	first := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 1, 0)

	rows := sqlmock.NewRows([]string{"event_id", "cv_id", "source_hash", "file_name", "converted_at"}).
		AddRow("e1", "cv-1", "h1", "a.docx", first).
		AddRow("e2", "cv-2", "h2", "b.pdf", second)
	mock.ExpectQuery("SELECT event_id, cv_id, source_hash, file_name, converted_at").
		WillReturnRows(rows)

	events, err := store.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(events) != 2 || events[0].EventID != "e1" || events[1].EventID != "e2" {
		t.Fatalf("unexpected events %+v", events)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
