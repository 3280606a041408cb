package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresStoreInsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	now := time.Now().UTC()

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n1", "EST-A1B2C3", "case-1", KindCaseCreated, "Reporte recibido", "Detalle.", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.Insert(context.Background(), &Notification{
		ID:           "n1",
		ReporterCode: "EST-A1B2C3",
		CaseID:       "case-1",
		Kind:         KindCaseCreated,
		Title:        "Reporte recibido",
		Body:         "Detalle.",
		CreatedAt:    now,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
}

func TestPostgresStoreListWithCursor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	since := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now := since.Add(time.Minute)

	mock.ExpectQuery("SELECT id, reporter_code, case_id, kind, title, body, created_at, read_at").
		WithArgs("EST-A1B2C3", since).
		WillReturnRows(pgxmock.NewRows([]string{"id", "reporter_code", "case_id", "kind", "title", "body", "created_at", "read_at"}).
			AddRow("n1", "EST-A1B2C3", "case-1", KindCaseUpdate, "Actualización", "Detalle.", now, (*time.Time)(nil)))

	out, err := store.List(context.Background(), "EST-A1B2C3", since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 1 || out[0].ReadAt != nil {
		t.Errorf("unexpected notifications: %+v", out)
	}
}

func TestPostgresStoreMarkReadNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewPostgresStore(mock)
	mock.ExpectExec("UPDATE notifications").
		WithArgs("missing", "EST-A1B2C3").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := store.MarkRead(context.Background(), "EST-A1B2C3", "missing"); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("expected ErrNotificationNotFound, got %v", err)
	}
}
