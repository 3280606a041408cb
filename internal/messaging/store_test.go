package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestStoreInsertMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	mock.ExpectExec("INSERT INTO case_messages").
		WithArgs(pgxmock.AnyArg(), "case-1", SenderStaff, "Hemos revisado tu reporte.", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	m, err := store.Insert(context.Background(), "case-1", SenderStaff, "Hemos revisado tu reporte.")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if m.ID == "" || m.CreatedAt.IsZero() {
		t.Errorf("expected server-assigned id and timestamp, got %+v", m)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStoreInsertRejectsEmptyBody(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	if _, err := store.Insert(context.Background(), "case-1", SenderReporter, "  \n"); !errors.Is(err, ErrEmptyBody) {
		t.Errorf("expected ErrEmptyBody, got %v", err)
	}
}

func TestStoreListByCaseUsesCursor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	since := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	now := since.Add(time.Minute)

	mock.ExpectQuery("SELECT id, case_id, sender, body, created_at").
		WithArgs("case-1", since).
		WillReturnRows(pgxmock.NewRows([]string{"id", "case_id", "sender", "body", "created_at"}).
			AddRow("m1", "case-1", SenderStaff, "¿Cómo sigues?", now))

	msgs, err := store.ListByCase(context.Background(), "case-1", since)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Body != "¿Cómo sigues?" {
		t.Errorf("unexpected messages: %+v", msgs)
	}
}

func TestStoreListInboxJoinsCases(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := NewStore(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT m.id, m.case_id, m.sender, m.body, m.created_at").
		WithArgs("EST-A1B2C3", time.Time{}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "case_id", "sender", "body", "created_at"}).
			AddRow("m2", "case-2", SenderStaff, "Tu caso fue asignado.", now).
			AddRow("m1", "case-1", SenderStaff, "Hemos revisado tu reporte.", now.Add(-time.Hour)))

	msgs, err := store.ListInbox(context.Background(), "EST-A1B2C3", time.Time{})
	if err != nil {
		t.Fatalf("inbox: %v", err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m2" {
		t.Errorf("unexpected inbox: %+v", msgs)
	}
}
