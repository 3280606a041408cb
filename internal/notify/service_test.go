package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	rows []*Notification
	err  error
}

func (m *memoryStore) Insert(ctx context.Context, n *Notification) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, n)
	return nil
}

func (m *memoryStore) List(ctx context.Context, reporterCode string, since time.Time) ([]*Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Notification
	for _, n := range m.rows {
		if n.ReporterCode == reporterCode && n.CreatedAt.After(since) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryStore) MarkRead(ctx context.Context, reporterCode, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.rows {
		if n.ID == id && n.ReporterCode == reporterCode {
			now := time.Now().UTC()
			n.ReadAt = &now
			return nil
		}
	}
	return ErrNotificationNotFound
}

type recordingEmail struct {
	sent []EmailMessage
	err  error
}

func (r *recordingEmail) Send(ctx context.Context, msg EmailMessage) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestNotifyWritesNotification(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(store, nil, nil, nil)

	err := svc.Notify(context.Background(), "EST-A1B2C3", "Reporte recibido", "Tu reporte fue recibido.", KindCaseCreated, "case-1")
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(store.rows))
	}
	n := store.rows[0]
	if n.ID == "" || n.CreatedAt.IsZero() {
		t.Errorf("expected server id and timestamp, got %+v", n)
	}
	if n.Kind != KindCaseCreated || n.CaseID != "case-1" {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestNotifySendsEmailCopy(t *testing.T) {
	store := &memoryStore{}
	email := &recordingEmail{}
	svc := NewService(store, email, []string{"dece@colegio.edu.ec"}, nil)

	if err := svc.Notify(context.Background(), "EST-A1B2C3", "Tu caso fue cerrado", "Detalle.", KindCaseClosed, "case-1"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(email.sent) != 1 {
		t.Fatalf("expected 1 email copy, got %d", len(email.sent))
	}
	if email.sent[0].To != "dece@colegio.edu.ec" {
		t.Errorf("unexpected recipient %q", email.sent[0].To)
	}
}

func TestNotifyEmailFailureDoesNotFail(t *testing.T) {
	store := &memoryStore{}
	email := &recordingEmail{err: errors.New("smtp down")}
	svc := NewService(store, email, []string{"dece@colegio.edu.ec"}, nil)

	if err := svc.Notify(context.Background(), "EST-A1B2C3", "Título", "Cuerpo.", KindCaseUpdate, "case-1"); err != nil {
		t.Fatalf("email failure must not fail notify: %v", err)
	}
	if len(store.rows) != 1 {
		t.Errorf("in-app notification must still be written")
	}
}

func TestNotifyStoreFailurePropagates(t *testing.T) {
	store := &memoryStore{err: errors.New("db down")}
	svc := NewService(store, nil, nil, nil)

	if err := svc.Notify(context.Background(), "EST-A1B2C3", "Título", "Cuerpo.", KindCaseUpdate, "case-1"); err == nil {
		t.Fatal("expected store error")
	}
}
