package intake

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

func newTestDraftStore(t *testing.T) (*DraftStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewDraftStore(client, time.Hour, nil), mr
}

func TestDraftStoreSaveLoadClear(t *testing.T) {
	store, _ := newTestDraftStore(t)
	ctx := context.Background()

	draft := &Draft{
		ReporterCode: "EST-A1B2C3",
		ReporterRole: "STUDENT",
		Turns: []classifier.Turn{
			{ID: "t1", Sender: classifier.SenderReporter, Text: "hola", Timestamp: time.Now().UTC()},
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Save(ctx, draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "EST-A1B2C3")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil || len(loaded.Turns) != 1 || loaded.Turns[0].Text != "hola" {
		t.Fatalf("unexpected draft: %+v", loaded)
	}

	if err := store.Clear(ctx, "EST-A1B2C3"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	loaded, err = store.Load(ctx, "EST-A1B2C3")
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil draft after clear, got %+v", loaded)
	}
}

func TestDraftStoreLoadMissingIsNil(t *testing.T) {
	store, _ := newTestDraftStore(t)

	loaded, err := store.Load(context.Background(), "EST-FFFFFF")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != nil {
		t.Errorf("expected nil for missing draft, got %+v", loaded)
	}
}

func TestDraftStoreSetsTTL(t *testing.T) {
	store, mr := newTestDraftStore(t)

	draft := &Draft{ReporterCode: "EST-A1B2C3", UpdatedAt: time.Now().UTC()}
	if err := store.Save(context.Background(), draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	ttl := mr.TTL(draftKey("EST-A1B2C3"))
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("unexpected ttl %v", ttl)
	}
}
