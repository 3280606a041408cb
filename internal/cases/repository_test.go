package cases

import (
	"context"
	"testing"
	"time"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

func TestInMemoryRepositoryClonesDoNotAliasStore(t *testing.T) {
	repo := NewInMemoryRepository()
	c := &Case{
		ID:              "case-1",
		ReporterCode:    "EST-A1B2",
		Status:          StatusOpen,
		Recommendations: []string{"Entrevista DECE"},
		Transcript:      []classifier.Turn{{ID: "t1", Sender: classifier.SenderReporter, Text: "hola"}},
		Interventions: []Intervention{{
			ID:          "i1",
			Date:        time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			ActionTaken: "Entrevista inicial",
			Responsible: "DECE",
		}},
	}
	if err := repo.Save(context.Background(), c); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.GetByID(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Recommendations[0] = "cambiada"
	got.Interventions[0].ActionTaken = "cambiada"
	got.Transcript[0].Text = "cambiado"
	got.Interventions = append(got.Interventions, Intervention{ID: "i2"})

	stored, err := repo.GetByID(context.Background(), "case-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Recommendations[0] != "Entrevista DECE" {
		t.Errorf("recommendation mutated through a clone: %q", stored.Recommendations[0])
	}
	if stored.Interventions[0].ActionTaken != "Entrevista inicial" {
		t.Errorf("intervention mutated through a clone: %q", stored.Interventions[0].ActionTaken)
	}
	if stored.Transcript[0].Text != "hola" {
		t.Errorf("transcript mutated through a clone: %q", stored.Transcript[0].Text)
	}
	if len(stored.Interventions) != 1 {
		t.Errorf("append through a clone grew the stored case: %d", len(stored.Interventions))
	}

	listed, err := repo.ListAll(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	listed[0].Recommendations[0] = "cambiada"
	stored, _ = repo.GetByID(context.Background(), "case-1")
	if stored.Recommendations[0] != "Entrevista DECE" {
		t.Errorf("list result aliases the store: %q", stored.Recommendations[0])
	}
}
