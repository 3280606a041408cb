package profiles

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

func TestGenerateAccessCodeFormat(t *testing.T) {
	tests := []struct {
		role   Role
		prefix string
	}{
		{RoleStudent, "EST-"},
		{RoleParent, "REP-"},
		{RoleTeacher, "DOC-"},
		{RoleStaff, "DEC-"},
		{RoleAdmin, "ADM-"},
	}
	for _, tt := range tests {
		code, err := GenerateAccessCode(tt.role)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !strings.HasPrefix(code, tt.prefix) {
			t.Errorf("role %s: expected prefix %s, got %s", tt.role, tt.prefix, code)
		}
		if len(code) != len(tt.prefix)+6 {
			t.Errorf("role %s: unexpected code length %q", tt.role, code)
		}
	}
}

func TestGenerateAccessCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateAccessCode(RoleStudent)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %s after %d draws", code, i)
		}
		seen[code] = true
	}
}

func TestMergePsychographicsUnionsInOrder(t *testing.T) {
	existing := classifier.Psychographics{
		Emotions:    []string{"miedo", "tristeza"},
		RiskFactors: []string{"aislamiento"},
	}
	observed := classifier.Psychographics{
		Emotions:          []string{"tristeza", "ansiedad"},
		Interests:         []string{"fútbol"},
		ProtectiveFactors: []string{"apoyo familiar"},
	}

	merged := MergePsychographics(existing, observed)

	wantEmotions := []string{"miedo", "tristeza", "ansiedad"}
	if len(merged.Emotions) != len(wantEmotions) {
		t.Fatalf("emotions: got %v, want %v", merged.Emotions, wantEmotions)
	}
	for i, v := range wantEmotions {
		if merged.Emotions[i] != v {
			t.Errorf("emotions[%d]: got %q, want %q", i, merged.Emotions[i], v)
		}
	}
	if len(merged.Interests) != 1 || merged.Interests[0] != "fútbol" {
		t.Errorf("interests: got %v", merged.Interests)
	}
	if len(merged.RiskFactors) != 1 || merged.RiskFactors[0] != "aislamiento" {
		t.Errorf("risk factors: got %v", merged.RiskFactors)
	}
	if len(merged.ProtectiveFactors) != 1 {
		t.Errorf("protective factors: got %v", merged.ProtectiveFactors)
	}
}

func TestMergePsychographicsEmptyObserved(t *testing.T) {
	existing := classifier.Psychographics{Emotions: []string{"miedo"}}
	merged := MergePsychographics(existing, classifier.Psychographics{})
	if len(merged.Emotions) != 1 {
		t.Errorf("expected existing facets preserved, got %v", merged.Emotions)
	}
}

func TestServiceRegisterAssignsCode(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)

	p, err := svc.Register(context.Background(), "María Pérez", RoleStudent, "8vo A")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if !strings.HasPrefix(p.AccessCode, "EST-") {
		t.Errorf("unexpected access code %q", p.AccessCode)
	}
	if p.ID == "" {
		t.Error("expected server-assigned id")
	}

	stored, err := repo.GetByAccessCode(context.Background(), p.AccessCode)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.FullName != "María Pérez" {
		t.Errorf("full name not stored: %q", stored.FullName)
	}
}

func TestServiceMergeObserved(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, nil)

	p, err := svc.Register(context.Background(), "María Pérez", RoleStudent, "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	observed := classifier.Psychographics{Emotions: []string{"miedo"}, RiskFactors: []string{"acoso reiterado"}}
	if err := svc.MergeObserved(context.Background(), p.AccessCode, observed); err != nil {
		t.Fatalf("merge: %v", err)
	}

	stored, _ := repo.GetByAccessCode(context.Background(), p.AccessCode)
	if len(stored.Psych.Emotions) != 1 || stored.Psych.Emotions[0] != "miedo" {
		t.Errorf("emotions not merged: %v", stored.Psych.Emotions)
	}

	if err := svc.MergeObserved(context.Background(), "EST-000000", observed); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestProfileJSONNeverExposesFullName(t *testing.T) {
	p := &Profile{FullName: "María Pérez", AccessCode: "EST-A1B2C3", Role: RoleStudent}

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "María") {
		t.Errorf("full name leaked into JSON: %s", raw)
	}

	raw, err = json.Marshal(p.Public())
	if err != nil {
		t.Fatalf("marshal public: %v", err)
	}
	if strings.Contains(string(raw), "María") {
		t.Errorf("full name leaked into public view: %s", raw)
	}
}

func TestParseRoleVariants(t *testing.T) {
	for in, want := range map[string]Role{
		"student":    RoleStudent,
		"ESTUDIANTE": RoleStudent,
		"docente":    RoleTeacher,
		"parent":     RoleParent,
		"DECE":       RoleStaff,
	} {
		got, err := ParseRole(in)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseRole(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseRole("alien"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}
