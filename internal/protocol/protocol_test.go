package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestDetermineProtocolTotality(t *testing.T) {
	risks := []Risk{RiskLow, RiskMedium, RiskHigh, RiskCritical, Risk("DESCONOCIDO"), Risk("")}
	typologies := []string{
		"Conflicto leve entre pares",
		"Acoso escolar (bullying)",
		"Violencia física grave",
		"Violencia sexual",
		"Violencia intrafamiliar detectada",
		"Discriminación o xenofobia",
		"Ideación suicida o autolesiones",
		"Violencia digital",
		"Abandono escolar o negligencia",
		"Conflicto docente-estudiante",
		"",
		"algo fuera del catálogo",
	}

	for _, risk := range risks {
		for _, typ := range typologies {
			d := DetermineProtocol(risk, typ)
			if d.AssignedTo == "" {
				t.Errorf("DetermineProtocol(%s, %q): empty AssignedTo", risk, typ)
			}
			if d.Route == "" {
				t.Errorf("DetermineProtocol(%s, %q): empty Route", risk, typ)
			}
			if d.Type == "" {
				t.Errorf("DetermineProtocol(%s, %q): empty Type", risk, typ)
			}
		}
	}
}

func TestDetermineProtocolLowAndMedium(t *testing.T) {
	low := DetermineProtocol(RiskLow, "Acoso escolar (bullying)")
	if low.Type != TypeTutoring {
		t.Errorf("LOW should route to TUTORING, got %s", low.Type)
	}
	if low.AssignedTo != "DECE (Acompañamiento)" {
		t.Errorf("unexpected LOW responsible: %s", low.AssignedTo)
	}

	medium := DetermineProtocol(RiskMedium, "Violencia digital")
	if medium.Type != TypeDirection {
		t.Errorf("MEDIUM should route to DIRECTION, got %s", medium.Type)
	}
	if medium.AssignedTo != "DECE y Rectorado" {
		t.Errorf("unexpected MEDIUM responsible: %s", medium.AssignedTo)
	}
	if !strings.Contains(medium.Route, "Rectorado") {
		t.Errorf("MEDIUM route should mention Rectorado: %s", medium.Route)
	}
}

func TestDetermineProtocolHighBranches(t *testing.T) {
	intra := DetermineProtocol(RiskHigh, "Violencia intrafamiliar detectada")
	if intra.AssignedTo != "Junta Cantonal de Protección" {
		t.Errorf("intrafamiliar HIGH should go to Junta Cantonal, got %s", intra.AssignedTo)
	}
	if intra.Type != TypeExternalAuthorities {
		t.Errorf("expected EXTERNAL_AUTHORITIES, got %s", intra.Type)
	}

	other := DetermineProtocol(RiskHigh, "Violencia física grave")
	if other.AssignedTo != "Distrito Educativo y Policía (DINAPEN)" {
		t.Errorf("non-intrafamiliar HIGH should go to DINAPEN, got %s", other.AssignedTo)
	}
}

func TestDetermineProtocolCriticalMSPEscalation(t *testing.T) {
	suicidal := DetermineProtocol(RiskCritical, "Ideación suicida o autolesiones")
	if suicidal.AssignedTo != "Fiscalía y Distrito Educativo" {
		t.Errorf("unexpected CRITICAL responsible: %s", suicidal.AssignedTo)
	}
	if !strings.Contains(suicidal.Route, "Ministerio de Salud Pública (MSP)") {
		t.Errorf("suicide/self-harm CRITICAL route must include MSP escalation: %s", suicidal.Route)
	}

	sexual := DetermineProtocol(RiskCritical, "Violencia sexual")
	if strings.Contains(sexual.Route, "MSP") {
		t.Errorf("non-self-harm CRITICAL route must not include MSP: %s", sexual.Route)
	}
	if !strings.Contains(sexual.Route, "Fiscalía") {
		t.Errorf("CRITICAL route must include Fiscalía: %s", sexual.Route)
	}
}

func TestDetermineProtocolDefaultBranch(t *testing.T) {
	d := DetermineProtocol(Risk("WHATEVER"), "Conflicto leve entre pares")
	if d.Type != TypeTutoring {
		t.Errorf("default branch should route to TUTORING, got %s", d.Type)
	}
	if d.AssignedTo != "DECE (Evaluación Inicial)" {
		t.Errorf("unexpected default responsible: %s", d.AssignedTo)
	}
}

func TestParseRisk(t *testing.T) {
	tests := []struct {
		in   string
		want Risk
	}{
		{"LOW", RiskLow},
		{"bajo", RiskLow},
		{"MEDIO", RiskMedium},
		{"medium", RiskMedium},
		{"Alto", RiskHigh},
		{"CRÍTICO", RiskCritical},
		{"critico", RiskCritical},
		{"critical", RiskCritical},
		{" high ", RiskHigh},
	}
	for _, tt := range tests {
		if got := ParseRisk(tt.in); got != tt.want {
			t.Errorf("ParseRisk(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRiskStrict(t *testing.T) {
	risk, err := ParseRiskStrict("alto")
	if err != nil || risk != RiskHigh {
		t.Errorf("ParseRiskStrict(alto) = %s, %v", risk, err)
	}

	for _, in := range []string{"EXTREME", "", "5", "muy alto"} {
		if _, err := ParseRiskStrict(in); !errors.Is(err, ErrUnknownRisk) {
			t.Errorf("ParseRiskStrict(%q): expected ErrUnknownRisk, got %v", in, err)
		}
	}
}

func TestRiskDisplayES(t *testing.T) {
	if RiskCritical.DisplayES() != "CRÍTICO" {
		t.Errorf("unexpected display for CRITICAL: %s", RiskCritical.DisplayES())
	}
	if RiskLow.DisplayES() != "BAJO" {
		t.Errorf("unexpected display for LOW: %s", RiskLow.DisplayES())
	}
}
