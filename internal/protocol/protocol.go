package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRisk reports a value ParseRiskStrict could not map.
var ErrUnknownRisk = errors.New("protocol: unknown risk level")

// Risk is the canonical risk level assigned by the classifier.
type Risk string

const (
	RiskLow      Risk = "LOW"
	RiskMedium   Risk = "MEDIUM"
	RiskHigh     Risk = "HIGH"
	RiskCritical Risk = "CRITICAL"
)

// DisplayES returns the Spanish display string used by MINEDUC paperwork.
func (r Risk) DisplayES() string {
	switch r {
	case RiskLow:
		return "BAJO"
	case RiskMedium:
		return "MEDIO"
	case RiskHigh:
		return "ALTO"
	case RiskCritical:
		return "CRÍTICO"
	default:
		return string(r)
	}
}

// ParseRisk maps canonical or Spanish display values onto a Risk.
// Unknown values pass through so DetermineProtocol can apply its
// default branch.
func ParseRisk(s string) Risk {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "BAJO":
		return RiskLow
	case "MEDIUM", "MEDIO":
		return RiskMedium
	case "HIGH", "ALTO":
		return RiskHigh
	case "CRITICAL", "CRÍTICO", "CRITICO":
		return RiskCritical
	default:
		return Risk(strings.ToUpper(strings.TrimSpace(s)))
	}
}

// ParseRiskStrict accepts only the four known levels, for inputs such
// as dashboard filters where an unknown value is a caller mistake
// rather than something to route on.
func ParseRiskStrict(s string) (Risk, error) {
	risk := ParseRisk(s)
	switch risk {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return risk, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRisk, s)
	}
}

// Type is the institutional escalation channel.
type Type string

const (
	TypeTutoring            Type = "TUTORING"
	TypePsychology          Type = "PSYCHOLOGY"
	TypeDirection           Type = "DIRECTION"
	TypeExternalAuthorities Type = "EXTERNAL_AUTHORITIES"
)

// Decision is the routing outcome for a classified case. It is a pure
// derived value: either recomputed from (risk, typology) or stored as a
// snapshot inside the case at creation time.
type Decision struct {
	Type       Type   `json:"protocol_type"`
	AssignedTo string `json:"assigned_to"`
	Route      string `json:"route"`
}

// DetermineProtocol maps a risk level and typology onto the institutional
// escalation route mandated by the MINEDUC protocols. Total: every input,
// including unrecognized risk values, yields a decision.
func DetermineProtocol(risk Risk, typology string) Decision {
	lowered := strings.ToLower(typology)

	switch risk {
	case RiskLow:
		return Decision{
			Type:       TypeTutoring,
			AssignedTo: "DECE (Acompañamiento)",
			Route:      "Mediación entre las partes y seguimiento del DECE.",
		}
	case RiskMedium:
		return Decision{
			Type:       TypeDirection,
			AssignedTo: "DECE y Rectorado",
			Route:      "Informe escrito al Rectorado, conocimiento de la máxima autoridad y medidas restaurativas.",
		}
	case RiskHigh:
		if strings.Contains(lowered, "intrafamiliar") {
			return Decision{
				Type:       TypeExternalAuthorities,
				AssignedTo: "Junta Cantonal de Protección",
				Route:      "Remisión del caso a la Junta Cantonal de Protección de Derechos y seguimiento del DECE.",
			}
		}
		return Decision{
			Type:       TypeExternalAuthorities,
			AssignedTo: "Distrito Educativo y Policía (DINAPEN)",
			Route:      "Reporte al Distrito Educativo, denuncia ante la DINAPEN y medidas de protección para la víctima.",
		}
	case RiskCritical:
		route := "Denuncia inmediata a la Fiscalía y reporte al Distrito Educativo."
		if strings.Contains(lowered, "suicid") || strings.Contains(lowered, "autolesion") {
			route += " Derivación urgente al Ministerio de Salud Pública (MSP)."
		}
		return Decision{
			Type:       TypeExternalAuthorities,
			AssignedTo: "Fiscalía y Distrito Educativo",
			Route:      route,
		}
	default:
		return Decision{
			Type:       TypeTutoring,
			AssignedTo: "DECE (Evaluación Inicial)",
			Route:      "Entrevista preliminar con la persona reportante y evaluación de riesgo por el DECE.",
		}
	}
}
