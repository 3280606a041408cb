package cases

import (
	"fmt"
	"strings"
	"time"

	"github.com/cuentame-ec/cuentame/internal/classifier"
	"github.com/cuentame-ec/cuentame/internal/protocol"
)

// Status is the lifecycle state of a case. Intended progression is
// OPEN → IN_PROGRESS → RESOLVED → CLOSED; staff pick the new status
// explicitly, the server does not force monotonic order.
type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// DisplayES returns the Spanish display string shown on the dashboard.
func (s Status) DisplayES() string {
	switch s {
	case StatusOpen:
		return "ABIERTO"
	case StatusInProgress:
		return "EN_PROCESO"
	case StatusResolved:
		return "RESUELTO"
	case StatusClosed:
		return "CERRADO"
	default:
		return string(s)
	}
}

// ParseStatus accepts canonical or Spanish display values.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "OPEN", "ABIERTO":
		return StatusOpen, nil
	case "IN_PROGRESS", "EN_PROCESO":
		return StatusInProgress, nil
	case "RESOLVED", "RESUELTO":
		return StatusResolved, nil
	case "CLOSED", "CERRADO":
		return StatusClosed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// Intervention is one logged staff action on a case. Append-only.
type Intervention struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	ActionTaken string    `json:"action_taken"`
	Responsible string    `json:"responsible"`
	Outcome     string    `json:"outcome,omitempty"`
}

// Case is a finalized conflict report under staff management. The
// reporter is referenced only by their pseudonymous code; the real
// identity never appears next to case data.
type Case struct {
	ID           string    `json:"id"`
	ReporterCode string    `json:"reporter_code"`
	ReporterRole string    `json:"reporter_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Status       Status    `json:"status"`

	// Classification snapshot, immutable after finalize.
	Typology        string                    `json:"typology"`
	Risk            protocol.Risk             `json:"risk"`
	Summary         string                    `json:"summary"`
	Recommendations []string                  `json:"recommendations"`
	Psychographics  classifier.Psychographics `json:"psychographics"`

	// Protocol routing snapshot taken at creation time.
	AssignedProtocol protocol.Type `json:"assigned_protocol"`
	AssignedTo       string        `json:"assigned_to"`
	Route            string        `json:"route"`

	Transcript    []classifier.Turn `json:"transcript"`
	Interventions []Intervention    `json:"interventions"`
}

// ListFilter narrows staff case listings.
type ListFilter struct {
	Status   Status
	Risk     protocol.Risk
	Typology string
	Limit    int
	Offset   int
}

// Stats aggregates dashboard counters.
type Stats struct {
	Total      int                   `json:"total"`
	ByStatus   map[Status]int        `json:"by_status"`
	ByRisk     map[protocol.Risk]int `json:"by_risk"`
	ByTypology map[string]int        `json:"by_typology"`
}
