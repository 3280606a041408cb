package profiles

import (
	"fmt"
	"strings"
	"time"

	"github.com/cuentame-ec/cuentame/internal/classifier"
)

// Role identifies who is behind a profile.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleParent  Role = "PARENT"
	RoleTeacher Role = "TEACHER"
	RoleStaff   Role = "STAFF"
	RoleAdmin   Role = "ADMIN"
)

// ParseRole accepts canonical or Spanish role names.
func ParseRole(s string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STUDENT", "ESTUDIANTE":
		return RoleStudent, nil
	case "PARENT", "REPRESENTANTE", "PADRE", "MADRE":
		return RoleParent, nil
	case "TEACHER", "DOCENTE":
		return RoleTeacher, nil
	case "STAFF", "DECE":
		return RoleStaff, nil
	case "ADMIN", "ADMINISTRADOR":
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Profile is a platform user. The access code is the pseudonymous
// handle every case, message, and notification references; the full
// name never travels next to case data and is never returned by
// reporter-facing endpoints.
type Profile struct {
	ID         string                    `json:"id"`
	FullName   string                    `json:"-"`
	AccessCode string                    `json:"access_code"`
	Role       Role                      `json:"role"`
	Grade      string                    `json:"grade,omitempty"`
	Psych      classifier.Psychographics `json:"psychographics"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// PublicView strips everything a reporter-facing response may not
// carry. FullName is already excluded from JSON; this keeps the rule
// explicit for callers that re-marshal.
type PublicView struct {
	AccessCode string                    `json:"access_code"`
	Role       Role                      `json:"role"`
	Grade      string                    `json:"grade,omitempty"`
	Psych      classifier.Psychographics `json:"psychographics"`
}

// Public returns the reporter-facing projection of the profile.
func (p *Profile) Public() PublicView {
	return PublicView{
		AccessCode: p.AccessCode,
		Role:       p.Role,
		Grade:      p.Grade,
		Psych:      p.Psych,
	}
}
