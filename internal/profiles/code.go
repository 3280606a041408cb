package profiles

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// rolePrefix maps a role to the short tag shown in access codes so
// staff can tell reporter kinds apart at a glance.
func rolePrefix(role Role) string {
	switch role {
	case RoleStudent:
		return "EST"
	case RoleParent:
		return "REP"
	case RoleTeacher:
		return "DOC"
	case RoleStaff:
		return "DEC"
	case RoleAdmin:
		return "ADM"
	default:
		return "USR"
	}
}

// GenerateAccessCode produces a pseudonymous code like EST-7F3A9C.
// Six hex characters give ~16M codes per role, enough for a school
// population with collision retries at the repository layer.
func GenerateAccessCode(role Role) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("profiles: generate code: %w", err)
	}
	return rolePrefix(role) + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
