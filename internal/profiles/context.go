package profiles

import "context"

type contextKey string

const (
	reporterCodeKey contextKey = "reporter_code"
	reporterRoleKey contextKey = "reporter_role"
)

// WithReporterCode stores the reporter's pseudonymous code on the
// context. Set by the session middleware after code validation.
func WithReporterCode(ctx context.Context, code string) context.Context {
	return context.WithValue(ctx, reporterCodeKey, code)
}

// ReporterCodeFromContext extracts the reporter code, if present.
func ReporterCodeFromContext(ctx context.Context) (string, bool) {
	code, ok := ctx.Value(reporterCodeKey).(string)
	return code, ok && code != ""
}

// WithReporterRole stores the reporter's role on the context.
func WithReporterRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, reporterRoleKey, role)
}

// ReporterRoleFromContext extracts the reporter role, if present.
func ReporterRoleFromContext(ctx context.Context) (Role, bool) {
	role, ok := ctx.Value(reporterRoleKey).(Role)
	return role, ok && role != ""
}
