package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// ReporterAuth validates the X-Access-Code header against the profile
// store and puts the pseudonymous code and role on the context. The
// code is the reporter's only credential; no name ever reaches the
// request context.
func ReporterAuth(repo profiles.Repository, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := strings.TrimSpace(r.Header.Get("X-Access-Code"))
			if code == "" {
				http.Error(w, "missing access code", http.StatusUnauthorized)
				return
			}

			p, err := repo.GetByAccessCode(r.Context(), code)
			if err != nil {
				if errors.Is(err, profiles.ErrProfileNotFound) {
					http.Error(w, "invalid access code", http.StatusUnauthorized)
					return
				}
				logger.Error("reporter auth lookup failed", "error", err)
				http.Error(w, "authentication unavailable", http.StatusInternalServerError)
				return
			}

			ctx := profiles.WithReporterCode(r.Context(), p.AccessCode)
			ctx = profiles.WithReporterRole(ctx, p.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
