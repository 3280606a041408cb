package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "dece-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestStaffJWTAcceptsValidToken(t *testing.T) {
	mw := StaffJWT("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/staff/cases", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret"))
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestStaffJWTRejectsMissingHeader(t *testing.T) {
	mw := StaffJWT("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/staff/cases", nil)
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestStaffJWTRejectsWrongSecret(t *testing.T) {
	mw := StaffJWT("secret")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/staff/cases", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other"))
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestStaffJWTDisabledWithoutSecret(t *testing.T) {
	mw := StaffJWT("")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/staff/cases", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret"))
	w := httptest.NewRecorder()
	mw.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
