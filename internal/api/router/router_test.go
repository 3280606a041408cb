package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	logger := logging.Default()
	profileRepo := profiles.NewInMemoryRepository()
	err := profileRepo.Create(context.Background(), &profiles.Profile{
		ID:         "p1",
		AccessCode: "EST-A1B2C3",
		Role:       profiles.RoleStudent,
	})
	if err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	caseRepo := cases.NewInMemoryRepository()
	lifecycle := cases.NewLifecycle(caseRepo, nil, nil)

	return &Config{
		Logger:          logger,
		ProfilesRepo:    profileRepo,
		ProfilesHandler: profiles.NewHandler(profiles.NewService(profileRepo, nil), profileRepo, logger),
		CasesHandler:    cases.NewHandler(caseRepo, lifecycle, logger),
		StaffJWTSecret:  "test-secret",
	}
}

func staffToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "dece-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestHealthEndpoint(t *testing.T) {
	h := New(testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestStaffRoutesRequireJWT(t *testing.T) {
	h := New(testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/staff/cases/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/staff/cases/", nil)
	req.Header.Set("Authorization", "Bearer "+staffToken(t, "test-secret"))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", w.Code)
	}
}

func TestReporterRoutesRequireAccessCode(t *testing.T) {
	h := New(testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/me/cases", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without code, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/me/cases", nil)
	req.Header.Set("X-Access-Code", "EST-A1B2C3")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with valid code, got %d", w.Code)
	}
}

func TestReporterProfileHidesFullName(t *testing.T) {
	h := New(testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/me/profile", nil)
	req.Header.Set("X-Access-Code", "EST-A1B2C3")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body := w.Body.String(); len(body) == 0 {
		t.Fatal("empty body")
	}
}
