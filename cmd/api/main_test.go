package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/cuentame-ec/cuentame/internal/api/router"
	appconfig "github.com/cuentame-ec/cuentame/internal/config"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestBuildRouterConfigInMemory(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{
		Port:           "8080",
		StaffJWTSecret: "test-secret",
	}

	routerCfg := buildRouterConfig(context.Background(), cfg, nil, nil, aws.Config{}, logger)
	if routerCfg.ProfilesHandler == nil || routerCfg.CasesHandler == nil || routerCfg.IntakeHandler == nil {
		t.Fatalf("expected core handlers to be wired")
	}
	if routerCfg.MessagesHandler != nil {
		t.Errorf("expected no messaging handler without postgres")
	}
	if routerCfg.NotifyHandler != nil {
		t.Errorf("expected no notify handler without postgres")
	}
	if routerCfg.EvidenceHandler != nil {
		t.Errorf("expected no evidence handler without a bucket")
	}

	h := router.New(routerCfg)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
}
