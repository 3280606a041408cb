package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/cuentame-ec/cuentame/cmd/mainconfig"
	"github.com/cuentame-ec/cuentame/internal/api/router"
	"github.com/cuentame-ec/cuentame/internal/app/bootstrap"
	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/classifier"
	appconfig "github.com/cuentame-ec/cuentame/internal/config"
	"github.com/cuentame-ec/cuentame/internal/evidence"
	"github.com/cuentame-ec/cuentame/internal/intake"
	"github.com/cuentame-ec/cuentame/internal/messaging"
	"github.com/cuentame-ec/cuentame/internal/notify"
	"github.com/cuentame-ec/cuentame/internal/observability/metrics"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting cuentame API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}

	routerCfg := buildRouterConfig(ctx, cfg, pool, redisClient, awsCfg, logger)
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// connectPostgresPool returns a pgx pool or nil when the URL is empty or
// the database is unreachable. The API degrades to in-memory stores so
// local development works without Postgres.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if databaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		return nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("postgres not reachable, using in-memory stores", "error", err)
		pool.Close()
		return nil
	}

	logger.Info("postgres connected")
	return pool
}

// buildRouterConfig wires every handler. Messaging, notifications and
// evidence metadata need Postgres; without it those routes are omitted.
func buildRouterConfig(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, redisClient *redis.Client, awsCfg aws.Config, logger *logging.Logger) *router.Config {
	var (
		caseRepo    cases.Repository
		profileRepo profiles.Repository
	)
	if pool != nil {
		caseRepo = cases.NewPostgresRepository(pool)
		profileRepo = profiles.NewPostgresRepository(pool)
	} else {
		caseRepo = cases.NewInMemoryRepository()
		profileRepo = profiles.NewInMemoryRepository()
	}

	llmClient := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	// Gemini ignores the request model id (it is fixed at client build
	// time), so the Bedrock id is the one that must flow through.
	llmModel := cfg.BedrockModelID
	if llmModel == "" {
		llmModel = cfg.GeminiModelID
	}
	classifierSvc := classifier.NewService(llmClient, llmModel, cfg.ClassifierTimeout, logger)
	assistant := intake.NewAssistant(llmClient, llmModel, cfg.ChatTimeout, logger.Logger)

	var notifier cases.Notifier
	var notifyHandler *notify.Handler
	if pool != nil {
		notifyStore := notify.NewPostgresStore(pool)
		emailSender := bootstrap.BuildEmailSender(cfg, awsCfg, logger)
		notifySvc := notify.NewService(notifyStore, emailSender, cfg.NotifyStaffEmails, logger)
		notifier = notifySvc
		notifyHandler = notify.NewHandler(notifyStore, logger)
	}

	var drafts *intake.DraftStore
	if redisClient != nil {
		drafts = intake.NewDraftStore(redisClient, cfg.DraftTTL, nil)
	}

	profileSvc := profiles.NewService(profileRepo, logger.Logger)
	manager := intake.NewManager(classifierSvc, caseRepo, profileSvc, notifier, drafts, logger.Logger)
	lifecycle := cases.NewLifecycle(caseRepo, notifier, logger.Logger)

	var messagesHandler *messaging.Handler
	if pool != nil {
		threadMetrics := metrics.NewThreadMetrics(prometheus.DefaultRegisterer)
		messagesHandler = messaging.NewHandler(messaging.NewStore(pool), caseRepo, threadMetrics, logger)
	}

	var evidenceHandler *evidence.Handler
	if cfg.EvidenceBucket != "" {
		var meta evidence.MetadataStore
		if pool != nil {
			meta = evidence.NewPostgresMetadataStore(pool)
		} else {
			meta = evidence.NewInMemoryMetadataStore()
		}
		store := evidence.NewStore(s3.NewFromConfig(awsCfg), cfg.EvidenceBucket, meta, logger.Logger)
		evidenceHandler = evidence.NewHandler(store, caseRepo, logger)
	}

	return &router.Config{
		Logger:          logger,
		ProfilesHandler: profiles.NewHandler(profileSvc, profileRepo, logger),
		ProfilesRepo:    profileRepo,
		IntakeHandler:   intake.NewHandler(manager, assistant, logger),
		CasesHandler:    cases.NewHandler(caseRepo, lifecycle, logger),
		MessagesHandler: messagesHandler,
		NotifyHandler:   notifyHandler,
		EvidenceHandler: evidenceHandler,

		StaffJWTSecret:     cfg.StaffJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,

		RegistrationRateLimit: cfg.RegistrationRateLimit,
		RegistrationRateBurst: cfg.RegistrationRateBurst,
	}
}
