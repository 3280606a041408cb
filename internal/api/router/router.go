package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cuentame-ec/cuentame/internal/cases"
	"github.com/cuentame-ec/cuentame/internal/evidence"
	httpmiddleware "github.com/cuentame-ec/cuentame/internal/http/middleware"
	"github.com/cuentame-ec/cuentame/internal/intake"
	"github.com/cuentame-ec/cuentame/internal/messaging"
	"github.com/cuentame-ec/cuentame/internal/notify"
	"github.com/cuentame-ec/cuentame/internal/profiles"
	"github.com/cuentame-ec/cuentame/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	ProfilesHandler *profiles.Handler
	ProfilesRepo    profiles.Repository
	IntakeHandler   *intake.Handler
	CasesHandler    *cases.Handler
	MessagesHandler *messaging.Handler
	NotifyHandler   *notify.Handler
	EvidenceHandler *evidence.Handler

	StaffJWTSecret     string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Registration throttle; zero values fall back to 1 req/s, burst 5.
	RegistrationRateLimit float64
	RegistrationRateBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ProfilesHandler != nil {
			// Registration is rate limited: it mints access codes.
			rate, burst := cfg.RegistrationRateLimit, cfg.RegistrationRateBurst
			if rate <= 0 {
				rate = 1
			}
			if burst <= 0 {
				burst = 5
			}
			public.With(httpmiddleware.RateLimit(rate, burst)).Post("/profiles", cfg.ProfilesHandler.Register)
		}
	})

	// Reporter endpoints, authenticated by pseudonymous access code.
	if cfg.ProfilesRepo != nil {
		r.Route("/me", func(me chi.Router) {
			me.Use(httpmiddleware.ReporterAuth(cfg.ProfilesRepo, cfg.Logger))

			if cfg.ProfilesHandler != nil {
				me.Get("/profile", cfg.ProfilesHandler.GetMyProfile)
			}
			if cfg.IntakeHandler != nil {
				me.Route("/report", func(report chi.Router) {
					report.Post("/session", cfg.IntakeHandler.StartSession)
					report.Post("/messages", cfg.IntakeHandler.PostMessage)
					report.Post("/finalize", cfg.IntakeHandler.Finalize)
				})
			}
			if cfg.CasesHandler != nil {
				me.Get("/cases", cfg.CasesHandler.ListMyCases)
			}
			if cfg.MessagesHandler != nil {
				me.Get("/messages", cfg.MessagesHandler.ReporterInbox)
				me.Route("/cases/{caseID}/messages", func(msg chi.Router) {
					msg.Get("/", cfg.MessagesHandler.ReporterListMessages)
					msg.Post("/", cfg.MessagesHandler.ReporterPostMessage)
				})
			}
			if cfg.EvidenceHandler != nil {
				me.Route("/cases/{caseID}/evidence", func(ev chi.Router) {
					ev.Get("/", cfg.EvidenceHandler.ReporterList)
					ev.Post("/", cfg.EvidenceHandler.ReporterUpload)
				})
			}
			if cfg.NotifyHandler != nil {
				me.Get("/notifications", cfg.NotifyHandler.List)
				me.Post("/notifications/{notificationID}/read", cfg.NotifyHandler.MarkRead)
			}
		})
	}

	// Staff dashboard routes (protected by JWT)
	if cfg.StaffJWTSecret != "" {
		r.Route("/staff", func(staff chi.Router) {
			staff.Use(httpmiddleware.StaffJWT(cfg.StaffJWTSecret))

			if cfg.CasesHandler != nil {
				staff.Route("/cases", func(c chi.Router) {
					c.Get("/", cfg.CasesHandler.ListCases)
					c.Get("/stats", cfg.CasesHandler.GetStats)
					c.Route("/{caseID}", func(one chi.Router) {
						one.Get("/", cfg.CasesHandler.GetCase)
						one.Post("/interventions", cfg.CasesHandler.AddIntervention)
						one.Patch("/status", cfg.CasesHandler.UpdateStatus)
						one.Post("/close", cfg.CasesHandler.CloseCase)
						if cfg.MessagesHandler != nil {
							one.Get("/messages", cfg.MessagesHandler.StaffListMessages)
							one.Post("/messages", cfg.MessagesHandler.StaffPostMessage)
						}
						if cfg.EvidenceHandler != nil {
							one.Get("/evidence", cfg.EvidenceHandler.StaffList)
							one.Post("/evidence", cfg.EvidenceHandler.StaffUpload)
						}
					})
				})
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
