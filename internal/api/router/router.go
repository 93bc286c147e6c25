package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/meridianops/salesdesk/internal/followup"
	httpmiddleware "github.com/meridianops/salesdesk/internal/http/middleware"
	"github.com/meridianops/salesdesk/internal/kpi"
	"github.com/meridianops/salesdesk/internal/leaderboard"
	"github.com/meridianops/salesdesk/internal/meetings"
	"github.com/meridianops/salesdesk/internal/notify"
	"github.com/meridianops/salesdesk/internal/people"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	FollowUpHandler    *followup.Handler
	MeetingsHandler    *meetings.Handler
	KPIHandler         *kpi.Handler
	PeopleHandler      *people.Handler
	LeaderboardHandler *leaderboard.Handler
	RemindersHandler   *notify.Handler
	StaffJWTSecret     string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.RateLimitRPS > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Staff endpoints (everything behind the staff JWT)
	r.Group(func(staff chi.Router) {
		staff.Use(httpmiddleware.StaffJWT(cfg.StaffJWTSecret))

		if cfg.FollowUpHandler != nil {
			staff.Route("/followups", func(r chi.Router) {
				r.Get("/", cfg.FollowUpHandler.List)
				r.Route("/{leadID}", func(r chi.Router) {
					r.Get("/", cfg.FollowUpHandler.Get)
					r.Post("/claim", cfg.FollowUpHandler.Claim)
					r.Post("/follow-up", cfg.FollowUpHandler.MarkFollowedUp)
					r.With(httpmiddleware.RequireAdmin).Post("/reassign", cfg.FollowUpHandler.Reassign)
				})
			})
		}

		if cfg.MeetingsHandler != nil {
			staff.Route("/meetings", func(r chi.Router) {
				r.Post("/", cfg.MeetingsHandler.Log)
				r.Get("/", cfg.MeetingsHandler.List)
				r.Route("/{meetingID}", func(r chi.Router) {
					r.Get("/", cfg.MeetingsHandler.Get)
					r.Patch("/outcome", cfg.MeetingsHandler.UpdateOutcome)
					r.Post("/close", cfg.MeetingsHandler.Close)
					r.Delete("/", cfg.MeetingsHandler.Discard)
				})
			})
		}

		if cfg.KPIHandler != nil {
			staff.Route("/kpi", func(r chi.Router) {
				r.Put("/entries", cfg.KPIHandler.Upsert)
				r.Get("/weekly", cfg.KPIHandler.Weekly)
				r.Get("/monthly", cfg.KPIHandler.Monthly)
			})
		}

		if cfg.PeopleHandler != nil {
			staff.Route("/people", func(r chi.Router) {
				r.Get("/", cfg.PeopleHandler.List)
				r.Get("/{personID}", cfg.PeopleHandler.Get)
				r.Get("/{personID}/target", cfg.PeopleHandler.GetTarget)
			})
		}

		if cfg.LeaderboardHandler != nil {
			staff.Get("/leaderboard", cfg.LeaderboardHandler.Current)
		}

		// Admin routes (directory writes, quotas, reminder trigger)
		staff.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.RequireAdmin)
			if cfg.PeopleHandler != nil {
				admin.Post("/people", cfg.PeopleHandler.Create)
				admin.Post("/people/{personID}/deactivate", cfg.PeopleHandler.Deactivate)
				admin.Put("/targets/{personID}", cfg.PeopleHandler.UpsertTarget)
			}
			if cfg.RemindersHandler != nil {
				admin.Post("/reminders/run", cfg.RemindersHandler.RunDigest)
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
