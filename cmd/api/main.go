package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/meridianops/salesdesk/internal/api/router"
	"github.com/meridianops/salesdesk/internal/buscal"
	appconfig "github.com/meridianops/salesdesk/internal/config"
	"github.com/meridianops/salesdesk/internal/followup"
	"github.com/meridianops/salesdesk/internal/kpi"
	"github.com/meridianops/salesdesk/internal/leaderboard"
	"github.com/meridianops/salesdesk/internal/meetings"
	"github.com/meridianops/salesdesk/internal/notify"
	"github.com/meridianops/salesdesk/internal/observability/metrics"
	"github.com/meridianops/salesdesk/internal/people"
	"github.com/meridianops/salesdesk/pkg/logging"
)

// targetSource adapts the people targets table to the KPI report shape.
type targetSource struct {
	repo people.Repository
}

func (t targetSource) ListMonthlyTargets(ctx context.Context) ([]kpi.MonthlyTarget, error) {
	targets, err := t.repo.ListTargets(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]kpi.MonthlyTarget, 0, len(targets))
	for _, tg := range targets {
		out = append(out, kpi.MonthlyTarget{
			PersonID: tg.PersonID,
			Meetings: tg.MeetingsMonthly,
			Closes:   tg.ClosesMonthly,
		})
	}
	return out, nil
}

func main() {
	// Load .env in development; ignored when the file is absent
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salesdesk API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"timezone", cfg.BusinessTimezone,
	)

	cal, err := buscal.New(cfg.BusinessTimezone)
	if err != nil {
		logger.Error("invalid business timezone", "timezone", cfg.BusinessTimezone, "error", err)
		os.Exit(1)
	}

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer cache.Close()
	} else {
		logger.Warn("REDIS_ADDR not set, leaderboard caching disabled")
	}

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	followUpMetrics := metrics.NewFollowUpMetrics(registry)
	leaderboardMetrics := metrics.NewLeaderboardMetrics(registry)
	reminderMetrics := metrics.NewReminderMetrics(registry)

	// Email transport
	var sender notify.EmailSender
	if sgSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sgSender != nil {
		sender = sgSender
	} else {
		logger.Warn("SENDGRID_API_KEY not set, reminder emails disabled")
		sender = notify.NewStubEmailSender(logger)
	}

	// Repositories
	followUpRepo := followup.NewPostgresRepository(pool)
	meetingsRepo := meetings.NewPostgresRepository(db)
	kpiRepo := kpi.NewPostgresRepository(db)
	peopleRepo := people.NewPostgresRepository(db)

	// Services
	followUpSvc := followup.NewService(followUpRepo, cal, nil, cfg.FollowUpInterval, followUpMetrics, logger)
	kpiSvc := kpi.NewService(kpiRepo, meetingsRepo, targetSource{repo: peopleRepo}, cal, nil)
	boardSvc := leaderboard.NewService(meetingsRepo, peopleRepo, cache, cfg.LeaderboardTTL, cal, nil, leaderboardMetrics, logger)
	digestSvc := notify.NewService(followUpSvc, peopleRepo, sender, cal, nil, reminderMetrics, logger)

	// Handlers
	onMeetingWrite := func(r *http.Request) { boardSvc.Invalidate(r.Context()) }
	routerCfg := &router.Config{
		Logger:             logger,
		FollowUpHandler:    followup.NewHandler(followUpSvc, logger),
		MeetingsHandler:    meetings.NewHandler(meetingsRepo, nil, cfg.FollowUpInterval, onMeetingWrite, logger),
		KPIHandler:         kpi.NewHandler(kpiSvc, logger),
		PeopleHandler:      people.NewHandler(peopleRepo, cal, nil, logger),
		LeaderboardHandler: leaderboard.NewHandler(boardSvc, logger),
		RemindersHandler:   notify.NewHandler(digestSvc, logger),
		StaffJWTSecret:     cfg.StaffJWTSecret,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
