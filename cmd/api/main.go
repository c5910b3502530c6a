// @title Program Scheduler API
// @version 1.0
// @description Multi-track conference program scheduling: event days, venues, sessions, presentations and conflict detection.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"programscheduler/config"
	_ "programscheduler/docs"
	"programscheduler/internal/adapters/auth"
	"programscheduler/internal/adapters/cache"
	"programscheduler/internal/adapters/email"
	"programscheduler/internal/adapters/metrics"
	"programscheduler/internal/adapters/sessionize"
	httpdelivery "programscheduler/internal/delivery/http"
	"programscheduler/internal/delivery/http/controllers"
	"programscheduler/internal/delivery/http/middleware"
	"programscheduler/internal/domain"
	"programscheduler/internal/repository/postgres"
	"programscheduler/internal/services"
	"programscheduler/migrations"
)

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return err
	}
	if err := migrations.Apply(ctx, db); err != nil {
		return err
	}

	scheduleCache, closeCache := newScheduleCache(ctx, cfg, logger)
	defer closeCache()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	schedulerMetrics := metrics.NewSchedulerMetrics(registry)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	eventRepo := postgres.NewEventRepository(db)
	dayRepo := postgres.NewEventDayRepository(db)
	venueRepo := postgres.NewVenueRepository(db)
	categoryRepo := postgres.NewCategoryRepository(db)
	sessionRepo := postgres.NewProgramSessionRepository(db)
	presentationRepo := postgres.NewPresentationRepository(db)
	participantRepo := postgres.NewParticipantRepository(db)
	sponsorRepo := postgres.NewSponsorRepository(db)

	validator := services.NewReferenceValidator(venueRepo, dayRepo, categoryRepo, participantRepo, sponsorRepo)
	notifier := services.NewNotificationService(participantRepo, presentationRepo, mailer, renderer, logger)
	scheduleSvc := services.NewScheduleService(eventRepo, dayRepo, venueRepo, categoryRepo, sessionRepo,
		scheduleCache, schedulerMetrics, logger, cfg.RequestTimeout)
	programSvc := services.NewProgramService(eventRepo, dayRepo, venueRepo, sessionRepo, presentationRepo,
		validator, notifier, scheduleCache, schedulerMetrics, logger, cfg.RequestTimeout)
	fetcher := sessionize.NewHTTPFetcher(&http.Client{Timeout: 15 * time.Second}, cfg.SessionizeURL)
	// Imports book many sessions; give them more room than a single request.
	importSvc := services.NewImportService(eventRepo, dayRepo, venueRepo, sessionRepo, fetcher,
		scheduleCache, schedulerMetrics, logger, 6*cfg.RequestTimeout)

	router := httpdelivery.NewRouter(httpdelivery.RouterDeps{
		Schedule: controllers.NewScheduleController(logger, scheduleSvc),
		Program:  controllers.NewProgramController(logger, programSvc),
		Import:   controllers.NewImportController(logger, importSvc),
		Verifier: auth.NewJWT(cfg.JWTSecret),
		DB:       db,
		Metrics:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Logger:   logger,
	})
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSOrigins, router))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newScheduleCache connects to Redis when REDIS_URL is set. Without it, or
// when Redis is unreachable at startup, schedules are built on every read.
func newScheduleCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.ScheduleCache, func()) {
	if cfg.RedisURL == "" {
		return cache.Nop{}, func() {}
	}
	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("schedule cache disabled", "err", err)
		return cache.Nop{}, func() {}
	}
	return cache.NewRedisScheduleCache(client, cfg.ScheduleCacheTTL), func() { _ = client.Close() }
}
