// Package main is the entry point for the Scholar Application Hub API.
//
// The service tracks a student's scholarship applications from first
// draft to final decision: requirement checklists, versioned essay
// drafts, uploaded documents, submission, and the award outcome.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: pure business logic without external dependencies
// - Application: use case orchestration (Commands/Queries)
// - Infrastructure: repository implementations, external services
// - Interface: HTTP handlers
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scholar-hub/scholar-application-hub/config"

	// Application layer
	"github.com/scholar-hub/scholar-application-hub/internal/application/command"
	"github.com/scholar-hub/scholar-application-hub/internal/application/query"

	// Infrastructure layer
	"github.com/scholar-hub/scholar-application-hub/internal/infrastructure/persistence/postgres"
	"github.com/scholar-hub/scholar-application-hub/internal/infrastructure/persistence/redis"
	"github.com/scholar-hub/scholar-application-hub/internal/infrastructure/storage"

	// Interface layer
	httpserver "github.com/scholar-hub/scholar-application-hub/internal/interface/http"

	// Packages
	"github.com/scholar-hub/scholar-application-hub/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(cfg.LoggerOptions())
	log.Info("starting Scholar Application Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DATABASE (PostgreSQL)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	var dbConn *postgres.Connection
	if cfg.Database.URL != "" {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	} else {
		dbConn, err = postgres.NewConnection(ctx, cfg.Database.Pool)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. MIGRATIONS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Database.AutoMigrate {
		log.Info("running database migrations")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("migrations completed")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. REDIS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis")
	redisCache, err := redis.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection")
		_ = redisCache.Close()
	}()
	log.Info("Redis connection established")

	appCache := redis.NewApplicationCache(redisCache)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. REPOSITORIES
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories")
	applicationRepo := postgres.NewApplicationRepository(dbConn)
	scholarshipRepo := postgres.NewScholarshipRepository(dbConn)
	userRepo := postgres.NewUserRepository(dbConn)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. DOCUMENT STORAGE
	// ─────────────────────────────────────────────────────────────────────────
	storageClient := storage.NewClient(cfg.Storage.Client)
	documentStore := storage.NewDocumentStore(storageClient)
	if !cfg.Storage.Disabled {
		if !storageClient.IsHealthy(ctx) {
			log.Warn("document storage is unreachable, uploads will fail until it recovers",
				logger.String("base_url", cfg.Storage.Client.BaseURL),
			)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer")

	deps := httpserver.Dependencies{
		StartApplication:  command.NewStartApplicationHandler(applicationRepo, scholarshipRepo, appCache, log),
		Checklist:         command.NewChecklistHandler(applicationRepo, appCache, log),
		SaveEssayDraft:    command.NewSaveEssayDraftHandler(applicationRepo, appCache, log),
		Documents:         command.NewDocumentHandler(applicationRepo, appCache, documentStore, log),
		Submit:            command.NewSubmitApplicationHandler(applicationRepo, appCache, log),
		Decisions:         command.NewDecisionHandler(applicationRepo, appCache, log),
		Details:           command.NewDetailsHandler(applicationRepo, appCache, log),
		DeleteApplication: command.NewDeleteApplicationHandler(applicationRepo, appCache, documentStore, log),
		Duplicate:         command.NewDuplicateApplicationHandler(applicationRepo, scholarshipRepo, appCache, log),
		CreateScholarship: command.NewCreateScholarshipHandler(scholarshipRepo, log),

		GetApplication:   query.NewGetApplicationHandler(applicationRepo, scholarshipRepo, appCache, log),
		ListApplications: query.NewListApplicationsHandler(applicationRepo, scholarshipRepo, log),
		GetStats:         query.NewGetStatsHandler(applicationRepo, appCache, log),
		GetUrgent:        query.NewGetUrgentHandler(applicationRepo, log),
		GetCalendar:      query.NewGetCalendarHandler(applicationRepo, log),
		ListScholarships: query.NewListScholarshipsHandler(scholarshipRepo, log),

		Users:    userRepo,
		Database: dbConn,
		Cache:    redisCache,
		Logger:   log,
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. SESSION CLEANUP
	// ─────────────────────────────────────────────────────────────────────────
	go sessionCleanupLoop(ctx, userRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	server := httpserver.NewServer(cfg.Server, deps)

	log.Info("starting HTTP server", logger.String("address", server.Address()))
	errCh := server.StartAsync()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Err(err))
	}

	log.Info("shutdown complete")
	return nil
}

// sessionCleanupLoop periodically deletes expired sessions.
func sessionCleanupLoop(ctx context.Context, users *postgres.UserRepository, log *logger.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			deleted, err := users.DeleteExpiredSessions(cleanupCtx, time.Now().UTC())
			cancel()
			if err != nil {
				log.Warn("session cleanup failed", logger.Err(err))
				continue
			}
			if deleted > 0 {
				log.Debug("expired sessions removed", logger.Int("count", int(deleted)))
			}
		}
	}
}
