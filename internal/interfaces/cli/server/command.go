// Package server implements the CLI command that boots the HTTP API and
// the subscription lifecycle scheduler.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	tierUsecases "stockpilot/internal/application/tier/usecases"
	"stockpilot/internal/domain/notification"
	"stockpilot/internal/infrastructure/auth"
	"stockpilot/internal/infrastructure/cache"
	"stockpilot/internal/infrastructure/config"
	"stockpilot/internal/infrastructure/database"
	"stockpilot/internal/infrastructure/email"
	"stockpilot/internal/infrastructure/migration"
	"stockpilot/internal/infrastructure/persistence/seeds"
	"stockpilot/internal/infrastructure/repository"
	"stockpilot/internal/infrastructure/scheduler"
	httpRouter "stockpilot/internal/interfaces/http"
	"stockpilot/internal/interfaces/http/handlers"
	"stockpilot/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
	seedCatalog bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the StockPilot HTTP server with the tier lifecycle scheduler.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Automatically run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&seedCatalog, "seed-catalog", false, "Seed the feature catalog from the embedded defaults on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"scheduler_enabled", cfg.Scheduler.Enabled,
	)

	gin.SetMode(mapEnvToGinMode(env))
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db := database.Get()

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration is enabled in production environment")
		}
		manager := migration.NewManager(env)
		if err := manager.Migrate(db, migration.AutoMigrateModels()...); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	accountRepo := repository.NewAccountRepository(db, log)
	definitionRepo := repository.NewFeatureDefinitionRepository(db, log)
	usageRepo := repository.NewUsageRepository(db, log)
	historyRepo := repository.NewTierHistoryRepository(db, log)
	auditSink := repository.NewAuditLogRepository(db, log)

	if seedCatalog {
		if err := seeds.SeedFeatureCatalog(cmd.Context(), definitionRepo, log); err != nil {
			return fmt.Errorf("failed to seed feature catalog: %w", err)
		}
	}

	// The catalog changes rarely, so reads go through redis when available.
	var catalog tierUsecases.FeatureCatalog = definitionRepo
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		catalog = cache.NewFeatureCatalogCache(redisClient, definitionRepo, log)
		log.Infow("feature catalog cache enabled", "addr", cfg.Redis.GetAddr())
	}

	var dispatcher notification.Dispatcher
	if cfg.Email.Enabled {
		dispatcher = email.NewSMTPDispatcher(cfg.Email, log)
	} else {
		dispatcher = email.NewNoopDispatcher(log)
	}

	resolveStatusUC := tierUsecases.NewResolveTierStatusUseCase(accountRepo, catalog, usageRepo, log)
	validateAccessUC := tierUsecases.NewValidateFeatureAccessUseCase(resolveStatusUC, auditSink, log)
	checkUsageUC := tierUsecases.NewCheckFeatureUsageUseCase(resolveStatusUC, dispatcher, log)
	trackUsageUC := tierUsecases.NewTrackUsageUseCase(accountRepo, catalog, usageRepo, auditSink, log)
	usageSummaryUC := tierUsecases.NewGetUsageSummaryUseCase(accountRepo, catalog, usageRepo, log)
	applyPlanChangeUC := tierUsecases.NewApplyPlanChangeUseCase(accountRepo, historyRepo, dispatcher, auditSink, log)
	downgradeUC := tierUsecases.NewDowngradeExpiredUseCase(accountRepo, historyRepo, dispatcher, auditSink, log, cfg.Scheduler.BatchSize)
	notifyUC := tierUsecases.NewNotifyExpiringUseCase(accountRepo, dispatcher, auditSink, log)

	var lifecycle *scheduler.LifecycleScheduler
	if cfg.Scheduler.Enabled {
		lifecycle = scheduler.NewLifecycleScheduler(downgradeUC, notifyUC, &cfg.Scheduler, log)
		lifecycle.Start(context.Background())
		defer lifecycle.Stop()
	}

	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	tierHandler := handlers.NewTierHandler(
		resolveStatusUC,
		validateAccessUC,
		checkUsageUC,
		trackUsageUC,
		usageSummaryUC,
		historyRepo,
		log,
	)
	adminHandler := handlers.NewAdminHandler(
		applyPlanChangeUC,
		downgradeUC,
		notifyUC,
		historyRepo,
		log,
	)

	router := httpRouter.NewRouter(tierHandler, adminHandler, jwtService, cfg, log)
	router.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	log.Infow("server exited gracefully")
	return nil
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}
