package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/member-registry/internal/api/http"
	"github.com/spec-kit/member-registry/internal/api/http/handlers"
	"github.com/spec-kit/member-registry/internal/auth"
	"github.com/spec-kit/member-registry/internal/config"
	"github.com/spec-kit/member-registry/internal/events"
	"github.com/spec-kit/member-registry/internal/observability"
	"github.com/spec-kit/member-registry/internal/persistence"
	"github.com/spec-kit/member-registry/internal/repository"
	"github.com/spec-kit/member-registry/internal/service"
	"github.com/spec-kit/member-registry/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	// The signing key lives for exactly one process run. Failing to obtain
	// one aborts startup; it is never recovered at runtime.
	signingKey, err := auth.GenerateSigningKey()
	if err != nil {
		logger.Fatal("failed to generate signing key", zap.Error(err))
	}
	tokenManager := auth.NewTokenManager(signingKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	memberCache := repository.NewMemberCache(redis.ClientHandle(), cfg.Auth.MemberCacheTTL())

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		TokenMgr:   tokenManager,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	memberService := service.NewMemberService(memberRepo, memberCache, dispatcher, logger)
	registrationService := service.NewMemberRegistrationService(memberRepo, memberCache, dispatcher, logger)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewAuthMiddleware(tokenManager, userRepo, logger, metrics)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, logger),
		Users:          handlers.NewUsersHandler(authService),
		Members:        handlers.NewMembersHandler(memberService, registrationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
