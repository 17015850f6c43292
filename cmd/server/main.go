package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/database"
	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/logger"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
	"github.com/iliyamo/movie-catalog/internal/service"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; the real environment wins
	cfg := config.Load()

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	hasher, err := utils.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		zl.Fatal("invalid BCRYPT_COST", zap.Error(err))
	}

	db, err := database.Open(cfg)
	if err != nil {
		zl.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.UserEventPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewRabbitPublisher(cfg.RabbitURL, zl)
		go func() {
			consumer := queue.NewUserEventConsumer(cfg.RabbitURL, cfg.EventLogPath, zl)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("user-event consumer stopped", zap.Error(err))
			}
		}()
	}

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil && rlCfg.Enabled {
		zl.Warn("redis unreachable, rate limiting disabled")
	}
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	router.Setup(e, zl, middleware.NewTokenBucket(rlCfg, rdb, zl))
	router.RegisterRoutes(e, db)
	router.RegisterCatalog(e, handler.NewCatalogHandler(
		repository.NewMovieRepo(db),
		repository.NewDirectorRepo(db),
		repository.NewRatingRepo(db),
		cfg.QueryTimeout,
	))
	router.RegisterUsers(e, handler.NewUserHandler(
		repository.NewUserRepo(db, hasher),
		events,
		zl,
		cfg.QueryTimeout,
	))

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown", zap.Error(err))
	}
}
