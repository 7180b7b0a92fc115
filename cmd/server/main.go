package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"user_registry/internal/app/di"
	"user_registry/internal/app/router"
	"user_registry/internal/feature/users/adapters"
	usershandler "user_registry/internal/feature/users/transport/handler"
	"user_registry/internal/feature/users/usecase"
	"user_registry/internal/platform/config"
	"user_registry/internal/platform/csrf"
	"user_registry/internal/platform/db"
	platformhandler "user_registry/internal/platform/http/handler"
	"user_registry/internal/platform/logging"
	platformredis "user_registry/internal/platform/redis"
	"user_registry/internal/platform/session"
	"user_registry/internal/platform/view"
)

const (
	connectTimeout  = 60 * time.Second
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// logger
	slog.SetDefault(logging.New(os.Stdout, cfg.LogLevel))

	// db
	gdb, err := db.ConnectWithRetry(cfg.DatabaseURL, connectTimeout, db.Open)
	if err != nil {
		slog.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if cfg.RunMigrations {
		if err := migrate(gdb); err != nil {
			slog.Error("failed to migrate", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable. Flash messages are stored in the database.")
		rdb = nil
	}
	if rdb != nil {
		defer closeRedis(rdb)
	}

	// Flash store
	flashes := di.NewFlashStore(rdb, gdb, cfg.FlashTTL)
	if sqlFlashes, ok := flashes.(*session.FlashGorm); ok {
		go sqlFlashes.Sweep(ctx, sweepInterval, cfg.FlashTTL)
	}

	// Repository / Usecase / Handler
	userRepo := adapters.NewUserRepository(gdb)
	userUC := usecase.NewUserUsecase(userRepo)
	userH := usershandler.NewUserHandler(userUC, flashes)
	healthH := platformhandler.NewHealthHandler(sqlDB)

	renderer, err := view.New()
	if err != nil {
		slog.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// ルータ生成
	r := router.NewRouter(router.Options{
		HTML:         renderer,
		CSRF:         csrf.NewIssuer(cfg.SecretKey, cfg.CSRFTTL),
		CookieSecure: cfg.CookieSecure,
	}, userH, healthH)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(cancel, srv)
}

func migrate(gdb *gorm.DB) error {
	m, err := db.NewMigrator(gdb)
	if err != nil {
		return err
	}
	return m.Up(context.Background())
}

func closeRedis(rdb *redisv9.Client) {
	if err := rdb.Close(); err != nil {
		slog.Error("failed to close Redis client", "error", err)
	}
}

// waitForShutdown はシグナルを受け取ったらバックグラウンド処理を止め、処理中のリクエストを待って終了します。
func waitForShutdown(cancel context.CancelFunc, srv *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
}
