package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liftsplit/liftsplit/internal/app/migrate"
	httpx "github.com/liftsplit/liftsplit/internal/http"
	"github.com/liftsplit/liftsplit/internal/repository/postgres"
	"github.com/liftsplit/liftsplit/internal/service/auth"
	"github.com/liftsplit/liftsplit/internal/service/split"
	"github.com/liftsplit/liftsplit/internal/service/workout"
	"github.com/liftsplit/liftsplit/internal/validation"
	"github.com/liftsplit/liftsplit/pkg/config"
	jwtpkg "github.com/liftsplit/liftsplit/pkg/jwt"
	"github.com/liftsplit/liftsplit/pkg/logger"
)

func main() {
	cfg, err := config.LoadAPIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New("api", config.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	runner, err := migrate.New(pool, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to configure migrations", "error", err)
		os.Exit(1)
	}
	if err := runner.Ping(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}
	if cfg.MigrateOnStart {
		if err := runner.Ensure(ctx); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
	}

	signer, err := jwtpkg.NewSigner(cfg.SecretKey, cfg.Algorithm, jwtpkg.WithIssuer(cfg.TokenIssuer))
	if err != nil {
		log.Error("failed to configure token signer", "error", err)
		os.Exit(1)
	}
	validator, err := validation.NewValidator()
	if err != nil {
		log.Error("failed to load request schemas", "error", err)
		os.Exit(1)
	}

	repo := postgres.New(pool)
	authSvc := auth.New(repo, signer, cfg.AccessTokenTTL(), log)
	splitSvc := split.New(repo, log)
	workoutSvc := workout.New(repo, log)

	router := httpx.NewRouter(log, authSvc, splitSvc, workoutSvc, validator, cfg.AllowedOrigins, pool.Ping)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("api server starting", "addr", cfg.Addr, "env", cfg.Environment)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		log.Info("api server stopped")
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}
}
