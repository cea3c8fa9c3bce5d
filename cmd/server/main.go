package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reward-admin/internal/config"
	"reward-admin/internal/database"
	"reward-admin/internal/logger"
	"reward-admin/internal/scheduler"
	"reward-admin/internal/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBPool, zl)
	if err != nil {
		return err
	}
	if err := database.EnsureSuperAdmin(db, cfg.AdminUsername, cfg.AdminPassword, zl); err != nil {
		return err
	}
	if cfg.SeedFile != "" {
		seed, err := database.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return err
		}
		if err := database.ApplySeed(db, seed, zl); err != nil {
			return err
		}
	}

	app := server.New(cfg, db, zl)
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Recalc.Enabled {
		sched, err := scheduler.New(app.Recalc, cfg.Recalc.Cron, zl)
		if err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
