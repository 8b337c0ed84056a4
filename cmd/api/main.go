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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/clinica-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/clinica-scheduler/internal/db"
	"github.com/BruksfildServices01/clinica-scheduler/internal/logger"
	"github.com/BruksfildServices01/clinica-scheduler/internal/routes"
	"github.com/BruksfildServices01/clinica-scheduler/internal/usecase/reminder"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsProduction())

	// os.Exit só depois que os defers de run drenaram a auditoria
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	db, err := dbpkg.NewDB(cfg)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}

	infra, err := routes.NewInfra(db, cfg, log)
	if err != nil {
		return fmt.Errorf("build infrastructure: %w", err)
	}
	defer infra.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	if cfg.Storage.Driver == "local" {
		r.Static("/uploads", cfg.Storage.UploadsPath)
	}

	routes.RegisterRoutes(r, db, infra, cfg, log)

	// ======================================================
	// ⏰ LEMBRETES
	// ======================================================
	if cfg.Reminders.Enabled {
		job := reminder.NewJob(infra.Repo, infra.Notifier, log)
		scheduler, err := reminder.Start(cfg.Reminders.Cron, job)
		if err != nil {
			return fmt.Errorf("schedule reminders: %w", err)
		}
		defer scheduler.Stop()
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	return serve(srv, quit, log)
}

// serve roda o servidor até um sinal em quit ou uma falha do listener;
// nos dois casos volta ao chamador para os defers rodarem.
func serve(srv *http.Server, quit <-chan os.Signal, log *logrus.Logger) error {
	errCh := make(chan error, 1)

	go func() {
		log.WithField("addr", srv.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil

	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
