package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/HardPulse/mazpan/internal/api"
	"github.com/HardPulse/mazpan/internal/backup"
	"github.com/HardPulse/mazpan/internal/bootstrap"
	"github.com/HardPulse/mazpan/internal/job"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	bootTime := time.Now().UTC()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger
	cfg := a.cfg

	services, _, err := a.services(ctx, bootTime)
	if err != nil {
		return err
	}

	if seed := cfg.Bootstrap.Admin; seed.Username != "" && seed.Password != "" {
		admin, created, err := services.Auth.EnsureAdmin(ctx, seed.Username, seed.Password)
		if err != nil {
			return err
		}
		if created {
			logger.Info("default admin created", "username", admin.Username, "user_id", admin.ID)
		}
	}

	scheduler := job.NewScheduler(logger, job.DefaultJobTimeout)
	if spec := cfg.Backup.Schedule; spec != "" {
		backups, err := a.backupService(ctx)
		switch {
		case errors.Is(err, backup.ErrUnsupportedDriver):
			logger.Warn("scheduled backups disabled", "driver", cfg.DB.Driver, "error", err)
		case err != nil:
			return err
		default:
			if _, err := scheduler.Register(spec, job.NewBackupJob(backups)); err != nil {
				return err
			}
		}
	}
	scheduler.Start()

	router := api.NewRouter(logger, services, api.RouterConfig{
		HTTP:      cfg.HTTP,
		Metrics:   cfg.Metrics,
		RateLimit: cfg.RateLimit,
	})
	server := bootstrap.NewHTTPServer(cfg.HTTP, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", "addr", server.Addr, "env", cfg.Log.Environment, "version", Version)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", "timeout", cfg.HTTP.ShutdownTimeout)
		<-scheduler.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server exited cleanly")
	return nil
}
