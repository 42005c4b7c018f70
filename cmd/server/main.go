package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storelens/storelens/app/api"
	"github.com/storelens/storelens/app/cfg"
	"github.com/storelens/storelens/app/competitors"
	"github.com/storelens/storelens/app/database"
	"github.com/storelens/storelens/app/fetcher"
	"github.com/storelens/storelens/app/insights"
	"github.com/storelens/storelens/app/scraper"
	"github.com/storelens/storelens/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.Info("Starting storelens server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	brandRepo := database.NewBrandRepository(db)

	fetchOpts := appCfg.FetcherOptions()
	fetchOpts.Logger = slog.Default()
	brandScraper := scraper.New(fetcher.New(fetchOpts), scraper.Options{
		Concurrency:       appCfg.Concurrency,
		RequestsPerSecond: appCfg.RequestsPerSecond,
		Logger:            slog.Default(),
	})

	finder := competitors.NewFinder(appCfg.CompetitorsFile)
	if err := finder.Load(); err != nil {
		slog.Warn("Failed to load competitor catalog", "path", appCfg.CompetitorsFile, "error", err)
	} else {
		slog.Info("Competitor catalog loaded", "path", appCfg.CompetitorsFile, "groups", finder.GroupCount())
	}

	service := insights.NewService(brandScraper, brandRepo, finder, slog.Default())

	scheduler := tasks.NewScheduler(brandRepo, service, finder, tasks.Config{
		Interval:    time.Duration(appCfg.SchedulerInterval) * time.Second,
		RefreshAge:  appCfg.RefreshAge(),
		WorkerCount: appCfg.WorkerCount,
	})
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "refresh_age", appCfg.RefreshAge())
	scheduler.Start()

	handler := api.NewHandler(service, brandRepo, scheduler, appCfg.Version)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	scheduler.Stop()
	slog.Info("Background scheduler stopped")

	slog.Info("storelens server shutdown complete")
}
