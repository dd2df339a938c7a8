package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapterHTTP "github.com/comitanigiacomo/twelve-week-sync/internal/adapters/handler/http"
	"github.com/comitanigiacomo/twelve-week-sync/internal/app"
	"github.com/comitanigiacomo/twelve-week-sync/internal/config"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/services"
	"github.com/comitanigiacomo/twelve-week-sync/internal/core/workers"
)

// @title        Twelve Week Sync API
// @version      1.0
// @description  Cycles, goals, tactics and scorecards for the 12 Week Year.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	startTime := time.Now()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Critical: Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Critical: Invalid server configuration: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		log.Fatalf("Critical: Failed to open %s backend: %v", cfg.Backend, err)
	}
	defer backend.Close()

	sessions := services.NewSessionManager(backend.Gateway)
	tokenService := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Duration)

	weekWorker := workers.NewWeekWorker(backend.Gateway, sessions)
	weekWorker.Start(ctx)
	if cfg.Scheduler.Enabled {
		if err := weekWorker.ScanActive(ctx); err != nil {
			log.Printf("[WORKER] Initial scan failed: %v", err)
		}
		if err := weekWorker.Schedule(ctx, cfg.Scheduler.Spec); err != nil {
			log.Fatalf("Critical: %v", err)
		}
		defer weekWorker.Stop()
	}

	dashboardHandler, cycleHandler, planningHandler, trackingHandler := adapterHTTP.NewHandlers(sessions)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		DashboardHandler: dashboardHandler,
		CycleHandler:     cycleHandler,
		PlanningHandler:  planningHandler,
		TrackingHandler:  trackingHandler,
		TokenService:     tokenService,
		DB:               backend.DB,
		Redis:            backend.Redis,
		RateLimit:        cfg.RateLimit.Limit,
		RateWindow:       cfg.RateLimit.Window,
		StartTime:        startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Twelve Week Sync running on http://localhost:%s (%s backend)", cfg.Port, backend.Kind)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
