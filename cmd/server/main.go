package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/bootstrap"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/config"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/router"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/infrastructure/scheduler"
	"github.com/velronatechnologies/Ticpin-website-sub002/internal/interface/api"
	"github.com/velronatechnologies/Ticpin-website-sub002/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}

	// Create logger
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting Ticpin Pass Service", "version", cfg.AppVersion)

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := bootstrap.New(ctx, cfg, log, nil)
	if err != nil {
		log.Fatal("Failed to start pass service", "error", err)
	}

	// Reminder schedule
	cron := scheduler.NewScheduler(log.With("component", "scheduler"))
	if err := cron.Add(scheduler.Job{
		Name:     "pass_reminders",
		Schedule: cfg.ReminderSchedule,
		Run:      container.ReminderJob.RunScheduled,
	}); err != nil {
		log.Fatal("Failed to schedule pass reminders", "error", err)
	}
	if cron.Len() == 0 {
		log.Warn("REMINDER_SCHEDULE is empty, pass reminders run only through the internal endpoint")
	}
	cron.Start()

	// Set up HTTP server
	gin.SetMode(gin.ReleaseMode)
	handler := api.NewPassHandler(container.PassService, container.ReminderJob, log.With("component", "http"))
	engine := router.NewRouter(router.Options{
		PassHandler: handler,
		CronSecret:  cfg.CronSecret,
		Version:     cfg.AppVersion,
		Logger:      log.With("component", "http"),
	})
	if cfg.CronSecret == "" {
		log.Warn("CRON_SECRET not set, internal endpoints reject every request")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig.String())

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cron.Stop(shutdownCtx)
	cancel()

	container.Close(shutdownCtx)

	log.Info("Ticpin Pass Service stopped")
}
