package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legendmotors/skywell-leads/cmd/mainconfig"
	"github.com/legendmotors/skywell-leads/internal/app/bootstrap"
	appconfig "github.com/legendmotors/skywell-leads/internal/config"
	"github.com/legendmotors/skywell-leads/pkg/logging"
)

func main() {
	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting skywell lead API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"crm_endpoint", cfg.CRMEndpoint,
	)

	ctx := context.Background()
	deps := bootstrap.Deps{}
	deadLetter, err := mainconfig.BuildDeadLetter(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	if deadLetter != nil {
		deps.DeadLetter = deadLetter
	}

	app, err := bootstrap.Build(ctx, cfg, logger, deps)
	if err != nil {
		logger.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	srv := newServer(cfg, app.Handler)

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	app.Close(shutdownCtx)

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// newServer sizes the write timeout so a slow CRM call still gets its reply out.
func newServer(cfg *appconfig.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CRMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
