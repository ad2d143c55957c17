package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-copilot/internal/api"
	"github.com/dvloznov/finance-copilot/internal/api/handlers"
	"github.com/dvloznov/finance-copilot/internal/app"
	"github.com/dvloznov/finance-copilot/internal/config"
	"github.com/dvloznov/finance-copilot/internal/logger"
)

func main() {
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	port := flag.Int("port", 0, "HTTP server port (overrides HTTP_PORT)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTPPort = *port
	}

	log := logger.New(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise services")
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	if err := a.StartJobs(workerCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start report workers")
	}

	router := api.NewRouter(api.Handlers{
		Entities:  handlers.NewEntitiesHandler(a.Store, log),
		Money:     handlers.NewMoneyHandler(a.Money, log),
		Assistant: handlers.NewAssistantHandler(a.Conversation, a.Dispatcher, log),
		Reports:   handlers.NewReportsHandler(a.Dispatcher, a.Jobs, a.Notices, log),
	}, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Queued reports finish before the state is flushed.
	if err := a.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close services")
	}

	log.Info().Msg("Server exited")
}
