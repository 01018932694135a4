package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/campusvoice/backend/internal/ai"
	"github.com/campusvoice/backend/internal/config"
	"github.com/campusvoice/backend/internal/db"
	httpapi "github.com/campusvoice/backend/internal/http"
	"github.com/campusvoice/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "grievance-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	if err := store.SeedDepartments(ctx, service.DefaultDepartments()); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed departments")
	}

	var classifier ai.Classifier
	if cfg.ClassifierURL == "" {
		classifier = ai.KeywordClassifier{}
		logger.Info().Msg("using keyword classifier")
	} else {
		classifier = ai.HTTPClassifier{BaseURL: cfg.ClassifierURL}
		logger.Info().Str("url", cfg.ClassifierURL).Msg("using remote classifier")
	}

	grievances := &service.GrievanceService{
		Store:      store,
		Classifier: classifier,
		Logger:     logger,
	}

	router := httpapi.Router(cfg, store, classifier, grievances, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
