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

	"github.com/kollab_agentic/backend/internal/config"
	httpapi "github.com/kollab_agentic/backend/internal/http"
	"github.com/kollab_agentic/backend/internal/llm"
	"github.com/kollab_agentic/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "kollab-backend").Logger()

	ctx := context.Background()
	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer st.Close()

	var completer llm.Completer
	if cfg.CompletionBaseURL == "" {
		completer = llm.MockCompleter{ModelVersion: "mock-v1"}
		logger.Info().Msg("using mock completion backend")
	} else {
		completer = llm.OpenAICompatCompleter{
			BaseURL:   cfg.CompletionBaseURL,
			Model:     cfg.CompletionModel,
			APIKey:    cfg.CompletionAPIKey,
			MaxTokens: cfg.CompletionMaxTok,
		}
	}

	router := httpapi.Router(cfg, st, completer, logger)

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
