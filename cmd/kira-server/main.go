package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"kira-rag/internal/config"
	"kira-rag/internal/llm"
	"kira-rag/internal/logger"
	"kira-rag/internal/ratelimit"
	"kira-rag/internal/retriever"
	"kira-rag/internal/server"
	"kira-rag/internal/service"
	"kira-rag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("kira-server", logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	// Missing secrets are startup-fatal, not per-request conditions.
	secret := os.Getenv(cfg.Server.APIKeyEnv)
	if secret == "" {
		log.Fatal().Str("env", cfg.Server.APIKeyEnv).Msg("API secret not set")
	}
	openaiKey := os.Getenv(cfg.OpenAI.APIKeyEnv)
	if openaiKey == "" {
		log.Fatal().Str("env", cfg.OpenAI.APIKeyEnv).Msg("OpenAI API key not set")
	}

	client, err := llm.NewClient(openaiKey,
		llm.WithChatModel(cfg.OpenAI.ChatModel),
		llm.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
		llm.WithTemperature(cfg.OpenAI.Temperature),
		llm.WithGenerateTimeout(time.Duration(cfg.OpenAI.GenerateTimeoutSecs)*time.Second),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("OpenAI client init failed")
	}

	store := qdrant.New(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     os.Getenv(cfg.Qdrant.APIKeyEnv),
		Collection: cfg.Qdrant.Collection,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})

	// The collection must exist before serving; ingestion is a separate step.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	count, err := store.Count(startupCtx)
	cancelStartup()
	if err != nil {
		log.Fatal().Err(err).Str("collection", cfg.Qdrant.Collection).
			Msg("corpus store unreachable or collection missing; run kira-ingest first")
	}
	log.Info().Int("documents", count).Str("collection", cfg.Qdrant.Collection).Msg("connected to corpus store")

	svc := service.New(retriever.New(client, store), client, store, cfg.Retrieval.TopK, log)
	limiter := ratelimit.New(cfg.Server.RateLimit, time.Duration(cfg.Server.RateWindowSecs)*time.Second)
	srv := server.New(svc, secret, limiter, prometheus.NewRegistry(), log)

	httpServer := &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: srv.Handler(),
	}

	go func() {
		log.Info().Str("listen", cfg.Server.Listen).Msg("query service listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
