package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"kira-rag/internal/config"
	"kira-rag/internal/ingest"
	"kira-rag/internal/llm"
	"kira-rag/internal/logger"
	"kira-rag/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: kira-ingest [--config=config.yaml] statute.txt")
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("kira-ingest", logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	openaiKey := os.Getenv(cfg.OpenAI.APIKeyEnv)
	if openaiKey == "" {
		log.Fatal().Str("env", cfg.OpenAI.APIKeyEnv).Msg("OpenAI API key not set")
	}

	client, err := llm.NewClient(openaiKey, llm.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel))
	if err != nil {
		log.Fatal().Err(err).Msg("OpenAI client init failed")
	}

	store := qdrant.New(qdrant.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     os.Getenv(cfg.Qdrant.APIKeyEnv),
		Collection: cfg.Qdrant.Collection,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})

	pipeline := ingest.New(client, store, cfg.Ingest.EmbedsPerSec, log)

	count, err := pipeline.Run(context.Background(), args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("ingestion failed")
	}
	log.Info().Int("documents", count).Str("collection", cfg.Qdrant.Collection).Msg("ingestion complete")
}
