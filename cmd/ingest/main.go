package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"ragchat/internal/chunker"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	embopenai "ragchat/internal/embedding/openai"
	"ragchat/internal/ingest"
	"ragchat/internal/vectorstore/supabase"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("Usage: ingest [--config=config.yaml] source.txt")
		os.Exit(1)
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	emb := buildEmbedder(cfg)
	store := buildStore(cfg)

	ch := chunker.NewRecursive(chunker.Config{
		ChunkSize:    cfg.Chunker.ChunkSize,
		ChunkOverlap: cfg.Chunker.ChunkOverlap,
		Separators:   cfg.Chunker.Separators,
	})

	pipeline := ingest.New(ch, emb, store)
	n, err := pipeline.RunFile(context.Background(), args[0])
	if err != nil {
		log.Fatalf("ingest failed: %v", err)
	}
	log.Printf("ingested %d index entries from %s", n, args[0])
}

func buildEmbedder(cfg *config.AppConfig) domain.Embedder {
	key, err := config.Credential(cfg.Embedder.APIKeyEnv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	emb, err := embopenai.NewClient(embopenai.Config{
		APIKey:  key,
		Model:   cfg.Embedder.Model,
		BaseURL: cfg.Embedder.BaseURL,
	})
	if err != nil {
		log.Fatalf("embedder init failed: %v", err)
	}
	return emb
}

func buildStore(cfg *config.AppConfig) domain.VectorStore {
	if cfg.VectorStore.Type != "supabase" {
		log.Fatalf("ingestion requires a durable vector store, got %q", cfg.VectorStore.Type)
	}
	sb := cfg.VectorStore.Supabase
	url, err := config.Credential(sb.URLEnv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	key, err := config.Credential(sb.KeyEnv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	store, err := supabase.NewStore(supabase.Config{
		URL:       url,
		APIKey:    key,
		Table:     sb.Table,
		QueryName: sb.QueryName,
		Timeout:   time.Duration(sb.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("vector store init failed: %v", err)
	}
	return store
}
