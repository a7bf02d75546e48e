package main

import (
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"ragchat/internal/chat"
	"ragchat/internal/config"
	"ragchat/internal/domain"
	embopenai "ragchat/internal/embedding/openai"
	llmopenai "ragchat/internal/llm/openai"
	"ragchat/internal/tui"
	"ragchat/internal/vectorstore/memory"
	"ragchat/internal/vectorstore/supabase"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragchat/config.yaml if not provided)")
	flag.Parse()

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

	// The TUI owns the terminal, so operator-visible logs go to a file.
	logPath := os.Getenv("RAGCHAT_LOG")
	if logPath == "" {
		logPath = "ragchat.log"
	}
	f, err := tea.LogToFile(logPath, "ragchat")
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer f.Close()

	emb := buildEmbedder(cfg)
	store := buildStore(cfg)
	llm := buildLLM(cfg)

	session := chat.NewSession(llm, emb, store, chat.Options{
		TopK:            cfg.Retriever.TopK,
		HistoryTurns:    cfg.Chat.HistoryTurns,
		MaxContextChars: cfg.Chat.MaxContextChars,
	})

	m := tui.New(session)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
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

func buildLLM(cfg *config.AppConfig) domain.LLM {
	key, err := config.Credential(cfg.LLM.APIKeyEnv)
	if err != nil {
		log.Fatalf("%v", err)
	}
	llm, err := llmopenai.NewClient(llmopenai.Config{
		APIKey:      key,
		Model:       cfg.LLM.Model,
		Temperature: *cfg.LLM.Temperature,
		BaseURL:     cfg.LLM.BaseURL,
	})
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}
	return llm
}

func buildStore(cfg *config.AppConfig) domain.VectorStore {
	switch cfg.VectorStore.Type {
	case "supabase", "":
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
	case "memory":
		return memory.NewStore()
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
		return nil
	}
}
