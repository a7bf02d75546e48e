package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"ragchat/internal/domain"
)

// ChunkerConfig configures how source text is split for indexing.
type ChunkerConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	Separators   []string `yaml:"separators,omitempty"`
}

// EmbedderConfig configures the external embedding service.
type EmbedderConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url,omitempty"`
}

// LLMConfig configures the external chat-completion service.
// Temperature is a pointer so an explicit 0 (deterministic sampling)
// is distinguishable from an absent value.
type LLMConfig struct {
	Model       string   `yaml:"model"`
	Temperature *float32 `yaml:"temperature"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	BaseURL     string   `yaml:"base_url,omitempty"`
}

// SupabaseConfig contains connection details for the vector table.
// URL and key come from the environment, never the config file.
type SupabaseConfig struct {
	URLEnv      string `yaml:"url_env"`
	KeyEnv      string `yaml:"key_env"`
	Table       string `yaml:"table"`
	QueryName   string `yaml:"query_name"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector index backend.
type VectorStoreConfig struct {
	Type     string          `yaml:"type"`
	Supabase *SupabaseConfig `yaml:"supabase,omitempty"`
}

// RetrieverConfig bounds similarity search.
type RetrieverConfig struct {
	TopK int `yaml:"top_k"`
}

// ChatConfig bounds the prompt inputs at query time. A negative value
// disables the corresponding cap.
type ChatConfig struct {
	HistoryTurns    int `yaml:"history_turns"`
	MaxContextChars int `yaml:"max_context_chars"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Retriever   RetrieverConfig   `yaml:"retriever"`
	Chat        ChatConfig        `yaml:"chat"`
}

// Load reads a config from a specified path. If the file does not
// exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then
// ~/.config/ragchat/config.yaml. If neither exists, it writes defaults
// to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as
// needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Credential resolves an environment variable named by the config.
// A missing value is fatal at startup by policy, so the error already
// carries the configuration sentinel.
func Credential(envName string) (string, error) {
	v := os.Getenv(envName)
	if v == "" {
		return "", fmt.Errorf("%w: required environment variable %s is not set", domain.ErrConfiguration, envName)
	}
	return v, nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "ragchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.ChunkOverlap == 0 {
		cfg.Chunker.ChunkOverlap = 50
	}
	if len(cfg.Chunker.Separators) == 0 {
		cfg.Chunker.Separators = []string{"\n\n", "\n", " ", ""}
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "text-embedding-3-small"
	}
	if cfg.Embedder.APIKeyEnv == "" {
		cfg.Embedder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == nil {
		t := float32(0.5)
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "supabase"
	}
	if cfg.VectorStore.Type == "supabase" {
		if cfg.VectorStore.Supabase == nil {
			cfg.VectorStore.Supabase = &SupabaseConfig{}
		}
		sb := cfg.VectorStore.Supabase
		if sb.URLEnv == "" {
			sb.URLEnv = "SUPABASE_URL"
		}
		if sb.KeyEnv == "" {
			sb.KeyEnv = "SUPABASE_KEY"
		}
		if sb.Table == "" {
			sb.Table = "documents"
		}
		if sb.QueryName == "" {
			sb.QueryName = "match_documents"
		}
		if sb.TimeoutSecs == 0 {
			sb.TimeoutSecs = 30
		}
	}
	if cfg.Retriever.TopK == 0 {
		cfg.Retriever.TopK = 4
	}
	if cfg.Chat.HistoryTurns == 0 {
		cfg.Chat.HistoryTurns = 8
	}
	if cfg.Chat.MaxContextChars == 0 {
		cfg.Chat.MaxContextChars = 8000
	}
}
